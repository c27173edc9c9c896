package main

import (
	"os"

	"github.com/user/aigov-scan/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
