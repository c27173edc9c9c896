package engine

import (
	_ "embed"
)

//go:embed prompts/narrator_system.md
var narratorSystemPrompt string

// NarratorSystemPrompt returns the default instruction sent with every
// generated executive summary.
func NarratorSystemPrompt() string {
	return narratorSystemPrompt
}
