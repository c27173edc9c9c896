package cmd

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/aigov-scan/pkg/adk"
	"github.com/user/aigov-scan/pkg/config"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive setup wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner := bufio.NewScanner(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			readLine := func() string {
				scanner.Scan()
				return strings.TrimSpace(scanner.Text())
			}

			fmt.Fprintln(out, "Welcome to aigov-scan Setup Wizard")
			fmt.Fprintln(out, "---------------------------------")

			fmt.Fprintln(out, "Step 1: Choose the provider for executive summaries")
			fmt.Fprintln(out, "1. Gemini (Google)")
			fmt.Fprintln(out, "2. OpenAI")
			fmt.Fprintln(out, "3. Anthropic")
			fmt.Fprint(out, "Enter number or name > ")

			var provider string
			switch choice := strings.ToLower(readLine()); choice {
			case "1", "gemini":
				provider = "gemini"
			case "2", "openai":
				provider = "openai"
			case "3", "anthropic":
				provider = "anthropic"
			default:
				return &UsageError{Err: fmt.Errorf("invalid provider choice %q", choice)}
			}

			fmt.Fprintf(out, "\nStep 2: Enter API Key for %s\n", provider)
			fmt.Fprint(out, "> ")
			apiKey := readLine()
			if apiKey == "" {
				return &UsageError{Err: fmt.Errorf("API key cannot be empty")}
			}

			fmt.Fprintln(out, "\nStep 3: Validating key and fetching available models...")
			selectedModel, err := chooseModel(cmd, provider, apiKey, readLine)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "\nStep 4: Saving Configuration...")
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			cfg.SelectedProvider = provider
			cfg.SelectedModel = selectedModel
			cfg.SetAPIKey(provider, apiKey)
			if err := config.SaveConfig(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintln(out, "---------------------------------")
			fmt.Fprintln(out, "Setup Complete!")
			fmt.Fprintf(out, "Provider: %s\n", provider)
			fmt.Fprintf(out, "Model:    %s\n", selectedModel)
			fmt.Fprintln(out, "You can now run 'aigov-scan scan --scan all'")
			return nil
		},
	}
}

// chooseModel lists the provider's models and lets the user pick one,
// falling back to manual entry when listing fails.
func chooseModel(cmd *cobra.Command, provider, apiKey string, readLine func() string) (string, error) {
	out := cmd.OutOrStdout()
	p, err := adk.NewProvider(cmd.Context(), provider, apiKey, "")
	if err != nil {
		return "", fmt.Errorf("error initializing provider: %w", err)
	}
	defer p.Close()

	models, err := p.ListModels(cmd.Context())
	if err != nil || len(models) == 0 {
		fmt.Fprintf(out, "Warning: Could not fetch models from API: %v\n", err)
		fmt.Fprintln(out, "Please enter model name manually (e.g., 'gemini-1.5-flash', 'gpt-4o-mini'):")
		fmt.Fprint(out, "> ")
		model := readLine()
		if model == "" {
			return "", &UsageError{Err: fmt.Errorf("model name cannot be empty")}
		}
		return model, nil
	}

	fmt.Fprintf(out, "Successfully retrieved %d models.\n", len(models))
	for i, m := range models {
		fmt.Fprintf(out, "%d. %s\n", i+1, m)
	}
	fmt.Fprint(out, "Select Model (number) > ")
	idx, err := strconv.Atoi(readLine())
	if err != nil || idx < 1 || idx > len(models) {
		fmt.Fprintln(out, "Invalid selection. Using first available model.")
		return models[0], nil
	}
	return models[idx-1], nil
}
