package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/aigov-scan/pkg/adk"
	"github.com/user/aigov-scan/pkg/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration (providers, models, keys)",
	}
	configCmd.AddCommand(newSetKeyCmd(), newSetModelCmd(), newListModelsCmd(), newSetupCmd())
	return configCmd
}

func newSetKeyCmd() *cobra.Command {
	var provider, key string
	cmd := &cobra.Command{
		Use:   "set-key",
		Short: "Manually set API key for a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" || key == "" {
				return &UsageError{Err: fmt.Errorf("--provider and --key are required")}
			}
			provider = strings.ToLower(provider)
			if err := checkProvider(provider); err != nil {
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			cfg.SetAPIKey(provider, key)
			if err := config.SaveConfig(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key saved for provider: %s\n", provider)
			return nil
		},
	}
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Provider ("+strings.Join(adk.Providers, ", ")+")")
	cmd.Flags().StringVarP(&key, "key", "k", "", "API Key")
	return cmd
}

func newSetModelCmd() *cobra.Command {
	var provider, model string
	cmd := &cobra.Command{
		Use:   "set-model",
		Short: "Manually set the active provider and model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}

			if provider != "" {
				provider = strings.ToLower(provider)
				if err := checkProvider(provider); err != nil {
					return err
				}
				cfg.SelectedProvider = provider
			}
			if model != "" {
				cfg.SelectedModel = model
			}

			if err := config.SaveConfig(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active configuration updated: Provider=%s, Model=%s\n", cfg.SelectedProvider, cfg.SelectedModel)
			return nil
		},
	}
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Provider ("+strings.Join(adk.Providers, ", ")+")")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model name")
	return cmd
}

func newListModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-models",
		Short: "List available models from the configured provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}

			provider := cfg.SelectedProvider
			if provider == "" {
				return &UsageError{Err: fmt.Errorf("no provider selected, run 'aigov-scan config setup'")}
			}
			apiKey := cfg.GetAPIKey(provider)
			if apiKey == "" {
				return &UsageError{Err: fmt.Errorf("no API key found for %s", provider)}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fetching models for %s...\n", provider)
			ctx := cmd.Context()
			p, err := adk.NewProvider(ctx, provider, apiKey, "")
			if err != nil {
				return fmt.Errorf("error initializing provider: %w", err)
			}
			defer p.Close()

			models, err := p.ListModels(ctx)
			if err != nil {
				return fmt.Errorf("error fetching models: %w", err)
			}

			fmt.Fprintf(out, "\nAvailable Models (%s):\n", provider)
			for _, m := range models {
				mark := " "
				if m == cfg.SelectedModel {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %s\n", mark, m)
			}
			return nil
		},
	}
}

func checkProvider(name string) error {
	if !slices.Contains(adk.Providers, name) {
		return &UsageError{Err: fmt.Errorf("unknown provider: %s", name)}
	}
	return nil
}
