package cmd

import (
	"fmt"
	"strings"

	"github.com/arin/penman/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage penman configuration",
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key <api-key>",
	Short: "Set your OpenAI API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetAPIKey(strings.TrimSpace(args[0])); err != nil {
			return fmt.Errorf("failed to save API key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key saved successfully.")
		return nil
	},
}

var setModelCmd = &cobra.Command{
	Use:   "set-model <model-name>",
	Short: "Set the model (OpenAI: " + strings.Join(config.Models, ", ") + ")",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetModel(args[0]); err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Model set to %s.\n", args[0])
		return nil
	},
}

var setProviderCmd = &cobra.Command{
	Use:       "set-provider <openai|ollama>",
	Short:     "Choose the completion backend",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{config.ProviderOpenAI, config.ProviderOllama},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetProvider(args[0]); err != nil {
			return fmt.Errorf("failed to save provider: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Provider set to %s (model reset to %s).\n", args[0], config.DefaultModel(args[0]))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Provider:    %s\n", cfg.Provider)
		fmt.Fprintf(w, "Model:       %s\n", cfg.Model)
		if cfg.BaseURL != "" {
			fmt.Fprintf(w, "Base URL:    %s\n", cfg.BaseURL)
		}
		fmt.Fprintf(w, "API Key:     %s\n", cfg.MaskedKey())
		fmt.Fprintf(w, "Temperature: %.1f\n", cfg.Temperature)
		fmt.Fprintf(w, "Streaming:   %t\n", cfg.Stream)
		fmt.Fprintf(w, "Timeout:     %s\n", cfg.Timeout)
		fmt.Fprintf(w, "Config File: %s\n", config.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(setKeyCmd)
	configCmd.AddCommand(setModelCmd)
	configCmd.AddCommand(setProviderCmd)
	configCmd.AddCommand(showCmd)
}
