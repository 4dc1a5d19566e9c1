package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/arin/penman/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagModel       string
	flagTemperature float64
	flagNoStream    bool
	flagTimeout     time.Duration
	verbose         bool
)

var rootCmd = &cobra.Command{
	Use:   "penman",
	Short: "Generate and proofread Japanese marketing copy with AI",
	Long: `penman writes and reviews short Japanese texts (mail magazines, SMS,
SNS posts) using a hosted chat-completion model. Replies stream to the
terminal as they are generated.

Examples:
  penman generate 夏のセール --kind sns --length standard
  penman proofread --check grammar --check premiums-act "本日限り全品無料！"
  cat draft.txt | penman proofread --no-stream`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 1,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagModel, "model", "m", "", "Model to use (default from config, e.g. gpt-4o-mini)")
	pf.Float64VarP(&flagTemperature, "temperature", "t", 0.7, "Sampling temperature between 0 and 1")
	pf.BoolVar(&flagNoStream, "no-stream", false, "Wait for the full reply instead of streaming it")
	pf.DurationVar(&flagTimeout, "timeout", 0, "Give up on a reply after this long (default from config, 2m)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log request details to stderr")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(proofreadCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
}

// SetVersion sets the string printed by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the entry point called from main.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig builds the config for one command: file and environment first,
// then any flags the user set. It fails before any request is attempted when
// the result is unusable.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = flagModel
	}
	if flags.Changed("temperature") {
		cfg.Temperature = flagTemperature
	}
	if flags.Changed("no-stream") {
		cfg.Stream = !flagNoStream
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagTimeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// newLogger returns a text logger on w. Debug records only show with --verbose.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
