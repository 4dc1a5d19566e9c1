package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/arin/penman/internal/ai"
	"github.com/arin/penman/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const probeTimeout = 5 * time.Second

// errWarn marks a check result as a warning instead of a failure.
var errWarn = errors.New("warn")

func warnf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errWarn, fmt.Sprintf(format, args...))
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and endpoint health",
	Long: `Run a health check on your penman setup.
Verifies the config file, credentials, endpoint connectivity and model
availability without generating any text.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.ErrOrStderr()
		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)
		yellow := color.New(color.FgYellow)
		dim := color.New(color.FgHiBlack)
		cyan := color.New(color.FgCyan, color.Bold)

		cyan.Fprintf(w, "\n  🩺 penman doctor\n\n")

		pass, fail, warn := 0, 0, 0

		check := func(name string, fn func() (string, error)) {
			detail, err := fn()
			switch {
			case errors.Is(err, errWarn):
				yellow.Fprintf(w, "  ⚠ %s\n", name)
				dim.Fprintf(w, "    %s\n", strings.TrimPrefix(err.Error(), errWarn.Error()+": "))
				warn++
			case err != nil:
				red.Fprintf(w, "  ✗ %s\n", name)
				dim.Fprintf(w, "    %s\n", err.Error())
				fail++
			default:
				green.Fprintf(w, "  ✓ %s", name)
				if detail != "" {
					dim.Fprintf(w, " · %s", detail)
				}
				fmt.Fprintln(w)
				pass++
			}
		}

		// 1. Config file
		check("Config file", func() (string, error) {
			if _, err := os.Stat(config.Path()); err != nil {
				return "", warnf("%s not found, defaults and environment are used", config.Path())
			}
			return config.Path(), nil
		})

		cfg, loadErr := config.Load()
		check("Config readable", func() (string, error) {
			if loadErr != nil {
				return "", loadErr
			}
			return fmt.Sprintf("%s / %s", cfg.Provider, cfg.Model), nil
		})
		if loadErr != nil {
			return summarize(w, pass, fail, warn)
		}

		// 2. Settings
		check("Settings valid", func() (string, error) {
			if err := cfg.Validate(); err != nil {
				return "", err
			}
			if cfg.Provider == config.ProviderOpenAI {
				return "API key " + cfg.MaskedKey(), nil
			}
			return "no API key needed", nil
		})

		client := ai.NewClient(cfg, nil)
		checker, ok := client.Checker()
		if !ok || cfg.Validate() != nil {
			return summarize(w, pass, fail, warn)
		}

		// 3. Endpoint
		endpointOK := false
		check(fmt.Sprintf("%s endpoint reachable", client.ProviderName()), func() (string, error) {
			ctx, cancel := context.WithTimeout(cmd.Context(), probeTimeout)
			defer cancel()
			if err := checker.Ping(ctx); err != nil {
				return "", err
			}
			endpointOK = true
			return "", nil
		})

		// 4. Model
		if endpointOK {
			check(fmt.Sprintf("Model available (%s)", cfg.Model), func() (string, error) {
				ctx, cancel := context.WithTimeout(cmd.Context(), probeTimeout)
				defer cancel()
				found, err := checker.HasModel(ctx, cfg.Model)
				if err != nil {
					return "", err
				}
				if !found {
					if cfg.Provider == config.ProviderOllama {
						return "", fmt.Errorf("model not found, run: ollama pull %s", cfg.Model)
					}
					return "", fmt.Errorf("model not found, run: penman config set-model <name>")
				}
				return "ready", nil
			})
		}

		// 5. OS and arch
		check("System info", func() (string, error) {
			return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH), nil
		})

		return summarize(w, pass, fail, warn)
	},
}

func summarize(w io.Writer, pass, fail, warn int) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(w)
	total := pass + fail + warn
	switch {
	case fail == 0 && warn == 0:
		green.Fprintf(w, "  All %d checks passed. You're good to go.\n\n", total)
	case fail == 0:
		yellow.Fprintf(w, "  %d passed, %d warnings. Everything works, but some things could be better.\n\n", pass, warn)
	default:
		red.Fprintf(w, "  %d passed, %d failed, %d warnings. Fix the failures above.\n\n", pass, fail, warn)
	}
	return nil
}
