package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arin/penman/internal/ai"
	"github.com/arin/penman/internal/compose"
	"github.com/arin/penman/internal/prompt"
	"github.com/arin/penman/internal/ui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	prChecks  []string
	prFile    string
	prCompare bool
	prWidth   int
)

var proofreadCmd = &cobra.Command{
	Use:     "proofread [text]",
	Aliases: []string{"review"},
	Short:   "Review Japanese text and suggest corrections",
	Long: `Review a text and get an overall assessment, concrete before/after
suggestions and a corrected full text, followed by a side-by-side comparison.

Checks: grammar, spelling, premiums-act (景品表示法), clarity, consistency.
With no --check every aspect is reviewed.

Examples:
  penman proofread "本日限り、全品無料でお届けします！"
  penman proofread --file draft.txt --check grammar --check clarity
  cat draft.txt | penman proofread --check premiums-act`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		checks, err := prompt.ParseChecks(prChecks)
		if err != nil {
			return err
		}
		text, err := proofreadInput(cmd, args)
		if err != nil {
			return err
		}
		opts := prompt.ProofreadOptions{Text: text, Checks: checks}

		logger := newLogger(cmd.ErrOrStderr())
		svc := compose.New(ai.NewClient(cfg, logger), logger)

		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		cyan := color.New(color.FgCyan, color.Bold)
		dim := color.New(color.FgHiBlack)

		sp := ui.NewSpinner(errOut, "AIが校閲中...")
		display := ui.NewDisplay(out).OnFirst(func() {
			sp.Stop()
			cyan.Fprintf(errOut, "\n  校閲結果\n\n")
		})

		sp.Start()
		reply, err := svc.Proofread(cmd.Context(), opts, display.Sink())
		if err != nil {
			if display.Content() != "" {
				fmt.Fprintln(out)
			}
			sp.Fail("校閲できませんでした")
			return fmt.Errorf("proofreading failed: %w", err)
		}
		display.Finish()
		sp.Success("校閲が完了しました！")
		fmt.Fprintln(errOut)

		if !prCompare {
			return nil
		}

		after := prompt.ExtractRevised(reply)
		if after == "" {
			after = reply
			dim.Fprintf(errOut, "  (no %q section found, comparing against the whole reply)\n\n", prompt.RevisedHeading)
		}
		width := prWidth
		if width <= 0 {
			width = ui.Width(out)
		}
		cyan.Fprintf(errOut, "  比較\n\n")
		ui.RenderComparison(out, text, after, width)
		fmt.Fprintln(out)
		return nil
	},
}

// proofreadInput takes the text from args, --file, or piped stdin, in that
// order. An empty result is left for prompt validation to report.
func proofreadInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if prFile != "" {
		data, err := os.ReadFile(prFile)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", prFile, err)
		}
		return string(data), nil
	}
	return readPiped(cmd.InOrStdin())
}

// readPiped reads r unless it is an interactive terminal.
func readPiped(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return "", fmt.Errorf("failed to inspect stdin: %w", err)
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func init() {
	f := proofreadCmd.Flags()
	f.StringSliceVarP(&prChecks, "check", "c", nil, "Aspect to focus on (repeatable): grammar, spelling, premiums-act, clarity, consistency")
	f.StringVarP(&prFile, "file", "f", "", "Read the text to review from a file")
	f.BoolVar(&prCompare, "compare", true, "Show a side-by-side comparison after the review")
	f.IntVar(&prWidth, "width", 0, "Width of the comparison view (default: terminal width)")
}
