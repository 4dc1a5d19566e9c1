package cmd

import (
	"fmt"
	"strings"

	"github.com/arin/penman/internal/ai"
	"github.com/arin/penman/internal/compose"
	"github.com/arin/penman/internal/export"
	"github.com/arin/penman/internal/prompt"
	"github.com/arin/penman/internal/ui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	genKind   string
	genLength string
	genExtra  string
	genSave   bool
	genOutDir string
)

var generateCmd = &cobra.Command{
	Use:     "generate <topic>",
	Aliases: []string{"gen"},
	Short:   "Generate a mail magazine, SMS or SNS post about a topic",
	Long: `Generate Japanese text about a topic.

Kinds:   mail-magazine, sms, sns
Lengths: short (~100字), standard (~300字), long (~500字), detailed (1000字+)

Examples:
  penman generate 夏のセール
  penman generate 新商品の発売 --kind sns --length standard --extra "絵文字を使う"
  penman generate 会員限定クーポン --kind sms --save --out ./drafts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		kind, err := prompt.ParseKind(genKind)
		if err != nil {
			return err
		}
		length, err := prompt.ParseLength(genLength)
		if err != nil {
			return err
		}
		opts := prompt.GenerateOptions{
			Kind:   kind,
			Topic:  strings.Join(args, " "),
			Length: length,
			Extra:  genExtra,
		}

		logger := newLogger(cmd.ErrOrStderr())
		svc := compose.New(ai.NewClient(cfg, logger), logger)

		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		cyan := color.New(color.FgCyan, color.Bold)
		dim := color.New(color.FgHiBlack)

		sp := ui.NewSpinner(errOut, "AIが文章を生成中...")
		display := ui.NewDisplay(out).OnFirst(func() {
			sp.Stop()
			cyan.Fprintf(errOut, "\n  %s · %s\n\n", kind.Label(), strings.TrimSpace(opts.Topic))
		})

		sp.Start()
		text, err := svc.Generate(cmd.Context(), opts, display.Sink())
		if err != nil {
			if display.Content() != "" {
				fmt.Fprintln(out)
			}
			sp.Fail("テキストを生成できませんでした")
			return fmt.Errorf("generation failed: %w", err)
		}
		display.Finish()
		sp.Success("テキストが生成されました！")

		if genSave {
			path, err := export.Write(genOutDir, opts.Topic, text)
			if err != nil {
				return err
			}
			dim.Fprintf(errOut, "  saved %s (%s)\n", path, export.MimeType)
		}
		fmt.Fprintln(errOut)
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genKind, "kind", "k", string(prompt.KindMailMagazine), "Text kind: mail-magazine, sms, sns")
	f.StringVarP(&genLength, "length", "l", string(prompt.LengthShort), "Length: short, standard, long, detailed")
	f.StringVarP(&genExtra, "extra", "e", "", "Additional notes or requests for the text")
	f.BoolVarP(&genSave, "save", "s", false, "Save the result as <topic>_generated_text.txt")
	f.StringVarP(&genOutDir, "out", "o", ".", "Directory for --save")
}
