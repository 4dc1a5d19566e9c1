package prompt

import (
	"fmt"
	"strings"
)

// ValidationError reports required user input that is missing. No request
// should be made when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// GenerateOptions describes the text to generate.
type GenerateOptions struct {
	Kind   Kind
	Topic  string
	Length Length
	Extra  string
}

// ProofreadOptions describes the text to review. No checks means every aspect.
type ProofreadOptions struct {
	Text   string
	Checks []Check
}

// RevisedHeading introduces the corrected full text in a proofread reply.
const RevisedHeading = "修正後の全文"

// Generate validates opts and builds the generation prompt.
func Generate(opts GenerateOptions) (string, error) {
	if strings.TrimSpace(opts.Topic) == "" {
		return "", &ValidationError{Field: "topic", Message: "トピックを入力してください。"}
	}
	if opts.Kind == "" {
		opts.Kind = KindMailMagazine
	}
	if opts.Length == "" {
		opts.Length = LengthShort
	}
	if opts.Kind.Label() == "" {
		return "", fmt.Errorf("unknown text kind %q", opts.Kind)
	}
	if opts.Length.Label() == "" {
		return "", fmt.Errorf("unknown length %q", opts.Length)
	}

	var b strings.Builder
	b.WriteString("次の条件に合うテキストを生成してください:\n")
	fmt.Fprintf(&b, "- タイプ: %s\n", opts.Kind.Label())
	fmt.Fprintf(&b, "- トピック: %s\n", strings.TrimSpace(opts.Topic))
	fmt.Fprintf(&b, "- 長さ: %s\n", opts.Length.Label())
	fmt.Fprintf(&b, "- 追加情報: %s\n", strings.TrimSpace(opts.Extra))
	b.WriteString("\n日本語で自然な文章を生成してください。\n")
	return b.String(), nil
}

// Proofread validates opts and builds the review prompt.
func Proofread(opts ProofreadOptions) (string, error) {
	if strings.TrimSpace(opts.Text) == "" {
		return "", &ValidationError{Field: "text", Message: "テキストを入力してください。"}
	}

	focus := "すべての側面"
	if len(opts.Checks) > 0 {
		labels := make([]string, 0, len(opts.Checks))
		for _, c := range opts.Checks {
			if c.Label() == "" {
				return "", fmt.Errorf("unknown check %q", c)
			}
			labels = append(labels, c.Label())
		}
		focus = strings.Join(labels, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "以下のテキストを校閲してください。%sに注目して改善点を指摘し、\n", focus)
	b.WriteString("修正案を提案してください。元のテキストを尊重しつつ、より明確で効果的な表現を目指してください。\n\n")
	b.WriteString("テキスト:\n")
	b.WriteString(opts.Text)
	b.WriteString("\n\n以下の形式で回答してください：\n")
	b.WriteString("1. 全体的な評価\n")
	b.WriteString("2. 具体的な改善点（元の文と修正案を対比）\n")
	fmt.Fprintf(&b, "3. %s\n", RevisedHeading)
	return b.String(), nil
}

// ExtractRevised returns the corrected full text from a proofread reply: the
// lines after the last heading that names RevisedHeading. It returns "" when
// the reply has no such heading or nothing follows it.
func ExtractRevised(reply string) string {
	lines := strings.Split(strings.ReplaceAll(reply, "\r\n", "\n"), "\n")
	at := -1
	for i, l := range lines {
		if strings.Contains(l, RevisedHeading) && len([]rune(strings.TrimSpace(l))) <= len([]rune(RevisedHeading))+12 {
			at = i
		}
	}
	if at < 0 {
		return ""
	}

	rest := strings.TrimSpace(strings.Join(lines[at+1:], "\n"))
	if strings.HasPrefix(rest, "```") {
		// Drop the opening fence along with any language tag.
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		} else {
			rest = ""
		}
		rest = strings.TrimSuffix(strings.TrimSpace(rest), "```")
	}
	return strings.TrimSpace(rest)
}
