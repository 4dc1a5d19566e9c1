// Package prompt turns generate and proofread options into the Japanese
// prompt sent to the model.
package prompt

import (
	"fmt"
	"strings"
)

// Kind is the type of text to generate.
type Kind string

const (
	KindMailMagazine Kind = "mail-magazine"
	KindSMS          Kind = "sms"
	KindSNS          Kind = "sns"
)

var kindLabels = map[Kind]string{
	KindMailMagazine: "メールマガジン",
	KindSMS:          "SMS",
	KindSNS:          "SNS投稿",
}

// Kinds lists every Kind in menu order.
func Kinds() []Kind { return []Kind{KindMailMagazine, KindSMS, KindSNS} }

// Label is the Japanese name used inside the prompt.
func (k Kind) Label() string { return kindLabels[k] }

// ParseKind accepts a Kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := kindLabels[k]; !ok {
		return "", fmt.Errorf("unknown text kind %q (choose from: %s)", s, joinNames(Kinds()))
	}
	return k, nil
}

// Length is the target length of generated text.
type Length string

const (
	LengthShort    Length = "short"
	LengthStandard Length = "standard"
	LengthLong     Length = "long"
	LengthDetailed Length = "detailed"
)

var lengthLabels = map[Length]string{
	LengthShort:    "短め (100字程度)",
	LengthStandard: "標準 (300字程度)",
	LengthLong:     "長め (500字程度)",
	LengthDetailed: "詳細 (1000字以上)",
}

// Lengths lists every Length from shortest to longest.
func Lengths() []Length { return []Length{LengthShort, LengthStandard, LengthLong, LengthDetailed} }

func (l Length) Label() string { return lengthLabels[l] }

// ParseLength accepts a Length name.
func ParseLength(s string) (Length, error) {
	l := Length(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := lengthLabels[l]; !ok {
		return "", fmt.Errorf("unknown length %q (choose from: %s)", s, joinNames(Lengths()))
	}
	return l, nil
}

// Check is one proofreading criterion.
type Check string

const (
	CheckGrammar     Check = "grammar"
	CheckSpelling    Check = "spelling"
	CheckPremiumsAct Check = "premiums-act"
	CheckClarity     Check = "clarity"
	CheckConsistency Check = "consistency"
)

var checkLabels = map[Check]string{
	CheckGrammar:     "文法",
	CheckSpelling:    "スペル",
	CheckPremiumsAct: "景品表示法への抵触がないか",
	CheckClarity:     "わかりやすさ",
	CheckConsistency: "一貫性",
}

// Checks lists every Check in menu order.
func Checks() []Check {
	return []Check{CheckGrammar, CheckSpelling, CheckPremiumsAct, CheckClarity, CheckConsistency}
}

func (c Check) Label() string { return checkLabels[c] }

// ParseChecks accepts Check names, dropping duplicates and keeping order.
func ParseChecks(names []string) ([]Check, error) {
	var out []Check
	seen := make(map[Check]bool)
	for _, n := range names {
		c := Check(strings.ToLower(strings.TrimSpace(n)))
		if c == "" {
			continue
		}
		if _, ok := checkLabels[c]; !ok {
			return nil, fmt.Errorf("unknown check %q (choose from: %s)", n, joinNames(Checks()))
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

func joinNames[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
