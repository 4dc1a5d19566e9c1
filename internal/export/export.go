// Package export saves generated text as a plain-text download.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MimeType is the content type of an exported file.
	MimeType = "text/plain"
	suffix   = "_generated_text.txt"
)

// Filename returns the download name for text generated about topic.
// Characters that would escape the target directory become underscores.
func Filename(topic string) string {
	name := strings.TrimSpace(topic)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "untitled"
	}
	return name + suffix
}

// Write stores text under dir as Filename(topic) and returns the full path.
// The payload is written byte for byte.
func Write(dir, topic, text string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, Filename(topic))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
