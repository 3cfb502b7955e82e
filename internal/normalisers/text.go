package normalisers

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrNoText is returned when nothing extractable remains after normalisation.
var ErrNoText = errors.New("no text extracted")

// PlaintextNormaliser handles plain text content and serves as the
// universal fallback.
type PlaintextNormaliser struct{}

func (n *PlaintextNormaliser) Normalise(content []byte, mimeType string) (string, error) {
	if !utf8.Valid(content) {
		return "", errors.New("content is not valid UTF-8 text")
	}
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func (n *PlaintextNormaliser) SupportedTypes() []string {
	return []string{"text/plain", "*/*"} // Fallback for any type
}

func (n *PlaintextNormaliser) Priority() int {
	return 1 // Lowest priority - fallback
}

var (
	mdHeadingRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdLinkRe    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdCodeRe    = regexp.MustCompile("(?s)```.*?```")
	mdEmphRe    = regexp.MustCompile(`[*_]{1,3}([^*_]+)[*_]{1,3}`)
)

// MarkdownNormaliser strips Markdown syntax down to readable text so that
// headings and link targets do not pollute the chunk content.
type MarkdownNormaliser struct{}

func (n *MarkdownNormaliser) Normalise(content []byte, mimeType string) (string, error) {
	if !utf8.Valid(content) {
		return "", errors.New("content is not valid UTF-8 text")
	}
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = mdCodeRe.ReplaceAllString(text, "")
	text = mdHeadingRe.ReplaceAllString(text, "")
	text = mdLinkRe.ReplaceAllString(text, "$1")
	text = mdEmphRe.ReplaceAllString(text, "$1")

	// Remove excessive blank lines (more than 2 consecutive)
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func (n *MarkdownNormaliser) SupportedTypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

func (n *MarkdownNormaliser) Priority() int {
	return 50 // Format-specific
}
