package lawofone

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Preview limits applied to linked article pages.
const (
	PreviewParagraphs = 3
	PreviewMaxChars   = 500
	PreviewEllipsis   = "..."
)

// ExtractResult is the main content of a linked page.
type ExtractResult struct {
	Title string

	// ContentHTML has navigation, footers and sidebars removed.
	ContentHTML string
}

// Extractor isolates the main content of a fetched page. It is the first
// step of building a link preview.
type Extractor interface {
	// Extract returns EINVALID when html holds no usable content.
	Extract(html string) (*ExtractResult, error)
}

// Converter renders extracted HTML as markdown for Preview.
type Converter interface {
	Convert(html string) (string, error)
}

var codeBlockRe = regexp.MustCompile("(?s)```.*?```")

// Preview returns the first n prose paragraphs of markdown joined by a
// space, truncated to maxChars characters with PreviewEllipsis appended
// when cut. Headings, empty blocks and fenced code are skipped.
func Preview(markdown string, n, maxChars int) string {
	if markdown == "" || n <= 0 {
		return ""
	}

	cleaned := codeBlockRe.ReplaceAllString(strings.ReplaceAll(markdown, "\r\n", "\n"), "")

	var paragraphs []string
	for _, block := range strings.Split(cleaned, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.HasPrefix(block, "#") {
			continue
		}
		paragraphs = append(paragraphs, strings.Join(strings.Fields(block), " "))
		if len(paragraphs) == n {
			break
		}
	}

	return Truncate(strings.Join(paragraphs, " "), maxChars)
}

// Truncate cuts s to at most maxChars characters, appending
// PreviewEllipsis when anything was removed. A non-positive maxChars
// leaves s unchanged.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxChars])) + PreviewEllipsis
}
