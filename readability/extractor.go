// Package readability implements lawofone.Extractor with go-readability.
// It is the fallback when trafilatura finds no main content.
package readability

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/lawofone"
	"github.com/go-shiori/go-readability"
)

var _ lawofone.Extractor = (*Extractor)(nil)

// DefaultMinTextLength is the shortest article text accepted, in runes.
// Shorter results are usually navigation stubs.
const DefaultMinTextLength = 40

// Extractor pulls the readable article out of a page.
type Extractor struct {
	// MinTextLength rejects articles whose text is shorter, in runes.
	MinTextLength int

	// BaseURL resolves relative links inside the extracted content.
	BaseURL *url.URL
}

// NewExtractor returns an Extractor with DefaultMinTextLength.
func NewExtractor() *Extractor {
	return &Extractor{MinTextLength: DefaultMinTextLength}
}

// Extract returns the article content of rawHTML. Empty input, a parse
// failure or text shorter than MinTextLength return EINVALID so a chained
// extractor can try the next one.
func (e *Extractor) Extract(rawHTML string) (*lawofone.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, lawofone.Errorf(lawofone.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), e.BaseURL)
	if err != nil {
		return nil, lawofone.Errorf(lawofone.EINVALID, "readability: %v", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" || utf8.RuneCountInString(text) < e.MinTextLength {
		return nil, lawofone.Errorf(lawofone.EINVALID, "article text too short (%d runes)", utf8.RuneCountInString(text))
	}

	return &lawofone.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
