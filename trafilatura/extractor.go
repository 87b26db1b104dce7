// Package trafilatura implements lawofone.Extractor with go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/lawofone"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements lawofone.Extractor at compile time.
var _ lawofone.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract the article body of a linked
// page. Comments and tables are dropped since only the opening paragraphs
// feed a preview.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{opts: trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   true,
	}}
}

// Extract processes raw HTML and returns the main content.
// Returns EINVALID for empty input or a page without extractable text.
func (e *Extractor) Extract(rawHTML string) (*lawofone.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, lawofone.Errorf(lawofone.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, lawofone.Errorf(lawofone.EINVALID, "extract: %v", err)
	}
	if result.ContentNode == nil {
		return nil, lawofone.Errorf(lawofone.EINVALID, "no main content")
	}

	contentHTML, err := renderNode(result.ContentNode)
	if err != nil {
		return nil, err
	}

	return &lawofone.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
