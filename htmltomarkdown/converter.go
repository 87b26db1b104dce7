// Package htmltomarkdown implements lawofone.Converter with html-to-markdown.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/fwojciec/lawofone"
)

// Ensure Converter implements lawofone.Converter at compile time.
var _ lawofone.Converter = (*Converter)(nil)

// linkRe matches inline markdown links and images.
var linkRe = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv       *converter.Converter
	plainLinks bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithPlainLinks replaces markdown links and images with their text, so
// previews read as prose.
func WithPlainLinks() Option {
	return func(c *Converter) {
		c.plainLinks = true
	}
}

// NewConverter creates a new Converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", lawofone.Errorf(lawofone.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	if c.plainLinks {
		result = linkRe.ReplaceAllString(result, "$1")
	}
	return result, nil
}
