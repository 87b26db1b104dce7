package mock

import "github.com/fwojciec/lawofone"

var _ lawofone.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of lawofone.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*lawofone.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*lawofone.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ lawofone.Converter = (*Converter)(nil)

// Converter is a mock implementation of lawofone.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
