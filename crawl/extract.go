package crawl

import (
	"strings"

	"github.com/fwojciec/lawofone"
)

var _ lawofone.Extractor = ChainExtractor(nil)

// ChainExtractor tries each extractor in order and returns the first
// result with non-empty content.
type ChainExtractor []lawofone.Extractor

// Extract implements lawofone.Extractor. When every extractor fails the
// last error is returned; when none produce content the error is EINVALID.
func (c ChainExtractor) Extract(html string) (*lawofone.ExtractResult, error) {
	var lastErr error
	for _, e := range c {
		result, err := e.Extract(html)
		if err != nil {
			lastErr = err
			continue
		}
		if result != nil && strings.TrimSpace(result.ContentHTML) != "" {
			return result, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, lawofone.Errorf(lawofone.EINVALID, "no extractable content")
}
