package mock

import "github.com/fwojciec/lawofone"

var _ lawofone.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of lawofone.Searcher.
type Searcher struct {
	SearchFn func(query string) []lawofone.Result
}

func (s *Searcher) Search(query string) []lawofone.Result {
	return s.SearchFn(query)
}
