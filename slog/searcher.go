package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/lawofone"
)

// Ensure LoggingSearcher implements lawofone.Searcher.
var _ lawofone.Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a Searcher with query logging at debug level.
type LoggingSearcher struct {
	next   lawofone.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next lawofone.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// Search delegates to the wrapped searcher and logs the query.
func (s *LoggingSearcher) Search(query string) (results []lawofone.Result) {
	defer func(begin time.Time) {
		top := 0
		if len(results) > 0 {
			top = results[0].Score()
		}
		s.logger.Debug("search",
			"query", query,
			"results", len(results),
			"top_score", top,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.Search(query)
}
