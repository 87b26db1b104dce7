// Package slog provides logging decorators for lawofone services.
package slog

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/lawofone"
)

// Ensure LoggingFetcher implements lawofone.Fetcher.
var _ lawofone.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with request logging.
type LoggingFetcher struct {
	next   lawofone.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next lawofone.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the request. Successful
// requests log at debug level, everything else at info.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (status int, body string, err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		if err != nil || status != http.StatusOK {
			level = slog.LevelInfo
		}
		f.logger.Log(ctx, level, "fetch",
			"url", url,
			"status", status,
			"bytes", len(body),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
