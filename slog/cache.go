package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/lawofone"
)

// Ensure LoggingCache implements lawofone.CorpusCache.
var _ lawofone.CorpusCache = (*LoggingCache)(nil)

// LoggingCache wraps a CorpusCache with logging of loads and saves.
type LoggingCache struct {
	next   lawofone.CorpusCache
	logger *slog.Logger
}

// NewLoggingCache creates a new LoggingCache.
func NewLoggingCache(next lawofone.CorpusCache, logger *slog.Logger) *LoggingCache {
	return &LoggingCache{next: next, logger: logger}
}

// Load delegates to the wrapped cache and logs the outcome.
func (c *LoggingCache) Load(ctx context.Context) (corpus *lawofone.Corpus, err error) {
	defer func(begin time.Time) {
		stats := corpus.Stats()
		c.logger.Info("cache load",
			"sessions", stats.Sessions,
			"categories", stats.Categories,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Load(ctx)
}

// Save delegates to the wrapped cache and logs the outcome.
func (c *LoggingCache) Save(ctx context.Context, corpus *lawofone.Corpus) (err error) {
	defer func(begin time.Time) {
		stats := corpus.Stats()
		c.logger.Info("cache save",
			"sessions", stats.Sessions,
			"categories", stats.Categories,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Save(ctx, corpus)
}
