package crawl

import (
	"context"
	"log/slog"

	"github.com/fwojciec/lawofone"
)

var _ lawofone.CorpusCache = NopCache{}

// NopCache is a cache that never holds a corpus. It stands in when the
// data directory cannot be created.
type NopCache struct{}

// Load always returns ENOTFOUND.
func (NopCache) Load(ctx context.Context) (*lawofone.Corpus, error) {
	return nil, lawofone.Errorf(lawofone.ENOTFOUND, "cache disabled")
}

// Save discards corpus.
func (NopCache) Save(ctx context.Context, corpus *lawofone.Corpus) error {
	return nil
}

// Loader returns a usable corpus, preferring the cache and falling back to
// a full build.
type Loader struct {
	Cache   lawofone.CorpusCache
	Builder lawofone.CorpusBuilder
	Logger  *slog.Logger
	Options lawofone.BuildOptions
}

// Load returns the cached corpus unless force is set or the cache is
// absent or invalid, in which case it builds and saves a new one. Save
// failures are logged. Only a failed build is returned as an error.
func (l *Loader) Load(ctx context.Context, force bool) (*lawofone.Corpus, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if !force {
		corpus, err := l.Cache.Load(ctx)
		if err == nil && corpus.Valid() {
			return corpus, nil
		}
		if err != nil && lawofone.ErrorCode(err) != lawofone.ENOTFOUND {
			logger.Warn("cache unusable, rebuilding", "error", err)
		}
	}

	corpus, err := l.Builder.Build(ctx, l.Options)
	if err != nil {
		return nil, err
	}

	if !corpus.Valid() {
		stats := corpus.Stats()
		logger.Warn("built corpus incomplete, not cached",
			"sessions", stats.Sessions,
			"categories", stats.Categories,
		)
		return corpus, nil
	}

	if err := l.Cache.Save(ctx, corpus); err != nil {
		logger.Error("cache save failed", "error", err)
	}
	return corpus, nil
}
