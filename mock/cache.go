package mock

import (
	"context"

	"github.com/fwojciec/lawofone"
)

var _ lawofone.CorpusCache = (*CorpusCache)(nil)

// CorpusCache is a mock implementation of lawofone.CorpusCache.
type CorpusCache struct {
	LoadFn func(ctx context.Context) (*lawofone.Corpus, error)
	SaveFn func(ctx context.Context, corpus *lawofone.Corpus) error
}

func (c *CorpusCache) Load(ctx context.Context) (*lawofone.Corpus, error) {
	return c.LoadFn(ctx)
}

func (c *CorpusCache) Save(ctx context.Context, corpus *lawofone.Corpus) error {
	return c.SaveFn(ctx, corpus)
}

var _ lawofone.CorpusBuilder = (*CorpusBuilder)(nil)

// CorpusBuilder is a mock implementation of lawofone.CorpusBuilder.
type CorpusBuilder struct {
	BuildFn func(ctx context.Context, opts lawofone.BuildOptions) (*lawofone.Corpus, error)
}

func (b *CorpusBuilder) Build(ctx context.Context, opts lawofone.BuildOptions) (*lawofone.Corpus, error) {
	return b.BuildFn(ctx, opts)
}
