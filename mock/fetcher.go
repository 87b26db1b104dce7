package mock

import (
	"context"

	"github.com/fwojciec/lawofone"
)

var _ lawofone.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of lawofone.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (int, string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (int, string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ lawofone.Throttle = (*Throttle)(nil)

// Throttle is a mock implementation of lawofone.Throttle.
type Throttle struct {
	WaitFn func(ctx context.Context, loop string) error
}

func (t *Throttle) Wait(ctx context.Context, loop string) error {
	return t.WaitFn(ctx, loop)
}
