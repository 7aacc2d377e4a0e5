package mock

import (
	"context"

	"github.com/fwojciec/adscan"
)

var _ adscan.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of adscan.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ adscan.DocumentLoader = (*DocumentLoader)(nil)

// DocumentLoader is a mock implementation of adscan.DocumentLoader.
type DocumentLoader struct {
	LoadFn func(ctx context.Context, url string) (adscan.Document, error)
}

func (l *DocumentLoader) Load(ctx context.Context, url string) (adscan.Document, error) {
	return l.LoadFn(ctx, url)
}
