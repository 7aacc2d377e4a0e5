package goquery

import (
	"context"

	"github.com/fwojciec/adscan"
)

var _ adscan.DocumentLoader = (*Loader)(nil)

// Loader opens pages by fetching their HTML and parsing it statically.
// Same-origin frames are fetched with the same Fetcher.
type Loader struct {
	Fetcher adscan.Fetcher
}

// NewLoader creates a Loader backed by f.
func NewLoader(f adscan.Fetcher) *Loader {
	return &Loader{Fetcher: f}
}

// Load fetches and parses the page at url.
func (l *Loader) Load(ctx context.Context, url string) (adscan.Document, error) {
	page, err := adscan.NewPageContext(url)
	if err != nil {
		return nil, err
	}

	html, err := l.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	return NewDocument(html, page, WithContext(ctx), WithFrameFetcher(l.Fetcher))
}
