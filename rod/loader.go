package rod

import (
	"context"
	"time"

	"github.com/fwojciec/adscan"
)

var _ adscan.DocumentLoader = (*Loader)(nil)

// Loader opens pages in a managed browser tab and waits for them to load.
type Loader struct {
	manager *BrowserManager

	// Settle is an extra delay after the load event that lets ad slots
	// fill before the document is scanned.
	Settle time.Duration
}

// NewLoader creates a Loader that opens tabs in bm.
func NewLoader(bm *BrowserManager, settle time.Duration) *Loader {
	return &Loader{manager: bm, Settle: settle}
}

// Load navigates a new tab to url. The returned Document owns the tab;
// its browser calls are bound to ctx.
func (l *Loader) Load(ctx context.Context, url string) (adscan.Document, error) {
	pc, err := adscan.NewPageContext(url)
	if err != nil {
		return nil, err
	}

	page, err := l.manager.Page(ctx)
	if err != nil {
		return nil, err
	}

	if err := page.Navigate(url); err != nil {
		_ = page.Close()
		return nil, err
	}
	if err := page.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, err
	}

	if l.Settle > 0 {
		select {
		case <-ctx.Done():
			_ = page.Close()
			return nil, ctx.Err()
		case <-time.After(l.Settle):
		}
	}

	// Redirects move the page; scan it where it landed.
	if info, err := page.Info(); err == nil && info.URL != "" && info.URL != url {
		if landed, err := adscan.NewPageContext(info.URL); err == nil {
			pc = landed
		}
	}

	doc, err := NewDocument(page, pc)
	if err != nil {
		_ = page.Close()
		return nil, err
	}
	return doc, nil
}
