// Package crawl scans pages for ads. It loads each page, runs the
// detector over it and reports every ad found to a notifier chain.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/detect"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages scanned at once.
const DefaultConcurrency = 4

// DefaultLoadTimeout is how long a scanned page stays open for images and
// frames that are still loading.
const DefaultLoadTimeout = 10 * time.Second

// Scanner scans pages for ads.
type Scanner struct {
	Loader      adscan.DocumentLoader
	Notifier    adscan.Notifier
	Preferences adscan.PreferenceSource
	RateLimiter adscan.DomainLimiter
	Logger      *slog.Logger

	// Ads, when set with Replace, has a page's previous ads removed
	// before the page is rescanned.
	Ads     adscan.AdService
	Replace bool

	Concurrency int
	RetryDelays []time.Duration

	// LoadTimeout bounds the wait for images and frames still loading when
	// a page was scanned. Loads not finished by then are abandoned.
	// Defaults to DefaultLoadTimeout.
	LoadTimeout time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Result holds the outcome of a scan.
type Result struct {
	Pages  int
	Failed int
	Ads    int
}

// ProgressEvent reports progress during a scan.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Ads       int
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting scan progress.
type ProgressFunc func(event ProgressEvent)

type pageResult struct {
	url string
	ads int
	err error
}

// ScanPages scans urls concurrently. Page failures are counted and
// reported through progress; the returned error is only set when ctx ends.
func (s *Scanner) ScanPages(ctx context.Context, urls []string, progress ProgressFunc) (*Result, error) {
	emit := func(e ProgressEvent) {
		if progress != nil {
			progress(e)
		}
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	total := len(urls)
	emit(ProgressEvent{Type: ProgressStarted, Total: total})

	resultCh := make(chan pageResult, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, u := range urls {
			g.Go(func() error {
				resultCh <- s.scanPage(gctx, u)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	var result Result
	var completed atomic.Int64
	for r := range resultCh {
		n := int(completed.Add(1))
		if r.err != nil {
			result.Failed++
			emit(ProgressEvent{Type: ProgressFailed, Completed: n, Total: total, URL: r.url, Error: r.err})
			continue
		}
		result.Pages++
		result.Ads += r.ads
		emit(ProgressEvent{Type: ProgressCompleted, Completed: n, Total: total, URL: r.url, Ads: r.ads})
	}

	emit(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total, Ads: result.Ads})
	return &result, ctx.Err()
}

// ScanPage scans a single page and returns the number of ads reported.
func (s *Scanner) ScanPage(ctx context.Context, rawURL string) (int, error) {
	r := s.scanPage(ctx, rawURL)
	return r.ads, r.err
}

func (s *Scanner) scanPage(ctx context.Context, rawURL string) pageResult {
	result := pageResult{url: rawURL}

	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		result.err = adscan.Errorf(adscan.EINVALID, "invalid page URL %q", rawURL)
		return result
	}

	if s.RateLimiter != nil {
		if err := s.RateLimiter.Wait(ctx, u.Hostname()); err != nil {
			result.err = err
			return result
		}
	}

	delays := s.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	doc, err := WithRetry(ctx, delays, func(ctx context.Context) (adscan.Document, error) {
		return s.Loader.Load(ctx, rawURL)
	}, func(attempt int, err error) {
		s.logger().Warn("retry load", "url", rawURL, "attempt", attempt, "err", err)
	})
	if err != nil {
		result.err = err
		return result
	}
	defer doc.Close()

	page := doc.Context()
	if s.Replace && s.Ads != nil {
		if err := s.Ads.DeleteAdsByPage(ctx, page.URL); err != nil {
			result.err = err
			return result
		}
	}

	registrar := &Registrar{PageURL: page.URL, PageTitle: doc.Title(), Next: s.Notifier}
	checker, err := detect.Install(nil, detect.Host{Injected: true}, func() *detect.Parser {
		p := detect.NewParser(page, registrar, s.Preferences, s.Logger)
		p.Now = s.Now
		return p
	})
	if err != nil {
		result.err = err
		return result
	}

	checker.AdCheck(ctx, doc)
	if f, ok := doc.(finder); ok {
		for _, frame := range f.Find("iframe") {
			checker.AdCheck(ctx, frame)
		}
	}

	loadCtx, cancel := context.WithTimeout(ctx, s.loadTimeout())
	if err := checker.Wait(loadCtx); err != nil {
		s.logger().Info("abandoned pending loads", "url", rawURL, "err", err)
	}
	cancel()

	result.ads = registrar.Count()
	return result
}

// finder is implemented by documents that can select elements by CSS.
type finder interface {
	Find(selector string) []adscan.Element
}

func (s *Scanner) loadTimeout() time.Duration {
	if s.LoadTimeout <= 0 {
		return DefaultLoadTimeout
	}
	return s.LoadTimeout
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
