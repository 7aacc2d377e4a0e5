// Package slog provides logging decorators for adscan services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/adscan"
)

var _ adscan.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with request logging.
type LoggingFetcher struct {
	next   adscan.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next adscan.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(html),
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

var _ adscan.DocumentLoader = (*LoggingLoader)(nil)

// LoggingLoader wraps a DocumentLoader with page load logging.
type LoggingLoader struct {
	next   adscan.DocumentLoader
	logger *slog.Logger
}

// NewLoggingLoader creates a new LoggingLoader.
func NewLoggingLoader(next adscan.DocumentLoader, logger *slog.Logger) *LoggingLoader {
	return &LoggingLoader{next: next, logger: logger}
}

// Load logs the page load and its image count.
func (l *LoggingLoader) Load(ctx context.Context, url string) (doc adscan.Document, err error) {
	defer func(begin time.Time) {
		images := 0
		if doc != nil {
			images = len(doc.Images())
		}
		l.logger.Info("load",
			"url", url,
			"images", images,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.Load(ctx, url)
}

var _ adscan.Notifier = (*LoggingNotifier)(nil)

// LoggingNotifier wraps a Notifier with message logging.
type LoggingNotifier struct {
	next   adscan.Notifier
	logger *slog.Logger
}

// NewLoggingNotifier creates a new LoggingNotifier.
func NewLoggingNotifier(next adscan.Notifier, logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{next: next, logger: logger}
}

// Notify logs the message and delegates to the wrapped notifier.
func (n *LoggingNotifier) Notify(ctx context.Context, msg *adscan.Message) (err error) {
	defer func(begin time.Time) {
		attrs := []any{"what", msg.What}
		if msg.Ad != nil {
			attrs = append(attrs, "target", msg.Ad.TargetURL, "type", string(msg.Ad.ContentType))
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		n.logger.Info("notify", attrs...)
	}(time.Now())
	return n.next.Notify(ctx, msg)
}

var _ adscan.AdService = (*LoggingAdService)(nil)

// LoggingAdService wraps an AdService with operation logging.
type LoggingAdService struct {
	next   adscan.AdService
	logger *slog.Logger
}

// NewLoggingAdService creates a new LoggingAdService.
func NewLoggingAdService(next adscan.AdService, logger *slog.Logger) *LoggingAdService {
	return &LoggingAdService{next: next, logger: logger}
}

// CreateAd logs the stored ad and its assigned ID.
func (s *LoggingAdService) CreateAd(ctx context.Context, ad *adscan.Ad) (err error) {
	defer func(begin time.Time) {
		id := ""
		if ad.ID != nil {
			id = *ad.ID
		}
		s.logger.Info("create ad",
			"id", id,
			"target", ad.TargetURL,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateAd(ctx, ad)
}

// FindAdByID logs the lookup.
func (s *LoggingAdService) FindAdByID(ctx context.Context, id string) (ad *adscan.Ad, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find ad",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindAdByID(ctx, id)
}

// FindAds logs the query and result count.
func (s *LoggingAdService) FindAds(ctx context.Context, filter adscan.AdFilter) (ads []*adscan.Ad, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find ads",
			"count", len(ads),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindAds(ctx, filter)
}

// CountAds logs the count.
func (s *LoggingAdService) CountAds(ctx context.Context, filter adscan.AdFilter) (n int, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("count ads",
			"count", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CountAds(ctx, filter)
}

// DeleteAdsByPage logs the deleted page.
func (s *LoggingAdService) DeleteAdsByPage(ctx context.Context, pageURL string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete ads",
			"page", pageURL,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteAdsByPage(ctx, pageURL)
}
