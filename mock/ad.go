package mock

import (
	"context"

	"github.com/fwojciec/adscan"
)

var _ adscan.AdService = (*AdService)(nil)

// AdService is a mock implementation of adscan.AdService.
type AdService struct {
	CreateAdFn        func(ctx context.Context, ad *adscan.Ad) error
	FindAdByIDFn      func(ctx context.Context, id string) (*adscan.Ad, error)
	FindAdsFn         func(ctx context.Context, filter adscan.AdFilter) ([]*adscan.Ad, error)
	CountAdsFn        func(ctx context.Context, filter adscan.AdFilter) (int, error)
	DeleteAdsByPageFn func(ctx context.Context, pageURL string) error
}

func (s *AdService) CreateAd(ctx context.Context, ad *adscan.Ad) error {
	return s.CreateAdFn(ctx, ad)
}

func (s *AdService) FindAdByID(ctx context.Context, id string) (*adscan.Ad, error) {
	return s.FindAdByIDFn(ctx, id)
}

func (s *AdService) FindAds(ctx context.Context, filter adscan.AdFilter) ([]*adscan.Ad, error) {
	return s.FindAdsFn(ctx, filter)
}

func (s *AdService) CountAds(ctx context.Context, filter adscan.AdFilter) (int, error) {
	return s.CountAdsFn(ctx, filter)
}

func (s *AdService) DeleteAdsByPage(ctx context.Context, pageURL string) error {
	return s.DeleteAdsByPageFn(ctx, pageURL)
}

var _ adscan.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of adscan.Notifier.
type Notifier struct {
	NotifyFn func(ctx context.Context, msg *adscan.Message) error
}

func (n *Notifier) Notify(ctx context.Context, msg *adscan.Message) error {
	return n.NotifyFn(ctx, msg)
}

var _ adscan.TextAdParser = (*TextAdParser)(nil)

// TextAdParser is a mock implementation of adscan.TextAdParser.
type TextAdParser struct {
	ProcessFn func(ctx context.Context, elem adscan.Element)
}

func (p *TextAdParser) Process(ctx context.Context, elem adscan.Element) {
	p.ProcessFn(ctx, elem)
}

var _ adscan.PreferenceSource = (*PreferenceSource)(nil)

// PreferenceSource is a mock implementation of adscan.PreferenceSource.
type PreferenceSource struct {
	PreferencesFn func() adscan.Preferences
}

func (s *PreferenceSource) Preferences() adscan.Preferences {
	return s.PreferencesFn()
}
