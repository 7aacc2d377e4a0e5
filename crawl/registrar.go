package crawl

import (
	"context"
	"sync/atomic"

	"github.com/fwojciec/adscan"
)

var _ adscan.Notifier = (*Registrar)(nil)

// Registrar receives the ads detected on one page. It stamps each ad with
// the page it was found on and forwards it to Next.
type Registrar struct {
	PageURL   string
	PageTitle string
	Next      adscan.Notifier

	count atomic.Int64
}

// Notify stamps msg's ad and forwards it. Ads already carrying a page keep it.
// Returns EINVALID for messages other than registerAd.
func (r *Registrar) Notify(ctx context.Context, msg *adscan.Message) error {
	if msg.What != adscan.MessageRegisterAd || msg.Ad == nil {
		return adscan.Errorf(adscan.EINVALID, "unexpected message %q", msg.What)
	}

	if msg.Ad.PageURL == nil {
		pageURL := r.PageURL
		msg.Ad.PageURL = &pageURL
	}
	if msg.Ad.PageTitle == nil {
		pageTitle := r.PageTitle
		msg.Ad.PageTitle = &pageTitle
	}
	r.count.Add(1)

	if r.Next == nil {
		return nil
	}
	return r.Next.Notify(ctx, msg)
}

// Count returns the number of ads registered so far.
func (r *Registrar) Count() int {
	return int(r.count.Load())
}

var _ adscan.Notifier = (*Store)(nil)

// Store persists registered ads and forwards them to Next once stored, so
// downstream receivers see the assigned ID.
type Store struct {
	Ads  adscan.AdService
	Next adscan.Notifier
}

// Notify stores msg's ad and forwards msg.
func (s *Store) Notify(ctx context.Context, msg *adscan.Message) error {
	if msg.What == adscan.MessageRegisterAd && msg.Ad != nil {
		if err := s.Ads.CreateAd(ctx, msg.Ad); err != nil {
			return err
		}
	}
	if s.Next == nil {
		return nil
	}
	return s.Next.Notify(ctx, msg)
}
