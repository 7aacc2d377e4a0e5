package bloom

import (
	"context"

	"github.com/fwojciec/adscan"
)

var _ adscan.Notifier = (*DedupNotifier)(nil)

// KeyFunc derives the dedup key of a message.
type KeyFunc func(msg *adscan.Message) string

// AdKey keys a message by the ad's content identity, so the same creative
// and target seen on many pages is forwarded once.
func AdKey(msg *adscan.Message) string {
	return msg.Ad.Key()
}

// PageAdKey keys a message by page and ad identity, so each page reports
// each ad once.
func PageAdKey(msg *adscan.Message) string {
	page := ""
	if msg.Ad.PageURL != nil {
		page = *msg.Ad.PageURL
	}
	return page + "\x00" + msg.Ad.Key()
}

// DedupNotifier forwards registerAd messages whose key has not been seen.
// A false positive drops a new ad; size the filter for the expected volume.
type DedupNotifier struct {
	next   adscan.Notifier
	filter *Filter
	key    KeyFunc
}

// NewDedupNotifier wraps next. A nil key defaults to AdKey.
func NewDedupNotifier(next adscan.Notifier, filter *Filter, key KeyFunc) *DedupNotifier {
	if key == nil {
		key = AdKey
	}
	return &DedupNotifier{next: next, filter: filter, key: key}
}

// Notify forwards msg unless an equal ad was already forwarded. Other
// message kinds always pass through.
func (n *DedupNotifier) Notify(ctx context.Context, msg *adscan.Message) error {
	if msg.What != adscan.MessageRegisterAd || msg.Ad == nil {
		return n.next.Notify(ctx, msg)
	}
	if n.filter.TestAndAdd(n.key(msg)) {
		return nil
	}
	return n.next.Notify(ctx, msg)
}
