package adscan

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ContentType describes what kind of content an ad displays.
type ContentType string

// ContentType values.
const (
	ContentTypeImage ContentType = "img"
	ContentTypeText  ContentType = "text"
)

// DefaultTitle is used when the content descriptor carries no title.
const DefaultTitle = "Pending"

// ContentData is the raw descriptor of the advertising content.
// Image ads carry Src and the natural dimensions (-1 when unavailable).
type ContentData struct {
	Src    string `json:"src,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
}

// IsZero reports whether the descriptor carries no content at all.
func (d ContentData) IsZero() bool {
	return d.Src == "" && d.Title == "" && d.Text == ""
}

// Ad represents one detected advertisement.
//
// ID, ResolvedTargetURL, PageURL, PageTitle and Errors are owned by
// downstream collaborators and are nil when the Ad is constructed.
// VisitedTs is 0 before a visit, a negated timestamp after a failed visit
// and a positive timestamp after a successful one.
type Ad struct {
	ID                *string     `json:"id"`
	Attempts          int         `json:"attempts"`
	VisitedTs         int64       `json:"visitedTs"`
	AttemptedTs       int64       `json:"attemptedTs"`
	ContentData       ContentData `json:"contentData"`
	ContentType       ContentType `json:"contentType"`
	Title             string      `json:"title"`
	TargetURL         string      `json:"targetUrl"`
	ResolvedTargetURL *string     `json:"resolvedTargetUrl"`
	FoundTs           int64       `json:"foundTs"`
	PageURL           *string     `json:"pageUrl"`
	PageTitle         *string     `json:"pageTitle"`
	Errors            []string    `json:"errors"`
}

// NewAd returns an Ad for a target URL and content descriptor found at now.
func NewAd(targetURL string, data ContentData, now time.Time) *Ad {
	contentType := ContentTypeText
	if data.Src != "" {
		contentType = ContentTypeImage
	}
	title := data.Title
	if title == "" {
		title = DefaultTitle
	}
	return &Ad{
		ContentData: data,
		ContentType: contentType,
		Title:       title,
		TargetURL:   targetURL,
		FoundTs:     now.UnixMilli(),
	}
}

// Validate returns an error if the ad contains invalid fields.
func (a *Ad) Validate() error {
	if a.TargetURL == "" {
		return Errorf(EINVALID, "ad target URL required")
	}
	if a.ContentData.IsZero() {
		return Errorf(EINVALID, "ad content data required")
	}
	return nil
}

// Key returns a stable identity for the ad derived from its target and content.
// Two sightings of the same creative pointing at the same target share a key.
func (a *Ad) Key() string {
	h := xxhash.New()
	_, _ = h.WriteString(a.TargetURL)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(a.ContentData.Src)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(a.ContentData.Text)
	return hex.EncodeToString(h.Sum(nil))
}

// MessageRegisterAd is the message kind used to report a detected ad.
const MessageRegisterAd = "registerAd"

// Message is the envelope handed to the messaging channel.
type Message struct {
	What string `json:"what"`
	Ad   *Ad    `json:"ad"`
}

// Notifier hands messages to an external messaging channel.
// Delivery and ordering guarantees belong to the implementation; callers
// do not wait for acknowledgment beyond the returned error.
type Notifier interface {
	Notify(ctx context.Context, msg *Message) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, msg *Message) error

// Notify calls f(ctx, msg).
func (f NotifierFunc) Notify(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// AdService represents a service for storing reported ads.
type AdService interface {
	// CreateAd stores a new ad and assigns its ID.
	CreateAd(ctx context.Context, ad *Ad) error

	// FindAdByID retrieves an ad by ID.
	// Returns ENOTFOUND if the ad does not exist.
	FindAdByID(ctx context.Context, id string) (*Ad, error)

	// FindAds retrieves ads matching the filter, most recently found first.
	FindAds(ctx context.Context, filter AdFilter) ([]*Ad, error)

	// CountAds returns the number of ads matching the filter.
	CountAds(ctx context.Context, filter AdFilter) (int, error)

	// DeleteAdsByPage removes all ads found on a page.
	DeleteAdsByPage(ctx context.Context, pageURL string) error
}

// AdFilter represents a filter for FindAds and CountAds.
type AdFilter struct {
	ID        *string `json:"id"`
	PageURL   *string `json:"pageUrl"`
	TargetURL *string `json:"targetUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
