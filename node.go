package adscan

import (
	"context"
	"net/url"
)

// Node is a read-only view of a node in a rendered document.
// Implementations bind it to a concrete DOM (goquery/, rod/) or to a
// synthetic tree in tests.
type Node interface {
	// TagName returns the upper-case tag name, or "" for non-element nodes.
	TagName() string

	// IsElement reports whether the node is an element node.
	IsElement() bool

	// Attr returns the value of an attribute and whether it is present.
	Attr(name string) (string, bool)

	// Parent returns the parent node, or nil above the root.
	Parent() Node
}

// Element is a node whose descendant images can be enumerated.
type Element interface {
	Node

	// Images returns the descendant img elements in document order.
	Images() []Image
}

// Image is an img element.
type Image interface {
	Element

	// Src returns the image source, or "" when it has none.
	Src() string

	// Complete reports whether the image has finished loading.
	Complete() bool

	// NaturalSize returns the intrinsic dimensions, or zeros when unknown.
	NaturalSize() (width, height int)

	// OnLoad registers fn to run once the image finishes loading.
	OnLoad(fn func()) Subscription
}

// Frame is an iframe element hosting a nested document.
type Frame interface {
	Element

	// OnLoad registers fn to run once the nested document finishes loading.
	OnLoad(fn func()) Subscription

	// ContentDocument returns the nested document.
	// Returns EFORBIDDEN when the document is cross-origin.
	ContentDocument() (Document, error)
}

// Document is the root element of a rendered page or frame.
type Document interface {
	Element

	// Context returns the location of the document.
	Context() PageContext

	// Title returns the document title.
	Title() string

	// Close releases resources held by the document.
	Close() error
}

// PageContext describes where a document lives.
type PageContext struct {
	URL      string
	Protocol string // e.g. "https:"
	Domain   string // hostname
	Referrer string
	Framed   bool // document is nested inside another browsing context
}

// NewPageContext derives a PageContext from a page URL.
func NewPageContext(rawURL string) (PageContext, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PageContext{}, Errorf(EINVALID, "invalid page URL: %v", err)
	}
	pc := PageContext{URL: rawURL, Domain: u.Hostname()}
	if u.Scheme != "" {
		pc.Protocol = u.Scheme + ":"
	}
	return pc, nil
}

// Preferences are the flags consulted when logging detector activity.
type Preferences struct {
	// LogEvents enables diagnostic logging of every candidate.
	LogEvents bool

	// Production suppresses the developer echo of each parsed ad.
	Production bool
}

// PreferenceSource provides the current Preferences.
type PreferenceSource interface {
	Preferences() Preferences
}

// StaticPreferences is a PreferenceSource that never changes.
type StaticPreferences Preferences

// Preferences returns p.
func (p StaticPreferences) Preferences() Preferences {
	return Preferences(p)
}

// TextAdParser detects non-image advertisements under an element.
type TextAdParser interface {
	Process(ctx context.Context, elem Element)
}

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch returns the HTML served at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources.
	Close() error
}

// DocumentLoader opens a page as a Document ready for detection.
type DocumentLoader interface {
	// Load returns the document at url. Callers must Close it.
	Load(ctx context.Context, url string) (Document, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed.
	// Returns an error if ctx is done first.
	Wait(ctx context.Context, domain string) error
}
