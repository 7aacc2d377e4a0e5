package adscan

import (
	"strings"
	"time"
)

// Builder assembles Ad records for candidates found in one document.
type Builder struct {
	// Page is the document the candidates were found in.
	Page PageContext

	// Ignore suppresses known non-advertising targets.
	Ignore IgnoreList

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Domain returns the effective origin domain. A framed document reports
// the first origin in its referrer, or its own domain when the referrer
// names none.
func (b *Builder) Domain() string {
	if b.Page.Framed {
		if d := ParseDomain(b.Page.Referrer, false); d != "" {
			return d
		}
	}
	return b.Page.Domain
}

// CreateAd normalizes target and returns a new Ad for it and data.
// network names the domain the candidate was found on and is only used
// in error messages.
//
// Returns EINVALID when the normalized target carries no http scheme
// marker and EIGNORED when the target is in the ignore list.
func (b *Builder) CreateAd(network, target string, data ContentData) (*Ad, error) {
	proto := b.Page.Protocol
	if proto == "" {
		proto = "http:"
	}

	target = NormalizeURL(proto, b.Domain(), target)

	if !strings.Contains(target, "http") {
		return nil, Errorf(EINVALID, "ignoring ad on %s with targetUrl=%q", network, target)
	}

	if b.Ignore.Match(target) {
		return nil, Errorf(EIGNORED, "ignoring ad-info target %q", target)
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	ad := NewAd(target, data, now())
	if err := ad.Validate(); err != nil {
		return nil, err
	}
	return ad, nil
}
