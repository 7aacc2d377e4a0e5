package adscan

import (
	"net/url"
	"regexp"
	"strings"
)

// NormalizeURL resolves a protocol-relative, root-relative or relative URL
// against proto (e.g. "https:") and host. Empty input and input already
// starting with "http" are returned unchanged.
func NormalizeURL(proto, host, rawURL string) string {
	if rawURL == "" || strings.HasPrefix(rawURL, "http") {
		return rawURL
	}
	if strings.HasPrefix(rawURL, "//") {
		return proto + rawURL
	}
	if !strings.HasPrefix(rawURL, "/") {
		rawURL = "/" + rawURL
	}
	return proto + "//" + host + rawURL
}

var originPattern = regexp.MustCompile(`https?://[^?/]+`)

// ParseDomain returns the hostname of the first scheme://host segment found
// in the decoded URL, or of the last one when useLast is set. Redirect and
// tracking URLs often embed further URLs, hence the choice.
// Returns "" when no segment is found.
func ParseDomain(rawURL string, useLast bool) string {
	decoded, err := url.PathUnescape(rawURL)
	if err != nil {
		decoded = rawURL
	}

	origins := originPattern.FindAllString(decoded, -1)
	if len(origins) == 0 {
		return ""
	}

	origin := origins[0]
	if useLast {
		origin = origins[len(origins)-1]
	}

	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
