package adscan

import "regexp"

var (
	// windowOpenPattern captures the first argument of a window.open call.
	windowOpenPattern = regexp.MustCompile(`(?i)(?:javascript)?window.open\(([^,]+)[,)]`)

	// genericURLPattern matches scheme://host/path, www.host/path and
	// user@host forms anywhere in the handler source.
	genericURLPattern = regexp.MustCompile(`(?i)((([A-Za-z]{3,9}:(?://)?)(?:[-;:&=+$,\w]+@)?[A-Za-z0-9.-]+|(?:www.|[-;:&=+$,\w]+@)[A-Za-z0-9.-]+)((?:/[+~%/.\w_-]*)?\??(?:[-+=&;%@.\w_]*)#?(?:\w*))?)`)

	quotePattern = regexp.MustCompile(`('|"|&quot;)+`)
)

// ExtractHandlerURL extracts a destination URL literal from inline click
// handler source. A window.open call takes precedence; otherwise the first
// URL-shaped substring is used. Quote characters are stripped from the result.
// Returns false when nothing URL-like is found.
func ExtractHandlerURL(handler string) (string, bool) {
	m := windowOpenPattern.FindStringSubmatch(handler)
	if m == nil {
		m = genericURLPattern.FindStringSubmatch(handler)
	}
	if m == nil {
		return "", false
	}

	literal := quotePattern.ReplaceAllString(m[1], "")
	if literal == "" {
		return "", false
	}
	return literal, true
}

// ParseOnClick extracts the destination of an inline click handler and
// normalizes it against host and proto.
func ParseOnClick(handler, host, proto string) (string, bool) {
	literal, ok := ExtractHandlerURL(handler)
	if !ok {
		return "", false
	}
	return NormalizeURL(proto, host, literal), true
}
