package adscan

import "regexp"

// IgnoreTarget matches a click-through URL that is known not to be an ad,
// either exactly or by pattern.
type IgnoreTarget struct {
	Exact   string
	Pattern *regexp.Regexp
}

// Match reports whether target is matched by the entry.
func (t IgnoreTarget) Match(target string) bool {
	if t.Pattern != nil {
		return t.Pattern.MatchString(target)
	}
	return t.Exact != "" && t.Exact == target
}

// IgnoreList is a fixed set of ignorable targets.
type IgnoreList []IgnoreTarget

// DefaultIgnoreList returns the ad-choice and opt-out targets of the large
// ad networks. Their tiny "why this ad" badges sit inside ad markup and
// would otherwise be reported as ads.
func DefaultIgnoreList() IgnoreList {
	return IgnoreList{
		{Pattern: regexp.MustCompile(`^https://www\.google\.com/ads/preferences/whythisad/.*`)},
		{Exact: "http://www.google.com/settings/ads/anonymous"},
		{Exact: "http://choice.microsoft.com"},
	}
}

// Match reports whether any entry matches target.
func (l IgnoreList) Match(target string) bool {
	for _, t := range l {
		if t.Match(target) {
			return true
		}
	}
	return false
}
