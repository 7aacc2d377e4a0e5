package adscan

// ClickableParent walks from node up through its ancestors and returns the
// first element that is an anchor or carries an inline onclick handler.
// The walk stops at the first non-element ancestor. Returns nil when no
// clickable ancestor exists.
func ClickableParent(node Node) Node {
	for n := node; n != nil && n.IsElement(); n = n.Parent() {
		if n.TagName() == "A" {
			return n
		}
		if _, ok := n.Attr("onclick"); ok {
			return n
		}
	}
	return nil
}

// ResolveTarget returns the click-through URL of a clickable element: its
// href when present, otherwise the destination parsed from its onclick
// handler and normalized against pc. Returns false when neither yields a
// target.
func ResolveTarget(clickable Node, pc PageContext) (string, bool) {
	if href, ok := clickable.Attr("href"); ok {
		return href, href != ""
	}

	handler, ok := clickable.Attr("onclick")
	if !ok || handler == "" {
		return "", false
	}
	return ParseOnClick(handler, pc.Domain, pc.Protocol)
}
