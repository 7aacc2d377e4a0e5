// Package rod binds the adscan node model to live pages rendered in a
// headless browser. Element properties are read from the browser on each
// call, so the view always reflects the current DOM.
package rod

import (
	"net/url"
	"strings"

	"github.com/fwojciec/adscan"
	"github.com/go-rod/rod"
)

var (
	_ adscan.Document = (*Document)(nil)
	_ adscan.Element  = (*Element)(nil)
	_ adscan.Image    = (*Image)(nil)
	_ adscan.Frame    = (*Frame)(nil)
)

// Document is a live page or frame document.
type Document struct {
	Element

	page   *rod.Page
	pc     adscan.PageContext
	framed bool
}

// NewDocument binds a loaded page located at pc.
func NewDocument(page *rod.Page, pc adscan.PageContext) (*Document, error) {
	root, err := page.ElementByJS(rod.Eval(`() => document.documentElement`))
	if err != nil {
		return nil, err
	}
	d := &Document{page: page, pc: pc, framed: pc.Framed}
	d.Element = Element{doc: d, el: root}
	return d, nil
}

// Context returns the location of the document.
func (d *Document) Context() adscan.PageContext {
	return d.pc
}

// Title returns document.title.
func (d *Document) Title() string {
	res, err := d.page.Eval(`() => document.title`)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(res.Value.Str())
}

// Find returns the elements matching a CSS selector, bound to their kind.
func (d *Document) Find(selector string) []adscan.Element {
	els, err := d.page.Elements(selector)
	if err != nil {
		return nil
	}
	elems := make([]adscan.Element, 0, len(els))
	for _, el := range els {
		elems = append(elems, d.wrap(el))
	}
	return elems
}

// Close closes the tab of a top-level document. Frame documents belong to
// their parent page and are left open.
func (d *Document) Close() error {
	if d.framed {
		return nil
	}
	return d.page.Close()
}

func (d *Document) wrap(el *rod.Element) adscan.Element {
	e := Element{doc: d, el: el}
	switch e.TagName() {
	case "IMG":
		return &Image{Element: e}
	case "IFRAME":
		return &Frame{Element: e}
	default:
		return &e
	}
}

// Element is a live DOM node.
type Element struct {
	doc *Document
	el  *rod.Element
}

// TagName returns the upper-case tag name, or "" for non-element nodes.
func (e *Element) TagName() string {
	if !e.IsElement() {
		return ""
	}
	v, err := e.el.Property("tagName")
	if err != nil {
		return ""
	}
	return strings.ToUpper(v.Str())
}

// IsElement reports whether the node is an element node.
func (e *Element) IsElement() bool {
	v, err := e.el.Property("nodeType")
	return err == nil && v.Int() == 1
}

// Attr returns the value of an attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

// Parent returns the parent element, or nil above the root element.
func (e *Element) Parent() adscan.Node {
	p, err := e.el.Parent()
	if err != nil || p == nil {
		return nil
	}
	return e.doc.wrap(p)
}

// Images returns the descendant img elements in document order.
func (e *Element) Images() []adscan.Image {
	els, err := e.el.Elements("img")
	if err != nil {
		return nil
	}
	imgs := make([]adscan.Image, 0, len(els))
	for _, el := range els {
		imgs = append(imgs, &Image{Element: Element{doc: e.doc, el: el}})
	}
	return imgs
}

// Image is a live img element.
type Image struct {
	Element
}

// Src returns the resolved image source.
func (i *Image) Src() string {
	v, err := i.el.Property("currentSrc")
	if err == nil && v.Str() != "" {
		return v.Str()
	}
	src, _ := i.Attr("src")
	return strings.TrimSpace(src)
}

// Complete reports HTMLImageElement.complete.
func (i *Image) Complete() bool {
	v, err := i.el.Property("complete")
	return err == nil && v.Bool()
}

// NaturalSize returns the intrinsic dimensions of the loaded image.
func (i *Image) NaturalSize() (int, int) {
	w, err := i.el.Property("naturalWidth")
	if err != nil {
		return 0, 0
	}
	h, err := i.el.Property("naturalHeight")
	if err != nil {
		return 0, 0
	}
	return w.Int(), h.Int()
}

// OnLoad runs fn once the image finishes loading. fn never runs when
// loading fails or the page context ends first.
func (i *Image) OnLoad(fn func()) adscan.Subscription {
	var sig adscan.Signal
	sub := sig.Subscribe(fn)
	go func() {
		if err := i.el.WaitLoad(); err == nil {
			sig.Fire()
		}
	}()
	return sub
}

// Frame is a live iframe element.
type Frame struct {
	Element
}

// OnLoad runs fn once the nested document has loaded or failed to.
func (f *Frame) OnLoad(fn func()) adscan.Subscription {
	var sig adscan.Signal
	sub := sig.Subscribe(fn)
	go func() {
		defer sig.Fire()
		if fp, err := f.el.Frame(); err == nil {
			_ = fp.WaitLoad()
		}
	}()
	return sub
}

// ContentDocument returns the nested document.
// Returns EFORBIDDEN when it is not same-origin with the parent page.
func (f *Frame) ContentDocument() (adscan.Document, error) {
	parent := f.doc.pc

	fp, err := f.el.Frame()
	if err != nil {
		return nil, adscan.Errorf(adscan.EFORBIDDEN, "frame not accessible: %v", err)
	}
	res, err := fp.Eval(`() => location.href`)
	if err != nil {
		return nil, adscan.Errorf(adscan.EFORBIDDEN, "frame not accessible: %v", err)
	}

	href := res.Value.Str()
	u, err := url.Parse(href)
	if err != nil {
		return nil, adscan.Errorf(adscan.EFORBIDDEN, "frame location %q: %v", href, err)
	}

	nested := adscan.PageContext{
		URL:      href,
		Protocol: parent.Protocol,
		Domain:   parent.Domain,
		Referrer: parent.URL,
		Framed:   true,
	}
	if u.Scheme != "about" {
		if u.Hostname() != parent.Domain {
			return nil, adscan.Errorf(adscan.EFORBIDDEN, "cross-origin frame %q", href)
		}
		nested.Protocol = u.Scheme + ":"
	}
	return NewDocument(fp, nested)
}
