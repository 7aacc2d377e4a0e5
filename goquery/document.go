// Package goquery binds the adscan node model to static HTML parsed with
// goquery. Static documents are fully loaded once parsed: images report
// Complete and load callbacks run immediately.
package goquery

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/adscan"
	"golang.org/x/net/html"
)

// Compile-time interface verification.
var (
	_ adscan.Document = (*Document)(nil)
	_ adscan.Element  = (*Element)(nil)
	_ adscan.Image    = (*Image)(nil)
	_ adscan.Frame    = (*Frame)(nil)
)

// Document is a parsed HTML page.
type Document struct {
	Element

	page    adscan.PageContext
	ctx     context.Context
	fetcher adscan.Fetcher
}

// Option configures a Document.
type Option func(*Document)

// WithFrameFetcher lets same-origin frames with a src attribute be fetched
// and parsed when their content document is requested.
func WithFrameFetcher(f adscan.Fetcher) Option {
	return func(d *Document) {
		d.fetcher = f
	}
}

// WithContext sets the context used to fetch frame documents.
func WithContext(ctx context.Context) Option {
	return func(d *Document) {
		d.ctx = ctx
	}
}

// NewDocument parses html as the document located at page.
func NewDocument(htmlSrc string, page adscan.PageContext, opts ...Option) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSrc))
	if err != nil {
		return nil, adscan.Errorf(adscan.EINVALID, "failed to parse HTML: %v", err)
	}

	d := &Document{
		page: page,
		ctx:  context.Background(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Element = Element{doc: d, sel: doc.Selection}
	return d, nil
}

// Context returns the location of the document.
func (d *Document) Context() adscan.PageContext {
	return d.page
}

// Title returns the text of the title element.
func (d *Document) Title() string {
	return strings.TrimSpace(d.sel.Find("title").First().Text())
}

// Body returns the body element, or the document itself when there is none.
func (d *Document) Body() adscan.Element {
	body := d.sel.Find("body").First()
	if body.Length() == 0 {
		return d
	}
	return d.wrap(body)
}

// Find returns the elements matching a CSS selector, bound to their kind.
func (d *Document) Find(selector string) []adscan.Element {
	var elems []adscan.Element
	d.sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		elems = append(elems, d.wrap(s))
	})
	return elems
}

// Close is a no-op; parsed documents hold no resources.
func (d *Document) Close() error {
	return nil
}

// wrap binds a single-node selection to the element kind of its tag.
func (d *Document) wrap(sel *goquery.Selection) adscan.Element {
	e := Element{doc: d, sel: sel}
	switch strings.ToLower(goquery.NodeName(sel)) {
	case "img":
		return &Image{Element: e}
	case "iframe":
		return &Frame{Element: e}
	default:
		return &e
	}
}

// Element is a node of a parsed document.
type Element struct {
	doc *Document
	sel *goquery.Selection
}

func (e *Element) node() *html.Node {
	if len(e.sel.Nodes) == 0 {
		return nil
	}
	return e.sel.Nodes[0]
}

// TagName returns the upper-case tag name, or "" for non-element nodes.
func (e *Element) TagName() string {
	if !e.IsElement() {
		return ""
	}
	return strings.ToUpper(e.node().Data)
}

// IsElement reports whether the node is an element node.
func (e *Element) IsElement() bool {
	n := e.node()
	return n != nil && n.Type == html.ElementNode
}

// Attr returns the value of an attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

// Parent returns the parent node, or nil above the document node.
func (e *Element) Parent() adscan.Node {
	n := e.node()
	if n == nil || n.Parent == nil {
		return nil
	}
	if n.Parent.Type == html.DocumentNode {
		return &e.doc.Element
	}
	return e.doc.wrap(e.sel.Parent())
}

// Images returns the descendant img elements in document order.
func (e *Element) Images() []adscan.Image {
	var imgs []adscan.Image
	e.sel.Find("img").Each(func(_ int, s *goquery.Selection) {
		imgs = append(imgs, &Image{Element: Element{doc: e.doc, sel: s}})
	})
	return imgs
}

// Image is an img element of a parsed document.
type Image struct {
	Element
}

// Src returns the src attribute.
func (i *Image) Src() string {
	src, _ := i.sel.Attr("src")
	return strings.TrimSpace(src)
}

// Complete always reports true: a parsed document has nothing left to load.
func (i *Image) Complete() bool {
	return true
}

// NaturalSize returns the declared width and height attributes.
func (i *Image) NaturalSize() (int, int) {
	return i.dimension("width"), i.dimension("height")
}

func (i *Image) dimension(name string) int {
	v, ok := i.sel.Attr(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// OnLoad runs fn immediately.
func (i *Image) OnLoad(fn func()) adscan.Subscription {
	return loaded(fn)
}

// Frame is an iframe element of a parsed document.
type Frame struct {
	Element
}

// OnLoad runs fn immediately.
func (f *Frame) OnLoad(fn func()) adscan.Subscription {
	return loaded(fn)
}

// ContentDocument parses the frame's srcdoc, or fetches its src when it is
// same-origin and the document was given a frame fetcher.
// Returns EFORBIDDEN for cross-origin frames.
func (f *Frame) ContentDocument() (adscan.Document, error) {
	parent := f.doc.page
	nested := adscan.PageContext{
		Protocol: parent.Protocol,
		Domain:   parent.Domain,
		Referrer: parent.URL,
		Framed:   true,
	}

	if srcdoc, ok := f.sel.Attr("srcdoc"); ok {
		nested.URL = "about:srcdoc"
		return NewDocument(srcdoc, nested, WithContext(f.doc.ctx), WithFrameFetcher(f.doc.fetcher))
	}

	src, ok := f.sel.Attr("src")
	if !ok || src == "" {
		return nil, adscan.Errorf(adscan.ENOTFOUND, "frame has no document")
	}

	target, err := resolve(parent.URL, src)
	if err != nil {
		return nil, err
	}
	if target.Hostname() != parent.Domain {
		return nil, adscan.Errorf(adscan.EFORBIDDEN, "cross-origin frame %q", target.String())
	}
	if f.doc.fetcher == nil {
		return nil, adscan.Errorf(adscan.EFORBIDDEN, "frame %q not loaded", target.String())
	}

	htmlSrc, err := f.doc.fetcher.Fetch(f.doc.ctx, target.String())
	if err != nil {
		return nil, err
	}
	nested.URL = target.String()
	return NewDocument(htmlSrc, nested, WithContext(f.doc.ctx), WithFrameFetcher(f.doc.fetcher))
}

func resolve(base, ref string) (*url.URL, error) {
	b, err := url.Parse(base)
	if err != nil {
		return nil, adscan.Errorf(adscan.EINVALID, "invalid page URL: %v", err)
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, adscan.Errorf(adscan.EINVALID, "invalid frame URL: %v", err)
	}
	return b.ResolveReference(r), nil
}

func loaded(fn func()) adscan.Subscription {
	var sig adscan.Signal
	sig.Fire()
	return sig.Subscribe(fn)
}
