package mock

import (
	"strings"

	"github.com/fwojciec/adscan"
)

var (
	_ adscan.Element  = (*Node)(nil)
	_ adscan.Image    = (*Image)(nil)
	_ adscan.Frame    = (*Frame)(nil)
	_ adscan.Document = (*Document)(nil)
)

// Node is a synthetic element for building test trees.
// A Node with an empty Tag behaves as a non-element node (a document root).
type Node struct {
	Tag      string
	Attrs    map[string]string
	ParentN  *Node
	Children []adscan.Element
}

// NewNode returns an element node with the given tag and attributes.
func NewNode(tag string, attrs map[string]string) *Node {
	return &Node{Tag: strings.ToUpper(tag), Attrs: attrs}
}

// Append adds children to n and sets their parent. It returns n.
func (n *Node) Append(children ...adscan.Element) *Node {
	for _, c := range children {
		switch c := c.(type) {
		case *Node:
			c.ParentN = n
		case *Image:
			c.ParentN = n
		case *Frame:
			c.ParentN = n
		case *Document:
			c.ParentN = n
		}
		n.Children = append(n.Children, c)
	}
	return n
}

func (n *Node) TagName() string {
	return n.Tag
}

func (n *Node) IsElement() bool {
	return n.Tag != ""
}

func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

func (n *Node) Parent() adscan.Node {
	if n.ParentN == nil {
		return nil
	}
	return n.ParentN
}

func (n *Node) Images() []adscan.Image {
	var imgs []adscan.Image
	for _, c := range n.Children {
		if img, ok := c.(*Image); ok {
			imgs = append(imgs, img)
		}
		imgs = append(imgs, c.Images()...)
	}
	return imgs
}

// Image is a synthetic img element. It is Complete when created loaded
// or once Load fires its load subscribers.
type Image struct {
	Node
	Loaded bool
	Width  int
	Height int

	load adscan.Signal
}

// NewImage returns an img node with the given attributes.
func NewImage(attrs map[string]string, loaded bool) *Image {
	return &Image{Node: Node{Tag: "IMG", Attrs: attrs}, Loaded: loaded}
}

func (i *Image) Src() string {
	return i.Attrs["src"]
}

func (i *Image) Complete() bool {
	return i.Loaded || i.load.Fired()
}

func (i *Image) NaturalSize() (int, int) {
	return i.Width, i.Height
}

func (i *Image) OnLoad(fn func()) adscan.Subscription {
	return i.load.Subscribe(fn)
}

// Load completes loading the image. It is safe to call from another
// goroutine.
func (i *Image) Load() {
	i.load.Fire()
}

// Frame is a synthetic iframe element. Doc is its nested document; when
// DocErr is set ContentDocument fails with it instead.
type Frame struct {
	Node
	Doc    *Document
	DocErr error

	load adscan.Signal
}

// NewFrame returns an iframe node with the given attributes.
func NewFrame(attrs map[string]string, doc *Document) *Frame {
	return &Frame{Node: Node{Tag: "IFRAME", Attrs: attrs}, Doc: doc}
}

func (f *Frame) OnLoad(fn func()) adscan.Subscription {
	return f.load.Subscribe(fn)
}

func (f *Frame) ContentDocument() (adscan.Document, error) {
	if f.DocErr != nil {
		return nil, f.DocErr
	}
	return f.Doc, nil
}

// Load completes loading the nested document.
func (f *Frame) Load() {
	f.load.Fire()
}

// Document is a synthetic document whose root is a non-element node.
type Document struct {
	Node
	Page      adscan.PageContext
	PageTitle string
	CloseFn   func() error
}

// NewDocument returns an empty document located at pc.
func NewDocument(pc adscan.PageContext) *Document {
	return &Document{Page: pc}
}

func (d *Document) Context() adscan.PageContext {
	return d.Page
}

func (d *Document) Title() string {
	return d.PageTitle
}

func (d *Document) Close() error {
	if d.CloseFn != nil {
		return d.CloseFn()
	}
	return nil
}
