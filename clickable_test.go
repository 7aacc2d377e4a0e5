package adscan_test

import (
	"testing"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClickableParent(t *testing.T) {
	t.Parallel()

	t.Run("finds anchor ancestor", func(t *testing.T) {
		t.Parallel()

		img := mock.NewImage(map[string]string{"src": "a.png"}, true)
		anchor := mock.NewNode("a", map[string]string{"href": "http://ads.net/go"})
		doc := mock.NewDocument(adscan.PageContext{})
		doc.Append(mock.NewNode("div", nil).Append(anchor.Append(mock.NewNode("span", nil).Append(img))))

		got := adscan.ClickableParent(img)

		assert.Same(t, anchor, got)
	})

	t.Run("returns the node itself when it is clickable", func(t *testing.T) {
		t.Parallel()

		img := mock.NewImage(map[string]string{"src": "a.png", "onclick": "window.open('http://x.com')"}, true)
		mock.NewNode("div", nil).Append(img)

		got := adscan.ClickableParent(img)

		assert.Same(t, img, got)
	})

	t.Run("finds element with onclick handler", func(t *testing.T) {
		t.Parallel()

		img := mock.NewImage(map[string]string{"src": "a.png"}, true)
		div := mock.NewNode("div", map[string]string{"onclick": "go()"})
		div.Append(img)

		got := adscan.ClickableParent(img)

		assert.Same(t, div, got)
	})

	t.Run("stops at the first non-element ancestor", func(t *testing.T) {
		t.Parallel()

		// The anchor above the document root must not be reached.
		outer := mock.NewNode("a", map[string]string{"href": "http://outer.net"})
		doc := mock.NewDocument(adscan.PageContext{})
		outer.Append(doc)
		img := mock.NewImage(map[string]string{"src": "a.png"}, true)
		doc.Append(mock.NewNode("div", nil).Append(img))

		assert.Nil(t, adscan.ClickableParent(img))
	})

	t.Run("returns nil without clickable ancestor", func(t *testing.T) {
		t.Parallel()

		img := mock.NewImage(map[string]string{"src": "a.png"}, true)
		mock.NewNode("div", nil).Append(img)

		assert.Nil(t, adscan.ClickableParent(img))
	})
}

func TestResolveTarget(t *testing.T) {
	t.Parallel()

	pc := adscan.PageContext{Protocol: "https:", Domain: "pub.com"}

	t.Run("returns anchor href unchanged", func(t *testing.T) {
		t.Parallel()

		a := mock.NewNode("a", map[string]string{"href": "/click?id=1"})

		got, ok := adscan.ResolveTarget(a, pc)

		require.True(t, ok)
		assert.Equal(t, "/click?id=1", got)
	})

	t.Run("fails on empty href", func(t *testing.T) {
		t.Parallel()

		a := mock.NewNode("a", map[string]string{"href": "", "onclick": "window.open('http://x.com')"})

		_, ok := adscan.ResolveTarget(a, pc)

		assert.False(t, ok)
	})

	t.Run("parses onclick handler when no href", func(t *testing.T) {
		t.Parallel()

		div := mock.NewNode("div", map[string]string{"onclick": "window.open('/landing','_blank')"})

		got, ok := adscan.ResolveTarget(div, pc)

		require.True(t, ok)
		assert.Equal(t, "https://pub.com/landing", got)
	})

	t.Run("fails for anchor without href or handler", func(t *testing.T) {
		t.Parallel()

		a := mock.NewNode("a", nil)

		_, ok := adscan.ResolveTarget(a, pc)

		assert.False(t, ok)
	})

	t.Run("fails for empty onclick handler", func(t *testing.T) {
		t.Parallel()

		div := mock.NewNode("div", map[string]string{"onclick": ""})

		_, ok := adscan.ResolveTarget(div, pc)

		assert.False(t, ok)
	})
}
