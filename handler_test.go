package adscan_test

import (
	"testing"

	"github.com/fwojciec/adscan"
	"github.com/stretchr/testify/assert"
)

func TestExtractHandlerURL(t *testing.T) {
	t.Parallel()

	t.Run("extracts first argument of window.open and strips quotes", func(t *testing.T) {
		t.Parallel()

		got, ok := adscan.ExtractHandlerURL("window.open('http://t.co/x','_blank')")

		assert.True(t, ok)
		assert.Equal(t, "http://t.co/x", got)
	})

	t.Run("handles single-argument window.open with javascript prefix", func(t *testing.T) {
		t.Parallel()

		got, ok := adscan.ExtractHandlerURL(`javascript:window.open("https://shop.example/deal")`)

		assert.True(t, ok)
		assert.Equal(t, "https://shop.example/deal", got)
	})

	t.Run("matches window.open case-insensitively", func(t *testing.T) {
		t.Parallel()

		got, ok := adscan.ExtractHandlerURL("Window.Open('/promo', 'ad')")

		assert.True(t, ok)
		assert.Equal(t, "/promo", got)
	})

	t.Run("strips html-escaped quotes", func(t *testing.T) {
		t.Parallel()

		got, ok := adscan.ExtractHandlerURL("window.open(&quot;http://t.co/q&quot;)")

		assert.True(t, ok)
		assert.Equal(t, "http://t.co/q", got)
	})

	t.Run("falls back to generic URL match", func(t *testing.T) {
		t.Parallel()

		got, ok := adscan.ExtractHandlerURL("go('www.example.com/path')")

		assert.True(t, ok)
		assert.Contains(t, got, "www.example.com/path")
	})

	t.Run("generic match keeps scheme and query", func(t *testing.T) {
		t.Parallel()

		got, ok := adscan.ExtractHandlerURL("track(1); location.href='https://ads.example.net/c?id=42'")

		assert.True(t, ok)
		assert.Equal(t, "https://ads.example.net/c?id=42", got)
	})

	t.Run("returns false when nothing looks like a URL", func(t *testing.T) {
		t.Parallel()

		_, ok := adscan.ExtractHandlerURL("doSomething()")

		assert.False(t, ok)
	})
}

func TestParseOnClick(t *testing.T) {
	t.Parallel()

	t.Run("normalizes extracted relative target", func(t *testing.T) {
		t.Parallel()

		got, ok := adscan.ParseOnClick("window.open('/landing?a=1')", "pub.com", "https:")

		assert.True(t, ok)
		assert.Equal(t, "https://pub.com/landing?a=1", got)
	})

	t.Run("leaves absolute target unchanged", func(t *testing.T) {
		t.Parallel()

		got, ok := adscan.ParseOnClick("window.open('http://t.co/x','_blank')", "pub.com", "https:")

		assert.True(t, ok)
		assert.Equal(t, "http://t.co/x", got)
	})
}
