package goquery_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/detect"
	"github.com/fwojciec/adscan/goquery"
	"github.com/fwojciec/adscan/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var page = adscan.PageContext{URL: "https://pub.com/article", Protocol: "https:", Domain: "pub.com"}

const adPage = `<!DOCTYPE html>
<html>
<head><title> Daily News </title></head>
<body>
<div id="ads">
	<a id="banner" href="/click?id=1"><img src="http://cdn.net/a.png" width="300" height="250"></a>
	<div id="handler" onclick="window.open('http://ads.net/land?x=1')"><span><img src="http://cdn.net/b.png"></span></div>
	<img id="loose" src="http://cdn.net/c.png">
	<a href="https://www.google.com/ads/preferences/whythisad/en/abc"><img src="http://cdn.net/i.png"></a>
</div>
</body>
</html>`

func parse(t *testing.T, html string, opts ...goquery.Option) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocument(html, page, opts...)
	require.NoError(t, err)
	return doc
}

func first(t *testing.T, doc *goquery.Document, selector string) adscan.Element {
	t.Helper()
	elems := doc.Find(selector)
	require.NotEmpty(t, elems, "selector %q", selector)
	return elems[0]
}

func TestDocument(t *testing.T) {
	t.Parallel()

	t.Run("reports page context and trimmed title", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, adPage)

		assert.Equal(t, page, doc.Context())
		assert.Equal(t, "Daily News", doc.Title())
		assert.NoError(t, doc.Close())
	})

	t.Run("document node is not an element and has no parent", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, adPage)

		assert.False(t, doc.IsElement())
		assert.Empty(t, doc.TagName())
		assert.Nil(t, doc.Parent())
	})

	t.Run("enumerates images in document order", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, adPage)

		imgs := doc.Body().Images()

		require.Len(t, imgs, 4)
		assert.Equal(t, "http://cdn.net/a.png", imgs[0].Src())
		assert.Equal(t, "http://cdn.net/b.png", imgs[1].Src())
		assert.Equal(t, "http://cdn.net/c.png", imgs[2].Src())
		assert.Equal(t, "http://cdn.net/i.png", imgs[3].Src())
	})

	t.Run("binds elements to their kind", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<body><img src="x.png"><iframe src="/f"></iframe><p>text</p></body>`)

		assert.Implements(t, (*adscan.Image)(nil), first(t, doc, "img"))
		assert.Implements(t, (*adscan.Frame)(nil), first(t, doc, "iframe"))
		_, isImage := first(t, doc, "p").(adscan.Image)
		assert.False(t, isImage)
	})

	t.Run("parent walk reaches the document node", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, adPage)
		img := first(t, doc, "#loose")

		var tags []string
		for n := adscan.Node(img); n != nil; n = n.Parent() {
			tags = append(tags, n.TagName())
		}

		assert.Equal(t, []string{"IMG", "DIV", "BODY", "HTML", ""}, tags)
	})
}

func TestImage(t *testing.T) {
	t.Parallel()

	t.Run("is complete and runs load callbacks immediately", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, adPage)
		img := first(t, doc, "#banner img").(adscan.Image)

		var calls int
		img.OnLoad(func() { calls++ })

		assert.True(t, img.Complete())
		assert.Equal(t, 1, calls)
	})

	t.Run("reads declared dimensions", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<img src="a.png" width="728" height="90px">`)
		img := first(t, doc, "img").(adscan.Image)

		w, h := img.NaturalSize()

		assert.Equal(t, 728, w)
		assert.Equal(t, 90, h)
	})

	t.Run("reports zero for missing or malformed dimensions", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<img src="a.png" width="auto">`)
		img := first(t, doc, "img").(adscan.Image)

		w, h := img.NaturalSize()

		assert.Zero(t, w)
		assert.Zero(t, h)
	})

	t.Run("returns empty src when attribute is missing", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<img alt="none">`)
		img := first(t, doc, "img").(adscan.Image)

		assert.Empty(t, img.Src())
	})
}

func TestFrame_ContentDocument(t *testing.T) {
	t.Parallel()

	t.Run("parses srcdoc as a framed document", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<body><iframe srcdoc="<title>Inner</title><a href='http://ads.net/x'><img src='http://cdn.net/f.png'></a>"></iframe></body>`)
		frame := first(t, doc, "iframe").(adscan.Frame)

		inner, err := frame.ContentDocument()

		require.NoError(t, err)
		assert.Equal(t, "Inner", inner.Title())
		assert.True(t, inner.Context().Framed)
		assert.Equal(t, page.URL, inner.Context().Referrer)
		require.Len(t, inner.Images(), 1)
		assert.Equal(t, "http://cdn.net/f.png", inner.Images()[0].Src())
	})

	t.Run("refuses cross-origin frames", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<iframe src="http://other.net/ad.html"></iframe>`)
		frame := first(t, doc, "iframe").(adscan.Frame)

		_, err := frame.ContentDocument()

		assert.Equal(t, adscan.EFORBIDDEN, adscan.ErrorCode(err))
	})

	t.Run("refuses same-origin frames without a fetcher", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<iframe src="/frame.html"></iframe>`)
		frame := first(t, doc, "iframe").(adscan.Frame)

		_, err := frame.ContentDocument()

		assert.Equal(t, adscan.EFORBIDDEN, adscan.ErrorCode(err))
	})

	t.Run("fetches same-origin frames", func(t *testing.T) {
		t.Parallel()

		var fetched string
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetched = url
				return `<a href="http://ads.net/y"><img src="http://cdn.net/g.png"></a>`, nil
			},
		}
		doc := parse(t, `<iframe src="/frame.html"></iframe>`, goquery.WithFrameFetcher(fetcher))
		frame := first(t, doc, "iframe").(adscan.Frame)

		inner, err := frame.ContentDocument()

		require.NoError(t, err)
		assert.Equal(t, "https://pub.com/frame.html", fetched)
		assert.Equal(t, "https://pub.com/frame.html", inner.Context().URL)
		assert.Len(t, inner.Images(), 1)
	})

	t.Run("returns fetch errors", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "", errors.New("connection refused")
			},
		}
		doc := parse(t, `<iframe src="/frame.html"></iframe>`, goquery.WithFrameFetcher(fetcher))
		frame := first(t, doc, "iframe").(adscan.Frame)

		_, err := frame.ContentDocument()

		assert.EqualError(t, err, "connection refused")
	})

	t.Run("reports frames without a document", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<iframe></iframe>`)
		frame := first(t, doc, "iframe").(adscan.Frame)

		_, err := frame.ContentDocument()

		assert.Equal(t, adscan.ENOTFOUND, adscan.ErrorCode(err))
	})
}

type recorder struct {
	mu  sync.Mutex
	ads []*adscan.Ad
}

func (r *recorder) Notify(_ context.Context, msg *adscan.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ads = append(r.ads, msg.Ad)
	return nil
}

func newParser(n adscan.Notifier) *detect.Parser {
	var buf bytes.Buffer
	p := detect.NewParser(page, n, adscan.StaticPreferences{}, slog.New(slog.NewTextHandler(&buf, nil)))
	p.Now = func() time.Time { return time.UnixMilli(42) }
	return p
}

func TestDetection_StaticPage(t *testing.T) {
	t.Parallel()

	t.Run("finds anchored and handler ads and skips the rest", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		doc := parse(t, adPage)

		result := newParser(rec).FindImageAds(context.Background(), doc.Context(), doc.Body().Images())

		assert.Equal(t, detect.BatchResult{Hits: 2, Failed: 2}, result)
		require.Len(t, rec.ads, 2)

		assert.Equal(t, "https://pub.com/click?id=1", rec.ads[0].TargetURL)
		assert.Equal(t, adscan.ContentData{Src: "http://cdn.net/a.png", Width: 300, Height: 250}, rec.ads[0].ContentData)
		assert.Equal(t, adscan.ContentTypeImage, rec.ads[0].ContentType)
		assert.Equal(t, int64(42), rec.ads[0].FoundTs)

		assert.Equal(t, "http://ads.net/land?x=1", rec.ads[1].TargetURL)
		assert.Equal(t, adscan.ContentData{Src: "http://cdn.net/b.png", Width: -1, Height: -1}, rec.ads[1].ContentData)
	})

	t.Run("scans srcdoc frames through dispatch", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		doc := parse(t, `<body><iframe srcdoc="<a href='http://ads.net/x'><img src='http://cdn.net/f.png'></a>"></iframe></body>`)

		newParser(rec).Process(context.Background(), first(t, doc, "iframe"))

		require.Len(t, rec.ads, 1)
		assert.Equal(t, "http://ads.net/x", rec.ads[0].TargetURL)
	})

	t.Run("skips cross-origin frames through dispatch", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		doc := parse(t, `<body><iframe src="http://other.net/ad.html"></iframe></body>`)

		newParser(rec).Process(context.Background(), first(t, doc, "iframe"))

		assert.Empty(t, rec.ads)
	})
}
