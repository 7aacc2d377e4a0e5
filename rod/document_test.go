//go:build integration

package rod_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/detect"
	"github.com/fwojciec/adscan/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent GIF.
var pixel = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

func adServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/pixel.gif", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write(pixel)
	})
	mux.HandleFunc("/frame.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `<a href="/framed-click"><img src="/pixel.gif"></a>`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `<html><head><title>Live</title></head><body>
<a href="/click"><img id="anchored" src="/pixel.gif"></a>
<div onclick="window.open('http://ads.net/land')"><img src="/pixel.gif"></div>
<img id="loose" src="/pixel.gif">
<iframe src="/frame.html"></iframe>
</body></html>`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type collected struct {
	mu  sync.Mutex
	ads []*adscan.Ad
}

func (c *collected) Notify(_ context.Context, msg *adscan.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ads = append(c.ads, msg.Ad)
	return nil
}

func (c *collected) targets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, ad := range c.ads {
		out = append(out, ad.TargetURL)
	}
	return out
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	srv := adServer(t)
	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	t.Run("binds the live DOM", func(t *testing.T) {
		doc, err := rod.NewLoader(manager, 0).Load(ctx, srv.URL+"/")
		require.NoError(t, err)
		defer doc.Close()

		assert.Equal(t, "Live", doc.Title())
		assert.Len(t, doc.Images(), 3)

		img := doc.Images()[0]
		assert.True(t, img.Complete())
		w, h := img.NaturalSize()
		assert.Equal(t, 1, w)
		assert.Equal(t, 1, h)

		clickable := adscan.ClickableParent(img)
		require.NotNil(t, clickable)
		assert.Equal(t, "A", clickable.TagName())
	})

	t.Run("detects anchored, handler and framed ads", func(t *testing.T) {
		doc, err := rod.NewLoader(manager, 0).Load(ctx, srv.URL+"/")
		require.NoError(t, err)
		defer doc.Close()

		rec := &collected{}
		parser := detect.NewParser(doc.Context(), rec, adscan.StaticPreferences{Production: true}, nil)

		result := parser.FindImageAds(ctx, doc.Context(), doc.Images())
		assert.Equal(t, detect.BatchResult{Hits: 2, Failed: 1}, result)

		frame := doc.(*rod.Document).Find("iframe")
		require.Len(t, frame, 1)
		parser.Process(ctx, frame[0])

		assert.Eventually(t, func() bool { return len(rec.targets()) == 3 }, 5*time.Second, 50*time.Millisecond)
		// Relative targets resolve against the document domain, which
		// carries no port.
		assert.ElementsMatch(t, []string{
			"http://127.0.0.1/click",
			"http://ads.net/land",
			"http://127.0.0.1/framed-click",
		}, rec.targets())
	})
}
