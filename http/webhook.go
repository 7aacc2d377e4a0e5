package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/adscan"
)

// DefaultWebhookTimeout bounds a single message delivery.
const DefaultWebhookTimeout = 5 * time.Second

var _ adscan.Notifier = (*Webhook)(nil)

// Webhook delivers messages as JSON POST requests to a fixed URL.
// Each message is posted once; there is no retry or acknowledgment.
type Webhook struct {
	URL    string
	client *http.Client
}

// NewWebhook creates a Webhook posting to url.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		URL:    url,
		client: &http.Client{Timeout: DefaultWebhookTimeout},
	}
}

// Notify posts msg as JSON. Returns EUNAVAILABLE when the receiver
// answers with a non-2xx status.
func (w *Webhook) Notify(ctx context.Context, msg *adscan.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return adscan.Errorf(adscan.EINTERNAL, "encoding message: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return adscan.Errorf(adscan.EINVALID, "invalid webhook URL %q: %v", w.URL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return adscan.Errorf(adscan.EUNAVAILABLE, "webhook answered HTTP %d", resp.StatusCode)
	}
	return nil
}
