// Package detect provides the image ad pipeline and element dispatch.
// It resolves click targets for images found under an element, builds Ad
// records and hands them to a Notifier.
package detect

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/adscan"
)

// Parser detects image ads under elements of one document.
//
// Parser keeps no per-element state: processing the same element twice
// scans it twice. It is safe for concurrent use when its Notifier and
// TextAds collaborators are.
type Parser struct {
	// Page is the document the processed elements belong to.
	Page adscan.PageContext

	Notifier    adscan.Notifier
	TextAds     adscan.TextAdParser
	Preferences adscan.PreferenceSource
	Ignore      adscan.IgnoreList
	Logger      *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	loads loadTracker
}

// NewParser returns a Parser for page with the default ignore list.
func NewParser(page adscan.PageContext, notifier adscan.Notifier, prefs adscan.PreferenceSource, logger *slog.Logger) *Parser {
	return &Parser{
		Page:        page,
		Notifier:    notifier,
		Preferences: prefs,
		Ignore:      adscan.DefaultIgnoreList(),
		Logger:      logger,
	}
}

// BatchResult reports the outcome of a FindImageAds call.
type BatchResult struct {
	// Hits counts images that produced an ad synchronously.
	Hits int

	// Failed counts images rejected without an ad.
	Failed int

	// Pending counts images whose ad is built once they finish loading.
	Pending int
}

// Process scans elem for ads. Frames are scanned once their nested
// document loads, images directly, and any other element through its
// descendant images and the text ad collaborator.
//
// Candidate failures are logged and never returned.
func (p *Parser) Process(ctx context.Context, elem adscan.Element) {
	if src, ok := elem.Attr("src"); ok {
		p.logEvent("process", "tag", elem.TagName(), "src", src)
	} else {
		p.logEvent("process", "tag", elem.TagName())
	}

	switch e := elem.(type) {
	case adscan.Frame:
		p.loads.subscribe(e.OnLoad, func() {
			p.processFrame(ctx, e)
		})

	case adscan.Image:
		p.FindImageAds(ctx, p.Page, []adscan.Image{e})

	default:
		p.logEvent("checking children", "tag", elem.TagName())

		if imgs := elem.Images(); len(imgs) > 0 {
			p.FindImageAds(ctx, p.Page, imgs)
		} else {
			p.logEvent("no images in children", "tag", elem.TagName())
		}

		if p.TextAds != nil {
			p.TextAds.Process(ctx, elem)
		}
	}
}

// processFrame scans the images of a loaded frame. Cross-origin frames
// are skipped.
func (p *Parser) processFrame(ctx context.Context, frame adscan.Frame) {
	doc, err := frame.ContentDocument()
	if err != nil {
		src, _ := frame.Attr("src")
		p.logEvent("ignored cross-domain iframe", "src", src, "err", err)
		return
	}

	imgs := doc.Images()
	if len(imgs) == 0 {
		p.logEvent("no images in iframe")
		return
	}
	p.FindImageAds(ctx, doc.Context(), imgs)
}

// FindImageAds runs the image pipeline over imgs, in order, for images
// located in page. Images still loading are revisited when their load
// completes; ads found then are only observable through the Notifier.
func (p *Parser) FindImageAds(ctx context.Context, page adscan.PageContext, imgs []adscan.Image) BatchResult {
	var result BatchResult
	for _, img := range imgs {
		switch p.processImage(ctx, page, img) {
		case imageHit:
			result.Hits++
		case imagePending:
			result.Pending++
		default:
			result.Failed++
		}
	}

	if result.Hits < 1 {
		p.logEvent("no (loaded) image ads found", "images", len(imgs))
	}
	return result
}

type imageOutcome int

const (
	imageFailed imageOutcome = iota
	imageHit
	imagePending
)

func (p *Parser) processImage(ctx context.Context, page adscan.PageContext, img adscan.Image) imageOutcome {
	src := img.Src()
	if src == "" {
		p.logEvent("image rejected", "reason", "no image src")
		return imageFailed
	}

	clickable := adscan.ClickableParent(img)
	if clickable == nil {
		p.logEvent("image rejected", "reason", "no clickable parent", "src", src)
		return imageFailed
	}

	targetURL, ok := adscan.ResolveTarget(clickable, page)
	if !ok {
		p.warnEvent("image rejected", "reason", "no href for anchor", "tag", clickable.TagName(), "src", src)
		return imageFailed
	}

	if img.Complete() {
		if p.createImageAd(ctx, page, img, src, targetURL) {
			return imageHit
		}
		return imageFailed
	}

	p.loads.subscribe(img.OnLoad, func() {
		p.createImageAd(ctx, page, img, src, targetURL)
	})
	return imagePending
}

// Wait blocks until the load callbacks of every frame and image still
// loading when processed have run, or until ctx is done. When ctx ends
// first the remaining callbacks are cancelled, later loads are ignored
// and ctx's error is returned.
func (p *Parser) Wait(ctx context.Context) error {
	return p.loads.wait(ctx)
}

// CreateImageAd builds an ad for a loaded image of the parser's page and
// notifies it. Returns false when no ad could be built.
func (p *Parser) CreateImageAd(ctx context.Context, img adscan.Image, src, targetURL string) bool {
	return p.createImageAd(ctx, p.Page, img, src, targetURL)
}

func (p *Parser) createImageAd(ctx context.Context, page adscan.PageContext, img adscan.Image, src, targetURL string) bool {
	width, height := img.NaturalSize()
	if width == 0 {
		width = -1
	}
	if height == 0 {
		height = -1
	}

	ad, err := p.CreateAd(page, page.Domain, targetURL, adscan.ContentData{
		Src:    src,
		Width:  width,
		Height: height,
	})
	if err != nil {
		p.warnEvent("unable to create ad", "domain", page.Domain, "target", targetURL, "src", src, "err", err)
		return false
	}

	if !p.preferences().Production {
		p.logger().Info("parsed image ad", "target", ad.TargetURL, "src", src, "width", width, "height", height)
	}

	p.Notify(ctx, ad)
	return true
}

// CreateAd builds an Ad for a candidate found in page. Rejections by the
// ignore list are logged informationally, other rejections as warnings.
func (p *Parser) CreateAd(page adscan.PageContext, network, target string, data adscan.ContentData) (*adscan.Ad, error) {
	b := &adscan.Builder{Page: page, Ignore: p.Ignore, Now: p.Now}

	ad, err := b.CreateAd(network, target, data)
	switch adscan.ErrorCode(err) {
	case "":
		return ad, nil
	case adscan.EIGNORED:
		p.logEvent("ignoring ad-info target", "target", target, "src", data.Src)
	default:
		p.warnEvent("ignoring ad", "target", target, "err", adscan.ErrorMessage(err))
	}
	return nil, err
}

// Notify hands ad to the Notifier as a registerAd message. Delivery
// failures are logged and otherwise ignored.
func (p *Parser) Notify(ctx context.Context, ad *adscan.Ad) bool {
	if p.Notifier == nil {
		return false
	}
	msg := &adscan.Message{What: adscan.MessageRegisterAd, Ad: ad}
	if err := p.Notifier.Notify(ctx, msg); err != nil {
		p.warnEvent("notify failed", "target", ad.TargetURL, "err", err)
		return false
	}
	return true
}

func (p *Parser) preferences() adscan.Preferences {
	if p.Preferences == nil {
		return adscan.Preferences{}
	}
	return p.Preferences.Preferences()
}

func (p *Parser) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default().With("component", "parser")
	}
	return p.Logger.With("component", "parser")
}

func (p *Parser) logEvent(msg string, args ...any) {
	if p.preferences().LogEvents {
		p.logger().Info(msg, args...)
	}
}

func (p *Parser) warnEvent(msg string, args ...any) {
	if p.preferences().LogEvents {
		p.logger().Warn(msg, args...)
	}
}
