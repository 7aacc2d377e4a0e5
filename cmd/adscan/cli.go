package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/crawl"
	"github.com/fwojciec/adscan/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	DB      *sqlite.DB
	Ads     adscan.AdService
	Scanner *crawl.Scanner

	// Notifier receives the messages accepted by the serve command.
	Notifier adscan.Notifier
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Debug bool `help:"Log service calls to stderr"`

	Scan   ScanCmd   `cmd:"" help:"Scan pages for image ads"`
	List   ListCmd   `cmd:"" help:"List recorded ads"`
	Count  CountCmd  `cmd:"" help:"Count recorded ads"`
	Delete DeleteCmd `cmd:"" help:"Delete the ads recorded for a page"`
	Serve  ServeCmd  `cmd:"" help:"Receive ad messages over HTTP"`
}

// ScanCmd is the "scan" subcommand.
type ScanCmd struct {
	URLs        []string      `arg:"" name:"url" help:"Page URLs to scan"`
	Browser     bool          `short:"b" help:"Render pages in headless Chrome"`
	Concurrency int           `short:"c" default:"4" help:"Pages scanned at once"`
	Rate        float64       `default:"1" help:"Page loads per second per domain (0 disables)"`
	Burst       int           `default:"1" help:"Page loads of one domain allowed back to back"`
	Timeout     time.Duration `default:"10s" help:"HTTP fetch timeout"`
	Settle      time.Duration `default:"2s" help:"Wait after the load event before scanning (browser only)"`
	LoadTimeout time.Duration `name:"load-timeout" default:"10s" help:"Wait for images and frames still loading after a page is scanned"`
	Webhook     string        `help:"POST each new ad as JSON to this URL"`
	Replace     bool          `short:"r" help:"Remove a page's recorded ads before rescanning it"`
	LogEvents   bool          `name:"log-events" env:"ADSCAN_LOG_EVENTS" help:"Log every candidate the detector examines"`
	Production  bool          `env:"ADSCAN_PRODUCTION" help:"Do not echo parsed ads to stderr"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Page   string `help:"Only ads found on this page URL"`
	Target string `help:"Only ads leading to this target URL"`
	Limit  int    `short:"n" default:"50" help:"Maximum number of ads"`
	Offset int    `help:"Number of ads to skip"`
	JSON   bool   `help:"Print ads as JSON lines"`
}

// CountCmd is the "count" subcommand.
type CountCmd struct {
	Page string `help:"Only ads found on this page URL"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Page  string `arg:"" help:"Page URL"`
	Force bool   `help:"Confirm deletion"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:"localhost:8080" help:"Listen address"`
}
