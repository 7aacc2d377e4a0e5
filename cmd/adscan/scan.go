package main

import (
	"fmt"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/crawl"
)

// Run executes the scan command.
func (c *ScanCmd) Run(deps *Dependencies) error {
	if deps.Scanner == nil {
		return adscan.Errorf(adscan.EINTERNAL, "scanner not configured")
	}

	if c.Concurrency > 0 {
		deps.Scanner.Concurrency = c.Concurrency
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Scanning %d pages\n", event.Total)
		case crawl.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s: %d ads\n",
				event.Completed, event.Total, crawl.DisplayURL(event.URL, 80), event.Ads)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", event.URL, adscan.ErrorMessage(event.Error))
		case crawl.ProgressFinished:
			// Summary printed after scan completes
		}
	}

	result, err := deps.Scanner.ScanPages(deps.Ctx, c.URLs, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error scanning: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Found %d ads on %d pages", result.Ads, result.Pages)
	if result.Failed > 0 {
		fmt.Fprintf(deps.Stdout, " (%d failed)", result.Failed)
	}
	fmt.Fprintln(deps.Stdout)

	if result.Pages == 0 && result.Failed > 0 {
		return adscan.Errorf(adscan.EUNAVAILABLE, "no pages could be scanned")
	}
	return nil
}
