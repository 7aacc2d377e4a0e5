package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/crawl"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := adscan.AdFilter{Limit: c.Limit, Offset: c.Offset}
	if c.Page != "" {
		filter.PageURL = &c.Page
	}
	if c.Target != "" {
		filter.TargetURL = &c.Target
	}

	ads, err := deps.Ads.FindAds(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		for _, ad := range ads {
			if err := enc.Encode(ad); err != nil {
				return err
			}
		}
		return nil
	}

	if len(ads) == 0 {
		fmt.Fprintln(deps.Stdout, "No ads found. Use 'adscan scan' to find some.")
		return nil
	}

	for _, ad := range ads {
		var id, page string
		if ad.ID != nil {
			id = *ad.ID
		}
		if ad.PageURL != nil {
			page = crawl.DisplayURL(*ad.PageURL, 50)
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n", id, ad.ContentType, crawl.DisplayURL(ad.TargetURL, 60), page)
	}

	return nil
}
