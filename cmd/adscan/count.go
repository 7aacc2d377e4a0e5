package main

import (
	"fmt"

	"github.com/fwojciec/adscan"
)

// Run executes the count command.
func (c *CountCmd) Run(deps *Dependencies) error {
	var filter adscan.AdFilter
	if c.Page != "" {
		filter.PageURL = &c.Page
	}

	n, err := deps.Ads.CountAds(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, n)
	return nil
}
