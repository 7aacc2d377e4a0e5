package main

import (
	"fmt"

	"github.com/fwojciec/adscan"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return adscan.Errorf(adscan.EINVALID, "use --force to confirm deletion")
	}

	n, err := deps.Ads.CountAds(deps.Ctx, adscan.AdFilter{PageURL: &c.Page})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
		return err
	}

	if n == 0 {
		fmt.Fprintf(deps.Stderr, "error: no ads recorded for %q. Use 'adscan list' to see recorded ads.\n", c.Page)
		return adscan.Errorf(adscan.ENOTFOUND, "no ads recorded for %q", c.Page)
	}

	if err := deps.Ads.DeleteAdsByPage(deps.Ctx, c.Page); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %d ads from %q\n", n, c.Page)
	return nil
}
