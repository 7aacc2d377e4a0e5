package main

import (
	"fmt"

	"github.com/fwojciec/adscan"
	adhttp "github.com/fwojciec/adscan/http"
)

// Run executes the serve command. It blocks until the context is cancelled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	if deps.Notifier == nil {
		return adscan.Errorf(adscan.EINTERNAL, "notifier not configured")
	}

	srv := adhttp.NewServer(deps.Notifier, deps.Ads, deps.Logger)
	if err := srv.ListenAndServe(deps.Ctx, c.Addr); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}
