package detect

import (
	"context"
	"sync"

	"github.com/fwojciec/adscan"
)

// Host describes the environment the detector is installed into.
type Host struct {
	// Injected reports whether the host injection layer is available.
	Injected bool

	// Incognito reports a private browsing context.
	Incognito bool
}

// ParserFactory constructs the Parser used by a Checker.
type ParserFactory func() *Parser

// Checker is the entry point handed to the mutation dispatcher. It builds
// its Parser on first use and reuses it afterwards. Callers hold the
// Checker; there is no package-level instance.
type Checker struct {
	factory ParserFactory

	once   sync.Once
	parser *Parser
}

// Install returns the Checker to use for host. An existing Checker is
// returned unchanged. Returns EUNAVAILABLE when the injection layer is
// missing or the context is private; detection must not run there.
func Install(existing *Checker, host Host, factory ParserFactory) (*Checker, error) {
	if existing != nil {
		return existing, nil
	}
	if !host.Injected {
		return nil, adscan.Errorf(adscan.EUNAVAILABLE, "host injection layer unavailable")
	}
	if host.Incognito {
		return nil, adscan.Errorf(adscan.EUNAVAILABLE, "ad detection disabled in private browsing")
	}
	return &Checker{factory: factory}, nil
}

// AdCheck scans elem for ads, constructing the Parser on first call.
func (c *Checker) AdCheck(ctx context.Context, elem adscan.Element) {
	c.Parser().Process(ctx, elem)
}

// Parser returns the Checker's Parser, constructing it if needed.
func (c *Checker) Parser() *Parser {
	c.once.Do(func() {
		c.parser = c.factory()
	})
	return c.parser
}

// Wait blocks until the loads started by AdCheck have been handled, or
// until ctx is done.
func (c *Checker) Wait(ctx context.Context) error {
	return c.Parser().Wait(ctx)
}
