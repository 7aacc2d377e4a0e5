package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/bloom"
	"github.com/fwojciec/adscan/crawl"
	"github.com/fwojciec/adscan/goquery"
	adhttp "github.com/fwojciec/adscan/http"
	"github.com/fwojciec/adscan/rod"
	adslog "github.com/fwojciec/adscan/slog"
	"github.com/fwojciec/adscan/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Sizing of the registration dedup filter.
const (
	dedupCapacity = 100_000
	dedupFPRate   = 0.001
)

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	AdService adscan.AdService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: slog.New(slog.NewTextHandler(stderr, nil)),
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("adscan"),
		kong.Description("Find image ads on web pages and record where they lead."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'adscan --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd = strings.Fields(kongCtx.Command())[0]

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set ADSCAN_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.AdService = sqlite.NewAdService(m.DB)
	if cli.Debug {
		m.AdService = adslog.NewLoggingAdService(m.AdService, deps.Logger)
	}
	deps.DB = m.DB
	deps.Ads = m.AdService

	switch cmd {
	case "scan":
		loader, closeLoader, err := m.newLoader(&cli.Scan, cli.Debug, deps.Logger)
		if err != nil {
			if cli.Scan.Browser {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			}
			return fmt.Errorf("failed to start loader: %w", err)
		}
		defer closeLoader()

		var sink adscan.Notifier
		if cli.Scan.Webhook != "" {
			sink = adhttp.NewWebhook(cli.Scan.Webhook)
			if cli.Debug {
				sink = adslog.NewLoggingNotifier(sink, deps.Logger)
			}
		}

		deps.Scanner = &crawl.Scanner{
			Loader:   loader,
			Notifier: m.registrationChain(sink, cli.Debug, deps.Logger),
			Preferences: adscan.StaticPreferences{
				LogEvents:  cli.Scan.LogEvents,
				Production: cli.Scan.Production,
			},
			RateLimiter: crawl.NewDomainLimiter(cli.Scan.Rate, crawl.WithBurst(cli.Scan.Burst)),
			Logger:      deps.Logger,
			Ads:         m.AdService,
			Replace:     cli.Scan.Replace,
			Concurrency: cli.Scan.Concurrency,
			LoadTimeout: cli.Scan.LoadTimeout,
		}

	case "serve":
		deps.Notifier = m.registrationChain(nil, cli.Debug, deps.Logger)
	}

	return kongCtx.Run(deps)
}

// registrationChain returns the notifier ads are registered through:
// repeat sightings are dropped, the rest are stored and then handed to next.
func (m *Main) registrationChain(next adscan.Notifier, debug bool, logger *slog.Logger) adscan.Notifier {
	var n adscan.Notifier = &crawl.Store{Ads: m.AdService, Next: next}
	if debug {
		n = adslog.NewLoggingNotifier(n, logger)
	}
	filter := bloom.NewFilter(dedupCapacity, dedupFPRate)
	return bloom.NewDedupNotifier(n, filter, bloom.PageAdKey)
}

// newLoader builds the page loader selected by the scan flags and a
// function releasing it.
func (m *Main) newLoader(c *ScanCmd, debug bool, logger *slog.Logger) (adscan.DocumentLoader, func(), error) {
	var loader adscan.DocumentLoader
	var release func()

	if c.Browser {
		bm, err := rod.NewBrowserManager()
		if err != nil {
			return nil, nil, err
		}
		loader = rod.NewLoader(bm, c.Settle)
		release = func() { _ = bm.Close() }
	} else {
		var fetcher adscan.Fetcher = adhttp.NewFetcher(adhttp.WithTimeout(c.Timeout))
		if debug {
			fetcher = adslog.NewLoggingFetcher(fetcher, logger)
		}
		loader = goquery.NewLoader(fetcher)
		release = func() { _ = fetcher.Close() }
	}

	if debug {
		loader = adslog.NewLoggingLoader(loader, logger)
	}
	return loader, release, nil
}

func defaultDBPath() string {
	if path := os.Getenv("ADSCAN_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "adscan.db"
	}
	dir := filepath.Join(home, ".adscan")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "adscan.db")
}
