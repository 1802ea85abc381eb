package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/relic-scan/internal/catalog"
	"github.com/ironsheep/relic-scan/internal/config"
	"github.com/ironsheep/relic-scan/internal/imaging"
	"github.com/ironsheep/relic-scan/internal/layout"
	"github.com/ironsheep/relic-scan/internal/market"
	"github.com/ironsheep/relic-scan/internal/match"
	"github.com/ironsheep/relic-scan/internal/normalize"
	"github.com/ironsheep/relic-scan/internal/ocr"
	"github.com/ironsheep/relic-scan/internal/server"
	"github.com/ironsheep/relic-scan/internal/session"
	"github.com/ironsheep/relic-scan/internal/watch"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `relic-scan - identify relic reward items from screen captures

Usage:
  relic-scan [mcp]                                   Run the MCP server on stdin/stdout
  relic-scan scan [-annotate out.png] [-no-prices] <capture>
                                                     Scan one capture and print the rewards
  relic-scan watch [-no-prices] <dir>                Scan every capture saved into dir
  relic-scan match <text...>                         Clean up and match OCR text

Options:
  --version, -v    Print version information
  --help, -h       Print this help message

Environment variables (also read from .env):
  RELICSCAN_LOG_LEVEL=debug       Log level (default info)
  RELICSCAN_DEBUG=true            Include matcher traces in debug logs
  RELICSCAN_CATALOG=path          Text or JSON item catalog (default built-in)
  RELICSCAN_OCR_LANGUAGE=eng      Tesseract language
  RELICSCAN_TESSDATA=path         Tesseract traineddata directory
  RELICSCAN_OCR_THRESHOLD=140     Binarization cutoff (1-255)
  RELICSCAN_OCR_UPSCALE=2         Region upscale factor before OCR
  RELICSCAN_MARKET_URL=url        warframe.market API base URL
  RELICSCAN_PLATFORM=pc           warframe.market platform
  RELICSCAN_MARKET_TIMEOUT=10s    Price lookup timeout
`

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("relic-scan %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Print(usage)
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "relic-scan: %v\n", err)
		os.Exit(2)
	}

	// Logs go to stderr; stdout is for MCP and reports
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(cfg.LogLevel).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Args[1:], os.Stdout); err != nil {
		log.Error().Err(err).Msg("relic-scan failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string, stdout io.Writer) error {
	cmd := "mcp"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}

	switch cmd {
	case "mcp":
		return a.serve(ctx)
	case "scan":
		return a.scan(ctx, args, stdout)
	case "watch":
		return a.watch(ctx, args, stdout)
	case "match":
		return a.match(args, stdout)
	default:
		return fmt.Errorf("unknown command %q (see relic-scan --help)", cmd)
	}
}

// app holds the components shared by every command.
type app struct {
	log     zerolog.Logger
	catalog *catalog.Catalog
	matcher *match.Matcher
	ocr     *ocr.Tesseract
	market  *market.Client
	cache   *imaging.ImageCache
}

func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	c, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("items", c.Len()).Str("path", cfg.CatalogPath).Msg("catalog loaded")

	mopts := cfg.Market
	mopts.Logger = log.With().Str("component", "market").Logger()

	return &app{
		log:     log,
		catalog: c,
		matcher: match.New(c, match.Options{Debug: cfg.Debug}),
		ocr:     ocr.New(cfg.OCR, log.With().Str("component", "ocr").Logger()),
		market:  market.New(mopts),
		cache:   imaging.NewImageCache(),
	}, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func (a *app) session(prices bool) *session.Session {
	resolver := layout.NewResolver(a.ocr, a.matcher, a.log.With().Str("component", "layout").Logger())
	opts := []session.Option{session.WithLogger(a.log)}
	if prices {
		opts = append(opts, session.WithPrices(a.market))
	}
	return session.New(resolver, opts...)
}

func (a *app) serve(ctx context.Context) error {
	a.log.Info().Str("version", Version).Str("commit", GitCommit).Msg("starting MCP server")

	srv := server.New(server.Deps{
		Catalog: a.catalog,
		Session: a.session(true),
		Prices:  a.market,
		OCR:     a.ocr,
		Cache:   a.cache,
		Logger:  a.log,
		Version: Version,
	})
	err := srv.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) scan(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	annotate := fs.String("annotate", "", "write an annotated copy of the capture to this path")
	noPrices := fs.Bool("no-prices", false, "skip price lookups")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("scan needs exactly one capture path")
	}

	return a.scanFile(ctx, a.session(!*noPrices), fs.Arg(0), *annotate, stdout)
}

func (a *app) watch(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	noPrices := fs.Bool("no-prices", false, "skip price lookups")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("watch needs exactly one directory")
	}

	sess := a.session(!*noPrices)
	return watch.Run(ctx, fs.Arg(0), a.log, func(ctx context.Context, path string) error {
		// the same file name may be reused by the next screenshot
		defer a.cache.Evict(path)
		return a.scanFile(ctx, sess, path, "", stdout)
	})
}

func (a *app) scanFile(ctx context.Context, sess *session.Session, path, annotatePath string, stdout io.Writer) error {
	img, err := a.cache.Load(path)
	if err != nil {
		return err
	}

	out, err := sess.RunScan(ctx, img)
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}

	printReport(stdout, path, out, sess.Prices(ctx, out))

	if annotatePath != "" {
		annotated := imaging.Annotate(img, session.Labels(out, img.Bounds()))
		if err := imaging.SaveAnnotated(annotated, annotatePath); err != nil {
			return err
		}
		a.log.Info().Str("path", annotatePath).Msg("annotated capture written")
	}
	return nil
}

func printReport(w io.Writer, path string, out layout.Outcome, priced []session.Priced) {
	fmt.Fprintf(w, "%s\n", path)
	if !out.Resolved() {
		fmt.Fprintln(w, "  No rewards detected")
		return
	}

	fmt.Fprintf(w, "  Layout: %s\n", out.Layout.Slots)
	prices := make(map[string]string, len(priced))
	for _, p := range priced {
		prices[p.Name] = p.Price
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, name := range out.Names {
		fmt.Fprintf(tw, "  %d.\t%s\t%s\n", i+1, name, prices[name])
	}
	tw.Flush()
}

func (a *app) match(args []string, stdout io.Writer) error {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("match needs some text")
	}

	cleaned := normalize.Text(text)
	report := a.matcher.Match(cleaned)

	fmt.Fprintf(stdout, "Cleaned: %s\n", cleaned)
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	for _, r := range report.Results {
		fmt.Fprintf(tw, "  %s\t%.3f\n", r, r.Score)
	}
	tw.Flush()

	for _, tr := range report.Traces {
		a.log.Debug().
			Str("phrase", tr.Phrase).
			Str("best", tr.Best.Name).
			Float64("score", tr.Best.Score).
			Float64("runner_up", tr.RunnerUp).
			Bool("accepted", tr.Accepted).
			Msg("match")
	}
	return nil
}
