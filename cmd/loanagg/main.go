package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/aevon-lab/loan-aggregator/internal/core/config"
	"github.com/aevon-lab/loan-aggregator/internal/ingestion"
	"github.com/aevon-lab/loan-aggregator/internal/projection"
	"github.com/aevon-lab/loan-aggregator/internal/server"
)

type options struct {
	configPath string
	format     string
	network    string
	product    string
	month      string
	serve      bool
	files      []string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("loanagg", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "Path to configuration file (optional)")
	fs.StringVar(&o.format, "format", "", "Report format override: text, json or yaml")
	fs.StringVar(&o.network, "network", "", "Print the aggregate for one network (requires -product and -month)")
	fs.StringVar(&o.product, "product", "", "Product for a single-key query")
	fs.StringVar(&o.month, "month", "", "Month for a single-key query")
	fs.BoolVar(&o.serve, "serve", false, "Serve the query API after ingestion")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.files = fs.Args()
	if len(o.files) == 0 {
		return o, fmt.Errorf("usage: loanagg [flags] FILE...")
	}
	if (o.network != "" || o.product != "" || o.month != "") &&
		(o.network == "" || o.product == "" || o.month == "") {
		return o, fmt.Errorf("-network, -product and -month must be given together")
	}
	return o, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Invalid arguments", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		slog.Error("loanagg failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	cfg, err := corecfg.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ing := ingestion.NewIngester(ingestion.WithMalformedHandler(malformedPolicy(cfg.Input.OnMalformed)))
	openOpts := ingestion.OpenOptions{
		Format: cfg.Input.Format,
		CSV: ingestion.CSVOptions{
			Delimiter:  cfg.Input.DelimiterRune(),
			Comment:    cfg.Input.CommentRune(),
			Quote:      cfg.Input.QuoteRune(),
			LazyQuotes: cfg.Input.LazyQuotes,
		},
	}

	for _, path := range opts.files {
		if err := ingestFile(ing, path, openOpts); err != nil {
			return err
		}
	}

	if opts.network != "" {
		row := projection.BucketRow{
			Network: opts.network,
			Product: opts.product,
			Month:   opts.month,
			Count:   ing.Count(opts.network, opts.product, opts.month),
			Total:   ing.Total(opts.network, opts.product, opts.month),
		}
		if err := projection.WriteReport(out, projection.Report{Buckets: []projection.BucketRow{row}}, cfg.Output.Format); err != nil {
			return err
		}
	} else if err := projection.WriteReport(out, projection.BuildReport(ing, ing.Stats()), cfg.Output.Format); err != nil {
		return err
	}

	if !cfg.Server.Enabled && !opts.serve {
		return nil
	}

	srv := server.New(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port), ing, cfg.Server.Mode)
	projection.NewService(ing).RegisterRoutes(srv.Engine)

	return srv.Run(ctx)
}

func ingestFile(ing *ingestion.Ingester, path string, opts ingestion.OpenOptions) error {
	src, err := ingestion.Open(path, opts)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := ing.Ingest(src); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func malformedPolicy(policy string) ingestion.MalformedHandler {
	if policy == corecfg.OnMalformedSkip {
		return ingestion.SkipMalformed
	}
	return ingestion.AbortOnMalformed
}
