package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/WedScrape/internal/config"
	"github.com/IshaanNene/WedScrape/internal/engine"
	"github.com/IshaanNene/WedScrape/internal/fetcher"
	"github.com/IshaanNene/WedScrape/internal/observability"
	"github.com/IshaanNene/WedScrape/internal/parser"
	"github.com/IshaanNene/WedScrape/internal/pipeline"
	"github.com/IshaanNene/WedScrape/internal/storage"
	"github.com/IshaanNene/WedScrape/internal/types"
)

// scrapeFlags holds the flags of the scrape command.
type scrapeFlags struct {
	urlsFile      string
	output        string
	format        string
	wait          time.Duration
	readySelector string
	fixedWait     bool
	debug         bool
	mode          string
	uniqueURLs    bool
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	var flags scrapeFlags

	cmd := &cobra.Command{
		Use:   "scrape <category> [url...]",
		Short: "Scrape vendor profile pages into records",
		Long: `Render each URL in order, extract a record with the category's schema and
write the retained records to the configured storage.

URLs come from the arguments, from --urls-file, or from scrape.urls in the config.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, args, &flags)
		},
	}

	cmd.Flags().StringVar(&flags.urlsFile, "urls-file", "", "file with one URL per line")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file path (default: per-category file)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: json, jsonl, csv, mongo, redis")
	cmd.Flags().DurationVar(&flags.wait, "wait", 0, "max time to wait for the page to become ready (default: per category)")
	cmd.Flags().StringVar(&flags.readySelector, "ready-selector", "", "CSS selector that marks the page as ready")
	cmd.Flags().BoolVar(&flags.fixedWait, "fixed-wait", false, "always sleep for --wait instead of polling for the ready selector")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "save every rendered page to the debug directory")
	cmd.Flags().StringVar(&flags.mode, "mode", "", "renderer: browser or http")
	cmd.Flags().BoolVar(&flags.uniqueURLs, "unique-urls", false, "skip URLs already processed in this run")

	return cmd
}

func (f *scrapeFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if f.urlsFile != "" {
		cfg.Scrape.URLsFile = f.urlsFile
	}
	if f.output != "" {
		cfg.Storage.OutputPath = f.output
	}
	if f.format != "" {
		cfg.Storage.Type = strings.ToLower(f.format)
	}
	if f.wait > 0 {
		cfg.Browser.Wait = f.wait
	}
	if f.readySelector != "" {
		cfg.Browser.ReadySelector = f.readySelector
	}
	if cmd.Flags().Changed("fixed-wait") {
		cfg.Browser.FixedWait = f.fixedWait
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug.Enabled = f.debug
	}
	if f.mode != "" {
		cfg.Browser.Mode = strings.ToLower(f.mode)
	}
	if cmd.Flags().Changed("unique-urls") {
		cfg.Scrape.UniqueURLs = f.uniqueURLs
	}
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string, flags *scrapeFlags) error {
	cfg, err := loadConfig(func(cfg *config.Config) { flags.apply(cmd, cfg) })
	if err != nil {
		return err
	}
	logger := setupLogger(&cfg.Logging)

	categoryName := cfg.Scrape.Category
	if len(args) > 0 {
		categoryName, args = args[0], args[1:]
	}
	category, err := types.ParseCategory(categoryName)
	if err != nil {
		return err
	}
	schema, err := parser.SchemaFor(category)
	if err != nil {
		return err
	}
	applyRenderDefaults(&cfg.Browser, schema)

	urls, err := resolveURLs(cfg, args)
	if err != nil {
		return err
	}

	logger.Info("starting scrape",
		"category", category,
		"urls", len(urls),
		"mode", cfg.Browser.Mode,
		"wait", cfg.Browser.Wait,
		"ready_selector", cfg.Browser.ReadySelector,
		"format", cfg.Storage.Type,
	)

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(logger)
		metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metrics.Shutdown(ctx)
		}()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Setting up renderer...")
	renderer, err := fetcher.NewRenderer(&cfg.Browser, logger)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			logger.Error("renderer close error", "error", err)
		}
		fmt.Fprintln(out, "Renderer closed.")
	}()
	fmt.Fprintf(out, "Renderer setup complete (%s).\n", renderer.Type())

	pipe := pipeline.New(logger).Use(&pipeline.RetainMiddleware{Retains: schema.Retains})
	eng := engine.New(cfg, renderer, parser.NewExtractor(schema, logger), pipe, logger)
	if metrics != nil {
		eng.SetMetrics(metrics)
	}
	if cfg.Debug.Enabled {
		eng.SetPageSaver(storage.NewDebugWriter(cfg.Debug.Dir, logger))
	}
	eng.OnProgress(progressPrinter(out))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, runErr := eng.Run(ctx, urls)
	if runErr != nil {
		if result == nil {
			return fmt.Errorf("run: %w", runErr)
		}
		logger.Warn("run interrupted; keeping records gathered so far", "error", runErr, "records", len(result.Records))
	}

	fmt.Fprintln(out, strings.Repeat("-", 50))
	location, err := storeRecords(cfg, category, result.Records, logger)
	if errors.Is(err, types.ErrNoRecords) {
		fmt.Fprintln(out, "\nNo data was scraped. The output file will not be created.")
		printSummary(cmd, result.Stats, "")
		return nil
	}
	if err != nil {
		return err
	}
	if metrics != nil {
		metrics.RecordsStored.Add(int64(len(result.Records)))
	}

	fmt.Fprintf(out, "\nSUCCESS: Scraped data from %d URL(s).\n", len(result.Records))
	fmt.Fprintf(out, "All results have been saved to '%s'\n", location)
	printSummary(cmd, result.Stats, location)
	return nil
}

// resolveURLs merges positional URLs with the URL file; config URLs are the fallback.
func resolveURLs(cfg *config.Config, args []string) ([]string, error) {
	urls := append([]string(nil), args...)
	if cfg.Scrape.URLsFile != "" {
		fromFile, err := config.ReadURLList(cfg.Scrape.URLsFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		urls = append(urls, cfg.Scrape.URLs...)
	}
	if len(urls) == 0 {
		return nil, errors.New("no URLs given: pass them as arguments, with --urls-file, or in scrape.urls")
	}
	return urls, nil
}

// storeRecords writes records to the configured storage and returns where they went.
// No backend is opened for an empty result.
func storeRecords(cfg *config.Config, category types.Category, records []*types.VendorRecord, logger *slog.Logger) (string, error) {
	if len(records) == 0 {
		return "", types.ErrNoRecords
	}
	store, err := storage.New(&cfg.Storage, category, logger)
	if err != nil {
		return "", fmt.Errorf("create storage: %w", err)
	}
	if err := store.Store(records); err != nil {
		_ = store.Close()
		return "", fmt.Errorf("store records: %w", err)
	}
	if err := store.Close(); err != nil {
		return "", fmt.Errorf("close storage: %w", err)
	}

	location := store.Name()
	if l, ok := store.(storage.Locator); ok {
		location = l.Location()
	}
	return location, nil
}

// progressPrinter prints one block of console output per URL.
func progressPrinter(w io.Writer) engine.ProgressFunc {
	return func(ev engine.Event) {
		switch ev.Kind {
		case engine.EventStart:
			fmt.Fprintln(w, strings.Repeat("-", 50))
			fmt.Fprintf(w, "Processing URL %d/%d: %s\n", ev.Index, ev.Total, ev.URL)
		case engine.EventScraped:
			fmt.Fprintf(w, "-> Successfully parsed data for: %s (%.2fs)\n", ev.Record.Name, ev.Elapsed.Seconds())
		case engine.EventDropped:
			fmt.Fprintf(w, "-> No key data found for %s after %.2fs; record skipped\n", ev.URL, ev.Elapsed.Seconds())
		case engine.EventFailed:
			fmt.Fprintf(w, "-> FAILED to process URL %s. Error: %v\n", ev.URL, ev.Err)
		case engine.EventSkipped:
			fmt.Fprintf(w, "Skipping duplicate URL %d/%d: %s\n", ev.Index, ev.Total, ev.URL)
		}
	}
}

func printSummary(cmd *cobra.Command, stats *engine.Stats, location string) {
	if location == "" {
		location = "(not written)"
	}
	t := newTable(cmd)
	t.SetTitle("Scrape summary")
	t.AppendRows([]table.Row{
		{"URLs", stats.URLsTotal.Load()},
		{"Pages rendered", stats.PagesRendered.Load()},
		{"Records written", stats.RecordsScraped.Load()},
		{"Records dropped", stats.RecordsDropped.Load()},
		{"Failures", stats.Failures()},
		{"Duplicates skipped", stats.URLsDuplicate.Load()},
		{"Elapsed", stats.Elapsed().Round(time.Millisecond)},
		{"Output", location},
	})
	t.Render()
}

// parseCmd creates the "parse" subcommand for offline extraction.
func parseCmd() *cobra.Command {
	var sourceURL string

	cmd := &cobra.Command{
		Use:   "parse <category> <html-file>",
		Short: "Extract a record from a saved HTML page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}
			logger := setupLogger(&cfg.Logging)

			category, err := types.ParseCategory(args[0])
			if err != nil {
				return err
			}
			schema, err := parser.SchemaFor(category)
			if err != nil {
				return err
			}
			html, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			if sourceURL == "" {
				sourceURL = args[1]
			}

			rec, err := parser.NewExtractor(schema, logger).Extract(html, sourceURL)
			if err != nil {
				return err
			}
			if !schema.Retains(rec) {
				logger.Warn("record carries no key data and would be dropped by scrape", "file", args[1])
			}

			data, err := storage.EncodeJSON(rec)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&sourceURL, "url", "", "source URL recorded in the output (default: the file path)")
	return cmd
}
