package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/WedScrape/internal/config"
	"github.com/IshaanNene/WedScrape/internal/parser"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wedscrape",
		Short: "WedScrape: wedding vendor listing scraper",
		Long: `WedScrape renders wedding vendor profile pages and extracts structured records.

Categories:
  venue         name, location, plate/decor/rental prices, areas, policies, room count
  caterer       name, location, menu prices, about text, cuisines
  makeup        name, location, package prices, about text, services offered
  photographer  name, location, package prices, about text, services offered

Tools:
  fetch   save the rendered HTML of one page
  links   harvest profile links from a listing page
  dedup   remove duplicate links from a link file`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(linksCmd())
	rootCmd.AddCommand(dedupCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "WedScrape %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			t := newTable(cmd)
			t.AppendHeader(table.Row{"Section", "Key", "Value"})
			for _, row := range configRows(cfg) {
				t.AppendRow(row)
			}
			t.Render()
			return nil
		},
	}
}

func configRows(cfg *config.Config) []table.Row {
	wait := "category default"
	if cfg.Browser.Wait > 0 {
		wait = cfg.Browser.Wait.String()
	}
	ready := cfg.Browser.ReadySelector
	if ready == "" {
		ready = "category default"
	}
	output := cfg.Storage.OutputPath
	if output == "" {
		output = "category default"
	}
	return []table.Row{
		{"browser", "mode", cfg.Browser.Mode},
		{"browser", "headless", cfg.Browser.Headless},
		{"browser", "window", fmt.Sprintf("%dx%d", cfg.Browser.WindowWidth, cfg.Browser.WindowHeight)},
		{"browser", "stealth", cfg.Browser.Stealth},
		{"browser", "wait", wait},
		{"browser", "ready_selector", ready},
		{"browser", "fixed_wait", cfg.Browser.FixedWait},
		{"browser", "navigate_timeout", cfg.Browser.NavigateTimeout},
		{"scrape", "category", cfg.Scrape.Category},
		{"scrape", "urls", len(cfg.Scrape.URLs)},
		{"scrape", "urls_file", cfg.Scrape.URLsFile},
		{"scrape", "unique_urls", cfg.Scrape.UniqueURLs},
		{"storage", "type", cfg.Storage.Type},
		{"storage", "output_path", output},
		{"storage", "also", strings.Join(cfg.Storage.Also, ",")},
		{"debug", "enabled", cfg.Debug.Enabled},
		{"debug", "dir", cfg.Debug.Dir},
		{"logging", "level", cfg.Logging.Level},
		{"logging", "format", cfg.Logging.Format},
		{"metrics", "enabled", cfg.Metrics.Enabled},
		{"metrics", "port", cfg.Metrics.Port},
	}
}

// loadConfig loads, overrides and validates the configuration.
func loadConfig(override func(cfg *config.Config)) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if override != nil {
		override(cfg)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogger creates a structured logger.
func setupLogger(cfg *config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyRenderDefaults fills wait and readiness settings the configuration left empty.
func applyRenderDefaults(cfg *config.BrowserConfig, schema *parser.Schema) {
	if cfg.Wait == 0 {
		cfg.Wait = schema.Wait
	}
	if cfg.ReadySelector == "" {
		cfg.ReadySelector = schema.ReadySelector
	}
}

// defaultFetchWait applies when no category is involved.
const defaultFetchWait = 8 * time.Second

func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(cmd.OutOrStdout())
	return t
}
