package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/WedScrape/internal/config"
	"github.com/IshaanNene/WedScrape/internal/engine"
	"github.com/IshaanNene/WedScrape/internal/fetcher"
	"github.com/IshaanNene/WedScrape/internal/parser"
	"github.com/IshaanNene/WedScrape/internal/storage"
	"github.com/IshaanNene/WedScrape/internal/types"
)

// renderOne renders a single URL with a short-lived renderer.
func renderOne(cmd *cobra.Command, rawURL, mode string) (*types.Page, error) {
	cfg, err := loadConfig(func(cfg *config.Config) {
		if mode != "" {
			cfg.Browser.Mode = strings.ToLower(mode)
		}
		if cfg.Browser.Wait == 0 {
			cfg.Browser.Wait = defaultFetchWait
		}
	})
	if err != nil {
		return nil, err
	}
	if err := config.ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidURL, err)
	}
	logger := setupLogger(&cfg.Logging)

	renderer, err := fetcher.NewRenderer(&cfg.Browser, logger)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	defer renderer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Navigating to: %s\n", rawURL)
	return renderer.Render(ctx, rawURL)
}

// fetchCmd creates the "fetch" subcommand.
func fetchCmd() *cobra.Command {
	var output, mode string

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Render a page and save its HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := renderOne(cmd, args[0], mode)
			if err != nil {
				return err
			}
			if output == "" {
				output = storage.Slug(args[0]) + ".html"
			}
			if err := storage.WriteHTML(output, page.HTML); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "SUCCESS: The complete HTML (%d bytes) has been saved to '%s'\n", page.Size(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <slug>.html)")
	cmd.Flags().StringVar(&mode, "mode", "", "renderer: browser or http")
	return cmd
}

// linksCmd creates the "links" subcommand.
func linksCmd() *cobra.Command {
	var output, match, mode string
	var appendOut bool

	cmd := &cobra.Command{
		Use:   "links <listing-url>",
		Short: "Harvest links from a rendered listing page",
		Long: `Render a listing page and print every http(s) link on it.
With --output the links are written one per line; --append adds them to an
existing file so several listing pages can be collected before running dedup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := renderOne(cmd, args[0], mode)
			if err != nil {
				return err
			}
			doc, err := page.Document()
			if err != nil {
				return &types.ParseError{URL: page.URL, Region: "document", Err: err}
			}

			var filter parser.LinkFilter
			if match != "" {
				filter = parser.ContainsFilter(match)
			}
			links := parser.ExtractLinks(doc, page.FinalURL, filter)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\n--- All Links Found on the Page ---")
			for _, link := range links {
				fmt.Fprintln(out, link)
			}
			fmt.Fprintf(out, "\nTotal links found: %d\n", len(links))

			if output == "" {
				return nil
			}
			return writeLinks(output, links, appendOut)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write links to this file, one per line")
	cmd.Flags().BoolVar(&appendOut, "append", false, "append to --output instead of replacing it")
	cmd.Flags().StringVar(&match, "match", "", "keep only links containing this text (e.g. /profile/)")
	cmd.Flags().StringVar(&mode, "mode", "", "renderer: browser or http")
	return cmd
}

func writeLinks(path string, links []string, appendOut bool) error {
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendOut {
		flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return &types.StorageError{Backend: "file", Err: err}
	}
	for _, link := range links {
		if _, err := fmt.Fprintln(f, link); err != nil {
			f.Close()
			return &types.StorageError{Backend: "file", Err: err}
		}
	}
	return f.Close()
}

// dedupCmd creates the "dedup" subcommand.
func dedupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dedup <input> [output]",
		Short: "Remove duplicate links from a link file, keeping order",
		Long: `Read links one per line (quotes and blank lines are ignored) and write the
unique ones as a bracketed list of quoted strings. The output defaults to the input file.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[0]
			if len(args) == 2 {
				out = args[1]
			}

			_, report, err := engine.CleanLinksFile(in, out)
			if err != nil {
				return err
			}

			t := newTable(cmd)
			t.AppendRows([]table.Row{
				{"Original links", report.Original},
				{"Unique links", report.Unique},
				{"Removed duplicates", report.Removed},
			})
			t.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "Cleaned links saved to: %s\n", out)
			return nil
		},
	}
}
