package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/WedScrape/internal/config"
	"github.com/IshaanNene/WedScrape/internal/engine"
	"github.com/IshaanNene/WedScrape/internal/parser"
	"github.com/IshaanNene/WedScrape/internal/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "WedScrape "+config.Version+"\n", out)
}

func TestDedupCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "links.txt")
	outPath := filepath.Join(dir, "clean.txt")
	require.NoError(t, os.WriteFile(in, []byte("a\nb\na\nc\nb\n"), 0o644))

	out, err := execute(t, "dedup", in, outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Original links")
	assert.Contains(t, out, "Cleaned links saved to: "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "[\n    \"a\",\n    \"b\",\n    \"c\"\n]\n", string(data))

	original, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\na\nc\nb\n", string(original), "input is untouched when an output is given")
}

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "venue.html")
	require.NoError(t, os.WriteFile(page, []byte(`<html><head><title>Grand Palace | WedMeGood</title></head>
<body><div class="addr-right">Whitefield, Bangalore</div></body></html>`), 0o644))

	out, err := execute(t, "parse", "venue", page, "--url", "https://example.com/grand")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Grand Palace"`)
	assert.Contains(t, out, `"location": "Whitefield, Bangalore"`)
	assert.Contains(t, out, `"source_url": "https://example.com/grand"`)
	assert.Contains(t, out, `"room_count": null`)
}

func TestParseCommandUnknownCategory(t *testing.T) {
	_, err := execute(t, "parse", "florist", "missing.html")
	assert.True(t, errors.Is(err, types.ErrUnknownCategory))
}

func TestResolveURLs(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "urls.txt")
	require.NoError(t, os.WriteFile(list, []byte("[\n    \"https://x/2\",\n    \"https://x/3\"\n]\n"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Scrape.URLs = []string{"https://x/config"}

	urls, err := resolveURLs(cfg, []string{"https://x/1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/1"}, urls)

	cfg.Scrape.URLsFile = list
	urls, err = resolveURLs(cfg, []string{"https://x/1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/1", "https://x/2", "https://x/3"}, urls)

	cfg.Scrape.URLsFile = ""
	urls, err = resolveURLs(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/config"}, urls)

	cfg.Scrape.URLs = nil
	_, err = resolveURLs(cfg, nil)
	assert.Error(t, err)
}

func TestApplyRenderDefaults(t *testing.T) {
	venue, err := parser.VenueSchema()
	require.NoError(t, err)
	caterer, err := parser.CatererSchema()
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	applyRenderDefaults(&cfg.Browser, venue)
	assert.Equal(t, 5*time.Second, cfg.Browser.Wait)
	assert.Equal(t, "div.addr-right", cfg.Browser.ReadySelector)

	cfg = config.DefaultConfig()
	applyRenderDefaults(&cfg.Browser, caterer)
	assert.Equal(t, 8*time.Second, cfg.Browser.Wait)

	cfg = config.DefaultConfig()
	cfg.Browser.Wait = 2 * time.Second
	cfg.Browser.ReadySelector = "h1"
	applyRenderDefaults(&cfg.Browser, venue)
	assert.Equal(t, 2*time.Second, cfg.Browser.Wait)
	assert.Equal(t, "h1", cfg.Browser.ReadySelector)
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	emit := progressPrinter(&buf)

	emit(engine.Event{Kind: engine.EventStart, Index: 1, Total: 2, URL: "https://x/1"})
	emit(engine.Event{Kind: engine.EventScraped, Index: 1, Total: 2, URL: "https://x/1",
		Elapsed: 1500 * time.Millisecond, Record: &types.VendorRecord{Name: "Grand Palace"}})
	emit(engine.Event{Kind: engine.EventFailed, Index: 2, Total: 2, URL: "https://x/2", Err: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, "Processing URL 1/2: https://x/1\n")
	assert.Contains(t, out, "-> Successfully parsed data for: Grand Palace (1.50s)\n")
	assert.Contains(t, out, "-> FAILED to process URL https://x/2. Error: boom\n")
}

func TestStoreRecordsEmpty(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.OutputPath = filepath.Join(t.TempDir(), "out.json")

	_, err := storeRecords(cfg, types.CategoryVenue, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorIs(t, err, types.ErrNoRecords)
	assert.NoFileExists(t, cfg.Storage.OutputPath)
}

func TestStoreRecordsJSON(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.OutputPath = filepath.Join(t.TempDir(), "out.json")
	records := []*types.VendorRecord{{
		Category:  types.CategoryMakeup,
		Name:      "Glam by Riya",
		Location:  "Bangalore",
		Pricing:   types.Pricing{"bridal_makeup_price": types.Formatted("₹15000 per function")},
		SourceURL: "https://example.com/glam",
	}}

	location, err := storeRecords(cfg, types.CategoryMakeup, records, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, cfg.Storage.OutputPath, location)

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"bridal_makeup_price": "₹15000 per function"`)
}

func TestSetupLoggerLevels(t *testing.T) {
	logger := setupLogger(&config.LoggingConfig{Level: "warn", Format: "json"})
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}
