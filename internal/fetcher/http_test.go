package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/WedScrape/internal/config"
	"github.com/IshaanNene/WedScrape/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const profileHTML = `<html><head><title>Glam by Riya | WedMeGood</title></head><body><h1 class="h4 text-bold">Glam by Riya</h1></body></html>`

func testBrowserConfig() *config.BrowserConfig {
	cfg := config.DefaultConfig().Browser
	cfg.Mode = "http"
	return &cfg
}

func TestHTTPRendererBrotli(t *testing.T) {
	var gotUA, gotEncoding string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotEncoding = r.Header.Get("Accept-Encoding")

		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		_, _ = bw.Write([]byte(profileHTML))
		_ = bw.Close()

		w.Header().Set("Content-Encoding", "br")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	r := NewHTTPRenderer(testBrowserConfig(), testLogger)
	defer r.Close()

	page, err := r.Render(context.Background(), srv.URL+"/profile/Glam-by-Riya-1")
	require.NoError(t, err)

	assert.Equal(t, profileHTML, string(page.HTML))
	assert.Equal(t, srv.URL+"/profile/Glam-by-Riya-1", page.URL)
	assert.Equal(t, page.URL, page.FinalURL)
	assert.True(t, page.Ready)
	assert.Equal(t, config.DefaultUserAgent, gotUA)
	assert.Contains(t, gotEncoding, "br")
}

func TestHTTPRendererGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(profileHTML))
		_ = gz.Close()
	}))
	defer srv.Close()

	page, err := NewHTTPRenderer(testBrowserConfig(), testLogger).Render(context.Background(), srv.URL)
	require.NoError(t, err)

	doc, err := page.Document()
	require.NoError(t, err)
	assert.Equal(t, "Glam by Riya", doc.Find("h1").Text())
}

func TestHTTPRendererFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(profileHTML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page, err := NewHTTPRenderer(testBrowserConfig(), testLogger).Render(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/old", page.URL)
	assert.Equal(t, srv.URL+"/new", page.FinalURL)
}

func TestHTTPRendererStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPRenderer(testBrowserConfig(), testLogger).Render(context.Background(), srv.URL)
	require.Error(t, err)

	var navErr *types.NavigationError
	require.True(t, errors.As(err, &navErr))
	assert.Equal(t, http.StatusNotFound, navErr.StatusCode)
	assert.Equal(t, srv.URL, navErr.URL)
}

func TestHTTPRendererBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(profileHTML))
	}))
	defer srv.Close()

	cfg := testBrowserConfig()
	cfg.MaxBodySize = 10

	page, err := NewHTTPRenderer(cfg, testLogger).Render(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 10, page.Size())
}

func TestHTTPRendererUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPRenderer(testBrowserConfig(), testLogger).Render(context.Background(), url)
	var navErr *types.NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Zero(t, navErr.StatusCode)
}

func TestNewRendererMode(t *testing.T) {
	r, err := NewRenderer(testBrowserConfig(), testLogger)
	require.NoError(t, err)
	assert.Equal(t, "http", r.Type())
	assert.NoError(t, r.Close())

	cfg := testBrowserConfig()
	cfg.Mode = "carrier-pigeon"
	_, err = NewRenderer(cfg, testLogger)
	assert.Error(t, err)
}

func TestBrowserRendererLive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if os.Getenv("WEDSCRAPE_BROWSER_TESTS") == "" {
		t.Skip("set WEDSCRAPE_BROWSER_TESTS=1 to run against a local Chromium")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(profileHTML))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig().Browser
	cfg.Wait = 5 * time.Second
	cfg.ReadySelector = "h1.h4"

	r, err := NewBrowserRenderer(&cfg, testLogger)
	require.NoError(t, err)
	defer r.Close()

	page, err := r.Render(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, string(page.HTML), "Glam by Riya")

	require.NoError(t, r.Close())
	_, err = r.Render(context.Background(), srv.URL)
	assert.ErrorIs(t, err, types.ErrRendererNotReady)
}
