package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/WedScrape/internal/config"
	"github.com/IshaanNene/WedScrape/internal/types"
)

// HTTPRenderer fetches the server response without executing scripts.
// Useful for listing pages and saved fixtures that do not need a browser.
type HTTPRenderer struct {
	client *http.Client
	cfg    *config.BrowserConfig
	logger *slog.Logger
}

// NewHTTPRenderer creates a renderer backed by net/http.
func NewHTTPRenderer(cfg *config.BrowserConfig, logger *slog.Logger) *HTTPRenderer {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:     chromeTLSConfig(),
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  true, // decompression (including brotli) happens in Render
	}

	return &HTTPRenderer{
		client: &http.Client{
			Transport: newBrowserTransport(transport, cfg.UserAgent),
			Timeout:   cfg.NavigateTimeout,
		},
		cfg:    cfg,
		logger: logger.With("component", "http_renderer"),
	}
}

// Render performs a GET request and returns the decompressed body.
func (r *HTTPRenderer) Render(ctx context.Context, url string) (*types.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &types.NavigationError{URL: url, Err: err}
	}
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &types.NavigationError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &types.NavigationError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d: %s", resp.StatusCode, body),
		}
	}

	reader, err := decompressReader(resp, resp.Body)
	if err != nil {
		return nil, &types.NavigationError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	if r.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, r.cfg.MaxBodySize)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &types.NavigationError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	page := types.NewPage(url, resp.Request.URL.String(), body, time.Since(start))

	r.logger.Debug("fetch complete",
		"url", url,
		"status", resp.StatusCode,
		"encoding", resp.Header.Get("Content-Encoding"),
		"size", len(body),
		"duration", page.RenderDuration,
	)

	return page, nil
}

// Close releases idle connections.
func (r *HTTPRenderer) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// Type returns the renderer type identifier.
func (r *HTTPRenderer) Type() string {
	return "http"
}

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}
