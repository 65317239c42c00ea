package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters for a scrape run.
type Metrics struct {
	// Render metrics
	PagesRendered  atomic.Int64
	RenderFailures atomic.Int64
	BytesRendered  atomic.Int64
	RenderMillis   atomic.Int64

	// Extraction metrics
	ParseFailures  atomic.Int64
	RecordsScraped atomic.Int64
	RecordsDropped atomic.Int64
	RecordsStored  atomic.Int64

	// Input metrics
	URLsInvalid   atomic.Int64
	URLsDuplicate atomic.Int64

	logger *slog.Logger
	server *http.Server
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// ObserveRender records one successful render.
func (m *Metrics) ObserveRender(bytes int, took time.Duration) {
	m.PagesRendered.Add(1)
	m.BytesRendered.Add(int64(bytes))
	m.RenderMillis.Add(took.Milliseconds())
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"wedscrape_pages_rendered_total", "Total pages rendered", m.PagesRendered.Load()},
		{"wedscrape_render_failures_total", "Total pages that failed to render", m.RenderFailures.Load()},
		{"wedscrape_bytes_rendered_total", "Total bytes of rendered HTML", m.BytesRendered.Load()},
		{"wedscrape_render_milliseconds_total", "Total time spent rendering", m.RenderMillis.Load()},
		{"wedscrape_parse_failures_total", "Total documents that failed extraction", m.ParseFailures.Load()},
		{"wedscrape_records_scraped_total", "Total records kept", m.RecordsScraped.Load()},
		{"wedscrape_records_dropped_total", "Total records dropped by the pipeline", m.RecordsDropped.Load()},
		{"wedscrape_records_stored_total", "Total records written to storage", m.RecordsStored.Load()},
		{"wedscrape_urls_invalid_total", "Total input URLs rejected before rendering", m.URLsInvalid.Load()},
		{"wedscrape_urls_duplicate_total", "Total duplicate input URLs skipped", m.URLsDuplicate.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// Handler returns the metrics mux with a /health probe.
func (m *Metrics) Handler(path string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	return mux
}

// StartServer starts the metrics HTTP server in the background.
func (m *Metrics) StartServer(port int, path string) {
	addr := fmt.Sprintf(":%d", port)
	m.server = &http.Server{
		Addr:              addr,
		Handler:           m.Handler(path),
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()
}

// Shutdown stops the metrics server if it was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"pages_rendered":  m.PagesRendered.Load(),
		"render_failures": m.RenderFailures.Load(),
		"bytes_rendered":  m.BytesRendered.Load(),
		"render_millis":   m.RenderMillis.Load(),
		"parse_failures":  m.ParseFailures.Load(),
		"records_scraped": m.RecordsScraped.Load(),
		"records_dropped": m.RecordsDropped.Load(),
		"records_stored":  m.RecordsStored.Load(),
		"urls_invalid":    m.URLsInvalid.Load(),
		"urls_duplicate":  m.URLsDuplicate.Load(),
	}
}
