package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/WedScrape/internal/config"
	"github.com/IshaanNene/WedScrape/internal/observability"
	"github.com/IshaanNene/WedScrape/internal/types"
)

// State represents the engine's current lifecycle state.
type State int32

const (
	StateIdle     State = 0
	StateRunning  State = 1
	StateStopping State = 2
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Stats tracks run statistics.
type Stats struct {
	URLsTotal          atomic.Int64
	URLsInvalid        atomic.Int64
	URLsDuplicate      atomic.Int64
	PagesRendered      atomic.Int64
	NavigationFailures atomic.Int64
	ParseFailures      atomic.Int64
	PipelineFailures   atomic.Int64
	RecordsScraped     atomic.Int64
	RecordsDropped     atomic.Int64
	BytesRendered      atomic.Int64
	StartTime          time.Time
	EndTime            time.Time
}

// Failures returns the number of URLs that produced no record because of an error.
func (s *Stats) Failures() int64 {
	return s.URLsInvalid.Load() + s.NavigationFailures.Load() + s.ParseFailures.Load() + s.PipelineFailures.Load()
}

// Elapsed returns the run duration, or the time since start while running.
func (s *Stats) Elapsed() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Snapshot returns a copy of stats safe for reading.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"urls_total":          s.URLsTotal.Load(),
		"urls_invalid":        s.URLsInvalid.Load(),
		"urls_duplicate":      s.URLsDuplicate.Load(),
		"pages_rendered":      s.PagesRendered.Load(),
		"navigation_failures": s.NavigationFailures.Load(),
		"parse_failures":      s.ParseFailures.Load(),
		"pipeline_failures":   s.PipelineFailures.Load(),
		"records_scraped":     s.RecordsScraped.Load(),
		"records_dropped":     s.RecordsDropped.Load(),
		"bytes_rendered":      s.BytesRendered.Load(),
		"elapsed":             s.Elapsed().String(),
	}
}

// Renderer turns a URL into a rendered document.
type Renderer interface {
	Render(ctx context.Context, url string) (*types.Page, error)
}

// Extractor turns a rendered document into a record.
type Extractor interface {
	ExtractPage(page *types.Page) (*types.VendorRecord, error)
}

// Pipeline is the interface for the record processing pipeline.
type Pipeline interface {
	Process(rec *types.VendorRecord) (*types.VendorRecord, error)
}

// PageSaver persists rendered documents for inspection.
type PageSaver interface {
	Save(page *types.Page) (string, error)
}

// EventKind classifies a progress event.
type EventKind int

const (
	EventStart EventKind = iota
	EventScraped
	EventDropped
	EventFailed
	EventSkipped
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventScraped:
		return "scraped"
	case EventDropped:
		return "dropped"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Event reports the progress of one URL. Index is 1-based.
type Event struct {
	Kind    EventKind
	Index   int
	Total   int
	URL     string
	Elapsed time.Duration
	Record  *types.VendorRecord
	Err     error
}

// ProgressFunc receives progress events in URL order.
type ProgressFunc func(ev Event)

// Failure describes one URL that produced no record.
type Failure struct {
	URL   string
	Stage string
	Err   error
}

// Result is the outcome of a run.
type Result struct {
	Records  []*types.VendorRecord
	Failures []Failure
	Stats    *Stats
}

// Engine is the sequential aggregator: one URL is rendered, extracted and
// filtered before the next one starts.
type Engine struct {
	cfg       *config.Config
	logger    *slog.Logger
	renderer  Renderer
	extractor Extractor
	pipeline  Pipeline
	saver     PageSaver
	metrics   *observability.Metrics
	progress  ProgressFunc

	state  atomic.Int32
	stats  *Stats
	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a new Engine. The pipeline may be nil.
func New(cfg *config.Config, renderer Renderer, extractor Extractor, pipeline Pipeline, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		logger:    logger.With("component", "engine"),
		renderer:  renderer,
		extractor: extractor,
		pipeline:  pipeline,
		stats:     &Stats{},
	}
}

// SetPageSaver enables the debug artifact for every rendered page.
func (e *Engine) SetPageSaver(s PageSaver) {
	e.saver = s
}

// SetMetrics mirrors run counters into m.
func (e *Engine) SetMetrics(m *observability.Metrics) {
	e.metrics = m
}

// OnProgress registers the progress callback.
func (e *Engine) OnProgress(fn ProgressFunc) {
	e.progress = fn
}

// Stats returns the statistics of the current or last run.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// GetState returns the current engine state.
func (e *Engine) GetState() State {
	return State(e.state.Load())
}

// Stop asks a running engine to finish after the current URL.
func (e *Engine) Stop() {
	if !e.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return
	}
	e.logger.Info("engine stopping...")
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.mu.Unlock()
}

// Run processes urls in order and returns the retained records.
// Per-URL failures are counted and skipped. A cancelled context ends the run
// early; the records gathered so far are returned together with the context error.
func (e *Engine) Run(ctx context.Context, urls []string) (*Result, error) {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, fmt.Errorf("engine is in state %s, cannot run", State(e.state.Load()))
	}
	defer e.state.Store(int32(StateIdle))

	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()
	defer cancel()

	e.stats = &Stats{StartTime: time.Now()}
	result := &Result{Records: []*types.VendorRecord{}, Stats: e.stats}

	var dedup *Deduplicator
	if e.cfg.Scrape.UniqueURLs {
		dedup = NewDeduplicator(len(urls))
	}

	e.logger.Info("run starting", "urls", len(urls), "unique_urls", dedup != nil)

	var runErr error
	for i, rawURL := range urls {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		e.stats.URLsTotal.Add(1)

		if dedup != nil && !dedup.Add(rawURL) {
			e.stats.URLsDuplicate.Add(1)
			e.count(func(m *observability.Metrics) { m.URLsDuplicate.Add(1) })
			e.emit(Event{Kind: EventSkipped, Index: i + 1, Total: len(urls), URL: rawURL})
			continue
		}

		e.processURL(ctx, i, len(urls), rawURL, result)
	}

	e.stats.EndTime = time.Now()
	e.logger.Info("run finished", "stats", e.stats.Snapshot())

	return result, runErr
}

func (e *Engine) processURL(ctx context.Context, i, total int, rawURL string, result *Result) {
	start := time.Now()
	e.emit(Event{Kind: EventStart, Index: i + 1, Total: total, URL: rawURL})

	fail := func(stage string, err error) {
		result.Failures = append(result.Failures, Failure{URL: rawURL, Stage: stage, Err: err})
		e.logger.Warn("url skipped", "url", rawURL, "stage", stage, "error", err)
		e.emit(Event{Kind: EventFailed, Index: i + 1, Total: total, URL: rawURL, Elapsed: time.Since(start), Err: err})
	}

	if err := config.ValidateURL(rawURL); err != nil {
		e.stats.URLsInvalid.Add(1)
		e.count(func(m *observability.Metrics) { m.URLsInvalid.Add(1) })
		fail("validate", fmt.Errorf("%w: %w", types.ErrInvalidURL, err))
		return
	}

	page, err := e.renderer.Render(ctx, rawURL)
	if err != nil {
		e.stats.NavigationFailures.Add(1)
		e.count(func(m *observability.Metrics) { m.RenderFailures.Add(1) })
		var navErr *types.NavigationError
		if !errors.As(err, &navErr) {
			err = &types.NavigationError{URL: rawURL, Err: err}
		}
		fail("render", err)
		return
	}
	if page.Size() == 0 {
		e.stats.NavigationFailures.Add(1)
		e.count(func(m *observability.Metrics) { m.RenderFailures.Add(1) })
		fail("render", &types.NavigationError{URL: rawURL, Err: types.ErrEmptyDocument})
		return
	}
	e.stats.PagesRendered.Add(1)
	e.stats.BytesRendered.Add(int64(page.Size()))
	e.count(func(m *observability.Metrics) { m.ObserveRender(page.Size(), page.RenderDuration) })
	e.logger.Debug("page rendered", "url", rawURL, "bytes", page.Size(), "took", page.RenderDuration)

	if e.saver != nil {
		if path, err := e.saver.Save(page); err != nil {
			e.logger.Warn("debug artifact not saved", "url", rawURL, "error", err)
		} else {
			e.logger.Info("debug artifact saved", "url", rawURL, "path", path)
		}
	}

	rec, err := e.extractor.ExtractPage(page)
	if err != nil {
		e.stats.ParseFailures.Add(1)
		e.count(func(m *observability.Metrics) { m.ParseFailures.Add(1) })
		fail("extract", err)
		return
	}

	if e.pipeline != nil {
		processed, err := e.pipeline.Process(rec)
		if err != nil {
			e.stats.PipelineFailures.Add(1)
			fail("pipeline", err)
			return
		}
		if processed == nil {
			e.stats.RecordsDropped.Add(1)
			e.count(func(m *observability.Metrics) { m.RecordsDropped.Add(1) })
			e.logger.Info("record dropped", "url", rawURL, "name", rec.Name)
			e.emit(Event{Kind: EventDropped, Index: i + 1, Total: total, URL: rawURL, Elapsed: time.Since(start), Record: rec})
			return
		}
		rec = processed
	}

	result.Records = append(result.Records, rec)
	e.stats.RecordsScraped.Add(1)
	e.count(func(m *observability.Metrics) { m.RecordsScraped.Add(1) })
	e.emit(Event{Kind: EventScraped, Index: i + 1, Total: total, URL: rawURL, Elapsed: time.Since(start), Record: rec})
}

func (e *Engine) emit(ev Event) {
	if e.progress != nil {
		e.progress(ev)
	}
}

func (e *Engine) count(fn func(m *observability.Metrics)) {
	if e.metrics != nil {
		fn(e.metrics)
	}
}
