package pipeline

import (
	"log/slog"

	"github.com/IshaanNene/WedScrape/internal/types"
)

// Middleware processes a record and returns the (possibly modified) record.
// Return nil to drop the record from the pipeline.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a record. Return nil to drop the record.
	Process(rec *types.VendorRecord) (*types.VendorRecord, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) *Pipeline {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
	return p
}

// Process runs the record through all middleware in order.
// A nil record with a nil error means the record was dropped.
func (p *Pipeline) Process(rec *types.VendorRecord) (*types.VendorRecord, error) {
	current := rec

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{
				Stage: mw.Name(),
				URL:   rec.SourceURL,
				Err:   err,
			}
		}
		if result == nil {
			p.logger.Debug("record dropped", "stage", mw.Name(), "url", rec.SourceURL)
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}

// --- Built-in Middleware ---

// RetainMiddleware drops records that fail a category's emptiness check.
type RetainMiddleware struct {
	Retains func(rec *types.VendorRecord) bool
}

func (m *RetainMiddleware) Name() string { return "retain" }

func (m *RetainMiddleware) Process(rec *types.VendorRecord) (*types.VendorRecord, error) {
	if m.Retains != nil && !m.Retains(rec) {
		return nil, nil
	}
	return rec, nil
}

// RequireNameMiddleware drops records whose name was not found.
type RequireNameMiddleware struct{}

func (m *RequireNameMiddleware) Name() string { return "require_name" }

func (m *RequireNameMiddleware) Process(rec *types.VendorRecord) (*types.VendorRecord, error) {
	if !rec.HasName() {
		return nil, nil
	}
	return rec, nil
}
