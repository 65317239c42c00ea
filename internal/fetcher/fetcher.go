package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/WedScrape/internal/config"
	"github.com/IshaanNene/WedScrape/internal/types"
)

// Renderer turns a URL into a rendered document snapshot.
type Renderer interface {
	// Render loads url, waits for the page to settle and returns its document.
	// Load failures are reported as *types.NavigationError.
	Render(ctx context.Context, url string) (*types.Page, error)

	// Close releases the underlying session. It is safe to call more than once.
	Close() error

	// Type returns the renderer type identifier.
	Type() string
}

// NewRenderer creates the renderer selected by cfg.Mode.
// A browser that cannot be started is reported as types.ErrBrowserStart.
func NewRenderer(cfg *config.BrowserConfig, logger *slog.Logger) (Renderer, error) {
	switch cfg.Mode {
	case "", "browser":
		return NewBrowserRenderer(cfg, logger)
	case "http":
		return NewHTTPRenderer(cfg, logger), nil
	}
	return nil, fmt.Errorf("unknown renderer mode %q", cfg.Mode)
}
