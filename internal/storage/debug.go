package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/IshaanNene/WedScrape/internal/types"
)

// DebugWriter saves raw rendered documents for offline inspection.
type DebugWriter struct {
	dir    string
	logger *slog.Logger
}

// NewDebugWriter creates a writer that saves into dir.
func NewDebugWriter(dir string, logger *slog.Logger) *DebugWriter {
	return &DebugWriter{
		dir:    dir,
		logger: logger.With("component", "debug_writer"),
	}
}

// Save writes page to <dir>/<unix-seconds>_<slug>.html and returns the path.
func (w *DebugWriter) Save(page *types.Page) (string, error) {
	name := fmt.Sprintf("%d_%s.html", page.RenderedAt.Unix(), Slug(page.URL))
	path := filepath.Join(w.dir, name)
	if err := WriteHTML(path, page.HTML); err != nil {
		return "", err
	}
	w.logger.Debug("debug artifact saved", "url", page.URL, "path", path, "size", page.Size())
	return path, nil
}

// WriteHTML writes a rendered document to path, creating parent directories.
func WriteHTML(path string, html []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return &types.StorageError{Backend: "file", Err: fmt.Errorf("write %s: %w", path, err)}
	}
	return nil
}

var slugUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const maxSlugLen = 80

// Slug derives a file-name-safe label from the last path segment of a URL.
func Slug(rawURL string) string {
	segment := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		segment = strings.Trim(u.Path, "/")
		if i := strings.LastIndex(segment, "/"); i >= 0 {
			segment = segment[i+1:]
		}
		if segment == "" {
			segment = u.Host
		}
	}
	slug := strings.Trim(slugUnsafe.ReplaceAllString(segment, "_"), "_.")
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	if slug == "" {
		return "rendered_page"
	}
	return slug
}
