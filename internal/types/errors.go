package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrBrowserStart     = errors.New("browser session could not be started")
	ErrInvalidURL       = errors.New("invalid URL")
	ErrNoRecords        = errors.New("no records to write")
	ErrUnknownCategory  = errors.New("unknown vendor category")
	ErrEmptyDocument    = errors.New("empty document")
	ErrRendererNotReady = errors.New("renderer is closed")
)

// NavigationError wraps errors that occur while a renderer loads a page.
type NavigationError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NavigationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("navigation error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("navigation error for %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ParseError wraps errors raised by the parse layer or recovered during extraction.
type ParseError struct {
	URL    string
	Region string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Region != "" {
		return fmt.Sprintf("parse error for %s (region=%s): %v", e.URL, e.Region, e.Err)
	}
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur during storage/export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PipelineError wraps errors that occur in the record pipeline.
type PipelineError struct {
	Stage string
	URL   string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error at stage %q for %s: %v", e.Stage, e.URL, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
