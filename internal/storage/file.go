package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/IshaanNene/WedScrape/internal/types"
)

// --- JSON Storage ---

// JSONStorage writes records as one pretty-printed JSON array.
// Non-ASCII text and HTML characters are written unescaped. Nothing is
// written when no records were stored.
type JSONStorage struct {
	path    string
	records []*types.VendorRecord
	written bool
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewJSONStorage creates a new JSON file storage.
func NewJSONStorage(outputPath string, logger *slog.Logger) (*JSONStorage, error) {
	if err := ensureDir(outputPath); err != nil {
		return nil, err
	}
	return &JSONStorage{
		path:    outputPath,
		records: make([]*types.VendorRecord, 0),
		logger:  logger.With("component", "json_storage"),
	}, nil
}

func (s *JSONStorage) Name() string     { return "json" }
func (s *JSONStorage) Location() string { return s.path }

func (s *JSONStorage) Store(records []*types.VendorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	s.logger.Debug("records buffered", "count", len(records), "total", len(s.records))
	return nil
}

func (s *JSONStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.written {
		return nil
	}
	if len(s.records) == 0 {
		s.logger.Info("no records, output file not created", "path", s.path)
		return nil
	}

	data, err := EncodeJSON(s.records)
	if err != nil {
		return &types.StorageError{Backend: "json", Err: err}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return &types.StorageError{Backend: "json", Err: fmt.Errorf("write output file: %w", err)}
	}
	s.written = true

	s.logger.Info("JSON written", "path", s.path, "records", len(s.records))
	return nil
}

// EncodeJSON renders v with a four-space indent and without HTML escaping.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// --- JSONL Storage ---

// JSONLStorage writes records as newline-delimited JSON (one object per line).
// The file is created on the first non-empty batch.
type JSONLStorage struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage creates a new JSONL file storage (streaming writes).
func NewJSONLStorage(outputPath string, logger *slog.Logger) (*JSONLStorage, error) {
	if err := ensureDir(outputPath); err != nil {
		return nil, err
	}
	return &JSONLStorage{
		path:   outputPath,
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string     { return "jsonl" }
func (s *JSONLStorage) Location() string { return s.path }

func (s *JSONLStorage) Store(records []*types.VendorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(records) == 0 {
		return nil
	}
	if s.file == nil {
		f, err := os.Create(s.path)
		if err != nil {
			return &types.StorageError{Backend: "jsonl", Err: fmt.Errorf("create output file: %w", err)}
		}
		s.file = f
		s.enc = json.NewEncoder(f)
		s.enc.SetEscapeHTML(false)
	}

	for _, rec := range records {
		if err := s.enc.Encode(rec); err != nil {
			return &types.StorageError{Backend: "jsonl", Err: fmt.Errorf("encode JSONL: %w", err)}
		}
		s.count++
	}
	return nil
}

func (s *JSONLStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	s.logger.Info("JSONL written", "path", s.path, "records", s.count)
	err := s.file.Close()
	s.file = nil
	return err
}

// --- CSV Storage ---

// CSVStorage writes records as CSV rows with one column per flattened field.
// Records are buffered so the header covers every pricing key seen.
type CSVStorage struct {
	path    string
	rows    []map[string]string
	headers map[string]bool
	written bool
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewCSVStorage creates a new CSV file storage.
func NewCSVStorage(outputPath string, logger *slog.Logger) (*CSVStorage, error) {
	if err := ensureDir(outputPath); err != nil {
		return nil, err
	}
	return &CSVStorage{
		path:    outputPath,
		headers: make(map[string]bool),
		logger:  logger.With("component", "csv_storage"),
	}, nil
}

func (s *CSVStorage) Name() string     { return "csv" }
func (s *CSVStorage) Location() string { return s.path }

func (s *CSVStorage) Store(records []*types.VendorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		flat, err := Flatten(rec)
		if err != nil {
			return &types.StorageError{Backend: "csv", Err: err}
		}
		for k := range flat {
			s.headers[k] = true
		}
		s.rows = append(s.rows, flat)
	}
	return nil
}

func (s *CSVStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.written || len(s.rows) == 0 {
		return nil
	}

	f, err := os.Create(s.path)
	if err != nil {
		return &types.StorageError{Backend: "csv", Err: fmt.Errorf("create output file: %w", err)}
	}
	defer f.Close()

	headers := csvHeaders(s.headers)
	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return &types.StorageError{Backend: "csv", Err: fmt.Errorf("write CSV header: %w", err)}
	}
	for _, flat := range s.rows {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = flat[h]
		}
		if err := w.Write(row); err != nil {
			return &types.StorageError{Backend: "csv", Err: fmt.Errorf("write CSV row: %w", err)}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &types.StorageError{Backend: "csv", Err: err}
	}
	s.written = true

	s.logger.Info("CSV written", "path", s.path, "records", len(s.rows))
	return nil
}

// leading columns, in order; everything else follows alphabetically
var csvLeading = []string{"name", "location"}

func csvHeaders(set map[string]bool) []string {
	headers := make([]string, 0, len(set))
	for _, h := range csvLeading {
		if set[h] {
			headers = append(headers, h)
		}
	}
	rest := make([]string, 0, len(set))
	for h := range set {
		if h != "name" && h != "location" {
			rest = append(rest, h)
		}
	}
	sort.Strings(rest)
	return append(headers, rest...)
}

// Flatten renders a record as dotted column names mapped to cell text.
// Capacity entries are kept as a JSON array in a single column.
func Flatten(rec *types.VendorRecord) (map[string]string, error) {
	flat := map[string]string{
		"name":       rec.Name,
		"location":   rec.Location,
		"source_url": rec.SourceURL,
	}
	for k, p := range rec.Pricing {
		flat["pricing."+k] = p.String()
	}
	if rec.VenueDetails != nil {
		capacity, err := types.MarshalNoEscape(rec.Capacity)
		if err != nil {
			return nil, fmt.Errorf("flatten capacity: %w", err)
		}
		flat["capacity"] = string(capacity)
		for k, v := range rec.Policies {
			flat["policies."+k] = v
		}
		flat["room_count"] = ""
		if rec.RoomCount != nil {
			flat["room_count"] = strconv.Itoa(*rec.RoomCount)
		}
	}
	if rec.Details != nil {
		flat["details.about"] = ""
		if rec.Details.About != nil {
			flat["details.about"] = *rec.Details.About
		}
		key := rec.Details.TagsKey
		if key == "" {
			key = "tags"
		}
		flat["details."+key] = strings.Join(rec.Details.Tags, "; ")
	}
	return flat, nil
}

// NewFileStorage creates the appropriate file-based storage by type.
func NewFileStorage(storageType, outputPath string, logger *slog.Logger) (Storage, error) {
	switch storageType {
	case "json":
		return NewJSONStorage(outputPath, logger)
	case "jsonl":
		return NewJSONLStorage(outputPath, logger)
	case "csv":
		return NewCSVStorage(outputPath, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.StorageError{Backend: "file", Err: fmt.Errorf("create output dir: %w", err)}
	}
	return nil
}
