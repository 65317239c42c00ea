package storage

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/IshaanNene/WedScrape/internal/config"
	"github.com/IshaanNene/WedScrape/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a batch of records.
	Store(records []*types.VendorRecord) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// Locator is implemented by backends that write to a path or address.
type Locator interface {
	Location() string
}

var defaultOutputs = map[types.Category]string{
	types.CategoryVenue:        "scraped_venues_data.json",
	types.CategoryCaterer:      "caterers_data.json",
	types.CategoryMakeup:       "all_artists_data.json",
	types.CategoryPhotographer: "photographers_data.json",
}

// DefaultOutputPath returns the conventional output file of category for a file format.
func DefaultOutputPath(category types.Category, format string) string {
	name, ok := defaultOutputs[category]
	if !ok {
		name = string(category) + "_data.json"
	}
	if format != "" && format != "json" {
		name = strings.TrimSuffix(name, ".json") + "." + format
	}
	return name
}

// New creates the configured backend, fanning out to cfg.Also when set.
func New(cfg *config.StorageConfig, category types.Category, logger *slog.Logger) (Storage, error) {
	primary, err := newBackend(cfg.Type, cfg, category, logger)
	if err != nil {
		return nil, err
	}
	if len(cfg.Also) == 0 {
		return primary, nil
	}

	backends := []Storage{primary}
	for _, t := range cfg.Also {
		if t == cfg.Type {
			continue
		}
		b, err := newBackend(t, cfg, category, logger)
		if err != nil {
			for _, open := range backends {
				_ = open.Close()
			}
			return nil, err
		}
		backends = append(backends, b)
	}
	return NewMultiStorage(backends, logger), nil
}

func newBackend(storageType string, cfg *config.StorageConfig, category types.Category, logger *slog.Logger) (Storage, error) {
	switch storageType {
	case "json", "jsonl", "csv":
		path := cfg.OutputPath
		if path == "" || storageType != cfg.Type {
			path = DefaultOutputPath(category, storageType)
		}
		return NewFileStorage(storageType, path, logger)
	case "mongo":
		return NewMongoStorage(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	case "redis":
		return NewRedisStorage(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, logger)
	}
	return nil, &types.StorageError{Backend: storageType, Err: fmt.Errorf("unsupported storage type")}
}
