package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/IshaanNene/WedScrape/internal/types"
)

// RedisStorage publishes each record to a Redis stream as it is stored.
// Entries carry the category, the source URL and the record JSON.
type RedisStorage struct {
	client *redis.Client
	stream string
	count  int
	logger *slog.Logger
}

// NewRedisStorage connects to Redis and verifies the connection.
func NewRedisStorage(addr string, db int, stream string, logger *slog.Logger) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, &types.StorageError{Backend: "redis", Err: fmt.Errorf("ping %s: %w", addr, err)}
	}

	return &RedisStorage{
		client: client,
		stream: stream,
		logger: logger.With("component", "redis_storage"),
	}, nil
}

func (s *RedisStorage) Name() string     { return "redis" }
func (s *RedisStorage) Location() string { return s.stream }

func (s *RedisStorage) Store(records []*types.VendorRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, rec := range records {
		data, err := types.MarshalNoEscape(rec)
		if err != nil {
			return &types.StorageError{Backend: "redis", Err: fmt.Errorf("encode record: %w", err)}
		}
		err = s.client.XAdd(ctx, &redis.XAddArgs{
			Stream: s.stream,
			Values: map[string]interface{}{
				"category":   string(rec.Category),
				"source_url": rec.SourceURL,
				"record":     string(data),
			},
		}).Err()
		if err != nil {
			return &types.StorageError{Backend: "redis", Err: fmt.Errorf("xadd %s: %w", s.stream, err)}
		}
		s.count++
	}

	s.logger.Debug("records published", "stream", s.stream, "count", len(records), "total", s.count)
	return nil
}

func (s *RedisStorage) Close() error {
	s.logger.Info("redis storage closing", "stream", s.stream, "total_records", s.count)
	return s.client.Close()
}
