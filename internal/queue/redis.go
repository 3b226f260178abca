// Package queue publishes produced records to a Redis list for downstream
// consumers.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kevinmichaelchen/readme-digest/internal/models"
	"github.com/redis/go-redis/v9"
)

type Publisher struct {
	rdb *redis.Client
	key string
}

// Connect accepts a redis:// URL or a bare host:port.
func Connect(ctx context.Context, redisURL, key string) (*Publisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Publisher{rdb: rdb, key: key}, nil
}

// Publish appends the record's JSON to the list.
func (p *Publisher) Publish(ctx context.Context, rec models.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.key, data).Err(); err != nil {
		return fmt.Errorf("pushing %s to %s: %w", rec.RepoName, p.key, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.rdb.Close()
}
