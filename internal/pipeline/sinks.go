package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kevinmichaelchen/readme-digest/internal/config"
	"github.com/kevinmichaelchen/readme-digest/internal/embedding"
	"github.com/kevinmichaelchen/readme-digest/internal/queue"
	"github.com/kevinmichaelchen/readme-digest/internal/surrealdb"
)

// Sink is a best-effort destination for records besides the JSON file.
type Sink interface {
	Name() string
	Accept(ctx context.Context, res Result) error
	Close(ctx context.Context) error
}

// openSinks connects every configured sink. A sink that cannot be reached
// is skipped with a warning.
func openSinks(ctx context.Context, cfg *config.Config, backend string) []Sink {
	var sinks []Sink

	if cfg.SurrealURL != "" {
		db, err := surrealdb.NewClient(ctx, cfg)
		if err != nil {
			slog.Warn("archive disabled", "err", err)
		} else if err := db.InitSchema(ctx); err != nil {
			slog.Warn("archive disabled", "err", err)
			_ = db.Close(ctx)
		} else {
			s := &archiveSink{db: db, backend: backend}
			if cfg.EmbeddingAPIKey != "" {
				s.emb = embedding.NewClient(cfg.EmbeddingURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
			}
			sinks = append(sinks, s)
		}
	}

	if cfg.RedisURL != "" {
		pub, err := queue.Connect(ctx, cfg.RedisURL, cfg.RedisKey)
		if err != nil {
			slog.Warn("queue disabled", "err", err)
		} else {
			sinks = append(sinks, &queueSink{pub: pub})
		}
	}

	return sinks
}

type archiveSink struct {
	db      *surrealdb.Client
	emb     *embedding.Client
	backend string
}

func (s *archiveSink) Name() string { return "surrealdb" }

func (s *archiveSink) Accept(ctx context.Context, res Result) error {
	var vec []float32
	// Degraded summaries are archived without an embedding.
	if s.emb != nil && !res.Outcome.Degraded() {
		v, err := s.emb.EmbedRecord(ctx, res.Record)
		if err != nil {
			slog.Warn("skipping embedding", "repo", res.Record.RepoName, "err", err)
		} else {
			vec = v
		}
	}
	rec := surrealdb.NewArchivedRecord(uuid.NewString(), res.Root, s.backend, res.Record, res.Outcome, vec)
	return s.db.SaveRecord(ctx, rec)
}

func (s *archiveSink) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}

type queueSink struct {
	pub *queue.Publisher
}

func (s *queueSink) Name() string { return "redis" }

func (s *queueSink) Accept(ctx context.Context, res Result) error {
	return s.pub.Publish(ctx, res.Record)
}

func (s *queueSink) Close(context.Context) error {
	return s.pub.Close()
}
