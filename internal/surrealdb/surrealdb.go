package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/kevinmichaelchen/readme-digest/internal/config"
	"github.com/kevinmichaelchen/readme-digest/internal/models"
	sdk "github.com/surrealdb/surrealdb.go"
)

// Client archives produced records in the "digest" table.
type Client struct {
	db *sdk.DB
}

func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	db, err := sdk.FromEndpointURLString(ctx, cfg.SurrealURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, sdk.Auth{
		Namespace: cfg.SurrealNS,
		Database:  cfg.SurrealDB,
		Username:  cfg.SurrealUser,
		Password:  cfg.SurrealPass,
	}); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("signing in: %w", err)
	}

	if err := db.Use(ctx, cfg.SurrealNS, cfg.SurrealDB); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("selecting ns/db: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close(ctx)
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
DEFINE TABLE IF NOT EXISTS digest SCHEMAFULL;

DEFINE FIELD IF NOT EXISTS run_id       ON TABLE digest TYPE string;
DEFINE FIELD IF NOT EXISTS repo_name    ON TABLE digest TYPE string;
DEFINE FIELD IF NOT EXISTS root         ON TABLE digest TYPE string;
DEFINE FIELD IF NOT EXISTS backend      ON TABLE digest TYPE string;
DEFINE FIELD IF NOT EXISTS status       ON TABLE digest TYPE string;
DEFINE FIELD IF NOT EXISTS reason       ON TABLE digest TYPE option<string>;
DEFINE FIELD IF NOT EXISTS summary      ON TABLE digest TYPE string;
DEFINE FIELD IF NOT EXISTS key_features ON TABLE digest TYPE array<string>;
DEFINE FIELD IF NOT EXISTS tech_stack   ON TABLE digest TYPE array<string>;
DEFINE FIELD IF NOT EXISTS embedding    ON TABLE digest TYPE option<array<float>>;
DEFINE FIELD IF NOT EXISTS created_at   ON TABLE digest TYPE datetime;

DEFINE INDEX IF NOT EXISTS idx_run_id    ON TABLE digest FIELDS run_id UNIQUE;
DEFINE INDEX IF NOT EXISTS idx_repo_name ON TABLE digest FIELDS repo_name;
`
	_, err := sdk.Query[any](ctx, c.db, schema, nil)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// SaveRecord inserts one archived record keyed by its run id.
func (c *Client) SaveRecord(ctx context.Context, r models.ArchivedRecord) error {
	// Optional fields are left out of the map rather than sent as nil,
	// which SurrealDB would store as NULL instead of NONE.
	data := map[string]any{
		"run_id":       r.RunID,
		"repo_name":    r.RepoName,
		"root":         r.Root,
		"backend":      r.Backend,
		"status":       string(r.Status),
		"summary":      r.Summary,
		"key_features": nonNil(r.KeyFeatures),
		"tech_stack":   nonNil(r.TechStack),
		"created_at":   r.CreatedAt.UTC(),
	}
	if r.Reason != nil {
		data["reason"] = *r.Reason
	}
	if len(r.Embedding) > 0 {
		data["embedding"] = r.Embedding
	}

	_, err := sdk.Query[any](ctx, c.db,
		`CREATE type::thing("digest", $id) CONTENT $data`,
		map[string]any{
			"id":   r.RunID,
			"data": data,
		})
	if err != nil {
		return fmt.Errorf("archiving %s: %w", r.RepoName, err)
	}
	return nil
}

// ListRecent returns the newest records first.
func (c *Client) ListRecent(ctx context.Context, limit int) ([]models.ArchivedRecord, error) {
	query := fmt.Sprintf(`
		SELECT run_id, repo_name, root, backend, status, reason, summary,
			key_features, tech_stack, <string> created_at AS created_at
		FROM digest
		ORDER BY created_at DESC
		LIMIT %d
	`, limit)

	results, err := sdk.Query[[]models.ArchivedRecord](ctx, c.db, query, nil)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

func (c *Client) VectorSearch(ctx context.Context, queryVec []float32, k int) ([]models.SearchResult, error) {
	// Brute-force cosine similarity; the archive is small enough that an
	// HNSW index is not worth maintaining.
	query := fmt.Sprintf(`
		SELECT repo_name, backend, summary, tech_stack,
			vector::similarity::cosine(embedding, $query_vec) AS score
		FROM digest
		WHERE embedding IS NOT NONE
		ORDER BY score DESC
		LIMIT %d
	`, k)

	results, err := sdk.Query[[]models.SearchResult](ctx, c.db, query,
		map[string]any{"query_vec": queryVec})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

type Stats struct {
	Total    int
	Degraded int
	Embedded int
	Repos    int
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	results, err := sdk.Query[[]map[string]any](ctx, c.db,
		`SELECT
			count() AS total,
			math::sum(IF status = "degraded" THEN 1 ELSE 0 END) AS degraded,
			math::sum(IF embedding IS NOT NONE THEN 1 ELSE 0 END) AS embedded,
			array::len(array::distinct(array::group(repo_name))) AS repos
		FROM digest GROUP ALL`,
		nil)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	if len(*results) == 0 || len((*results)[0].Result) == 0 {
		return &Stats{}, nil
	}
	row := (*results)[0].Result[0]
	return &Stats{
		Total:    toInt(row["total"]),
		Degraded: toInt(row["degraded"]),
		Embedded: toInt(row["embedded"]),
		Repos:    toInt(row["repos"]),
	}, nil
}

type TechCount struct {
	Tech  string
	Count int
}

func (c *Client) GetTechBreakdown(ctx context.Context) ([]TechCount, error) {
	// Fetch all tech stacks and count in Go
	results, err := sdk.Query[[]models.ArchivedRecord](ctx, c.db,
		`SELECT tech_stack FROM digest`, nil)
	if err != nil {
		return nil, fmt.Errorf("getting tech stacks: %w", err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	return countTech((*results)[0].Result), nil
}

func countTech(records []models.ArchivedRecord) []TechCount {
	counts := map[string]int{}
	for _, r := range records {
		for _, tech := range r.TechStack {
			counts[tech]++
		}
	}
	var out []TechCount
	for tech, cnt := range counts {
		out = append(out, TechCount{Tech: tech, Count: cnt})
	}
	return out
}

// NewArchivedRecord wraps a record with the bookkeeping the archive keeps.
func NewArchivedRecord(runID, root, backend string, rec models.Record, outcome models.Outcome, embedding []float32) models.ArchivedRecord {
	a := models.ArchivedRecord{
		RunID:       runID,
		RepoName:    rec.RepoName,
		Root:        root,
		Backend:     backend,
		Status:      outcome.Status,
		Summary:     rec.Summary,
		KeyFeatures: rec.KeyFeatures,
		TechStack:   rec.TechStack,
		Embedding:   embedding,
		CreatedAt:   time.Now().UTC(),
	}
	if outcome.Reason != nil {
		reason := outcome.Reason.Error()
		a.Reason = &reason
	}
	return a
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}
