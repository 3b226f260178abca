package models

import "time"

// Record is the JSON document written next to the README.
type Record struct {
	Summary     string   `json:"summary"`
	KeyFeatures []string `json:"key_features"`
	TechStack   []string `json:"tech_stack"`
	RepoName    string   `json:"repo_name"`
}

// Status reports whether a summary came from the backend or from the
// truncated-text fallback.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
)

// Outcome is the result of one backend call. Reason is set only when
// Status is StatusDegraded.
type Outcome struct {
	Status  Status
	Summary string
	Reason  error
}

func (o Outcome) Degraded() bool {
	return o.Status == StatusDegraded
}

// StructuredSummary is the JSON shape requested from backends that are
// prompted for structured output.
type StructuredSummary struct {
	Summary     string   `json:"summary"`
	KeyFeatures []string `json:"key_features"`
	TechStack   []string `json:"tech_stack"`
}

// ArchivedRecord is a Record as stored in SurrealDB.
type ArchivedRecord struct {
	RunID       string    `json:"run_id"`
	RepoName    string    `json:"repo_name"`
	Root        string    `json:"root"`
	Backend     string    `json:"backend"`
	Status      Status    `json:"status"`
	Reason      *string   `json:"reason"`
	Summary     string    `json:"summary"`
	KeyFeatures []string  `json:"key_features"`
	TechStack   []string  `json:"tech_stack"`
	Embedding   []float32 `json:"embedding"`
	CreatedAt   time.Time `json:"created_at"`
}

type SearchResult struct {
	RepoName  string   `json:"repo_name"`
	Backend   string   `json:"backend"`
	Summary   string   `json:"summary"`
	TechStack []string `json:"tech_stack"`
	Score     float64  `json:"score"`
}
