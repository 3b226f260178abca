// Package summarizer turns README text into a models.Record. The backend
// call is the only step that can fail, and its failure degrades the
// summary instead of aborting.
package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kevinmichaelchen/readme-digest/internal/llm"
	"github.com/kevinmichaelchen/readme-digest/internal/models"
	"github.com/kevinmichaelchen/readme-digest/internal/readme"
)

// FallbackRunes is how much of the README a degraded summary keeps.
const FallbackRunes = 200

// Summarize calls the backend and reports whether the result is the
// backend's own summary or the truncated-text fallback.
func Summarize(ctx context.Context, backend llm.Backend, text string) models.Outcome {
	summary, err := backend.Summarize(ctx, text)
	if err == nil && summary == "" {
		err = llm.ErrEmptySummary
	}
	if err != nil {
		return models.Outcome{
			Status:  models.StatusDegraded,
			Summary: Fallback(text),
			Reason:  fmt.Errorf("%s backend: %w", backend.Name(), err),
		}
	}
	return models.Outcome{Status: models.StatusOK, Summary: summary}
}

// Fallback is the first FallbackRunes characters of text followed by "...".
func Fallback(text string) string {
	runes := []rune(text)
	if len(runes) > FallbackRunes {
		runes = runes[:FallbackRunes]
	}
	return string(runes) + "..."
}

// BuildRecord summarizes text and fills the locally extracted fields.
func BuildRecord(ctx context.Context, root, text string, backend llm.Backend) (models.Record, models.Outcome) {
	outcome := Summarize(ctx, backend, text)
	return models.Record{
		Summary:     outcome.Summary,
		KeyFeatures: readme.ExtractFeatures(text),
		TechStack:   readme.ExtractTechStack(text),
		RepoName:    readme.RepoName(root),
	}, outcome
}

// Persist writes record as indented JSON, replacing any existing file.
func Persist(record models.Record, path string) error {
	if record.KeyFeatures == nil {
		record.KeyFeatures = []string{}
	}
	if record.TechStack == nil {
		record.TechStack = []string{}
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
