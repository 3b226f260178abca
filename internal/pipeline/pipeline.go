package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kevinmichaelchen/readme-digest/internal/config"
	"github.com/kevinmichaelchen/readme-digest/internal/llm"
	"github.com/kevinmichaelchen/readme-digest/internal/models"
	"github.com/kevinmichaelchen/readme-digest/internal/readme"
	"github.com/kevinmichaelchen/readme-digest/internal/summarizer"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Roots overrides cfg.RepoRoot. Each root is summarized independently.
	Roots []string
	// Output overrides cfg.Output and the backend's default file name.
	Output string
	// Sinks receive every written record. When nil, sinks are opened from
	// cfg (SurrealDB archive, Redis queue) if configured.
	Sinks []Sink
	// NoSinks disables sinks entirely.
	NoSinks bool
}

// Result describes one summarized repository.
type Result struct {
	Root    string
	Path    string
	Record  models.Record
	Outcome models.Outcome
}

func Run(ctx context.Context, cfg *config.Config, backend llm.Backend, opts Options) ([]Result, error) {
	roots := opts.Roots
	if len(roots) == 0 {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		roots = []string{cfg.RepoRoot}
	}
	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			return nil, config.ErrMissingRoot
		}
	}

	output := opts.Output
	if output == "" {
		output = cfg.Output
	}
	if output != "" && filepath.IsAbs(output) && len(roots) > 1 {
		return nil, fmt.Errorf("absolute output path %s cannot be shared by %d repositories", output, len(roots))
	}

	sinks := opts.Sinks
	if sinks == nil && !opts.NoSinks {
		sinks = openSinks(ctx, cfg, backend.Name())
	}
	if opts.NoSinks {
		sinks = nil
	}
	defer func() {
		for _, s := range sinks {
			if err := s.Close(ctx); err != nil {
				slog.Warn("closing sink", "sink", s.Name(), "err", err)
			}
		}
	}()

	results := make([]Result, len(roots))
	errs := make([]error, len(roots))

	// A failing root must not cancel the others, so no shared context.
	var g errgroup.Group
	g.SetLimit(max(cfg.Concurrency, 1))

	for i, root := range roots {
		g.Go(func() error {
			res, err := summarizeRoot(ctx, backend, root, output)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = *res
			deliver(ctx, sinks, *res)
			return nil
		})
	}
	_ = g.Wait()

	var done []Result
	for i := range roots {
		if errs[i] == nil {
			done = append(done, results[i])
		}
	}
	return done, errors.Join(errs...)
}

func summarizeRoot(ctx context.Context, backend llm.Backend, root, output string) (*Result, error) {
	text, err := readme.Read(root)
	if err != nil {
		return nil, err
	}

	record, outcome := summarizer.BuildRecord(ctx, root, text, backend)
	if outcome.Degraded() {
		slog.Warn("summarization failed, using truncated README",
			"repo", record.RepoName, "backend", backend.Name(), "reason", outcome.Reason)
	}

	path := outputPath(root, output, backend.Name())
	if err := summarizer.Persist(record, path); err != nil {
		return nil, err
	}
	fmt.Printf("Summary saved to %s\n", path)

	return &Result{Root: root, Path: path, Record: record, Outcome: outcome}, nil
}

func outputPath(root, output, backend string) string {
	if output == "" {
		return filepath.Join(root, llm.OutputFile(backend))
	}
	if filepath.IsAbs(output) {
		return output
	}
	return filepath.Join(root, output)
}

func deliver(ctx context.Context, sinks []Sink, res Result) {
	for _, s := range sinks {
		if err := s.Accept(ctx, res); err != nil {
			slog.Warn("sink rejected record", "sink", s.Name(), "repo", res.Record.RepoName, "err", err)
		}
	}
}
