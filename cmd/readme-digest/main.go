package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/kevinmichaelchen/readme-digest/internal/config"
	"github.com/kevinmichaelchen/readme-digest/internal/dispatch"
	"github.com/kevinmichaelchen/readme-digest/internal/embedding"
	"github.com/kevinmichaelchen/readme-digest/internal/llm"
	"github.com/kevinmichaelchen/readme-digest/internal/pipeline"
	"github.com/kevinmichaelchen/readme-digest/internal/surrealdb"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "readme-digest",
		Short:         "Summarize a repository README into project_summary JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (env vars take precedence)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(summarizeCmd(), triggerCmd(), checkCmd(), historyCmd(), searchCmd(), statsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and sets up the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return cfg, nil
}

func summarizeCmd() *cobra.Command {
	var backend, output string
	var noSinks bool

	cmd := &cobra.Command{
		Use:   "summarize [repo-root...]",
		Short: "Summarize README.md at GITHUB_WORKSPACE (or the given roots)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if backend != "" {
				cfg.Backend = backend
			}

			b, err := llm.New(cfg)
			if err != nil {
				return err
			}
			slog.Debug("summarizing", "backend", b.Name(), "roots", args)

			results, err := pipeline.Run(cmd.Context(), cfg, b, pipeline.Options{
				Roots:   args,
				Output:  output,
				NoSinks: noSinks,
			})
			for _, r := range results {
				if r.Outcome.Degraded() {
					fmt.Printf("  WARN: %s summary is a truncated fallback (%v)\n", r.Record.RepoName, r.Outcome.Reason)
				}
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&backend, "backend", "b", "", "Backend: "+strings.Join(llm.Names(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (relative paths resolve against each repo root)")
	cmd.Flags().BoolVar(&noSinks, "no-sinks", false, "Do not archive or publish records")
	return cmd
}

func triggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger owner/repo",
		Short: "Fire the repository_dispatch event that summarizes a repository remotely",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client := dispatch.NewClient(cfg.GitHubAPIURL, cfg.GitHubToken, cfg.DispatchRepo)
			if err := client.Trigger(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("triggering summarization: %w", err)
			}
			fmt.Printf("Successfully triggered summarization for %s\n", args[0])
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the OpenAI-compatible API key by listing models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.LLMAPIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY is not set")
			}

			ids, err := llm.CheckAccess(cmd.Context(), cfg.LLMBaseURL, cfg.LLMAPIKey)
			if err != nil {
				return err
			}
			sort.Strings(ids)
			fmt.Printf("Key OK: %d models available at %s\n", len(ids), cfg.LLMBaseURL)
			for _, id := range ids {
				fmt.Printf("  %s\n", id)
			}
			return nil
		},
	}
}

func openArchive(ctx context.Context, cfg *config.Config) (*surrealdb.Client, error) {
	if cfg.SurrealURL == "" {
		return nil, fmt.Errorf("SURREAL_URL is not set")
	}
	return surrealdb.NewClient(ctx, cfg)
}

// atLeastOne rejects counts that would produce an empty or invalid LIMIT.
func atLeastOne(flag string, n int) error {
	if n < 1 {
		return fmt.Errorf("--%s must be at least 1, got %d", flag, n)
	}
	return nil
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently archived summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := atLeastOne("limit", limit); err != nil {
				return err
			}
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openArchive(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			records, err := db.ListRecent(ctx, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No archived summaries")
				return nil
			}

			for _, r := range records {
				fmt.Printf("%s  %s  [%s, %s]\n", r.CreatedAt.Format("2006-01-02 15:04"), r.RepoName, r.Backend, r.Status)
				fmt.Printf("   %s\n", r.Summary)
				if len(r.TechStack) > 0 {
					fmt.Printf("   Tech: %s\n", strings.Join(r.TechStack, ", "))
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records")
	return cmd
}

func searchCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Semantic similarity search across archived summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := atLeastOne("k", k); err != nil {
				return err
			}
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			query := args[0]

			embClient := embedding.NewClient(cfg.EmbeddingURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
			vec, err := embClient.Embed(ctx, query)
			if err != nil {
				return fmt.Errorf("embedding query: %w", err)
			}

			db, err := openArchive(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			results, err := db.VectorSearch(ctx, vec, k)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No results found")
				return nil
			}

			fmt.Printf("Top %d results for %q:\n\n", len(results), query)
			for i, r := range results {
				fmt.Printf("%d. %s  (%.3f)  via %s\n", i+1, r.RepoName, r.Score, r.Backend)
				fmt.Printf("   %s\n", r.Summary)
				if len(r.TechStack) > 0 {
					fmt.Printf("   Tech: %s\n", strings.Join(r.TechStack, ", "))
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 10, "Number of results")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show archive counts and tech-stack breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openArchive(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			stats, err := db.GetStats(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Records:  %d\n", stats.Total)
			fmt.Printf("Repos:    %d\n", stats.Repos)
			fmt.Printf("Degraded: %d\n", stats.Degraded)
			fmt.Printf("Embedded: %d\n", stats.Embedded)

			techs, err := db.GetTechBreakdown(ctx)
			if err != nil {
				return err
			}

			if len(techs) > 0 {
				sort.Slice(techs, func(i, j int) bool {
					return techs[i].Count > techs[j].Count
				})
				fmt.Println("\nTech stack breakdown:")
				for _, t := range techs {
					fmt.Printf("  %-20s %d\n", t.Tech, t.Count)
				}
			}

			return nil
		},
	}
}
