package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrMissingRoot = errors.New("repository root not set (GITHUB_WORKSPACE)")

type Config struct {
	// RepoRoot is the repository whose README is summarized.
	RepoRoot string `yaml:"repo_root"`
	// Backend selects the summarization backend (see llm.Names).
	Backend string `yaml:"backend"`
	// Output overrides the backend's default output file. Relative paths
	// resolve against RepoRoot.
	Output      string `yaml:"output"`
	Concurrency int    `yaml:"concurrency"`
	LogLevel    string `yaml:"log_level"`

	LLMBaseURL string `yaml:"llm_base_url"`
	LLMAPIKey  string `yaml:"-"`
	LLMModel   string `yaml:"llm_model"`

	AnthropicAPIKey string `yaml:"-"`
	AnthropicModel  string `yaml:"anthropic_model"`

	HFAPIToken      string `yaml:"-"`
	HFInferenceURL  string `yaml:"hf_inference_url"`
	HFModel         string `yaml:"hf_model"`
	HFLocalURL      string `yaml:"hf_local_url"`
	HFLocalModel    string `yaml:"hf_local_model"`
	OllamaURL       string `yaml:"ollama_url"`
	OllamaModel     string `yaml:"ollama_model"`
	GitHubToken     string `yaml:"-"`
	GitHubAPIURL    string `yaml:"github_api_url"`
	DispatchRepo    string `yaml:"dispatch_repo"`
	SurrealURL      string `yaml:"surreal_url"`
	SurrealNS       string `yaml:"surreal_ns"`
	SurrealDB       string `yaml:"surreal_db"`
	SurrealUser     string `yaml:"surreal_user"`
	SurrealPass     string `yaml:"-"`
	EmbeddingAPIKey string `yaml:"-"`
	EmbeddingURL    string `yaml:"embedding_base_url"`
	EmbeddingModel  string `yaml:"embedding_model"`
	RedisURL        string `yaml:"redis_url"`
	RedisKey        string `yaml:"redis_key"`
}

// Load builds a Config from an optional YAML file, then the environment
// (including a .env file in the working directory), then defaults.
// Environment values win over the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	setFromEnv(&cfg.RepoRoot, "GITHUB_WORKSPACE")
	setFromEnv(&cfg.Backend, "SUMMARY_BACKEND")
	setFromEnv(&cfg.Output, "SUMMARY_OUTPUT")
	setFromEnv(&cfg.LogLevel, "LOG_LEVEL")
	if v := os.Getenv("SUMMARY_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing SUMMARY_CONCURRENCY: %w", err)
		}
		cfg.Concurrency = n
	}

	setFromEnv(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setFromEnv(&cfg.LLMAPIKey, "OPENAI_API_KEY")
	setFromEnv(&cfg.LLMAPIKey, "LLM_API_KEY")
	setFromEnv(&cfg.LLMModel, "LLM_MODEL")

	setFromEnv(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setFromEnv(&cfg.AnthropicModel, "ANTHROPIC_MODEL")

	setFromEnv(&cfg.HFAPIToken, "HF_API_TOKEN")
	setFromEnv(&cfg.HFInferenceURL, "HF_INFERENCE_URL")
	setFromEnv(&cfg.HFModel, "HF_MODEL")
	setFromEnv(&cfg.HFLocalURL, "HF_LOCAL_URL")
	setFromEnv(&cfg.HFLocalModel, "HF_LOCAL_MODEL")
	setFromEnv(&cfg.OllamaURL, "OLLAMA_URL")
	setFromEnv(&cfg.OllamaModel, "OLLAMA_MODEL")

	// PERSONAL_ACCESS_TOKEN takes precedence over the workflow token.
	setFromEnv(&cfg.GitHubToken, "GITHUB_TOKEN")
	setFromEnv(&cfg.GitHubToken, "PERSONAL_ACCESS_TOKEN")
	setFromEnv(&cfg.GitHubAPIURL, "GITHUB_API_URL")
	setFromEnv(&cfg.DispatchRepo, "DISPATCH_REPO")

	setFromEnv(&cfg.SurrealURL, "SURREAL_URL")
	setFromEnv(&cfg.SurrealNS, "SURREAL_NS")
	setFromEnv(&cfg.SurrealDB, "SURREAL_DB")
	setFromEnv(&cfg.SurrealUser, "SURREAL_USER")
	setFromEnv(&cfg.SurrealPass, "SURREAL_PASS")

	setFromEnv(&cfg.EmbeddingURL, "EMBEDDING_BASE_URL")
	setFromEnv(&cfg.EmbeddingAPIKey, "EMBEDDING_API_KEY")
	setFromEnv(&cfg.EmbeddingModel, "EMBEDDING_MODEL")

	setFromEnv(&cfg.RedisURL, "REDIS_URL")
	setFromEnv(&cfg.RedisKey, "REDIS_KEY")

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	// The SDK appends /rpc automatically
	c.SurrealURL = strings.TrimSuffix(c.SurrealURL, "/rpc")
	c.SurrealURL = strings.TrimSuffix(c.SurrealURL, "/")

	if c.Backend == "" {
		c.Backend = "openai"
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LLMBaseURL == "" {
		c.LLMBaseURL = "https://api.openai.com/v1"
	}
	if c.LLMModel == "" {
		c.LLMModel = "gpt-4o-mini"
	}
	if c.AnthropicModel == "" {
		c.AnthropicModel = "claude-haiku-4-5"
	}
	if c.HFInferenceURL == "" {
		c.HFInferenceURL = "https://api-inference.huggingface.co/models"
	}
	if c.HFModel == "" {
		c.HFModel = "google/flan-t5-small"
	}
	if c.HFLocalURL == "" {
		c.HFLocalURL = "http://localhost:8080/models"
	}
	if c.HFLocalModel == "" {
		c.HFLocalModel = "sshleifer/distilbart-cnn-12-6"
	}
	if c.OllamaURL == "" {
		c.OllamaURL = "http://localhost:11434"
	}
	if c.OllamaModel == "" {
		c.OllamaModel = "mistral"
	}
	if c.GitHubAPIURL == "" {
		c.GitHubAPIURL = "https://api.github.com"
	}
	if c.DispatchRepo == "" {
		c.DispatchRepo = "project-summarizer"
	}
	if c.EmbeddingURL == "" {
		c.EmbeddingURL = c.LLMBaseURL
	}
	if c.EmbeddingAPIKey == "" {
		c.EmbeddingAPIKey = c.LLMAPIKey
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "text-embedding-3-small"
	}
	if c.RedisKey == "" {
		c.RedisKey = "readme-digest:records"
	}
}

// Validate checks the settings every summarize run needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RepoRoot) == "" {
		return ErrMissingRoot
	}
	return nil
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
