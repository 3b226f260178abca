// Package llm holds the summarization backends. Each backend turns README
// text into a short prose summary.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kevinmichaelchen/readme-digest/internal/config"
	"github.com/kevinmichaelchen/readme-digest/internal/models"
)

type Backend interface {
	Name() string
	Summarize(ctx context.Context, text string) (string, error)
}

const (
	BackendOpenAI      = "openai"
	BackendLangChain   = "langchain"
	BackendAnthropic   = "anthropic"
	BackendHFLocal     = "hf-local"
	BackendHFInference = "hf-inference"
	BackendOllama      = "ollama"
)

var (
	ErrUnknownBackend = errors.New("unknown backend")
	ErrEmptySummary   = errors.New("backend returned an empty summary")
)

// outputFiles maps each backend to the file it writes under the repo root.
var outputFiles = map[string]string{
	BackendOpenAI:      "project_summary.json",
	BackendLangChain:   "project_summary_langchain.json",
	BackendAnthropic:   "project_summary_anthropic.json",
	BackendHFLocal:     "project_summary_hf.json",
	BackendHFInference: "project_summary_llm.json",
	BackendOllama:      "project_summary_ollama.json",
}

// Names lists the accepted backend names.
func Names() []string {
	return []string{
		BackendOpenAI, BackendLangChain, BackendAnthropic,
		BackendHFLocal, BackendHFInference, BackendOllama,
	}
}

// OutputFile returns the default output file name for a backend.
func OutputFile(backend string) string {
	if f, ok := outputFiles[backend]; ok {
		return f
	}
	return "project_summary_" + backend + ".json"
}

// New builds the backend named by cfg.Backend.
func New(cfg *config.Config) (Backend, error) {
	switch cfg.Backend {
	case BackendOpenAI:
		return NewOpenAI(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel), nil
	case BackendLangChain:
		return NewLangChain(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel), nil
	case BackendAnthropic:
		return NewAnthropic("", cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	case BackendHFLocal:
		return NewHFLocal(cfg.HFLocalURL, cfg.HFLocalModel), nil
	case BackendHFInference:
		return NewHFInference(cfg.HFInferenceURL, cfg.HFAPIToken, cfg.HFModel), nil
	case BackendOllama:
		o, err := NewOllama(cfg.OllamaURL, cfg.OllamaModel)
		if err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownBackend, cfg.Backend, strings.Join(Names(), ", "))
	}
}

const chatSystemPrompt = `You are a helpful assistant that creates concise, engaging project summaries.`

func chatUserPrompt(text string) string {
	return "Please create a brief, engaging summary (2-3 sentences) of this project description:\n\n" + text
}

const structuredSystemPrompt = `You are a helpful assistant that creates detailed project summaries.
Your task is to analyze the project description and create a comprehensive summary.

Return a JSON object with these fields:
- "summary": a concise, engaging summary of the project (2-3 sentences)
- "key_features": an array of 2-3 key features or highlights
- "tech_stack": an array of the main technologies used in the project

Return ONLY valid JSON. No markdown, no code fences.`

func structuredUserPrompt(text string) string {
	return "Please analyze this project description and create a summary:\n\n" + text
}

func ollamaPrompt(text string) string {
	return `Please analyze this project description and create a comprehensive summary.
Include the following in your response:
1. A brief, engaging summary (2-3 sentences)
2. 2-3 key features or highlights
3. Main technologies used

Project Description:
` + text + `

Please format your response as a JSON object with these fields:
- summary: string
- key_features: array of strings
- tech_stack: array of strings
`
}

func inferencePrompt(text string) string {
	return "Please summarize the following project description in 2-3 sentences, focusing on its main purpose and key features:\n\n" +
		text + "\n\nSummary:"
}

// parseStructured decodes a {summary, key_features, tech_stack} object out
// of a model reply, tolerating code fences and surrounding prose.
func parseStructured(content string) (*models.StructuredSummary, error) {
	content = extractJSON(content)

	var result models.StructuredSummary
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("parsing structured summary: %w\nraw: %s", err, content)
	}
	if strings.TrimSpace(result.Summary) == "" {
		return nil, ErrEmptySummary
	}
	result.Summary = strings.TrimSpace(result.Summary)
	return &result, nil
}

// structuredSummary returns the summary from a structured reply. The
// model's own lists are only logged; records take features and tech stack
// from the README itself.
func structuredSummary(backend, content string) (string, error) {
	parsed, err := parseStructured(content)
	if err != nil {
		return "", err
	}
	slog.Debug("structured reply",
		"backend", backend,
		"key_features", parsed.KeyFeatures,
		"tech_stack", parsed.TechStack)
	return parsed.Summary, nil
}

// stripCodeFences removes markdown code fences that some models wrap around JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// Remove opening fence (```json or ```)
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
		// Remove closing fence
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

// extractJSON strips fences and any prose before the first '{' or after
// the last '}'.
func extractJSON(s string) string {
	s = stripCodeFences(s)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

func nonEmpty(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptySummary
	}
	return s, nil
}
