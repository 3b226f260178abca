package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// Ollama calls a local Ollama server in JSON mode. The server wraps the
// model's JSON reply in the "response" string, so it is decoded twice.
type Ollama struct {
	client *api.Client
	model  string
}

func NewOllama(baseURL, model string) (*Ollama, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama url %q: %w", baseURL, err)
	}
	return &Ollama{
		client: api.NewClient(base, http.DefaultClient),
		model:  model,
	}, nil
}

func (c *Ollama) Name() string { return BackendOllama }

func (c *Ollama) Summarize(ctx context.Context, text string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: ollamaPrompt(text),
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
	}

	var reply string
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		reply += resp.Response
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	return structuredSummary(c.Name(), reply)
}
