package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/kevinmichaelchen/readme-digest/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.EmbeddingModel(model),
	}
}

// RecordText is the text embedded for a record: its repo name and summary.
func RecordText(rec models.Record) string {
	return fmt.Sprintf("%s: %s", rec.RepoName, rec.Summary)
}

// EmbedRecord embeds RecordText(rec).
func (c *Client) EmbedRecord(ctx context.Context, rec models.Record) ([]float32, error) {
	vec, err := c.Embed(ctx, RecordText(rec))
	if err != nil {
		return nil, fmt.Errorf("embedding %s: %w", rec.RepoName, err)
	}
	return vec, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}
