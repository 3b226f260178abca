package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type Anthropic struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropic uses the SDK's default endpoint when baseURL is empty.
func NewAnthropic(baseURL, apiKey, model string, opts ...option.RequestOption) *Anthropic {
	base := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		base = append(base, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(append(base, opts...)...)
	return &Anthropic{
		client: &client,
		model:  anthropic.Model(model),
	}
}

func (c *Anthropic) Name() string { return BackendAnthropic }

func (c *Anthropic) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: structuredSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(structuredUserPrompt(text))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}

	return structuredSummary(c.Name(), resp.Content[0].Text)
}
