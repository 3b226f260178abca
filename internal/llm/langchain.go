package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// LangChain prompts a chat model with format instructions and parses the
// structured JSON reply, the way a prompt | llm | parser chain does.
type LangChain struct {
	client *openai.Client
	model  openai.ChatModel
}

func NewLangChain(baseURL, apiKey, model string, opts ...option.RequestOption) *LangChain {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	}, opts...)
	client := openai.NewClient(opts...)
	return &LangChain{
		client: &client,
		model:  openai.ChatModel(model),
	}
}

func (c *LangChain) Name() string { return BackendLangChain }

func (c *LangChain) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(structuredSystemPrompt),
			openai.UserMessage(structuredUserPrompt(text)),
		},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return structuredSummary(c.Name(), resp.Choices[0].Message.Content)
}
