package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type inferenceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters"`
}

// HFLocal calls a locally served transformers summarization pipeline that
// exposes the Inference API layout: POST {baseURL}/{model}.
type HFLocal struct {
	url        string
	httpClient *http.Client
}

func NewHFLocal(baseURL, model string) *HFLocal {
	return &HFLocal{
		url:        modelURL(baseURL, model),
		httpClient: http.DefaultClient,
	}
}

func (c *HFLocal) Name() string { return BackendHFLocal }

func (c *HFLocal) Summarize(ctx context.Context, text string) (string, error) {
	var out []struct {
		SummaryText string `json:"summary_text"`
	}
	err := postJSON(ctx, c.httpClient, c.url, "", inferenceRequest{
		Inputs: text,
		Parameters: map[string]any{
			"min_length": 30,
			"max_length": 130,
			"do_sample":  false,
		},
	}, &out)
	if err != nil {
		return "", fmt.Errorf("summarization pipeline: %w", err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("summarization pipeline returned no results")
	}
	return nonEmpty(out[0].SummaryText)
}

// HFInference calls the hosted HuggingFace Inference API with a text
// generation prompt.
type HFInference struct {
	url        string
	token      string
	httpClient *http.Client
}

func NewHFInference(baseURL, token, model string) *HFInference {
	return &HFInference{
		url:        modelURL(baseURL, model),
		token:      token,
		httpClient: http.DefaultClient,
	}
}

func (c *HFInference) Name() string { return BackendHFInference }

func (c *HFInference) Summarize(ctx context.Context, text string) (string, error) {
	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	err := postJSON(ctx, c.httpClient, c.url, c.token, inferenceRequest{
		Inputs: inferencePrompt(text),
		Parameters: map[string]any{
			"max_new_tokens":   150,
			"temperature":      0.7,
			"do_sample":        true,
			"return_full_text": false,
		},
	}, &out)
	if err != nil {
		return "", fmt.Errorf("text generation: %w", err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("text generation returned no results")
	}
	return nonEmpty(out[0].GeneratedText)
}

func modelURL(baseURL, model string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(model, "/")
}
