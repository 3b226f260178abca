package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readmeText = "# Widget\nA cool app\n- Fast\n- Uses React and MongoDB\n- Free"

func jsonServer(t *testing.T, handler func(t *testing.T, r *http.Request, body map[string]any) (int, any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		status, payload := handler(t, r, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	}
}

func TestOpenAI_Summarize(t *testing.T) {
	t.Parallel()
	srv := jsonServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, any) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.EqualValues(t, 150, body["max_tokens"])
		return http.StatusOK, chatCompletion("  Widget is a fast, free app.  ")
	})

	b := NewOpenAI(srv.URL+"/v1/", "sk-test", "gpt-4o-mini")
	got, err := b.Summarize(context.Background(), readmeText)
	require.NoError(t, err)
	assert.Equal(t, "Widget is a fast, free app.", got)
}

func TestOpenAI_EmptyContent(t *testing.T) {
	t.Parallel()
	srv := jsonServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, any) {
		return http.StatusOK, chatCompletion("   ")
	})

	_, err := NewOpenAI(srv.URL, "sk-test", "gpt-4o-mini").Summarize(context.Background(), readmeText)
	assert.True(t, errors.Is(err, ErrEmptySummary))
}

func TestCheckAccess(t *testing.T) {
	t.Parallel()
	srv := jsonServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, any) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models"))
		return http.StatusOK, map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"id": "gpt-4o-mini", "object": "model"},
				{"id": "text-embedding-3-small", "object": "model"},
			},
		}
	})

	ids, err := CheckAccess(context.Background(), srv.URL, "sk-test")
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o-mini", "text-embedding-3-small"}, ids)
}

func TestLangChain_Summarize(t *testing.T) {
	t.Parallel()
	srv := jsonServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, any) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		return http.StatusOK, chatCompletion("```json\n{\"summary\":\"Widget helps.\",\"key_features\":[\"Fast\"],\"tech_stack\":[\"React\"]}\n```")
	})

	b := NewLangChain(srv.URL, "sk-test", "gpt-4o-mini", option.WithMaxRetries(0))
	got, err := b.Summarize(context.Background(), readmeText)
	require.NoError(t, err)
	assert.Equal(t, "Widget helps.", got)
}

func TestLangChain_Unparseable(t *testing.T) {
	t.Parallel()
	srv := jsonServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, any) {
		return http.StatusOK, chatCompletion("I cannot do that.")
	})

	b := NewLangChain(srv.URL, "sk-test", "gpt-4o-mini", option.WithMaxRetries(0))
	_, err := b.Summarize(context.Background(), readmeText)
	assert.Error(t, err)
}

func TestAnthropic_Summarize(t *testing.T) {
	t.Parallel()
	srv := jsonServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, any) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "claude-haiku-4-5", body["model"])
		return http.StatusOK, map[string]any{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-haiku-4-5",
			"stop_reason": "end_turn",
			"content": []map[string]any{
				{"type": "text", "text": `{"summary":"Widget is handy.","key_features":[],"tech_stack":[]}`},
			},
			"usage": map[string]any{"input_tokens": 10, "output_tokens": 5},
		}
	})

	b := NewAnthropic(srv.URL, "key", "claude-haiku-4-5", anthropicoption.WithMaxRetries(0))
	got, err := b.Summarize(context.Background(), readmeText)
	require.NoError(t, err)
	assert.Equal(t, "Widget is handy.", got)
}

func TestHFLocal_Summarize(t *testing.T) {
	t.Parallel()
	srv := jsonServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, any) {
		assert.Equal(t, "/models/sshleifer/distilbart-cnn-12-6", r.URL.Path)
		assert.Equal(t, readmeText, body["inputs"])
		params := body["parameters"].(map[string]any)
		assert.EqualValues(t, 30, params["min_length"])
		assert.EqualValues(t, 130, params["max_length"])
		assert.Equal(t, false, params["do_sample"])
		return http.StatusOK, []map[string]any{{"summary_text": " Widget is a fast app. "}}
	})

	got, err := NewHFLocal(srv.URL+"/models/", "sshleifer/distilbart-cnn-12-6").Summarize(context.Background(), readmeText)
	require.NoError(t, err)
	assert.Equal(t, "Widget is a fast app.", got)
}

func TestHFLocal_Failure(t *testing.T) {
	t.Parallel()
	srv := jsonServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, any) {
		return http.StatusServiceUnavailable, map[string]any{"error": "model is loading"}
	})

	_, err := NewHFLocal(srv.URL, "m").Summarize(context.Background(), readmeText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model is loading")
}

func TestHFInference_Summarize(t *testing.T) {
	t.Parallel()
	srv := jsonServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, any) {
		assert.Equal(t, "/google/flan-t5-small", r.URL.Path)
		assert.Equal(t, "Bearer hf_token", r.Header.Get("Authorization"))
		assert.True(t, strings.HasSuffix(body["inputs"].(string), "Summary:"))
		assert.Contains(t, body["inputs"], readmeText)
		return http.StatusOK, []map[string]any{{"generated_text": "Widget is a free app."}}
	})

	got, err := NewHFInference(srv.URL, "hf_token", "google/flan-t5-small").Summarize(context.Background(), readmeText)
	require.NoError(t, err)
	assert.Equal(t, "Widget is a free app.", got)
}

func TestHFInference_NoResults(t *testing.T) {
	t.Parallel()
	srv := jsonServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, any) {
		return http.StatusOK, []map[string]any{}
	})

	_, err := NewHFInference(srv.URL, "", "m").Summarize(context.Background(), readmeText)
	assert.Error(t, err)
}

func TestOllama_Summarize(t *testing.T) {
	t.Parallel()
	srv := jsonServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, any) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "mistral", body["model"])
		assert.Equal(t, false, body["stream"])
		assert.Equal(t, "json", body["format"])
		assert.Contains(t, body["prompt"], readmeText)
		return http.StatusOK, map[string]any{
			"model":    "mistral",
			"response": `{"summary":"Widget is fast.","key_features":["Fast"],"tech_stack":["React","MongoDB"]}`,
			"done":     true,
		}
	})

	got, err := mustOllama(t, srv.URL+"/").Summarize(context.Background(), readmeText)
	require.NoError(t, err)
	assert.Equal(t, "Widget is fast.", got)
}

func TestOllama_MalformedNestedJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		response string
	}{
		{name: "not json", response: "Widget is fast."},
		{name: "missing summary", response: `{"key_features":["Fast"]}`},
		{name: "wrong type", response: `{"summary":["a","b"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, any) {
				return http.StatusOK, map[string]any{"response": tt.response}
			})
			_, err := mustOllama(t, srv.URL).Summarize(context.Background(), readmeText)
			assert.Error(t, err)
		})
	}
}

func TestOllama_ServerError(t *testing.T) {
	t.Parallel()
	srv := jsonServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, any) {
		return http.StatusNotFound, map[string]any{"error": "model 'mistral' not found"}
	})

	_, err := mustOllama(t, srv.URL).Summarize(context.Background(), readmeText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func mustOllama(t *testing.T, baseURL string) *Ollama {
	t.Helper()
	c, err := NewOllama(baseURL, "mistral")
	require.NoError(t, err)
	return c
}
