package llm

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/kevinmichaelchen/readme-digest/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			b, err := New(&config.Config{Backend: name})
			require.NoError(t, err)
			assert.Equal(t, name, b.Name())
		})
	}
}

func TestNew_Unknown(t *testing.T) {
	t.Parallel()
	_, err := New(&config.Config{Backend: "gpt-2-on-a-toaster"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestOutputFile(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "project_summary.json", OutputFile(BackendOpenAI))
	assert.Equal(t, "project_summary_langchain.json", OutputFile(BackendLangChain))
	assert.Equal(t, "project_summary_hf.json", OutputFile(BackendHFLocal))
	assert.Equal(t, "project_summary_llm.json", OutputFile(BackendHFInference))
	assert.Equal(t, "project_summary_ollama.json", OutputFile(BackendOllama))
	assert.Equal(t, "project_summary_custom.json", OutputFile("custom"))
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain JSON unchanged", input: `{"summary":"x"}`, want: `{"summary":"x"}`},
		{name: "json fenced block", input: "```json\n{\"summary\":\"x\"}\n```", want: `{"summary":"x"}`},
		{name: "plain fenced block", input: "```\n{\"summary\":\"x\"}\n```", want: `{"summary":"x"}`},
		{name: "surrounding prose", input: "Sure! Here it is: {\"summary\":\"x\"} Hope that helps.", want: `{"summary":"x"}`},
		{name: "no object", input: "  nothing here  ", want: "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.input))
		})
	}
}

func TestParseStructured(t *testing.T) {
	t.Parallel()

	got, err := parseStructured("```json\n{\"summary\":\" A tool. \",\"key_features\":[\"a\"],\"tech_stack\":[\"Go\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, "A tool.", got.Summary)
	assert.Equal(t, []string{"a"}, got.KeyFeatures)
	assert.Equal(t, []string{"Go"}, got.TechStack)

	_, err = parseStructured("not json at all")
	assert.Error(t, err)

	_, err = parseStructured(`{"key_features":["a"]}`)
	assert.True(t, errors.Is(err, ErrEmptySummary))
}

func TestStructuredSummary_LogsModelLists(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	got, err := structuredSummary(BackendAnthropic, `{"summary":"A tool.","key_features":["Fast"],"tech_stack":["Rust"]}`)
	require.NoError(t, err)
	assert.Equal(t, "A tool.", got)
	assert.Contains(t, buf.String(), "backend=anthropic")
	assert.Contains(t, buf.String(), "key_features=[Fast]")
	assert.Contains(t, buf.String(), "tech_stack=[Rust]")

	_, err = structuredSummary(BackendOllama, `{"tech_stack":["Rust"]}`)
	assert.True(t, errors.Is(err, ErrEmptySummary))
}
