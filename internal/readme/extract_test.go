package readme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFeatures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "dash bullets",
			text: "A cool app\n- Fast\n- Uses React and MongoDB\n- Free",
			want: []string{"Fast", "Uses React and MongoDB", "Free"},
		},
		{
			name: "star bullets and indentation",
			text: "Intro\n  * One  \n\t* Two\n",
			want: []string{"One", "Two"},
		},
		{
			name: "first three only",
			text: "- a\n- b\n* c\n- d\n- e",
			want: []string{"a", "b", "c"},
		},
		{
			name: "no bullets",
			text: "# Title\n\nJust prose.",
			want: []string{},
		},
		{
			name: "empty bullets skipped",
			text: "-\n*   \n- real",
			want: []string{"real"},
		},
		{
			name: "rules and emphasis are not bullets",
			text: "---\n**Note**: hi\n- item",
			want: []string{"item"},
		},
		{
			name: "windows line endings",
			text: "- one\r\n- two\r\n",
			want: []string{"one", "two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFeatures(tt.text))
		})
	}
}

func TestExtractTechStack(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "scenario text",
			text: "A cool app\n- Fast\n- Uses React and MongoDB\n- Free",
			want: []string{"React", "Go", "MongoDB"},
		},
		{
			name: "case insensitive, list order",
			text: "deployed on KUBERNETES with docker, written in rust",
			want: []string{"Rust", "Docker", "Kubernetes"},
		},
		{
			name: "substring semantics",
			text: "built with JavaScript",
			want: []string{"JavaScript", "Java"},
		},
		{
			name: "nothing matches",
			text: "a plain text file",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTechStack(tt.text))
		})
	}
}

func TestExtractTechStack_NoDuplicates(t *testing.T) {
	t.Parallel()
	got := ExtractTechStack("react React REACT react-native")
	assert.Equal(t, []string{"React"}, got)
}
