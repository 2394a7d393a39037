package title

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
		ok       bool
	}{
		{
			name:     "atx heading",
			source:   "# Hello World\n\nBody.\n",
			expected: "Hello World",
			ok:       true,
		},
		{
			name:     "first heading wins",
			source:   "Intro paragraph.\n\n## Second level\n\n# Top level\n",
			expected: "Second level",
			ok:       true,
		},
		{
			name:     "inline markup flattened",
			source:   "# Deploying *ROSA* with `terraform`\n",
			expected: "Deploying ROSA with terraform",
			ok:       true,
		},
		{
			name:     "surrounding whitespace trimmed",
			source:   "#    Padded title    #\n",
			expected: "Padded title",
			ok:       true,
		},
		{
			name:     "setext heading",
			source:   "Setext Title\n============\n\ntext\n",
			expected: "Setext Title",
			ok:       true,
		},
		{
			name:     "front matter is not a heading",
			source:   "---\nlayout: post\ntags: a b\n---\nA paragraph.\n\n# Real Title\n",
			expected: "Real Title",
			ok:       true,
		},
		{
			name:   "front matter only",
			source: "---\ntitle: Metadata title\n---\nNo headings at all.\n",
			ok:     false,
		},
		{
			name:   "no heading",
			source: "Just text.\n\n- a list\n",
			ok:     false,
		},
		{
			name:   "empty heading",
			source: "#\n\ntext\n",
			ok:     false,
		},
		{
			name:   "empty document",
			source: "",
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract([]byte(tt.source))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractOr(t *testing.T) {
	assert.Equal(t, "Found", ExtractOr([]byte("# Found\n"), Fallback))
	assert.Equal(t, Fallback, ExtractOr([]byte("no heading"), Fallback))
}
