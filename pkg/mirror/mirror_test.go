package mirror

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingDir(t *testing.T) {
	m, err := NewMapping("/src", "/dst", false)
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"root file", "/src/post.md", "/dst"},
		{"nested file", "/src/a/post1.md", "/dst/a"},
		{"deeply nested file", "/src/a/b/c/post.md", "/dst/a/b/c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, err := m.Dir(filepath.FromSlash(tt.path))
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.expected), dir)
		})
	}
}

func TestMappingDirOutsideSource(t *testing.T) {
	m, err := NewMapping("/src", "/dst", false)
	require.NoError(t, err)

	_, err = m.Dir("/elsewhere/post.md")
	assert.Error(t, err)
}

func TestMappingTarget(t *testing.T) {
	m, err := NewMapping("/src/", "/dst/", false)
	require.NoError(t, err)

	target, err := m.Target("/src/images/a/logo.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/dst/images/a/logo.png"), target)
}

func TestNewMappingAbs(t *testing.T) {
	m, err := NewMapping("docs", "content/docs", true)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(m.Src))
	assert.True(t, filepath.IsAbs(m.Dst))
	assert.Equal(t, "docs", filepath.Base(m.Src))
	assert.Equal(t, "docs", filepath.Base(m.Dst))
}

func TestMappingInDst(t *testing.T) {
	m, err := NewMapping("/src", "/out/site", false)
	require.NoError(t, err)

	assert.True(t, m.InDst("/out/site"))
	assert.True(t, m.InDst("/out/site/a"))
	assert.False(t, m.InDst("/out"))
	assert.False(t, m.InDst("/out/site-other"))
}
