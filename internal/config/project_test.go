package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectMissingIsEmpty(t *testing.T) {
	p, err := LoadProject(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, p.SourceRoots)
	assert.Empty(t, p.Entry)
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	data := "source_roots:\n  - src\n  - lib\nentry: src/main.sml\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFileName), []byte(data), 0o644))

	p, err := LoadProject(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"src", "lib"}, p.SourceRoots)
	assert.Equal(t, "src/main.sml", p.Entry)
}

func TestLoadProjectMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFileName), []byte("{{{"), 0o644))
	_, err := LoadProject(dir)
	require.Error(t, err)
}

func TestSourceExtHelpers(t *testing.T) {
	assert.True(t, HasSourceExt("lib.sml"))
	assert.True(t, HasSourceExt("lib.sig"))
	assert.False(t, HasSourceExt("lib.go"))
	assert.Equal(t, "lib", TrimSourceExt("lib.sml"))
	assert.Equal(t, "lib.go", TrimSourceExt("lib.go"))
}
