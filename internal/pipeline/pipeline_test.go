package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smlkit/smlc/internal/diagnostics"
)

func TestRunSourceEndToEnd(t *testing.T) {
	ctx := RunSource("test.sml", `
		datatype 'a opt = None | Some of 'a
		val x = Some 1
	`, false)
	require.Empty(t, ctx.Diags)
	require.NotNil(t, ctx.Elab)
	assert.Len(t, ctx.Elab.Decls(), 2, "datatype + val")
	assert.False(t, ctx.Failed())
}

func TestRunSourceLexFailureStopsPipeline(t *testing.T) {
	ctx := RunSource("bad.sml", "val x = \x01", false)
	require.Len(t, ctx.Diags, 1)
	assert.Equal(t, diagnostics.LexError, ctx.Diags[0].Kind)
	assert.Nil(t, ctx.Elab, "parser must not run after a lex error")
}

func TestRunSourceElaborationFailure(t *testing.T) {
	ctx := RunSource("bad.sml", "val x = y", false)
	require.Len(t, ctx.Diags, 1)
	assert.Equal(t, diagnostics.UnboundVariable, ctx.Diags[0].Kind)
	assert.True(t, ctx.Failed())
}

func TestStopFastWithinOneUnit(t *testing.T) {
	ctx := RunSource("bad.sml", "val x = y val z = 1", false)
	require.Len(t, ctx.Diags, 1, "elaboration stops at the first diagnostic")
	assert.Empty(t, ctx.Elab.Decls())
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.sml")
	bad := filepath.Join(dir, "bad.sml")
	require.NoError(t, os.WriteFile(good, []byte("val x = 1"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("val x = y"), 0o644))

	results, err := RunFiles([]string{good, bad}, false)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	// Each file gets its own Context; their unit ids differ.
	assert.NotEqual(t, results[0].Elab.UnitID, results[1].Elab.UnitID)
}

func TestRunFilesMissingFile(t *testing.T) {
	_, err := RunFiles([]string{"/does/not/exist.sml"}, false)
	require.Error(t, err)
}
