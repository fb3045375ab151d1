package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/itemcore/internal/data"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheck_ValidCatalog(t *testing.T) {
	var dump bytes.Buffer
	require.NoError(t, data.Default().WriteYAML(&dump))
	path := writeFile(t, "items.yaml", dump.String())

	var out bytes.Buffer
	require.NoError(t, check(&out, path, true))
	assert.Contains(t, out.String(), data.Default().DigestHex())
	assert.Contains(t, out.String(), "0 problems")
}

func TestCheck_DataProblems(t *testing.T) {
	path := writeFile(t, "items.yaml", `
items:
  - {id: 300, name: candle, decayTo: 999, decayTimeMs: 1000}
`)

	var out bytes.Buffer
	require.NoError(t, check(&out, path, false))
	assert.Contains(t, out.String(), "1 problems")

	out.Reset()
	assert.ErrorIs(t, check(&out, path, true), errProblems)
}

func TestCheck_BrokenFile(t *testing.T) {
	path := writeFile(t, "items.yaml", "items: [{id: -1}]")

	var out bytes.Buffer
	assert.ErrorIs(t, check(&out, path, false), data.ErrInvalidCatalog)
	assert.Empty(t, out.String())
}
