package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashObjectCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testFlags(t, dir)
	require.NoError(t, initCmd(&bytes.Buffer{}, cfg, ""))

	file := filepath.Join(dir, "hello")
	require.NoError(t, os.WriteFile(file, []byte("hello\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, hashObjectCmd(&out, cfg, file, false))
	assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a\n", out.String())

	exists, err := filepath.Glob(filepath.Join(dir, ".git", "objects", "ce", "*"))
	require.NoError(t, err)
	assert.Empty(t, exists, "without --write the object must not be persisted")

	out.Reset()
	require.NoError(t, hashObjectCmd(&out, cfg, file, true))
	assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a\n", out.String())

	exists, err = filepath.Glob(filepath.Join(dir, ".git", "objects", "ce", "*"))
	require.NoError(t, err)
	assert.NotEmpty(t, exists, "--write must persist the object")
}
