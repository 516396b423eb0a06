package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	t.Setenv("ENCORE_TEST_STRING", "hello")
	t.Setenv("ENCORE_TEST_INT", " 42 ")
	t.Setenv("ENCORE_TEST_BAD_INT", "forty")
	t.Setenv("ENCORE_TEST_BOOL", "true")
	t.Setenv("ENCORE_TEST_DURATION", "90s")

	assert.Equal(t, "hello", GetString("ENCORE_TEST_STRING", "x"))
	assert.Equal(t, "x", GetString("ENCORE_TEST_MISSING", "x"))
	assert.Equal(t, 42, GetInt("ENCORE_TEST_INT", 0))
	assert.Equal(t, 7, GetInt("ENCORE_TEST_BAD_INT", 7))
	assert.True(t, GetBool("ENCORE_TEST_BOOL", false))
	assert.Equal(t, 90*time.Second, GetDuration("ENCORE_TEST_DURATION", time.Second))
}

func TestLoadDoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ENCORE_TEST_FROM_FILE=file\nENCORE_TEST_PRESET=file\n"), 0o600))

	t.Setenv("ENCORE_TEST_PRESET", "process")
	t.Cleanup(func() { os.Unsetenv("ENCORE_TEST_FROM_FILE") })

	Load(path, filepath.Join(dir, "missing.env"))

	assert.Equal(t, "file", os.Getenv("ENCORE_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("ENCORE_TEST_PRESET"))
}
