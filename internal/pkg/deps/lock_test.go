package deps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLockMissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	lock, err := LoadLock(dir)
	require.NoError(t, err)
	assert.Empty(t, lock.Dependencies)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	lock := NewLock("2026-01-01T00:00:00Z")
	lock.Set("fmt", LockEntry{Source: "registry", URL: "https://github.com/fmtlib/fmt.git", Version: "^10", Resolved: "abc123"})

	require.NoError(t, lock.Save(dir))

	reloaded, err := LoadLock(dir)
	require.NoError(t, err)

	entry, ok := reloaded.Get("fmt")
	require.True(t, ok)
	assert.Equal(t, "abc123", entry.Resolved)
	assert.Equal(t, "registry", entry.Source)
}
