package hash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringIsDeterministicAndSixteenHexDigits(t *testing.T) {
	a := String("cforge.toml contents")
	b := String("cforge.toml contents")
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestDifferentContentDifferentHash(t *testing.T) {
	assert.NotEqual(t, String("a"), String("b"))
}

func TestDirHashStableUnderUnchangedTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("two"), 0o644))

	h1, err := Dir(dir)
	require.NoError(t, err)
	h2, err := Dir(dir)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestCacheMatchesSkipsRegeneration(t *testing.T) {
	c := NewCache()
	c.Set("cforge.toml", "deadbeef")

	assert.True(t, c.Matches("cforge.toml", "deadbeef"))
	assert.False(t, c.Matches("cforge.toml", "other"))
	assert.False(t, c.Matches("missing.toml", "deadbeef"))
}

func TestSanitizeNameStripsSeparators(t *testing.T) {
	assert.Equal(t, "a_b_c", SanitizeName("a/b\\c"))
}
