package registry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cferrors "github.com/ozacod/cforge/pkg/errors"
)

func TestLookupKnownDefaultEntry(t *testing.T) {
	c := NewClient(t.TempDir())

	e, err := c.Lookup("fmt")
	require.NoError(t, err)
	assert.Equal(t, "fmt::fmt", e.Integration.Target)
}

func TestLookupMissingReturnsRegistryEntryMissing(t *testing.T) {
	c := NewClient(t.TempDir())

	_, err := c.Lookup("does-not-exist")
	require.Error(t, err)
	var missing *cferrors.RegistryEntryMissing
	assert.ErrorAs(t, err, &missing)
}

func TestTagForExactVersionMatch(t *testing.T) {
	c := NewClient(t.TempDir())

	tag, err := c.TagFor("spdlog", "1.13.0")
	require.NoError(t, err)
	assert.Equal(t, "v1.13.0", tag)
}

func TestTagForFallsBackToTagPattern(t *testing.T) {
	c := NewClient(t.TempDir())
	c.entries["custom"] = Entry{
		Name:       "custom",
		TagPattern: "release-{version}",
	}

	tag, err := c.TagFor("custom", "2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "release-2.0.0", tag)
}

func TestVersionsReturnsAllKnownVersions(t *testing.T) {
	c := NewClient(t.TempDir())

	versions, err := c.Versions("googletest")
	require.NoError(t, err)
	assert.Contains(t, versions, "1.14.0")
}

func TestRefreshWritesCacheAndOverlaysEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]Entry{
			"newlib": {
				Name:     "newlib",
				URL:      "https://example.com/newlib.git",
				Versions: []VersionEntry{{Version: "1.0.0", Tag: "v1.0.0"}},
			},
		})
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := NewClient(dir)

	require.NoError(t, c.Refresh(srv.URL))

	e, err := c.Lookup("newlib")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/newlib.git", e.URL)

	_, err = os.Stat(filepath.Join(dir, "registry.json"))
	assert.NoError(t, err)
}

func TestNewClientLoadsExistingCacheFile(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal(map[string]Entry{
		"cached-lib": {Name: "cached-lib", URL: "https://example.com/cached.git"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "registry.json"), data, 0o644))

	c := NewClient(dir)
	e, err := c.Lookup("cached-lib")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cached.git", e.URL)
}
