// Package registry is the read-only client for cforge's dependency
// registry: a name -> {repository URL, known versions, CMake
// integration} lookup, backed by an embedded default set and an
// on-disk cache refreshed over HTTP.
//
// Grounded on the teacher's internal/pkg/build/vcpkg/vcpkg.go, which
// talks to a package index over net/http with the same
// fetch-into-temp-then-persist caching shape.
package registry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	cferrors "github.com/ozacod/cforge/pkg/errors"
)

// CMakeIntegration describes how a resolved dependency is wired into the
// emitted CMakeLists.txt.
type CMakeIntegration struct {
	Target     string            `json:"target"`
	Subdir     string            `json:"cmake_subdir,omitempty"`
	Options    map[string]string `json:"options,omitempty"`
	SetupCmds  map[string][]string `json:"setup_commands,omitempty"` // keyed by platform
}

// VersionEntry pairs a semver string with the git tag that carries it.
type VersionEntry struct {
	Version string `json:"version"`
	Tag     string `json:"tag"`
}

// Entry is one package's registry record.
type Entry struct {
	Name        string           `json:"name"`
	URL         string           `json:"url"`
	Versions    []VersionEntry   `json:"versions"`
	TagPattern  string           `json:"tag_pattern,omitempty"`
	Integration CMakeIntegration `json:"integration"`
}

// Client is a read-only registry lookup backed by embedded defaults
// overlaid with an on-disk cache.
type Client struct {
	CacheDir string
	entries  map[string]Entry
}

// NewClient builds a Client seeded with the embedded default registry,
// then overlays entries found in cacheDir/registry.json if present.
func NewClient(cacheDir string) *Client {
	c := &Client{CacheDir: cacheDir, entries: map[string]Entry{}}
	for _, e := range defaultEntries {
		c.entries[e.Name] = e
	}
	c.loadCache()
	return c
}

func (c *Client) cachePath() string {
	return filepath.Join(c.CacheDir, "registry.json")
}

func (c *Client) loadCache() {
	data, err := os.ReadFile(c.cachePath())
	if err != nil {
		return
	}
	var cached map[string]Entry
	if err := json.Unmarshal(data, &cached); err != nil {
		return
	}
	for name, e := range cached {
		c.entries[name] = e
	}
}

// Lookup returns the registry record for name, or RegistryEntryMissing.
func (c *Client) Lookup(name string) (Entry, error) {
	e, ok := c.entries[name]
	if !ok {
		return Entry{}, &cferrors.RegistryEntryMissing{Package: name}
	}
	return e, nil
}

// Versions returns the known semver strings for a package, for feeding
// into the Version Matcher.
func (c *Client) Versions(name string) ([]string, error) {
	e, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(e.Versions))
	for i, v := range e.Versions {
		out[i] = v.Version
	}
	return out, nil
}

// TagFor returns the git tag that corresponds to a resolved version
// string, either from the enumerated version list or by substituting
// into the package's tag_pattern.
func (c *Client) TagFor(name, version string) (string, error) {
	e, err := c.Lookup(name)
	if err != nil {
		return "", err
	}
	for _, v := range e.Versions {
		if v.Version == version {
			return v.Tag, nil
		}
	}
	if e.TagPattern != "" {
		return replaceVersionToken(e.TagPattern, version), nil
	}
	return version, nil
}

func replaceVersionToken(pattern, version string) string {
	const token = "{version}"
	out := ""
	for {
		i := indexOf(pattern, token)
		if i < 0 {
			out += pattern
			break
		}
		out += pattern[:i] + version
		pattern = pattern[i+len(token):]
	}
	return out
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// Search returns every entry whose name contains query, sorted by name.
// An empty query returns the full entry set, for listing everything
// known offline.
func (c *Client) Search(query string) []Entry {
	query = strings.ToLower(query)
	var out []Entry
	for _, e := range c.entries {
		if query == "" || strings.Contains(strings.ToLower(e.Name), query) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LatestVersion returns an entry's newest declared version string, or
// "" if it has none.
func (e Entry) LatestVersion() string {
	if len(e.Versions) == 0 {
		return ""
	}
	return e.Versions[len(e.Versions)-1].Version
}

// Refresh fetches updated metadata from url and writes it into the
// on-disk cache via write-then-rename, so concurrent readers never see
// a half-written file.
func (c *Client) Refresh(url string) error {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("registry refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry refresh: unexpected status %s", resp.Status)
	}

	var fetched map[string]Entry
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		return fmt.Errorf("registry refresh: decoding response: %w", err)
	}

	if err := os.MkdirAll(c.CacheDir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.CacheDir, "registry-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := json.NewEncoder(tmp).Encode(fetched); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, c.cachePath()); err != nil {
		os.Remove(tmpPath)
		return err
	}

	for name, e := range fetched {
		c.entries[name] = e
	}
	return nil
}

// defaultEntries seeds the client with a handful of well-known C++
// packages so a fresh install works offline for the common case.
var defaultEntries = []Entry{
	{
		Name: "fmt",
		URL:  "https://github.com/fmtlib/fmt.git",
		Versions: []VersionEntry{
			{Version: "10.0.0", Tag: "10.0.0"},
			{Version: "10.2.1", Tag: "10.2.1"},
			{Version: "11.0.0", Tag: "11.0.0"},
		},
		Integration: CMakeIntegration{Target: "fmt::fmt"},
	},
	{
		Name: "spdlog",
		URL:  "https://github.com/gabime/spdlog.git",
		Versions: []VersionEntry{
			{Version: "1.12.0", Tag: "v1.12.0"},
			{Version: "1.13.0", Tag: "v1.13.0"},
		},
		Integration: CMakeIntegration{
			Target:  "spdlog::spdlog",
			Options: map[string]string{"SPDLOG_FMT_EXTERNAL": "OFF"},
		},
	},
	{
		Name: "nlohmann-json",
		URL:  "https://github.com/nlohmann/json.git",
		Versions: []VersionEntry{
			{Version: "3.11.2", Tag: "v3.11.2"},
			{Version: "3.11.3", Tag: "v3.11.3"},
		},
		Integration: CMakeIntegration{Target: "nlohmann_json::nlohmann_json"},
	},
	{
		Name: "catch2",
		URL:  "https://github.com/catchorg/Catch2.git",
		Versions: []VersionEntry{
			{Version: "3.4.0", Tag: "v3.4.0"},
			{Version: "3.5.3", Tag: "v3.5.3"},
		},
		Integration: CMakeIntegration{Target: "Catch2::Catch2WithMain"},
	},
	{
		Name: "googletest",
		URL:  "https://github.com/google/googletest.git",
		Versions: []VersionEntry{
			{Version: "1.14.0", Tag: "v1.14.0"},
		},
		Integration: CMakeIntegration{
			Target:  "GTest::gtest_main",
			Options: map[string]string{"gtest_force_shared_crt": "ON"},
		},
	},
}
