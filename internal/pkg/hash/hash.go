// Package hash computes content hashes used to skip redundant CMake
// regeneration and to fingerprint dependency materializations.
//
// It uses the standard library's hash/fnv (FNV-1a, 64-bit) rather than
// hand-rolling the algorithm: the original cforge's dependency_hash.hpp
// defines its own FNV constants only because C++ has no FNV-1a in its
// standard library. Go does, so reimplementing it would just be worse
// stdlib duplicated badly.
package hash

import (
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// CacheFileName is the on-disk name of the hash cache (spec §4.8);
// not intended for version control.
const CacheFileName = "cforge.hash"

// String returns the 16-hex-digit lowercase FNV-1a hash of s.
func String(s string) string {
	h := fnv.New64a()
	_, _ = io.WriteString(h, s)
	return fmt.Sprintf("%016x", h.Sum64())
}

// File returns the FNV-1a hash of a file's full contents.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := fnv.New64a()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// Dir returns a deterministic hash over a directory tree: entries are
// sorted lexicographically by path relative to root, then folded into
// one rolling FNV-1a hash as (relative path bytes, file bytes) pairs for
// every regular file.
func Dir(root string) (string, error) {
	var paths []string
	files := map[string]string{}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		paths = append(paths, rel)
		files[rel] = path
		return nil
	})
	if err != nil {
		return "", err
	}

	sort.Strings(paths)

	h := fnv.New64a()
	for _, rel := range paths {
		_, _ = io.WriteString(h, rel)
		f, err := os.Open(files[rel])
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// Cache is a logical-input-name to content-hash map, persisted as
// cforge.hash. It is treated as disposable: on read error or corruption
// the caller should fall back to an empty cache rather than fail.
type Cache struct {
	Config       map[string]string            `toml:"config"`
	Dependencies map[string]map[string]string `toml:"dependency"`
}

// NewCache returns an empty hash cache ready for use.
func NewCache() *Cache {
	return &Cache{
		Config:       map[string]string{},
		Dependencies: map[string]map[string]string{},
	}
}

// Get returns the cached hash for a logical input name ("cforge.toml",
// "cforge.workspace.toml") and whether it was present.
func (c *Cache) Get(name string) (string, bool) {
	v, ok := c.Config[name]
	return v, ok
}

// Set records the hash for a logical input name.
func (c *Cache) Set(name, value string) {
	if c.Config == nil {
		c.Config = map[string]string{}
	}
	c.Config[name] = value
}

// GetDependency returns the cached hash field for a dependency.
func (c *Cache) GetDependency(name, field string) (string, bool) {
	dep, ok := c.Dependencies[name]
	if !ok {
		return "", false
	}
	v, ok := dep[field]
	return v, ok
}

// SetDependency records a hash field for a dependency (e.g. "hash",
// "version").
func (c *Cache) SetDependency(name, field, value string) {
	if c.Dependencies == nil {
		c.Dependencies = map[string]map[string]string{}
	}
	if c.Dependencies[name] == nil {
		c.Dependencies[name] = map[string]string{}
	}
	c.Dependencies[name][field] = value
}

// Matches reports whether name's cached hash equals current, i.e.
// whether regeneration can be skipped.
func (c *Cache) Matches(name, current string) bool {
	v, ok := c.Get(name)
	return ok && v == current
}

// SanitizeName converts a filesystem path into a cache-safe logical
// input name by stripping path separators a TOML table key can't hold.
func SanitizeName(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name)
}

// LoadCache reads dir/cforge.hash. A missing or corrupt file is not an
// error: the cache is disposable, so callers fall back to an empty one
// (forcing regeneration) rather than failing the build.
func LoadCache(dir string) *Cache {
	data, err := os.ReadFile(filepath.Join(dir, CacheFileName))
	if err != nil {
		return NewCache()
	}
	c := NewCache()
	if err := toml.Unmarshal(data, c); err != nil {
		return NewCache()
	}
	if c.Config == nil {
		c.Config = map[string]string{}
	}
	if c.Dependencies == nil {
		c.Dependencies = map[string]map[string]string{}
	}
	return c
}

// Save persists the cache via write-then-rename, matching the
// durability convention used for cforge.lock.
func (c *Cache) Save(dir string) error {
	path := filepath.Join(dir, CacheFileName)
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "cforge.hash.*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
