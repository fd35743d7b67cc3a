package deps

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const LockFileName = "cforge.lock"

// LockMetadata is the lock file's [metadata] block.
type LockMetadata struct {
	SchemaVersion int    `toml:"schema_version"`
	GeneratedAt   string `toml:"generated_at"`
}

// LockEntry is one materialized dependency's recorded state.
type LockEntry struct {
	Source   string `toml:"source"`
	URL      string `toml:"url,omitempty"`
	Version  string `toml:"version"`
	Resolved string `toml:"resolved"`
	Checksum string `toml:"checksum,omitempty"`
}

// Lock is the parsed cforge.lock file.
type Lock struct {
	Metadata     LockMetadata         `toml:"metadata"`
	Dependencies map[string]LockEntry `toml:"dependency"`
}

// NewLock returns an empty lock stamped with the current schema version.
// generatedAt is supplied by the caller (callers must not call time.Now
// from inside pure helpers used by workflow/test code).
func NewLock(generatedAt string) *Lock {
	return &Lock{
		Metadata:     LockMetadata{SchemaVersion: 1, GeneratedAt: generatedAt},
		Dependencies: map[string]LockEntry{},
	}
}

// LoadLock reads dir/cforge.lock. A missing file is not an error: it
// returns an empty lock, matching the loader's general "missing file ->
// empty default" convention.
func LoadLock(dir string) (*Lock, error) {
	path := filepath.Join(dir, LockFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewLock(""), nil
	}
	if err != nil {
		return nil, err
	}

	var l Lock
	if err := toml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if l.Dependencies == nil {
		l.Dependencies = map[string]LockEntry{}
	}
	return &l, nil
}

// Save writes the lock file via write-then-rename so a crash mid-write
// never corrupts the previous lock.
//
// NOTE: go-toml/v2 does not preserve comments or blank lines on
// round-trip. cforge.lock is tool-generated and not meant to be
// hand-edited, so this is an accepted limitation rather than a
// silently-broken promise to a human editor.
func (l *Lock) Save(dir string) error {
	path := filepath.Join(dir, LockFileName)
	data, err := toml.Marshal(l)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "cforge.lock.*.tmp")
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

// Get returns the lock entry for name.
func (l *Lock) Get(name string) (LockEntry, bool) {
	e, ok := l.Dependencies[name]
	return e, ok
}

// Set records or replaces the lock entry for name.
func (l *Lock) Set(name string, e LockEntry) {
	if l.Dependencies == nil {
		l.Dependencies = map[string]LockEntry{}
	}
	l.Dependencies[name] = e
}
