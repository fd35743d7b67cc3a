package cli

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ozacod/cforge/pkg/manifest"
)

// loadRawManifest reads dir/cforge.toml into an untyped map so deps.go
// commands can mutate the [dependencies] table without round-tripping
// through the typed Project struct, which doesn't carry fields meant
// only for re-serialization.
func loadRawManifest(dir string) (map[string]any, error) {
	path := filepath.Join(dir, manifest.ProjectManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// saveRawManifest writes raw back to dir/cforge.toml via write-then-
// rename.
//
// NOTE: like cforge.lock, go-toml/v2 doesn't preserve comments or key
// order on round-trip. `deps add`/`deps remove` accept that tradeoff
// the same way the lock writer does, since they're the one place a
// tool mutates cforge.toml on the user's behalf rather than the user
// hand-editing it.
func saveRawManifest(dir string, raw map[string]any) error {
	path := filepath.Join(dir, manifest.ProjectManifestName)
	data, err := toml.Marshal(raw)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "cforge.toml.*.tmp")
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

func dependenciesTable(raw map[string]any) map[string]any {
	deps, ok := raw["dependencies"].(map[string]any)
	if !ok {
		deps = map[string]any{}
		raw["dependencies"] = deps
	}
	return deps
}

func addRegistryDependency(dir, name, constraint string) error {
	raw, err := loadRawManifest(dir)
	if err != nil {
		return err
	}
	deps := dependenciesTable(raw)
	registryTable, ok := deps["registry"].(map[string]any)
	if !ok {
		registryTable = map[string]any{}
		deps["registry"] = registryTable
	}
	registryTable[name] = constraint
	return saveRawManifest(dir, raw)
}

func addGitDependency(dir, name, url, tag string) error {
	raw, err := loadRawManifest(dir)
	if err != nil {
		return err
	}
	deps := dependenciesTable(raw)
	gitTable, ok := deps["git"].(map[string]any)
	if !ok {
		gitTable = map[string]any{}
		deps["git"] = gitTable
	}
	entry := map[string]any{"url": url}
	if tag != "" {
		entry["tag"] = tag
	}
	gitTable[name] = entry
	return saveRawManifest(dir, raw)
}

func removeDependency(dir, name string) error {
	raw, err := loadRawManifest(dir)
	if err != nil {
		return err
	}
	deps := dependenciesTable(raw)
	for _, kind := range []string{"git", "registry", "subdirectory", "system", "vcpkg"} {
		if table, ok := deps[kind].(map[string]any); ok {
			delete(table, name)
		}
	}
	return saveRawManifest(dir, raw)
}
