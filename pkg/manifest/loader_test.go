package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectManifestName), []byte(body), 0o644))
	return dir
}

func TestLoadProjectBasicFields(t *testing.T) {
	// Spec §8 scenario S1.
	dir := writeManifest(t, `
name = "app"
version = "0.2.1"
output = "executable"
cxx_standard = "20"

[build.config.release]
optimize = "speed"
`)

	p, err := LoadProject(dir)
	require.NoError(t, err)

	assert.Equal(t, "app", p.Name)
	assert.Equal(t, "0.2.1", p.Version)
	assert.Equal(t, Executable, p.Output)
	assert.Equal(t, "20", p.CXXStandard)
	assert.Equal(t, "speed", p.Configs["release"].Optimize)
}

func TestLoadProjectRejectsMissingOutputKind(t *testing.T) {
	dir := writeManifest(t, `
name = "app"
cxx_standard = "20"
`)
	_, err := LoadProject(dir)
	require.Error(t, err)
}

func TestLoadProjectRejectsMissingStandard(t *testing.T) {
	dir := writeManifest(t, `
name = "app"
output = "executable"
`)
	_, err := LoadProject(dir)
	require.Error(t, err)
}

func TestDependencyKindsParsed(t *testing.T) {
	dir := writeManifest(t, `
name = "app"
output = "executable"
cxx_standard = "20"

[dependencies.git.mylib]
url = "https://example.com/mylib.git"
tag = "v1.0.0"

[dependencies.registry]
fmt = "^10.0.0"

[dependencies.subdirectory.vendored]
path = "third_party/vendored"

[dependencies.system.zlib]
mode = "find_package"
package = "ZLIB"

[dependencies.vcpkg.boost]
triplet = "x64-linux"
`)

	p, err := LoadProject(dir)
	require.NoError(t, err)
	require.Len(t, p.Dependencies, 5)

	byName := map[string]Dependency{}
	for _, d := range p.Dependencies {
		byName[d.Name] = d
	}

	assert.Equal(t, KindGit, byName["mylib"].Kind)
	assert.Equal(t, "https://example.com/mylib.git", byName["mylib"].Git.URL)

	assert.Equal(t, KindRegistry, byName["fmt"].Kind)
	assert.Equal(t, "^10.0.0", byName["fmt"].Registry.Constraint)

	assert.Equal(t, KindSubdirectory, byName["vendored"].Kind)
	assert.Equal(t, KindSystem, byName["zlib"].Kind)
	assert.Equal(t, KindVcpkg, byName["boost"].Kind)
	assert.Equal(t, "boost", byName["boost"].Vcpkg.Package)
}

func TestPluralConfigOverlayAcceptedAndFlaggedDeprecated(t *testing.T) {
	dir := writeManifest(t, `
name = "app"
output = "executable"
cxx_standard = "20"

[build.configs.release]
optimize = "speed"
`)
	p, err := LoadProject(dir)
	require.NoError(t, err)

	assert.Equal(t, "speed", p.ConfigsDeprecated["release"].Optimize)
	assert.NotEmpty(t, p.Warnings)
}

func TestWorkspaceMemberFormsAllAccepted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectManifestName), []byte(`
[workspace]
name = "ws"

members = [
  "app",
  { name = "lib", path = "lib", startup = false },
  "tool:tool:startup",
]
`), 0o644))

	for _, sub := range []string{"app", "lib", "tool"} {
		subDir := filepath.Join(dir, sub)
		require.NoError(t, os.MkdirAll(subDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(subDir, ProjectManifestName), []byte(`
name = "`+sub+`"
output = "executable"
cxx_standard = "20"
`), 0o644))
	}

	ws, err := LoadWorkspace(dir)
	require.NoError(t, err)
	require.Len(t, ws.Members, 3)
	assert.Equal(t, "app", ws.Members[0].Path)
	assert.Equal(t, "lib", ws.Members[1].Name)
	assert.Equal(t, "tool", ws.Members[2].Name)
	assert.True(t, ws.Members[2].Startup)
}
