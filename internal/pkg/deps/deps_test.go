package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozacod/cforge/internal/pkg/registry"
	"github.com/ozacod/cforge/pkg/manifest"
)

func TestResolveSubdirectoryRequiresCMakeLists(t *testing.T) {
	projectDir := t.TempDir()
	vendored := filepath.Join(projectDir, "third_party", "vendored")
	require.NoError(t, os.MkdirAll(vendored, 0o755))

	r := NewResolver(projectDir, "deps", registry.NewClient(t.TempDir()), nil)

	_, err := r.resolveOne(context.Background(), manifest.Dependency{
		Name: "vendored", Kind: manifest.KindSubdirectory,
		Subdirectory: &manifest.SubdirectoryDependency{Path: "third_party/vendored"},
	}, NewLock(""))
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(vendored, "CMakeLists.txt"), []byte("# empty"), 0o644))

	res, err := r.resolveOne(context.Background(), manifest.Dependency{
		Name: "vendored", Kind: manifest.KindSubdirectory,
		Subdirectory: &manifest.SubdirectoryDependency{Path: "third_party/vendored", Target: "vendored::vendored"},
	}, NewLock(""))
	require.NoError(t, err)
	assert.Equal(t, "vendored::vendored", res.LinkTarget)
}

func TestResolveSystemBindsIncludeAndLinkInfoWithoutMaterializing(t *testing.T) {
	r := NewResolver(t.TempDir(), "deps", registry.NewClient(t.TempDir()), nil)

	res, err := r.resolveOne(context.Background(), manifest.Dependency{
		Name: "zlib", Kind: manifest.KindSystem,
		System: &manifest.SystemDependency{Target: "ZLIB::ZLIB", IncludeDirs: []string{"/usr/include/zlib"}},
	}, NewLock(""))
	require.NoError(t, err)
	assert.Equal(t, "ZLIB::ZLIB", res.LinkTarget)
	assert.Equal(t, []string{"/usr/include/zlib"}, res.IncludeDirs)
}

func TestResolveVcpkgRecordsLockEntryOnly(t *testing.T) {
	t.Setenv("VCPKG_ROOT", t.TempDir())
	r := NewResolver(t.TempDir(), "deps", registry.NewClient(t.TempDir()), nil)
	lock := NewLock("")

	res, err := r.resolveOne(context.Background(), manifest.Dependency{
		Name: "boost", Kind: manifest.KindVcpkg,
		Vcpkg: &manifest.VcpkgDependency{Package: "boost", Triplet: "x64-linux"},
	}, lock)
	require.NoError(t, err)
	assert.Equal(t, "boost", res.LinkTarget)

	entry, ok := lock.Get("boost")
	require.True(t, ok)
	assert.Equal(t, "vcpkg", entry.Source)
	assert.Equal(t, "x64-linux", entry.Version)
}

func TestVerifyFailsOnMissingMaterialization(t *testing.T) {
	projectDir := t.TempDir()
	r := NewResolver(projectDir, "deps", registry.NewClient(t.TempDir()), nil)

	lock := NewLock("")
	lock.Set("fmt", LockEntry{Source: "registry", Resolved: "deadbeef"})

	err := r.Verify(lock)
	require.Error(t, err)
}

func TestVerifyIgnoresNonGitNonRegistrySources(t *testing.T) {
	r := NewResolver(t.TempDir(), "deps", registry.NewClient(t.TempDir()), nil)
	lock := NewLock("")
	lock.Set("boost", LockEntry{Source: "vcpkg", Resolved: "boost"})

	assert.NoError(t, r.Verify(lock))
}
