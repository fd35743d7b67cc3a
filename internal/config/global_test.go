package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryCacheDirNestsUnderConfigDir(t *testing.T) {
	assert.Equal(t, "/home/u/.config/cforge/registry", defaultRegistryCacheDir("/home/u/.config/cforge"))
}

func TestLoadGlobalFillsDefaultsForFreshConfigDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", t.TempDir())
	} else {
		t.Setenv("HOME", t.TempDir())
	}

	cfg, err := LoadGlobal()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.RegistryCacheDir)
	assert.Equal(t, "deps", cfg.DefaultDependenciesDir)
	assert.Greater(t, cfg.DefaultJobs, 0)
}

func TestSaveGlobalThenLoadGlobalRoundTrips(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", t.TempDir())
	} else {
		t.Setenv("HOME", t.TempDir())
	}

	require.NoError(t, SaveGlobal(&GlobalConfig{VcpkgRoot: "/opt/vcpkg", DefaultCompiler: "clang"}))

	cfg, err := LoadGlobal()
	require.NoError(t, err)
	assert.Equal(t, "/opt/vcpkg", cfg.VcpkgRoot)
	assert.Equal(t, "clang", cfg.DefaultCompiler)
}
