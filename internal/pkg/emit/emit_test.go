package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ozacod/cforge/internal/pkg/deps"
	"github.com/ozacod/cforge/internal/pkg/flags"
	"github.com/ozacod/cforge/internal/pkg/platform"
	"github.com/ozacod/cforge/internal/pkg/resolve"
	"github.com/ozacod/cforge/pkg/manifest"
)

func baseProject() *manifest.Project {
	return &manifest.Project{
		Name:        "app",
		Version:     "0.2.1",
		Output:      manifest.Executable,
		CXXStandard: "20",
		Sources:     []string{"src/*.cpp"},
	}
}

func TestEmitContainsProjectHeaderAndStandard(t *testing.T) {
	// Spec §8 scenario S1.
	in := Input{
		Project:  baseProject(),
		Platform: platform.Linux,
		Compiler: platform.GCC,
		Configs: []ConfigOverlay{
			{Name: "Release", Config: resolve.Config{Portable: flags.Translated{Compile: []string{"-O2"}}}},
		},
	}

	out := Emit(in)
	assert.Contains(t, out, `project(app VERSION 0.2.1 LANGUAGES CXX)`)
	assert.Contains(t, out, "set(CMAKE_CXX_STANDARD 20)")
	assert.Contains(t, out, `if(CMAKE_BUILD_TYPE STREQUAL "Release")`)
	assert.Contains(t, out, "-O2")
}

func TestEmitIsDeterministic(t *testing.T) {
	in := Input{
		Project:  baseProject(),
		Platform: platform.Linux,
		Compiler: platform.GCC,
	}

	first := Emit(in)
	second := Emit(in)
	assert.Equal(t, first, second)
}

func TestEmitRegistryDependencyFetchContent(t *testing.T) {
	// Spec §8 scenario S3.
	p := baseProject()
	in := Input{
		Project:  p,
		Platform: platform.Linux,
		Compiler: platform.GCC,
		Dependencies: []deps.Resolved{
			{
				Name: "fmt", Kind: manifest.KindRegistry, Version: "10.2.1",
				LinkTarget: "fmt::fmt",
			},
		},
	}

	out := Emit(in)
	assert.Contains(t, out, "FetchContent_Declare(")
	assert.Contains(t, out, "GIT_TAG 10.2.1")
	assert.Contains(t, out, "GIT_SHALLOW TRUE")
	assert.Contains(t, out, "fmt::fmt")
}

func TestEmitPlatformOverlayBlock(t *testing.T) {
	// Spec §8 scenario S2.
	p := baseProject()
	p.Platforms = map[string]manifest.Overlay{
		"linux": {Defines: []string{"B"}},
	}

	in := Input{Project: p, Platform: platform.Linux, Compiler: platform.GCC}
	out := Emit(in)
	assert.Contains(t, out, `if(CFORGE_PLATFORM STREQUAL "linux")`)
	assert.Contains(t, out, `"B"`)
}

func TestEmitMixedFlagsSplitByStyle(t *testing.T) {
	p := baseProject()
	p.Compilers = map[string]manifest.Overlay{
		"gcc": {Flags: []string{"-Wall", "/W4"}},
	}

	in := Input{Project: p, Platform: platform.Linux, Compiler: platform.GCC}
	out := Emit(in)
	assert.Contains(t, out, "if(MSVC)")
	assert.Contains(t, out, "if(NOT MSVC)")
}
