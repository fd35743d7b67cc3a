package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ozacod/cforge/internal/pkg/platform"
)

func TestOptimizeTranslation(t *testing.T) {
	cases := []struct {
		level       string
		msvc, gcc, clang []string
	}{
		// MSVC always carries an exceptions flag and an RTTI flag
		// (/EHsc and /GR here, since both options are enabled).
		{"none", []string{"/Od", "/EHsc", "/GR"}, []string{"-O0"}, []string{"-O0"}},
		{"debug", []string{"/Od", "/EHsc", "/GR"}, []string{"-Og"}, []string{"-Og"}},
		{"size", []string{"/O1", "/Os", "/EHsc", "/GR"}, []string{"-Os"}, []string{"-Os"}},
		{"speed", []string{"/O2", "/EHsc", "/GR"}, []string{"-O2"}, []string{"-O2"}},
		{"aggressive", []string{"/Ox", "/EHsc", "/GR"}, []string{"-O3"}, []string{"-O3"}},
	}

	for _, c := range cases {
		opts := Options{Optimize: c.level, Exceptions: true, RTTI: true}

		msvcCompile, _, _ := opts.Translate(platform.MSVC)
		assert.Equal(t, c.msvc, msvcCompile, "msvc optimize=%s", c.level)

		gccCompile, _, _ := opts.Translate(platform.GCC)
		assert.Equal(t, c.gcc, gccCompile, "gcc optimize=%s", c.level)

		clangCompile, _, _ := opts.Translate(platform.Clang)
		assert.Equal(t, c.clang, clangCompile, "clang optimize=%s", c.level)
	}
}

func TestWarningsAsErrorsAppendsFlag(t *testing.T) {
	opts := Options{WarningsAsErrors: true, Exceptions: true, RTTI: true}

	msvcCompile, _, _ := opts.Translate(platform.MSVC)
	assert.Contains(t, msvcCompile, "/WX")

	gccCompile, _, _ := opts.Translate(platform.GCC)
	assert.Contains(t, gccCompile, "-Werror")
}

func TestSanitizersPropagateToLink(t *testing.T) {
	opts := Options{Sanitizers: []string{"address", "undefined"}, Exceptions: true, RTTI: true}

	compile, link, warnings := opts.Translate(platform.Clang)
	assert.Contains(t, compile, "-fsanitize=address")
	assert.Contains(t, link, "-fsanitize=address")
	assert.Contains(t, compile, "-fsanitize=undefined")
	assert.Empty(t, warnings)
}

func TestMemorySanitizerDroppedOnMSVCAndGCC(t *testing.T) {
	opts := Options{Sanitizers: []string{"memory"}, Exceptions: true, RTTI: true}

	msvcCompile, _, msvcWarnings := opts.Translate(platform.MSVC)
	assert.NotContains(t, msvcCompile, "-fsanitize=memory")
	assert.NotEmpty(t, msvcWarnings)

	gccCompile, _, gccWarnings := opts.Translate(platform.GCC)
	assert.NotContains(t, gccCompile, "-fsanitize=memory")
	assert.NotEmpty(t, gccWarnings)
}

func TestExceptionsDisabled(t *testing.T) {
	opts := Options{Exceptions: false, RTTI: true}

	msvcCompile, _, _ := opts.Translate(platform.MSVC)
	assert.Contains(t, msvcCompile, "/EHs-c-")

	gccCompile, _, _ := opts.Translate(platform.GCC)
	assert.Contains(t, gccCompile, "-fno-exceptions")
}

func TestLTOAffectsCompileAndLink(t *testing.T) {
	opts := Options{LTO: true, Exceptions: true, RTTI: true}

	msvcCompile, msvcLink, _ := opts.Translate(platform.MSVC)
	assert.Contains(t, msvcCompile, "/GL")
	assert.Contains(t, msvcLink, "/LTCG")

	gccCompile, gccLink, _ := opts.Translate(platform.GCC)
	assert.Contains(t, gccCompile, "-flto")
	assert.Contains(t, gccLink, "-flto")
}
