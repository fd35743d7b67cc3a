package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlatformCaseInsensitive(t *testing.T) {
	assert.Equal(t, Linux, ParsePlatform("Linux"))
	assert.Equal(t, MacOS, ParsePlatform("DARWIN"))
	assert.Equal(t, Windows, ParsePlatform(" windows "))
	assert.Equal(t, Unknown, ParsePlatform("plan9"))
}

func TestPlatformStringRoundTrips(t *testing.T) {
	for _, p := range []Platform{Windows, Linux, MacOS} {
		assert.Equal(t, p, ParsePlatform(p.String()))
	}
}

func TestParseCompilerAliases(t *testing.T) {
	assert.Equal(t, MSVC, ParseCompiler("cl"))
	assert.Equal(t, GCC, ParseCompiler("g++"))
	assert.Equal(t, Clang, ParseCompiler("clang++"))
	assert.Equal(t, AppleClang, ParseCompiler("Apple Clang"))
	assert.Equal(t, CompilerUnknown, ParseCompiler("tcc"))
}

func TestCurrentReturnsKnownPlatform(t *testing.T) {
	assert.NotEqual(t, Unknown, Current())
}

func TestDetectHonorsOverride(t *testing.T) {
	assert.Equal(t, Clang, Detect("clang"))
	assert.Equal(t, GCC, Detect("gcc"))
}
