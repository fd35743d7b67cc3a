package builddriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProgressNinjaForm(t *testing.T) {
	pct, ok := parseProgress("[12/48] Building CXX object CMakeFiles/app.dir/main.cpp.o")
	assert.True(t, ok)
	assert.Equal(t, 25, pct)
}

func TestParseProgressMakeForm(t *testing.T) {
	pct, ok := parseProgress("[ 50%] Building CXX object CMakeFiles/app.dir/main.cpp.o")
	assert.True(t, ok)
	assert.Equal(t, 50, pct)
}

func TestParseProgressMSBuildFormHasNoPercent(t *testing.T) {
	_, ok := parseProgress("1>main.cpp")
	assert.False(t, ok)
}

func TestParseProgressUnrecognizedLine(t *testing.T) {
	_, ok := parseProgress("Consolidate compiler generated dependencies...")
	assert.False(t, ok)
}

func TestSelectGeneratorReturnsKnownGenerator(t *testing.T) {
	gen := SelectGenerator()
	assert.Contains(t, []Generator{NinjaMultiConfig, VisualStudio, UnixMakefiles}, gen)
}

func TestCompilingFileRegexExtractsObjectPath(t *testing.T) {
	m := compilingFileRe.FindStringSubmatch("Building CXX object CMakeFiles/app.dir/src/main.cpp.o")
	if assert.NotNil(t, m) {
		assert.Equal(t, "CMakeFiles/app.dir/src/main.cpp.o", m[1])
	}
}
