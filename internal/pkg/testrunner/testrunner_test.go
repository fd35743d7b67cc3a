package testrunner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestDiscoverDetectsFrameworkFromIncludes(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "gtest_case.cpp", `#include <gtest/gtest.h>`)
	writeSource(t, dir, "catch_case.cpp", `#include "catch2/catch_all.hpp"`)
	writeSource(t, dir, "plain_case.cpp", `int main() { return 0; }`)

	targets, err := Discover(dir, nil)
	require.NoError(t, err)
	require.Len(t, targets, 3)

	byName := map[string]Target{}
	for _, tgt := range targets {
		byName[tgt.Name] = tgt
	}
	assert.Equal(t, GoogleTest, byName["gtest_case"].Framework)
	assert.Equal(t, Catch2, byName["catch_case"].Framework)
	assert.Equal(t, Passthrough, byName["plain_case"].Framework)
}

func TestDiscoverMissingDirReturnsEmpty(t *testing.T) {
	targets, err := Discover(filepath.Join(t.TempDir(), "missing"), nil)
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestDiscoverHonorsDeclaredFrameworkOverride(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "custom.cpp", `int main() {}`)

	targets, err := Discover(dir, map[string]Framework{"custom": Doctest})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, Doctest, targets[0].Framework)
}

func TestParseOutputGoogleTestPassAndFail(t *testing.T) {
	out := `[==========] Running 2 tests.
[ RUN      ] Suite.PassCase
[       OK ] Suite.PassCase (1 ms)
[ RUN      ] Suite.FailCase
[  FAILED  ] Suite.FailCase
`
	cases := parseOutput(GoogleTest, out)
	require.Len(t, cases, 2)
	assert.Equal(t, "Suite.PassCase", cases[0].Name)
	assert.Equal(t, "Suite", cases[0].Suite)
	assert.Equal(t, Passed, cases[0].Status)
	assert.Equal(t, Failed, cases[1].Status)
}

func TestParseOutputNonGoogleTestReturnsNil(t *testing.T) {
	assert.Nil(t, parseOutput(Catch2, "whatever"))
}

func TestSummarizeCountsEachStatus(t *testing.T) {
	s := Summarize([]CaseResult{
		{Status: Passed}, {Status: Passed}, {Status: Failed}, {Status: Skipped}, {Status: Timeout},
	})
	assert.Equal(t, Summary{Total: 5, Passed: 2, Failed: 1, Skipped: 1, TimedOut: 1}, s)
}

func TestFormatCargoStyleReportsFailureOverallStatus(t *testing.T) {
	out := FormatCargoStyle([]CaseResult{{Name: "a", Suite: "S", Status: Passed}, {Name: "b", Suite: "S", Status: Failed}})
	assert.Contains(t, out, "test S::a ... ok")
	assert.Contains(t, out, "test S::b ... FAILED")
	assert.Contains(t, out, "test result: FAILED")
}

func TestRunReportsTimeoutStatusWithoutError(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "sleepy.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\n"), 0o755))

	target := Target{Name: "sleepy", Framework: Passthrough}
	cases, err := Run(context.Background(), target, script, 50*time.Millisecond, "", false)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, Timeout, cases[0].Status)
}

func TestLookPathFallsBackToUnconfiguredBinDir(t *testing.T) {
	buildDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(buildDir, "bin"), 0o755))
	binPath := filepath.Join(buildDir, "bin", binaryName("app"))
	require.NoError(t, os.WriteFile(binPath, []byte{}, 0o755))

	got := LookPath(buildDir, "Release", "app")
	assert.Equal(t, binPath, got)
}
