package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManifestParseErrorIncludesLineWhenPresent(t *testing.T) {
	err := NewManifestParseError("cforge.toml", 12, "unexpected token")
	assert.Equal(t, "cforge.toml:12: unexpected token", err.Error())
}

func TestManifestParseErrorOmitsLineWhenZero(t *testing.T) {
	err := NewManifestParseError("cforge.toml", 0, "empty file")
	assert.Equal(t, "cforge.toml: empty file", err.Error())
}

func TestBuildErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := NewBuildError("configure", "cmake failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "Caused by: exit status 1")
}

func TestCycleErrorRendersChainWithArrows(t *testing.T) {
	err := &CycleError{Kind: "workspace", Chain: []string{"a", "b", "c", "a"}}
	assert.Equal(t, "workspace cycle detected: a -> b -> c -> a", err.Error())
}

func TestLockVerificationFailedReportsExpectedAndActual(t *testing.T) {
	err := &LockVerificationFailed{Package: "fmt", Expected: "abc", Actual: "def"}
	assert.Contains(t, err.Error(), "fmt")
	assert.Contains(t, err.Error(), "abc")
	assert.Contains(t, err.Error(), "def")
}

func TestIsDependencyErrorDetectsWrappedType(t *testing.T) {
	err := NewDependencyError("fmt", "clone failed", "check network")
	assert.True(t, IsDependencyError(err))
	assert.False(t, IsDependencyError(errors.New("plain")))
}

func TestToolErrorIncludesInstallHintWhenPresent(t *testing.T) {
	err := NewToolError("cmake", "not found", "apt install cmake")
	assert.Contains(t, err.Error(), "Install with: apt install cmake")
}
