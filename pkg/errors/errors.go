// Package errors collects cforge's structured error types.
//
// Each type carries the context a user needs to act on it (file/line,
// phase, package name) rather than a bare string, and composes with the
// standard library's errors.As/errors.Unwrap.
package errors

import (
	"errors"
	"fmt"
)

// ManifestParseError is a malformed-TOML error with source position.
type ManifestParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ManifestParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

func NewManifestParseError(file string, line int, message string) *ManifestParseError {
	return &ManifestParseError{File: file, Line: line, Message: message}
}

// ManifestSchemaError reports a manifest that parsed but violates an
// invariant (missing name, bad output kind, no language standard, ...).
type ManifestSchemaError struct {
	File    string
	Field   string
	Message string
}

func (e *ManifestSchemaError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
}

func NewManifestSchemaError(file, field, message string) *ManifestSchemaError {
	return &ManifestSchemaError{File: file, Field: field, Message: message}
}

// OverlayResolutionError reports a contradictory scalar overlay value.
type OverlayResolutionError struct {
	Overlay string
	Field   string
	Message string
}

func (e *OverlayResolutionError) Error() string {
	return fmt.Sprintf("overlay error [%s]: %s - %s", e.Overlay, e.Field, e.Message)
}

func NewOverlayResolutionError(overlay, field, message string) *OverlayResolutionError {
	return &OverlayResolutionError{Overlay: overlay, Field: field, Message: message}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Field   string
	Message string
	Hint    string
}

func (e *ConfigError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("config error: %s - %s\nHint: %s", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("config error: %s - %s", e.Field, e.Message)
}

func NewConfigError(field, message, hint string) *ConfigError {
	return &ConfigError{Field: field, Message: message, Hint: hint}
}

// BuildError represents build-related errors (configure, compile, link).
type BuildError struct {
	Phase   string
	Message string
	Output  string
	Cause   error
}

func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("build error [%s]: %s\nCaused by: %v", e.Phase, e.Message, e.Cause)
	}
	return fmt.Sprintf("build error [%s]: %s", e.Phase, e.Message)
}

func (e *BuildError) Unwrap() error { return e.Cause }

func NewBuildError(phase, message string, cause error) *BuildError {
	return &BuildError{Phase: phase, Message: message, Cause: cause}
}

// ConfigureFailed reports a nonzero CMake configure exit.
type ConfigureFailed struct {
	Output   string
	ExitCode int
}

func (e *ConfigureFailed) Error() string {
	return fmt.Sprintf("cmake configure failed (exit %d):\n%s", e.ExitCode, e.Output)
}

// BuildFailed reports a nonzero CMake build exit.
type BuildFailed struct {
	Output   string
	ExitCode int
}

func (e *BuildFailed) Error() string {
	return fmt.Sprintf("build failed (exit %d):\n%s", e.ExitCode, e.Output)
}

// TestFailed reports a nonzero test-run exit or parsed test failures.
type TestFailed struct {
	Target string
	Output string
}

func (e *TestFailed) Error() string {
	return fmt.Sprintf("tests failed [%s]:\n%s", e.Target, e.Output)
}

// TimeoutError reports a subprocess that exceeded its deadline.
type TimeoutError struct {
	Command string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out: %s", e.Command)
}

// DependencyError represents dependency-related errors.
type DependencyError struct {
	Package string
	Message string
	Hint    string
}

func (e *DependencyError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("dependency error: %s - %s\nHint: %s", e.Package, e.Message, e.Hint)
	}
	return fmt.Sprintf("dependency error: %s - %s", e.Package, e.Message)
}

func NewDependencyError(pkg, message, hint string) *DependencyError {
	return &DependencyError{Package: pkg, Message: message, Hint: hint}
}

// NoMatchingVersion reports that no registry/tag version satisfies a
// dependency's constraint.
type NoMatchingVersion struct {
	Package    string
	Constraint string
}

func (e *NoMatchingVersion) Error() string {
	return fmt.Sprintf("no version of %s satisfies %q", e.Package, e.Constraint)
}

// RegistryEntryMissing reports a registry lookup miss.
type RegistryEntryMissing struct {
	Package string
}

func (e *RegistryEntryMissing) Error() string {
	return fmt.Sprintf("registry entry missing: %s", e.Package)
}

// LockVerificationFailed reports a lock entry that does not match the
// on-disk materialization.
type LockVerificationFailed struct {
	Package  string
	Expected string
	Actual   string
}

func (e *LockVerificationFailed) Error() string {
	return fmt.Sprintf("LockVerificationFailed: %s (expected %s, got %s)", e.Package, e.Expected, e.Actual)
}

// CycleError reports a cycle discovered by DFS, naming the full chain.
type CycleError struct {
	Kind  string // "workspace" or "include"
	Chain []string
}

func (e *CycleError) Error() string {
	msg := "cycle detected"
	if e.Kind != "" {
		msg = e.Kind + " cycle detected"
	}
	if len(e.Chain) == 0 {
		return msg
	}
	s := msg + ": "
	for i, n := range e.Chain {
		if i > 0 {
			s += " -> "
		}
		s += n
	}
	return s
}

// ToolError represents external tool-related errors.
type ToolError struct {
	Tool       string
	Message    string
	InstallCmd string
}

func (e *ToolError) Error() string {
	if e.InstallCmd != "" {
		return fmt.Sprintf("%s: %s\nInstall with: %s", e.Tool, e.Message, e.InstallCmd)
	}
	return fmt.Sprintf("%s: %s", e.Tool, e.Message)
}

func NewToolError(tool, message, installCmd string) *ToolError {
	return &ToolError{Tool: tool, Message: message, InstallCmd: installCmd}
}

// Common sentinel errors.
var (
	ErrNotInProject       = errors.New("not in a cforge project directory (no cforge.toml found)")
	ErrNoVcpkgRoot        = errors.New("VCPKG_ROOT not configured; set the environment variable or vcpkg_root in the global config")
	ErrBuildNotConfigured = errors.New("project not configured. Run: cforge build first")
	ErrWorkspaceNotFound  = errors.New("no cforge workspace found in this directory or its parents")
)

// IsConfigError checks if err is a *ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsBuildError checks if err is a *BuildError.
func IsBuildError(err error) bool {
	var e *BuildError
	return errors.As(err, &e)
}

// IsDependencyError checks if err is a *DependencyError.
func IsDependencyError(err error) bool {
	var e *DependencyError
	return errors.As(err, &e)
}

// IsToolError checks if err is a *ToolError.
func IsToolError(err error) bool {
	var e *ToolError
	return errors.As(err, &e)
}

// IsCycleError checks if err is a *CycleError.
func IsCycleError(err error) bool {
	var e *CycleError
	return errors.As(err, &e)
}
