// Package resolve merges a project manifest's base/platform/compiler/
// build-config overlays into one effective configuration for a given
// (platform, compiler, build-config) triple.
//
// Ported from the original cforge's config_resolver.hpp/.cpp: same
// precedence order, same append-if-absent list merge, restructured as a
// pure function (Resolve) rather than a stateful class, since the Go
// callers always have the full triple up front.
package resolve

import (
	"fmt"

	"github.com/ozacod/cforge/internal/pkg/platform"
	"github.com/ozacod/cforge/internal/pkg/flags"
	"github.com/ozacod/cforge/pkg/manifest"
)

// Config is the merged output of overlay resolution: defines, flags,
// links, frameworks, and cmake_args concatenated in first-occurrence
// order, plus the portable options translated to this compiler's flags.
type Config struct {
	Defines    []string
	Flags      []string
	Links      []string
	Frameworks []string
	CMakeArgs  []string

	Portable flags.Translated

	// Warnings accumulates non-fatal notices (e.g. a dropped sanitizer
	// unsupported on this compiler).
	Warnings []string
}

// Resolve merges p's overlays for (plat, comp, buildConfig) following
// the precedence base < platform < compiler < platform.compiler <
// build.config (spec §4.3). buildConfig may be empty to skip the
// build-config overlay.
func Resolve(p *manifest.Project, plat platform.Platform, comp platform.Compiler, buildConfig string) Config {
	var cfg Config
	var ov manifest.Overlay

	apply := func(next manifest.Overlay) {
		ov = mergeOverlay(ov, next)
	}

	apply(p.Base)
	if po, ok := p.Platforms[plat.String()]; ok {
		apply(po)
	}
	if co, ok := p.Compilers[comp.String()]; ok {
		apply(co)
	}
	if pco, ok := p.PlatformCompilers[plat.String()+"."+comp.String()]; ok {
		apply(pco)
	}
	if buildConfig != "" {
		if deprecated, ok := p.ConfigsDeprecated[buildConfig]; ok {
			apply(deprecated)
		}
		if cfgOv, ok := p.Configs[buildConfig]; ok {
			apply(cfgOv)
		}
	}

	cfg.Defines = ov.Defines
	cfg.Flags = ov.Flags
	cfg.Links = ov.Links
	cfg.CMakeArgs = ov.CMakeArgs

	if plat == platform.MacOS {
		cfg.Frameworks = ov.Frameworks
	}

	opts, warnings := flags.Translate(overlayToOptions(ov), comp)
	cfg.Portable = opts
	cfg.Warnings = warnings

	return cfg
}

// mergeOverlay combines base and next: list fields are appended with
// duplicates skipped (first occurrence wins position), scalar fields
// from next override base's when next sets them, and an empty/absent
// next overlay is the identity.
func mergeOverlay(base, next manifest.Overlay) manifest.Overlay {
	out := base
	out.Defines = appendUnique(out.Defines, next.Defines)
	out.Flags = appendUnique(out.Flags, next.Flags)
	out.Links = appendUnique(out.Links, next.Links)
	out.Frameworks = appendUnique(out.Frameworks, next.Frameworks)
	out.CMakeArgs = appendUnique(out.CMakeArgs, next.CMakeArgs)
	out.Sanitizers = appendUnique(out.Sanitizers, next.Sanitizers)

	if next.Optimize != "" {
		out.Optimize = next.Optimize
	}
	if next.Warnings != "" {
		out.Warnings = next.Warnings
	}
	if next.Stdlib != "" {
		out.Stdlib = next.Stdlib
	}
	if next.Hardening != "" {
		out.Hardening = next.Hardening
	}
	if next.Visibility != "" {
		out.Visibility = next.Visibility
	}
	if next.WarningsAsErrors != nil {
		out.WarningsAsErrors = next.WarningsAsErrors
	}
	if next.DebugInfo != nil {
		out.DebugInfo = next.DebugInfo
	}
	if next.LTO != nil {
		out.LTO = next.LTO
	}
	if next.Exceptions != nil {
		out.Exceptions = next.Exceptions
	}
	if next.RTTI != nil {
		out.RTTI = next.RTTI
	}
	return out
}

func appendUnique(base, next []string) []string {
	if len(next) == 0 {
		return base
	}
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}
	out := base
	for _, v := range next {
		if !seen[v] {
			out = append(out, v)
			seen[v] = true
		}
	}
	return out
}

func overlayToOptions(ov manifest.Overlay) flags.Options {
	return flags.Options{
		Optimize:         ov.Optimize,
		Warnings:         ov.Warnings,
		WarningsAsErrors: boolValue(ov.WarningsAsErrors),
		DebugInfo:        boolValue(ov.DebugInfo),
		LTO:              boolValue(ov.LTO),
		Exceptions:       boolValueDefault(ov.Exceptions, true),
		RTTI:             boolValueDefault(ov.RTTI, true),
		Sanitizers:       ov.Sanitizers,
		Stdlib:           ov.Stdlib,
		Hardening:        ov.Hardening,
		Visibility:       ov.Visibility,
	}
}

func boolValue(b *bool) bool {
	return b != nil && *b
}

func boolValueDefault(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// HasPlatformOverlay reports whether p declares any overlay for plat,
// mirroring config_resolver::has_section's platform-scoped check.
func HasPlatformOverlay(p *manifest.Project, plat platform.Platform) bool {
	_, ok := p.Platforms[plat.String()]
	return ok
}

// String renders a Config for debug logging.
func (c Config) String() string {
	return fmt.Sprintf("defines=%v flags=%v links=%v frameworks=%v cmake_args=%v",
		c.Defines, c.Flags, c.Links, c.Frameworks, c.CMakeArgs)
}
