// Package flags translates cforge's intent-level portable build options
// (optimize, warnings, sanitizers, ...) into per-compiler flag lists.
//
// Ported from the original cforge's portable_flags.hpp/utils/portable_flags.cpp:
// same option vocabulary, same per-compiler translation tables (spec §4.4).
package flags

import "github.com/ozacod/cforge/internal/pkg/platform"

// Options is the portable, compiler-agnostic statement of build intent
// a project or overlay declares.
type Options struct {
	Optimize         string
	Warnings         string
	WarningsAsErrors bool
	DebugInfo        bool
	LTO              bool
	Exceptions       bool
	RTTI             bool
	Sanitizers       []string
	Stdlib           string
	Hardening        string
	Visibility       string
}

// HasAny reports whether any option differs from its zero/default value.
func (o Options) HasAny() bool {
	return o.Optimize != "" || o.Warnings != "" || o.WarningsAsErrors || o.DebugInfo ||
		o.LTO || !o.Exceptions || !o.RTTI || len(o.Sanitizers) > 0 ||
		o.Stdlib != "" || o.Hardening != "" || o.Visibility != ""
}

// Translate resolves Options into compiler flags for comp, returning
// separate compile- and link-time flag lists plus any verbose-mode
// diagnostics for silently-dropped unsupported combinations (spec §4.4:
// "memory" sanitizer on MSVC, for example).
func (o Options) Translate(comp platform.Compiler) (compile, link []string, warnings []string) {
	switch comp {
	case platform.MSVC:
		return translateMSVC(o)
	case platform.GCC:
		return translateGCC(o)
	case platform.Clang, platform.AppleClang:
		return translateClang(o)
	case platform.MinGW:
		// MinGW uses the GNU driver; spec doesn't list it separately, so
		// it takes the GCC table.
		return translateGCC(o)
	default:
		return nil, nil, nil
	}
}

func translateMSVC(o Options) (compile, link []string, warnings []string) {
	switch o.Optimize {
	case "none", "debug":
		compile = append(compile, "/Od")
	case "size":
		compile = append(compile, "/O1", "/Os")
	case "speed":
		compile = append(compile, "/O2")
	case "aggressive":
		compile = append(compile, "/Ox")
	}

	switch o.Warnings {
	case "none":
		compile = append(compile, "/W0")
	case "default":
		compile = append(compile, "/W3")
	case "all":
		compile = append(compile, "/W4")
	case "strict":
		compile = append(compile, "/W4", "/WX")
	case "pedantic":
		compile = append(compile, "/W4", "/WX", "/permissive-")
	}
	if o.WarningsAsErrors {
		compile = append(compile, "/WX")
	}

	if o.DebugInfo {
		compile = append(compile, "/Zi")
	}
	if o.LTO {
		compile = append(compile, "/GL")
		link = append(link, "/LTCG")
	}

	if o.Exceptions {
		compile = append(compile, "/EHsc")
	} else {
		compile = append(compile, "/EHs-c-")
	}
	if o.RTTI {
		compile = append(compile, "/GR")
	} else {
		compile = append(compile, "/GR-")
	}

	for _, s := range o.Sanitizers {
		if s == "address" {
			compile = append(compile, "/fsanitize=address")
		} else {
			warnings = append(warnings, "sanitizer "+s+" is unsupported on msvc, dropped")
		}
	}

	switch o.Hardening {
	case "basic":
		compile = append(compile, "/GS", "/sdl")
		link = append(link, "/DYNAMICBASE", "/NXCOMPAT")
	case "full":
		compile = append(compile, "/GS", "/sdl", "/GUARD:CF")
		link = append(link, "/DYNAMICBASE", "/NXCOMPAT", "/GUARD:CF")
	}

	return compile, link, warnings
}

func translateGCC(o Options) (compile, link []string, warnings []string) {
	switch o.Optimize {
	case "none":
		compile = append(compile, "-O0")
	case "debug":
		compile = append(compile, "-Og")
	case "size":
		compile = append(compile, "-Os")
	case "speed":
		compile = append(compile, "-O2")
	case "aggressive":
		compile = append(compile, "-O3")
	}

	switch o.Warnings {
	case "none":
		compile = append(compile, "-w")
	case "all":
		compile = append(compile, "-Wall", "-Wextra")
	case "strict":
		compile = append(compile, "-Wall", "-Wextra", "-Werror")
	case "pedantic":
		compile = append(compile, "-Wall", "-Wextra", "-Wpedantic", "-Werror")
	}
	if o.WarningsAsErrors {
		compile = append(compile, "-Werror")
	}

	if o.DebugInfo {
		compile = append(compile, "-g")
	}
	if o.LTO {
		compile = append(compile, "-flto")
		link = append(link, "-flto")
	}

	if !o.Exceptions {
		compile = append(compile, "-fno-exceptions")
	}
	if !o.RTTI {
		compile = append(compile, "-fno-rtti")
	}

	for _, s := range o.Sanitizers {
		if s == "memory" {
			warnings = append(warnings, "sanitizer memory is unsupported on gcc, dropped")
			continue
		}
		flag := "-fsanitize=" + s
		compile = append(compile, flag)
		link = append(link, flag)
	}

	switch o.Hardening {
	case "basic":
		compile = append(compile, "-fstack-protector-strong", "-D_FORTIFY_SOURCE=2")
	case "full":
		compile = append(compile, "-fstack-protector-strong", "-D_FORTIFY_SOURCE=2", "-fPIE")
		link = append(link, "-pie")
	}

	if o.Visibility == "hidden" {
		compile = append(compile, "-fvisibility=hidden", "-fvisibility-inlines-hidden")
	}

	return compile, link, warnings
}

func translateClang(o Options) (compile, link []string, warnings []string) {
	compile, link, warnings = translateGCC(o)
	// Clang supports every sanitizer GCC drops, so redo that loop with
	// the full set rather than filtering memory out.
	compile = stripSanitizerFlags(compile)
	link = stripSanitizerFlags(link)
	warnings = nil

	switch o.Optimize {
	case "none":
	case "debug":
	}

	for _, s := range o.Sanitizers {
		flag := "-fsanitize=" + s
		compile = append(compile, flag)
		link = append(link, flag)
	}

	if o.Stdlib != "" && o.Stdlib != "default" {
		compile = append(compile, "-stdlib="+o.Stdlib)
		link = append(link, "-stdlib="+o.Stdlib)
	}

	// Hardening flags are identical to GCC's and were already appended by
	// translateGCC above; Clang/AppleClang recognize the same -f/-D forms.

	return compile, link, warnings
}

func stripSanitizerFlags(in []string) []string {
	out := in[:0:0]
	for _, f := range in {
		if len(f) >= len("-fsanitize=") && f[:len("-fsanitize=")] == "-fsanitize=" {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Translate is the package-level entry point resolve.Config uses: it
// wraps Options.Translate, returning the compile- and link-time lists
// together in one Translated value plus the warnings.
func Translate(o Options, comp platform.Compiler) (Translated, []string) {
	compile, link, warnings := o.Translate(comp)
	return Translated{Compile: compile, Link: link}, warnings
}

// Translated holds a compiler's resolved compile- and link-time flags.
type Translated struct {
	Compile []string
	Link    []string
}
