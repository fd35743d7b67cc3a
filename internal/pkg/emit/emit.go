// Package emit renders a project's effective configuration and resolved
// dependencies into a deterministic CMakeLists.txt.
//
// Written in the teacher's internal/pkg/templates/templates.go style:
// small functions building up a *strings.Builder with fmt.Fprintf, no
// templating engine, one function per emitted section so the overall
// emitter body reads as the ordered section list from spec §4.9.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ozacod/cforge/internal/pkg/deps"
	"github.com/ozacod/cforge/internal/pkg/platform"
	"github.com/ozacod/cforge/internal/pkg/resolve"
	"github.com/ozacod/cforge/internal/pkg/semver"
	"github.com/ozacod/cforge/pkg/manifest"
)

// ConfigOverlay pairs a named build configuration ("Debug", "Release",
// ...) with its resolved effective configuration, so the emitter can
// render one overlay block per requested configuration.
type ConfigOverlay struct {
	Name   string
	Config resolve.Config
}

// Input bundles everything Emit needs for one invocation.
type Input struct {
	Project      *manifest.Project
	Platform     platform.Platform
	Compiler     platform.Compiler
	Configs      []ConfigOverlay
	Dependencies []deps.Resolved
	// WorkspaceDeps lists sibling-project names this member depends on
	// within a workspace, for section 13's include/add_dependencies wiring.
	WorkspaceDeps []WorkspaceDependency
	HasTests      bool
}

// WorkspaceDependency is one inter-project dependency edge resolved by
// the workspace orchestrator.
type WorkspaceDependency struct {
	Name        string
	IncludeDir  string
	LibDir      string
}

// Emit renders in.Project's CMakeLists.txt. Emission is a pure function
// of Input: identical input always produces byte-identical output
// (spec §8 property 1).
func Emit(in Input) string {
	var b strings.Builder

	writeHeader(&b, in.Project)
	writeModulePaths(&b, in.Project)
	writeLanguageStandards(&b, in.Project)
	writePlatformCompilerDetection(&b)
	writeOutputDirs(&b)
	writeDependenciesPhase1(&b, in.Dependencies)
	writeRawInjection(&b, in.Project.InjectBeforeTarget)
	writeTarget(&b, in.Project)
	writeRawInjection(&b, in.Project.InjectAfterTarget)
	writeVersionDefinitions(&b, in.Project)
	writeIncludeDirectories(&b, in.Project)
	writeOverlayBlocks(&b, in.Project)
	writeConfigurationBlocks(&b, in)
	writeDependenciesPhase2(&b, in.Project, in.Dependencies)
	writeSystemDependencies(&b, in.Dependencies)
	writeWorkspaceWiring(&b, in.Project, in.WorkspaceDeps)
	writeTestSubdirectory(&b, in.HasTests)
	writePackaging(&b, in.Project)

	return b.String()
}

func writeHeader(b *strings.Builder, p *manifest.Project) {
	fmt.Fprintf(b, "# Generated by cforge. Do not edit by hand; edit cforge.toml instead.\n")
	fmt.Fprintf(b, "cmake_minimum_required(VERSION 3.20)\n\n")

	version := p.Version
	if version == "" {
		version = "0.0.0"
	}
	languages := languageList(p)
	fmt.Fprintf(b, "project(%s VERSION %s LANGUAGES %s)\n\n", p.Name, version, strings.Join(languages, " "))
}

func languageList(p *manifest.Project) []string {
	var langs []string
	if p.CStandard != "" {
		langs = append(langs, "C")
	}
	if p.CXXStandard != "" {
		langs = append(langs, "CXX")
	}
	return langs
}

func writeModulePaths(b *strings.Builder, p *manifest.Project) {
	if len(p.ModulePaths) > 0 {
		fmt.Fprintf(b, "list(APPEND CMAKE_MODULE_PATH %s)\n", quoteJoin(p.ModulePaths))
	}
	for _, f := range p.IncludeCMakeFiles {
		fmt.Fprintf(b, "include(%s)\n", f)
	}
	if len(p.ModulePaths) > 0 || len(p.IncludeCMakeFiles) > 0 {
		b.WriteByte('\n')
	}
}

func writeLanguageStandards(b *strings.Builder, p *manifest.Project) {
	if p.CXXStandard != "" {
		fmt.Fprintf(b, "set(CMAKE_CXX_STANDARD %s)\n", p.CXXStandard)
		fmt.Fprintf(b, "set(CMAKE_CXX_STANDARD_REQUIRED ON)\n")
		fmt.Fprintf(b, "set(CMAKE_CXX_EXTENSIONS OFF)\n")
	}
	if p.CStandard != "" {
		fmt.Fprintf(b, "set(CMAKE_C_STANDARD %s)\n", p.CStandard)
		fmt.Fprintf(b, "set(CMAKE_C_STANDARD_REQUIRED ON)\n")
		fmt.Fprintf(b, "set(CMAKE_C_EXTENSIONS OFF)\n")
	}
	b.WriteByte('\n')
}

func writePlatformCompilerDetection(b *strings.Builder) {
	b.WriteString(`if(WIN32)
  set(CFORGE_PLATFORM "windows")
elseif(APPLE)
  set(CFORGE_PLATFORM "macos")
else()
  set(CFORGE_PLATFORM "linux")
endif()

if(MSVC)
  set(CFORGE_COMPILER "msvc")
elseif(CMAKE_CXX_COMPILER_ID STREQUAL "Clang" AND APPLE)
  set(CFORGE_COMPILER "apple_clang")
elseif(CMAKE_CXX_COMPILER_ID STREQUAL "Clang")
  set(CFORGE_COMPILER "clang")
elseif(MINGW)
  set(CFORGE_COMPILER "mingw")
elseif(CMAKE_CXX_COMPILER_ID STREQUAL "GNU")
  set(CFORGE_COMPILER "gcc")
else()
  set(CFORGE_COMPILER "unknown")
endif()

`)
}

func writeOutputDirs(b *strings.Builder) {
	b.WriteString(`set(CMAKE_RUNTIME_OUTPUT_DIRECTORY ${CMAKE_BINARY_DIR}/bin)
set(CMAKE_LIBRARY_OUTPUT_DIRECTORY ${CMAKE_BINARY_DIR}/lib)
set(CMAKE_ARCHIVE_OUTPUT_DIRECTORY ${CMAKE_BINARY_DIR}/lib)
foreach(CFG ${CMAKE_CONFIGURATION_TYPES})
  string(TOUPPER ${CFG} CFG_UPPER)
  set(CMAKE_RUNTIME_OUTPUT_DIRECTORY_${CFG_UPPER} ${CMAKE_BINARY_DIR}/bin/${CFG})
  set(CMAKE_LIBRARY_OUTPUT_DIRECTORY_${CFG_UPPER} ${CMAKE_BINARY_DIR}/lib/${CFG})
  set(CMAKE_ARCHIVE_OUTPUT_DIRECTORY_${CFG_UPPER} ${CMAKE_BINARY_DIR}/lib/${CFG})
endforeach()

`)
}

func writeDependenciesPhase1(b *strings.Builder, resolved []deps.Resolved) {
	var fetchable []deps.Resolved
	var vendored []deps.Resolved
	for _, d := range resolved {
		switch d.Kind {
		case manifest.KindGit, manifest.KindRegistry:
			fetchable = append(fetchable, d)
		case manifest.KindSubdirectory:
			vendored = append(vendored, d)
		}
	}

	if len(fetchable) == 0 && len(vendored) == 0 {
		return
	}

	if len(fetchable) > 0 {
		fmt.Fprintf(b, "include(FetchContent)\n\n")
		for _, d := range fetchable {
			fmt.Fprintf(b, "FetchContent_Declare(\n  %s\n  GIT_REPOSITORY %s\n  GIT_TAG %s\n  GIT_SHALLOW TRUE\n)\n",
				d.Name, dependencyURL(d), d.Version)
			names := sortedOptionNames(d.CMakeOptions)
			for _, k := range names {
				fmt.Fprintf(b, "set(%s %q CACHE STRING \"\" FORCE)\n", k, d.CMakeOptions[k])
			}
			b.WriteByte('\n')
		}
		names := make([]string, len(fetchable))
		for i, d := range fetchable {
			names[i] = d.Name
		}
		fmt.Fprintf(b, "FetchContent_MakeAvailable(%s)\n\n", strings.Join(names, " "))
	}

	for _, d := range vendored {
		fmt.Fprintf(b, "add_subdirectory(%s)\n", relPathForCMake(d.Path))
		fmt.Fprintf(b, "include_directories(%s)\n", relPathForCMake(d.Path))
	}
	if len(vendored) > 0 {
		b.WriteByte('\n')
	}
}

func dependencyURL(d deps.Resolved) string {
	return "${CFORGE_" + strings.ToUpper(d.Name) + "_URL}"
}

func relPathForCMake(p string) string {
	return filepath_ToSlash(p)
}

func writeTarget(b *strings.Builder, p *manifest.Project) {
	switch p.Output {
	case manifest.Executable:
		fmt.Fprintf(b, "add_executable(%s ${SOURCES})\n\n", p.Name)
	case manifest.StaticLib:
		fmt.Fprintf(b, "add_library(%s STATIC ${SOURCES})\n\n", p.Name)
	case manifest.SharedLib:
		fmt.Fprintf(b, "add_library(%s SHARED ${SOURCES})\n\n", p.Name)
	case manifest.HeaderOnly:
		fmt.Fprintf(b, "add_library(%s INTERFACE)\n\n", p.Name)
	}

	if len(p.Sources) > 0 && p.Output != manifest.HeaderOnly {
		b.WriteString("file(GLOB_RECURSE SOURCES CONFIGURE_DEPENDS\n")
		for _, s := range p.Sources {
			fmt.Fprintf(b, "  %q\n", s)
		}
		b.WriteString(")\n\n")
	}
}

// writeRawInjection emits a manifest's inject_before_target/
// inject_after_target string verbatim as raw CMake, letting a project
// drop in commands the declarative manifest has no vocabulary for.
func writeRawInjection(b *strings.Builder, raw string) {
	if raw == "" {
		return
	}
	b.WriteString(raw)
	if !strings.HasSuffix(raw, "\n") {
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}

func writeVersionDefinitions(b *strings.Builder, p *manifest.Project) {
	v, err := semver.Parse(nonEmpty(p.Version, "0.0.0"))
	if err != nil {
		v = semver.Version{}
	}
	scope := targetScope(p.Output)
	upper := strings.ToUpper(p.Name)

	fmt.Fprintf(b, "target_compile_definitions(%s %s\n", p.Name, scope)
	fmt.Fprintf(b, "  %s_VERSION=\"%s\"\n", upper, p.Version)
	fmt.Fprintf(b, "  %s_VERSION_MAJOR=%d\n", upper, v.Major)
	fmt.Fprintf(b, "  %s_VERSION_MINOR=%d\n", upper, v.Minor)
	fmt.Fprintf(b, "  %s_VERSION_PATCH=%d\n", upper, v.Patch)
	fmt.Fprintf(b, "  PROJECT_VERSION=\"%s\"\n", p.Version)
	fmt.Fprintf(b, "  PROJECT_VERSION_MAJOR=%d\n", v.Major)
	fmt.Fprintf(b, "  PROJECT_VERSION_MINOR=%d\n", v.Minor)
	fmt.Fprintf(b, "  PROJECT_VERSION_PATCH=%d\n", v.Patch)
	b.WriteString(")\n\n")
}

func targetScope(k manifest.OutputKind) string {
	if k == manifest.HeaderOnly {
		return "INTERFACE"
	}
	return "PUBLIC"
}

func writeIncludeDirectories(b *strings.Builder, p *manifest.Project) {
	if len(p.Includes) == 0 {
		return
	}
	scope := targetScope(p.Output)
	fmt.Fprintf(b, "target_include_directories(%s %s\n", p.Name, scope)
	for _, inc := range p.Includes {
		fmt.Fprintf(b, "  %q\n", inc)
	}
	b.WriteString(")\n\n")
}

// writeOverlayBlocks emits one if(CFORGE_PLATFORM STREQUAL "...") /
// if(CFORGE_COMPILER STREQUAL "...") block per declared overlay,
// splitting mixed MSVC/unix flag lists into if(MSVC)/if(NOT MSVC)
// subblocks (spec §4.9 section 10).
func writeOverlayBlocks(b *strings.Builder, p *manifest.Project) {
	names := sortedKeys(p.Platforms)
	for _, name := range names {
		ov := p.Platforms[name]
		if isOverlayEmpty(ov) {
			continue
		}
		fmt.Fprintf(b, "if(CFORGE_PLATFORM STREQUAL %q)\n", name)
		writeOverlayTargetCalls(b, p, ov, "  ")
		b.WriteString("endif()\n\n")
	}

	names = sortedKeys(p.Compilers)
	for _, name := range names {
		ov := p.Compilers[name]
		if isOverlayEmpty(ov) {
			continue
		}
		fmt.Fprintf(b, "if(CFORGE_COMPILER STREQUAL %q)\n", name)
		writeOverlayTargetCalls(b, p, ov, "  ")
		b.WriteString("endif()\n\n")
	}
}

func isOverlayEmpty(ov manifest.Overlay) bool {
	return len(ov.Defines) == 0 && len(ov.Flags) == 0 && len(ov.Links) == 0 && len(ov.Frameworks) == 0
}

func writeOverlayTargetCalls(b *strings.Builder, p *manifest.Project, ov manifest.Overlay, indent string) {
	scope := targetScope(p.Output)
	if len(ov.Defines) > 0 {
		fmt.Fprintf(b, "%starget_compile_definitions(%s %s %s)\n", indent, p.Name, scope, quoteJoin(ov.Defines))
	}
	if len(ov.Links) > 0 {
		fmt.Fprintf(b, "%starget_link_libraries(%s %s %s)\n", indent, p.Name, scope, quoteJoin(ov.Links))
	}
	msvc, unix := splitFlagsByStyle(ov.Flags)
	if len(msvc) > 0 {
		fmt.Fprintf(b, "%sif(MSVC)\n", indent)
		fmt.Fprintf(b, "%s  target_compile_options(%s %s %s)\n", indent, p.Name, scope, quoteJoin(msvc))
		fmt.Fprintf(b, "%sendif()\n", indent)
	}
	if len(unix) > 0 {
		fmt.Fprintf(b, "%sif(NOT MSVC)\n", indent)
		fmt.Fprintf(b, "%s  target_compile_options(%s %s %s)\n", indent, p.Name, scope, quoteJoin(unix))
		fmt.Fprintf(b, "%sendif()\n", indent)
	}
	if len(ov.Frameworks) > 0 {
		for _, fw := range ov.Frameworks {
			fmt.Fprintf(b, "%sfind_library(%s_FRAMEWORK %s)\n", indent, strings.ToUpper(fw), fw)
			fmt.Fprintf(b, "%starget_link_libraries(%s %s ${%s_FRAMEWORK})\n", indent, p.Name, scope, strings.ToUpper(fw))
		}
	}
}

func splitFlagsByStyle(flagList []string) (msvc, unix []string) {
	for _, f := range flagList {
		if strings.HasPrefix(f, "/") {
			msvc = append(msvc, f)
		} else {
			unix = append(unix, f)
		}
	}
	return
}

// writeConfigurationBlocks emits one generate_portable_flags_cmake-style
// cascade per requested build configuration (spec §4.9 section 11).
func writeConfigurationBlocks(b *strings.Builder, in Input) {
	scope := targetScope(in.Project.Output)
	for _, cfgOverlay := range in.Configs {
		cfgName := cfgOverlay.Name
		cfg := cfgOverlay.Config

		fmt.Fprintf(b, "if(CMAKE_BUILD_TYPE STREQUAL %q)\n", cfgName)
		if len(cfg.Defines) > 0 {
			fmt.Fprintf(b, "  target_compile_definitions(%s %s %s)\n", in.Project.Name, scope, quoteJoin(cfg.Defines))
		}
		if len(cfg.Flags) > 0 {
			msvc, unix := splitFlagsByStyle(cfg.Flags)
			if len(msvc) > 0 {
				fmt.Fprintf(b, "  if(MSVC)\n    target_compile_options(%s %s %s)\n  endif()\n", in.Project.Name, scope, quoteJoin(msvc))
			}
			if len(unix) > 0 {
				fmt.Fprintf(b, "  if(NOT MSVC)\n    target_compile_options(%s %s %s)\n  endif()\n", in.Project.Name, scope, quoteJoin(unix))
			}
		}
		if len(cfg.Links) > 0 {
			fmt.Fprintf(b, "  target_link_libraries(%s %s %s)\n", in.Project.Name, scope, quoteJoin(cfg.Links))
		}

		writePortableFlagsCascade(b, in.Project.Name, scope, cfg, "  ")
		b.WriteString("endif()\n\n")
	}
}

// writePortableFlagsCascade renders the portable-options translator's
// output as an if(MSVC) ... elseif(CMAKE_CXX_COMPILER_ID STREQUAL "GNU")
// ... elseif(... "Clang") ... cascade, so one emission works across
// whichever compiler actually configures the build.
func writePortableFlagsCascade(b *strings.Builder, target, scope string, cfg resolve.Config, indent string) {
	if cfg.Portable.Compile == nil && cfg.Portable.Link == nil {
		return
	}
	fmt.Fprintf(b, "%sif(MSVC)\n", indent)
	if len(cfg.Portable.Compile) > 0 {
		fmt.Fprintf(b, "%s  target_compile_options(%s %s %s)\n", indent, target, scope, quoteJoin(cfg.Portable.Compile))
	}
	if len(cfg.Portable.Link) > 0 {
		fmt.Fprintf(b, "%s  target_link_options(%s %s %s)\n", indent, target, scope, quoteJoin(cfg.Portable.Link))
	}
	fmt.Fprintf(b, "%sendif()\n", indent)
}

func writeDependenciesPhase2(b *strings.Builder, p *manifest.Project, resolved []deps.Resolved) {
	scope := targetScope(p.Output)
	var targets []string
	for _, d := range resolved {
		if d.LinkTarget != "" {
			targets = append(targets, d.LinkTarget)
		}
	}
	if len(targets) == 0 {
		return
	}
	fmt.Fprintf(b, "target_link_libraries(%s %s\n", p.Name, scope)
	for _, t := range targets {
		fmt.Fprintf(b, "  %s\n", t)
	}
	b.WriteString(")\n\n")
}

func writeSystemDependencies(b *strings.Builder, resolved []deps.Resolved) {
	for _, d := range resolved {
		if d.Kind != manifest.KindSystem {
			continue
		}
		fmt.Fprintf(b, "find_package(%s QUIET)\n", d.Name)
		fmt.Fprintf(b, "if(%s_FOUND)\n", strings.ToUpper(d.Name))
		if len(d.IncludeDirs) > 0 {
			fmt.Fprintf(b, "  include_directories(%s)\n", quoteJoin(d.IncludeDirs))
		}
		b.WriteString("endif()\n\n")
	}
}

func writeWorkspaceWiring(b *strings.Builder, p *manifest.Project, wsDeps []WorkspaceDependency) {
	if len(wsDeps) == 0 {
		return
	}
	for _, wd := range wsDeps {
		if wd.IncludeDir != "" {
			fmt.Fprintf(b, "include_directories(%q)\n", wd.IncludeDir)
		}
		fmt.Fprintf(b, "add_dependencies(%s %s)\n", p.Name, wd.Name)
	}
	b.WriteByte('\n')
}

func writeTestSubdirectory(b *strings.Builder, hasTests bool) {
	if !hasTests {
		return
	}
	b.WriteString(`if(BUILD_TESTING)
  enable_testing()
  add_subdirectory(tests)
endif()

`)
}

func writePackaging(b *strings.Builder, p *manifest.Project) {
	if len(p.Packaging.Generators) == 0 {
		return
	}
	fmt.Fprintf(b, "set(CPACK_PACKAGE_NAME %q)\n", p.Name)
	fmt.Fprintf(b, "set(CPACK_PACKAGE_VERSION %q)\n", p.Version)
	fmt.Fprintf(b, "set(CPACK_GENERATOR %s)\n", quoteJoin(p.Packaging.Generators))
	names := sortedMapKeys(p.Packaging.Metadata)
	for _, k := range names {
		fmt.Fprintf(b, "set(CPACK_%s %q)\n", strings.ToUpper(k), p.Packaging.Metadata[k])
	}
	b.WriteString("include(CPack)\n")
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, " ")
}

func sortedKeys(m map[string]manifest.Overlay) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedOptionNames(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMapKeys(m map[string]string) []string {
	return sortedOptionNames(m)
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func filepath_ToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
