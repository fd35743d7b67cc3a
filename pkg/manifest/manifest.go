// Package manifest defines cforge's TOML project and workspace manifest
// types and the loader that parses them into immutable records.
//
// The loader's shape follows the teacher's internal/config/global.go
// LoadGlobal pattern (read file, decode, return typed struct or error),
// adapted from yaml.v3 to go-toml/v2 for the project-manifest format.
package manifest

// OutputKind is the kind of build artifact a project produces.
type OutputKind string

const (
	Executable OutputKind = "executable"
	StaticLib  OutputKind = "static_lib"
	SharedLib  OutputKind = "shared_lib"
	HeaderOnly OutputKind = "header_only"
)

// Valid reports whether k is one of the four recognized output kinds.
func (k OutputKind) Valid() bool {
	switch k {
	case Executable, StaticLib, SharedLib, HeaderOnly:
		return true
	}
	return false
}

// Overlay holds the list and scalar fields that may be declared at base,
// per-platform, per-compiler, per-(platform,compiler), or per-build-config
// scope. Zero values mean "not set", not "set to empty/false", so the
// resolver can tell an absent bool apart from an explicit false.
type Overlay struct {
	Defines    []string `toml:"defines"`
	Flags      []string `toml:"flags"`
	Links      []string `toml:"links"`
	Frameworks []string `toml:"frameworks"`
	CMakeArgs  []string `toml:"cmake_args"`

	Optimize          string   `toml:"optimize"`
	Warnings          string   `toml:"warnings"`
	WarningsAsErrors  *bool    `toml:"warnings_as_errors"`
	DebugInfo         *bool    `toml:"debug_info"`
	LTO               *bool    `toml:"lto"`
	Exceptions        *bool    `toml:"exceptions"`
	RTTI              *bool    `toml:"rtti"`
	Sanitizers        []string `toml:"sanitizers"`
	Stdlib            string   `toml:"stdlib"`
	Hardening         string   `toml:"hardening"`
	Visibility        string   `toml:"visibility"`
}

// GitDependency is a dependency fetched directly from a git repository.
type GitDependency struct {
	URL       string `toml:"url"`
	Tag       string `toml:"tag"`
	Branch    string `toml:"branch"`
	Commit    string `toml:"commit"`
	Shallow   bool   `toml:"shallow"`
	Include   bool   `toml:"include"`
	Link      bool   `toml:"link"`
	Target    string `toml:"target"`
}

// RegistryDependency is a dependency resolved through the Registry Client
// by name and version constraint, e.g. `fmt = "^10.0.0"`.
type RegistryDependency struct {
	Name       string `toml:"-"`
	Constraint string `toml:"-"`
}

// SubdirectoryDependency is a dependency vendored locally and added via
// add_subdirectory.
type SubdirectoryDependency struct {
	Path    string            `toml:"path"`
	Target  string            `toml:"target"`
	Options map[string]string `toml:"options"`
}

// SystemDependencyMode selects how a system dependency is bound at
// CMake time.
type SystemDependencyMode string

const (
	FindPackage SystemDependencyMode = "find_package"
	PkgConfig   SystemDependencyMode = "pkg_config"
	Manual      SystemDependencyMode = "manual"
)

// SystemDependency binds a dependency already present on the host system.
type SystemDependency struct {
	Mode         SystemDependencyMode `toml:"mode"`
	Package      string               `toml:"package"`
	Components   []string             `toml:"components"`
	Target       string               `toml:"target"`
	IncludeDirs  []string             `toml:"include_dirs"`
	LibDirs      []string             `toml:"lib_dirs"`
	Libraries    []string             `toml:"libraries"`
}

// VcpkgDependency is bound through the vcpkg toolchain file at CMake time.
type VcpkgDependency struct {
	Package string `toml:"package"`
	Triplet string `toml:"triplet"`
}

// DependencyKind identifies which of the five source kinds a Dependency
// holds. Modeled as a tagged union (kind tag + kind-specific pointer
// fields) rather than an interface hierarchy: the dependency-kind set is
// closed and spec-fixed, so a switch over Kind is clearer than five
// interface implementations with one-line methods each.
type DependencyKind string

const (
	KindGit          DependencyKind = "git"
	KindRegistry     DependencyKind = "registry"
	KindSubdirectory DependencyKind = "subdirectory"
	KindSystem       DependencyKind = "system"
	KindVcpkg        DependencyKind = "vcpkg"
)

// Dependency is one declared dependency of a project, tagged by Kind with
// exactly one of the kind-specific fields populated.
type Dependency struct {
	Name string
	Kind DependencyKind

	Git          *GitDependency
	Registry     *RegistryDependency
	Subdirectory *SubdirectoryDependency
	System       *SystemDependency
	Vcpkg        *VcpkgDependency
}

// PrecompiledHeader names a header to precompile for this project.
type PrecompiledHeader struct {
	Header string `toml:"header"`
}

// Packaging configures CPack generators and package metadata.
type Packaging struct {
	Generators []string          `toml:"generators"`
	Metadata   map[string]string `toml:"metadata"`
}

// Project is a project manifest's parsed-and-typed form, before overlay
// resolution. Loader output is immutable: callers must not mutate a
// Project once returned.
type Project struct {
	Name        string     `toml:"name"`
	Version     string     `toml:"version"`
	Description string     `toml:"description"`
	Authors     []string   `toml:"authors"`
	License     string     `toml:"license"`
	Output      OutputKind `toml:"output"`

	CStandard   string `toml:"c_standard"`
	CXXStandard string `toml:"cxx_standard"`

	Sources  []string `toml:"sources"`
	Includes []string `toml:"includes"`

	Base      Overlay            `toml:"build"`
	Platforms map[string]Overlay `toml:"platform"`
	Compilers map[string]Overlay `toml:"compiler"`
	// PlatformCompilers is keyed "platform.compiler", e.g. "linux.gcc".
	PlatformCompilers map[string]Overlay `toml:"platform_compiler"`
	// Configs holds the singular-key `[build.config.<cfg>]` overlays.
	Configs map[string]Overlay `toml:"-"`
	// ConfigsDeprecated holds the plural-key `[build.configs.<cfg>]` form,
	// accepted for compatibility and merged first (singular wins on
	// conflicting scalars) with a deprecation warning.
	ConfigsDeprecated map[string]Overlay `toml:"-"`

	Dependencies []Dependency `toml:"-"`

	PrecompiledHeaders []PrecompiledHeader `toml:"precompiled_headers"`

	ModulePaths        []string `toml:"module_paths"`
	IncludeCMakeFiles  []string `toml:"includes_cmake"`
	InjectBeforeTarget string   `toml:"inject_before_target"`
	InjectAfterTarget  string   `toml:"inject_after_target"`

	Packaging Packaging `toml:"packaging"`

	// Dir is the directory the manifest was loaded from; not part of the
	// TOML, filled in by the loader.
	Dir string `toml:"-"`

	// Warnings accumulates non-fatal notices raised while loading, e.g.
	// "plural build.configs.<cfg> is deprecated, use build.config.<cfg>".
	Warnings []string `toml:"-"`
}

// Member is one workspace member in inline-table form.
type Member struct {
	Name    string `toml:"name"`
	Path    string `toml:"path"`
	Startup bool   `toml:"startup"`
}

// Workspace is a workspace manifest's parsed-and-typed form.
type Workspace struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Members     []Member `toml:"-"`
	Startup     string   `toml:"startup"`

	// Shared holds workspace-level build settings propagated to members
	// that don't override them.
	Shared Overlay `toml:"build"`

	Dir string `toml:"-"`

	Warnings []string `toml:"-"`
}
