package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	cferrors "github.com/ozacod/cforge/pkg/errors"
)

// ProjectManifestName and WorkspaceManifestName are the two filenames the
// loader recognizes. Unified cforge.toml wins over the legacy
// cforge.workspace.toml when both declare a workspace (spec §4.1, Open
// Question 1).
const (
	ProjectManifestName        = "cforge.toml"
	LegacyWorkspaceManifestName = "cforge.workspace.toml"
)

// LoadProject reads and parses a project manifest at dir/cforge.toml.
// It returns typed records only; overlays are not merged here, per
// spec §4.1 — that's internal/pkg/resolve's job.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, ProjectManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, manifestParseError(path, err)
	}

	p := &Project{Dir: dir}
	projTable, _ := raw["project"].(map[string]any)
	if projTable == nil {
		// Allow a flat manifest with no [project] wrapper: top-level
		// identity fields directly under the root table.
		projTable = raw
	}

	p.Name, _ = projTable["name"].(string)
	p.Version, _ = projTable["version"].(string)
	p.Description, _ = projTable["description"].(string)
	p.License, _ = projTable["license"].(string)
	p.Authors = toStringSlice(projTable["authors"])
	if out, ok := projTable["output"].(string); ok {
		p.Output = OutputKind(out)
	}
	p.CStandard, _ = projTable["c_standard"].(string)
	p.CXXStandard, _ = projTable["cxx_standard"].(string)
	p.Sources = toStringSlice(projTable["sources"])
	p.Includes = toStringSlice(projTable["includes"])
	p.ModulePaths = toStringSlice(projTable["module_paths"])
	p.IncludeCMakeFiles = toStringSlice(projTable["includes_cmake"])
	p.InjectBeforeTarget, _ = projTable["inject_before_target"].(string)
	p.InjectAfterTarget, _ = projTable["inject_after_target"].(string)

	if err := decodeOverlay(raw["build"], &p.Base); err != nil {
		return nil, manifestSchemaError(path, "build", err)
	}

	p.Platforms = map[string]Overlay{}
	if platforms, ok := raw["platform"].(map[string]any); ok {
		for key, v := range platforms {
			table, _ := v.(map[string]any)
			if table == nil {
				continue
			}
			var ov Overlay
			if compilerTable, ok := table["compiler"].(map[string]any); ok {
				// platform.<p>.compiler.<c> nested under platform, not
				// build.config; stash into PlatformCompilers.
				if p.PlatformCompilers == nil {
					p.PlatformCompilers = map[string]Overlay{}
				}
				for ckey, cv := range compilerTable {
					var cov Overlay
					if err := decodeOverlay(cv, &cov); err == nil {
						p.PlatformCompilers[key+"."+ckey] = cov
					}
				}
				delete(table, "compiler")
			}
			if err := decodeOverlay(table, &ov); err != nil {
				return nil, manifestSchemaError(path, "platform."+key, err)
			}
			p.Platforms[key] = ov
		}
	}

	p.Compilers = map[string]Overlay{}
	if compilers, ok := raw["compiler"].(map[string]any); ok {
		for key, v := range compilers {
			var ov Overlay
			if err := decodeOverlay(v, &ov); err != nil {
				return nil, manifestSchemaError(path, "compiler."+key, err)
			}
			p.Compilers[key] = ov
		}
	}

	p.Configs, p.ConfigsDeprecated, p.Warnings = extractConfigOverlays(raw, path)

	deps, err := extractDependencies(raw["dependencies"])
	if err != nil {
		return nil, manifestSchemaError(path, "dependencies", err)
	}
	p.Dependencies = deps

	if pch, ok := raw["precompiled_headers"].([]any); ok {
		for _, v := range pch {
			if m, ok := v.(map[string]any); ok {
				h, _ := m["header"].(string)
				p.PrecompiledHeaders = append(p.PrecompiledHeaders, PrecompiledHeader{Header: h})
			}
		}
	}

	if pkgTable, ok := raw["packaging"].(map[string]any); ok {
		p.Packaging.Generators = toStringSlice(pkgTable["generators"])
		p.Packaging.Metadata = map[string]string{}
		if md, ok := pkgTable["metadata"].(map[string]any); ok {
			for k, v := range md {
				if s, ok := v.(string); ok {
					p.Packaging.Metadata[k] = s
				}
			}
		}
	}

	if err := validateProject(p, path); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadWorkspace reads and parses a workspace manifest, preferring
// cforge.toml's [workspace] table over the legacy
// cforge.workspace.toml when both are present (spec §4.1).
func LoadWorkspace(dir string) (*Workspace, error) {
	unifiedPath := filepath.Join(dir, ProjectManifestName)
	legacyPath := filepath.Join(dir, LegacyWorkspaceManifestName)

	unifiedData, unifiedErr := os.ReadFile(unifiedPath)
	legacyData, legacyErr := os.ReadFile(legacyPath)

	var warnings []string
	var data []byte
	var path string

	haveUnifiedWorkspace := false
	if unifiedErr == nil {
		var probe map[string]any
		if err := toml.Unmarshal(unifiedData, &probe); err == nil {
			if _, ok := probe["workspace"]; ok {
				haveUnifiedWorkspace = true
			}
		}
	}

	switch {
	case haveUnifiedWorkspace && legacyErr == nil:
		data, path = unifiedData, unifiedPath
		warnings = append(warnings, fmt.Sprintf(
			"both %s and %s declare a workspace; %s wins (legacy file is deprecated)",
			ProjectManifestName, LegacyWorkspaceManifestName, ProjectManifestName))
	case haveUnifiedWorkspace:
		data, path = unifiedData, unifiedPath
	case legacyErr == nil:
		data, path = legacyData, legacyPath
	default:
		return nil, cferrors.ErrWorkspaceNotFound
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, manifestParseError(path, err)
	}

	wsTable, _ := raw["workspace"].(map[string]any)
	if wsTable == nil {
		wsTable = raw
	}

	w := &Workspace{Dir: dir, Warnings: warnings}
	w.Name, _ = wsTable["name"].(string)
	w.Description, _ = wsTable["description"].(string)
	w.Startup, _ = wsTable["startup"].(string)

	members, memberWarnings, err := extractMembers(wsTable["members"])
	if err != nil {
		return nil, manifestSchemaError(path, "workspace.members", err)
	}
	w.Members = members
	w.Warnings = append(w.Warnings, memberWarnings...)

	if err := decodeOverlay(wsTable["build"], &w.Shared); err != nil {
		return nil, manifestSchemaError(path, "workspace.build", err)
	}

	return w, nil
}

// extractMembers accepts the three equivalent member forms named in
// spec §3: an array of path strings, an array of inline tables
// (name/path/startup), or a legacy colon-delimited string
// ("name:path[:startup]").
func extractMembers(raw any) ([]Member, []string, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, nil, nil
	}

	var members []Member
	var warnings []string
	for _, item := range list {
		switch v := item.(type) {
		case string:
			if strings.Contains(v, ":") {
				parts := strings.SplitN(v, ":", 3)
				m := Member{Name: parts[0], Path: parts[1]}
				if len(parts) > 2 {
					m.Startup = parts[2] == "true" || parts[2] == "startup"
				}
				members = append(members, m)
				warnings = append(warnings, fmt.Sprintf(
					"legacy colon-delimited member %q is deprecated, use an inline table", v))
			} else {
				members = append(members, Member{Path: v})
			}
		case map[string]any:
			m := Member{}
			m.Name, _ = v["name"].(string)
			m.Path, _ = v["path"].(string)
			if startup, ok := v["startup"].(bool); ok {
				m.Startup = startup
			}
			members = append(members, m)
		default:
			return nil, nil, fmt.Errorf("unrecognized member entry %#v", item)
		}
	}
	return members, warnings, nil
}

// extractConfigOverlays pulls build.config.<cfg> (wins) and the
// deprecated plural build.configs.<cfg> out of the raw table.
func extractConfigOverlays(raw map[string]any, path string) (map[string]Overlay, map[string]Overlay, []string) {
	configs := map[string]Overlay{}
	deprecated := map[string]Overlay{}
	var warnings []string

	buildTable, _ := raw["build"].(map[string]any)
	if buildTable == nil {
		return configs, deprecated, warnings
	}

	if cfgTable, ok := buildTable["config"].(map[string]any); ok {
		for name, v := range cfgTable {
			var ov Overlay
			if err := decodeOverlay(v, &ov); err == nil {
				configs[name] = ov
			}
		}
	}
	if cfgTable, ok := buildTable["configs"].(map[string]any); ok {
		names := make([]string, 0, len(cfgTable))
		for name := range cfgTable {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			var ov Overlay
			if err := decodeOverlay(cfgTable[name], &ov); err == nil {
				deprecated[name] = ov
				warnings = append(warnings, fmt.Sprintf(
					"%s: build.configs.%s is deprecated, use build.config.%s", path, name, name))
			}
		}
	}
	return configs, deprecated, warnings
}

// extractDependencies parses the [dependencies] table's five source-kind
// sub-tables into a flat, name-unique Dependency slice.
func extractDependencies(raw any) ([]Dependency, error) {
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, nil
	}

	var deps []Dependency
	seen := map[string]bool{}

	add := func(d Dependency) error {
		if seen[d.Name] {
			return fmt.Errorf("duplicate dependency name %q", d.Name)
		}
		seen[d.Name] = true
		deps = append(deps, d)
		return nil
	}

	if gitTable, ok := table["git"].(map[string]any); ok {
		for name, v := range gitTable {
			m, _ := v.(map[string]any)
			gd := &GitDependency{Target: name}
			gd.URL, _ = m["url"].(string)
			gd.Tag, _ = m["tag"].(string)
			gd.Branch, _ = m["branch"].(string)
			gd.Commit, _ = m["commit"].(string)
			gd.Shallow, _ = m["shallow"].(bool)
			gd.Include = boolOrDefault(m["include"], true)
			gd.Link = boolOrDefault(m["link"], true)
			if t, ok := m["target"].(string); ok && t != "" {
				gd.Target = t
			}
			if err := add(Dependency{Name: name, Kind: KindGit, Git: gd}); err != nil {
				return nil, err
			}
		}
	}

	if registryTable, ok := table["registry"].(map[string]any); ok {
		for name, v := range registryTable {
			constraint, _ := v.(string)
			rd := &RegistryDependency{Name: name, Constraint: constraint}
			if err := add(Dependency{Name: name, Kind: KindRegistry, Registry: rd}); err != nil {
				return nil, err
			}
		}
	}

	if subTable, ok := table["subdirectory"].(map[string]any); ok {
		for name, v := range subTable {
			m, _ := v.(map[string]any)
			sd := &SubdirectoryDependency{}
			sd.Path, _ = m["path"].(string)
			sd.Target, _ = m["target"].(string)
			sd.Options = toStringMap(m["options"])
			if err := add(Dependency{Name: name, Kind: KindSubdirectory, Subdirectory: sd}); err != nil {
				return nil, err
			}
		}
	}

	if sysTable, ok := table["system"].(map[string]any); ok {
		for name, v := range sysTable {
			m, _ := v.(map[string]any)
			sd := &SystemDependency{}
			mode, _ := m["mode"].(string)
			sd.Mode = SystemDependencyMode(mode)
			sd.Package, _ = m["package"].(string)
			sd.Components = toStringSlice(m["components"])
			sd.Target, _ = m["target"].(string)
			sd.IncludeDirs = toStringSlice(m["include_dirs"])
			sd.LibDirs = toStringSlice(m["lib_dirs"])
			sd.Libraries = toStringSlice(m["libraries"])
			if err := add(Dependency{Name: name, Kind: KindSystem, System: sd}); err != nil {
				return nil, err
			}
		}
	}

	if vcpkgTable, ok := table["vcpkg"].(map[string]any); ok {
		for name, v := range vcpkgTable {
			m, _ := v.(map[string]any)
			vd := &VcpkgDependency{Package: name}
			if pkg, ok := m["package"].(string); ok && pkg != "" {
				vd.Package = pkg
			}
			vd.Triplet, _ = m["triplet"].(string)
			if err := add(Dependency{Name: name, Kind: KindVcpkg, Vcpkg: vd}); err != nil {
				return nil, err
			}
		}
	}

	return deps, nil
}

func validateProject(p *Project, path string) error {
	if p.Name == "" {
		return cferrors.NewManifestSchemaError(path, "project.name", "must be nonempty")
	}
	if !p.Output.Valid() {
		return cferrors.NewManifestSchemaError(path, "project.output",
			fmt.Sprintf("must be one of executable, static_lib, shared_lib, header_only; got %q", p.Output))
	}
	if p.CStandard == "" && p.CXXStandard == "" {
		return cferrors.NewManifestSchemaError(path, "project",
			"at least one of c_standard or cxx_standard must be declared")
	}
	return nil
}

func manifestParseError(path string, err error) error {
	var derr *toml.DecodeError
	if ok := asDecodeError(err, &derr); ok {
		row, _ := derr.Position()
		return cferrors.NewManifestParseError(path, row, derr.Error())
	}
	return cferrors.NewManifestParseError(path, 0, err.Error())
}

func manifestSchemaError(path, field string, err error) error {
	return cferrors.NewManifestSchemaError(path, field, err.Error())
}

func asDecodeError(err error, target **toml.DecodeError) bool {
	if derr, ok := err.(*toml.DecodeError); ok {
		*target = derr
		return true
	}
	return false
}

func decodeOverlay(raw any, ov *Overlay) error {
	if raw == nil {
		return nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("expected a table, got %T", raw)
	}
	ov.Defines = toStringSlice(m["defines"])
	ov.Flags = toStringSlice(m["flags"])
	ov.Links = toStringSlice(m["links"])
	ov.Frameworks = toStringSlice(m["frameworks"])
	ov.CMakeArgs = toStringSlice(m["cmake_args"])
	ov.Optimize, _ = m["optimize"].(string)
	ov.Warnings, _ = m["warnings"].(string)
	ov.WarningsAsErrors = boolPtr(m["warnings_as_errors"])
	ov.DebugInfo = boolPtr(m["debug_info"])
	ov.LTO = boolPtr(m["lto"])
	ov.Exceptions = boolPtr(m["exceptions"])
	ov.RTTI = boolPtr(m["rtti"])
	ov.Sanitizers = toStringSlice(m["sanitizers"])
	ov.Stdlib, _ = m["stdlib"].(string)
	ov.Hardening, _ = m["hardening"].(string)
	ov.Visibility, _ = m["visibility"].(string)
	return nil
}

func toStringSlice(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toStringMap(raw any) map[string]string {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func boolPtr(raw any) *bool {
	b, ok := raw.(bool)
	if !ok {
		return nil
	}
	return &b
}

func boolOrDefault(raw any, def bool) bool {
	if b, ok := raw.(bool); ok {
		return b
	}
	return def
}

// IsWorkspace reports whether dir contains a manifest declaring a
// [workspace] table, either unified or legacy.
func IsWorkspace(dir string) bool {
	for _, name := range []string{ProjectManifestName, LegacyWorkspaceManifestName} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			continue
		}
		if _, ok := raw["workspace"]; ok {
			return true
		}
	}
	return false
}

// LoadProjectOrWorkspace loads dir as a workspace if it declares one,
// otherwise as a single project. It is the entry point used by commands
// that operate on "whatever is here" (build, list, circular).
func LoadProjectOrWorkspace(dir string) (*Project, *Workspace, error) {
	if IsWorkspace(dir) {
		ws, err := LoadWorkspace(dir)
		return nil, ws, err
	}
	proj, err := LoadProject(dir)
	return proj, nil, err
}
