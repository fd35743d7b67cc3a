package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ozacod/cforge/pkg/manifest"
)

// InitCmd scaffolds a new project: a starter cforge.toml, a src/
// directory with a minimal entry point, and a tests/ directory with a
// single smoke test. Scaffolding is non-interactive; there is no
// prompt-driven init wizard.
func InitCmd() *cobra.Command {
	var output string
	var lib bool

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Scaffold a new cforge project in the current directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return Fail(err)
			}

			name := filepath.Base(dir)
			if len(args) == 1 {
				name = args[0]
			}
			name = sanitizeProjectName(name)

			manifestPath := filepath.Join(dir, manifest.ProjectManifestName)
			if fileExists(manifestPath) {
				return Fail(fmt.Errorf("%s already exists", manifestPath))
			}

			kind := manifest.Executable
			if lib {
				kind = manifest.StaticLib
			}
			if output != "" {
				kind = manifest.OutputKind(output)
				if !kind.Valid() {
					return Fail(fmt.Errorf("invalid --output %q: want executable, static_lib, shared_lib, or header_only", output))
				}
			}

			if err := scaffoldProject(dir, name, kind); err != nil {
				return Fail(err)
			}
			Logger().Success("initialized %q in %s", name, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "output kind: executable, static_lib, shared_lib, header_only")
	cmd.Flags().BoolVar(&lib, "lib", false, "shorthand for --output static_lib")
	return cmd
}

func sanitizeProjectName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, name)
	if name == "" {
		return "cforge-project"
	}
	return name
}

func scaffoldProject(dir, name string, kind manifest.OutputKind) error {
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, "tests"), 0o755); err != nil {
		return err
	}

	manifestContent := projectManifestTemplate(name, kind)
	if err := os.WriteFile(filepath.Join(dir, manifest.ProjectManifestName), []byte(manifestContent), 0o644); err != nil {
		return err
	}

	switch kind {
	case manifest.HeaderOnly:
		if err := os.WriteFile(filepath.Join(dir, "src", name+".hpp"), []byte(headerOnlyTemplate(name)), 0o644); err != nil {
			return err
		}
	case manifest.StaticLib, manifest.SharedLib:
		if err := os.WriteFile(filepath.Join(dir, "src", "lib.cpp"), []byte(libTemplate()), 0o644); err != nil {
			return err
		}
	default:
		if err := os.WriteFile(filepath.Join(dir, "src", "main.cpp"), []byte(mainTemplate()), 0o644); err != nil {
			return err
		}
	}

	testPath := filepath.Join(dir, "tests", "smoke_test.cpp")
	if err := os.WriteFile(testPath, []byte(smokeTestTemplate()), 0o644); err != nil {
		return err
	}

	gitignorePath := filepath.Join(dir, ".gitignore")
	if !fileExists(gitignorePath) {
		if err := os.WriteFile(gitignorePath, []byte("/build/\n/deps/\n"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func projectManifestTemplate(name string, kind manifest.OutputKind) string {
	sources := `sources = ["src/*.cpp"]`
	if kind == manifest.HeaderOnly {
		sources = `sources = []`
	}
	return fmt.Sprintf(`name = %q
version = "0.1.0"
output = %q

c_standard = "17"
cxx_standard = "20"

%s
includes = ["src"]

[build]
warnings = "all"
warnings_as_errors = false

[build.config.Debug]
optimize = "none"
debug_info = true
sanitizers = ["address", "undefined"]

[build.config.Release]
optimize = "speed"
debug_info = false
lto = true
`, name, kind, sources)
}

func mainTemplate() string {
	return `#include <cstdio>

int main() {
    std::puts("hello from cforge");
    return 0;
}
`
}

func libTemplate() string {
	return `int add(int a, int b) {
    return a + b;
}
`
}

func headerOnlyTemplate(name string) string {
	guard := strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_HPP"
	return fmt.Sprintf(`#ifndef %s
#define %s

inline int add(int a, int b) {
    return a + b;
}

#endif
`, guard, guard)
}

func smokeTestTemplate() string {
	return `#include <cassert>

int main() {
    assert(1 + 1 == 2);
    return 0;
}
`
}
