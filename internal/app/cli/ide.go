package cli

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

// IdeCmd emits .vscode/c_cpp_properties.json pointing at the build's
// compile_commands.json, and with --open shells out to `cmake --open`
// as a thin convenience verb around an already-configured build.
func IdeCmd() *cobra.Command {
	var globals GlobalFlags
	var open bool

	cmd := &cobra.Command{
		Use:   "ide",
		Short: "Generate IDE integration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ApplyGlobalFlags(globals)
			root, _, _, err := LoadHere()
			if err != nil {
				return Fail(err)
			}
			buildDir := BuildDirFor(root, globals.Config)

			if err := writeVSCodeProperties(root, buildDir); err != nil {
				return Fail(err)
			}
			Logger().Success("wrote .vscode/c_cpp_properties.json")

			if open {
				c := exec.Command("cmake", "--open", buildDir)
				c.Stdout, c.Stderr = os.Stdout, os.Stderr
				if err := c.Run(); err != nil {
					return Fail(err)
				}
			}
			return nil
		},
	}
	bindGlobalFlags(cmd, &globals)
	cmd.Flags().BoolVar(&open, "open", false, "also open the build directory in the system IDE via `cmake --open`")
	return cmd
}

func writeVSCodeProperties(root, buildDir string) error {
	dir := filepath.Join(root, ".vscode")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	config := map[string]any{
		"configurations": []map[string]any{
			{
				"name":             "cforge",
				"compileCommands":  filepath.Join(buildDir, "compile_commands.json"),
				"cStandard":        "c17",
				"cppStandard":      "c++20",
				"intelliSenseMode": "${default}",
			},
		},
		"version": 4,
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "c_cpp_properties.json"), data, 0o644)
}
