package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// CleanCmd removes the project's out-of-tree build directory, and with
// --all its materialized dependencies too. The lock file and the hash
// cache are left in place.
func CleanCmd() *cobra.Command {
	var globals GlobalFlags
	var all bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove build output",
		RunE: func(cmd *cobra.Command, args []string) error {
			ApplyGlobalFlags(globals)

			root, proj, ws, err := LoadHere()
			if err != nil {
				return Fail(err)
			}
			if ws != nil {
				for _, m := range ws.Members {
					_ = os.RemoveAll(BuildRootDir(filepath.Join(ws.Dir, m.Path)))
					if all {
						_ = os.RemoveAll(DependenciesDir(filepath.Join(ws.Dir, m.Path)))
					}
				}
				Logger().Success("cleaned workspace build output")
				return nil
			}
			_ = proj

			buildDir := BuildRootDir(root)
			if err := os.RemoveAll(buildDir); err != nil {
				return Fail(err)
			}
			Logger().Success("removed %s", buildDir)

			if all {
				depsDir := DependenciesDir(root)
				if err := os.RemoveAll(depsDir); err != nil {
					return Fail(err)
				}
				Logger().Success("removed %s", depsDir)
			}
			return nil
		},
	}

	bindGlobalFlags(cmd, &globals)
	cmd.Flags().BoolVar(&all, "all", false, "also remove materialized dependencies")
	return cmd
}
