package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ozacod/cforge/internal/pkg/deps"
)

// LockCmd manages cforge.lock directly, without running a full build
// (spec §6: `lock [--verify|--clean|--force]`).
func LockCmd() *cobra.Command {
	var verify, clean, force bool

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Inspect or regenerate the dependency lock file",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, proj, _, err := LoadHere()
			if err != nil {
				return Fail(err)
			}

			reg := OpenRegistry()
			depsDir := DependenciesDir(root)
			resolver := deps.NewResolver(root, depsDir, reg, Logger())

			if clean {
				if err := os.Remove(lockPath(root)); err != nil && !os.IsNotExist(err) {
					return Fail(err)
				}
				if err := os.RemoveAll(depsDir); err != nil {
					return Fail(err)
				}
				Logger().Success("removed lock file and materialized dependencies")
				return nil
			}

			if verify {
				lock, err := deps.LoadLock(root)
				if err != nil {
					return Fail(err)
				}
				if err := resolver.Verify(lock); err != nil {
					return Fail(err)
				}
				Logger().Success("lock file matches on-disk dependencies")
				return nil
			}

			resolver.Update = force
			_, _, err = resolver.ResolveAll(context.Background(), proj.Dependencies)
			if err != nil {
				return Fail(err)
			}
			Logger().Success("lock file up to date")
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "check the lock file against on-disk dependencies without changing anything")
	cmd.Flags().BoolVar(&clean, "clean", false, "remove the lock file and materialized dependencies")
	cmd.Flags().BoolVar(&force, "force", false, "re-resolve every dependency, ignoring the existing lock")
	return cmd
}

func lockPath(dir string) string {
	return filepath.Join(dir, deps.LockFileName)
}
