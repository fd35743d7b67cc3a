package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ozacod/cforge/internal/pkg/deps"
)

// InstallCmd materializes every declared dependency without building,
// matching the lock unless it's missing or stale.
func InstallCmd() *cobra.Command {
	return installLikeCmd("install", "Materialize dependencies without building", false)
}

// UpdateCmd re-resolves every dependency against its constraint,
// ignoring the existing lock.
func UpdateCmd() *cobra.Command {
	return installLikeCmd("update", "Re-resolve dependencies, ignoring the existing lock", true)
}

func installLikeCmd(use, short string, update bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, proj, _, err := LoadHere()
			if err != nil {
				return Fail(err)
			}

			reg := OpenRegistry()
			resolver := deps.NewResolver(root, DependenciesDir(root), reg, Logger())
			resolver.Update = update

			resolved, _, err := resolver.ResolveAll(context.Background(), proj.Dependencies)
			if err != nil {
				return Fail(err)
			}
			Logger().Success("resolved %d dependencies", len(resolved))
			return nil
		},
	}
}
