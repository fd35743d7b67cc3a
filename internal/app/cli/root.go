package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd assembles cforge's full command tree (spec §6's CLI
// surface), mirroring the teacher's one-constructor-per-verb
// composition root.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cforge",
		Short:         "A declarative, TOML-manifest front end for CMake",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		InitCmd(),
		BuildCmd(),
		RunCmd(),
		TestCmd(),
		BenchCmd(),
		CleanCmd(),
		LockCmd(),
		InstallCmd(),
		UpdateCmd(),
		DepsCmd(),
		AddCmd(),
		RemoveCmd(),
		ListCmd(),
		CircularCmd(),
		PackageCmd(),
		IdeCmd(),
		VersionCmd(),
	)
	return root
}
