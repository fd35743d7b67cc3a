package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ozacod/cforge/internal/pkg/workspace"
	"github.com/ozacod/cforge/pkg/manifest"
)

// ListCmd lists the workspace's members (in dependency-first build
// order) or, inside a single project, its declared dependencies.
func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workspace members or project dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, proj, ws, err := LoadHere()
			if err != nil {
				return Fail(err)
			}

			if ws == nil {
				for _, d := range proj.Dependencies {
					fmt.Printf("%-20s %s\n", d.Name, d.Kind)
				}
				return nil
			}

			graph, warnings, err := workspace.Load(root, ws, manifest.LoadProject)
			if err != nil {
				return Fail(err)
			}
			for _, w := range warnings {
				Logger().Warn("%s", w)
			}
			order, err := graph.BuildOrder()
			if err != nil {
				return Fail(err)
			}
			for _, name := range order {
				m := graph.Members[name]
				marker := ""
				if m.Startup {
					marker = " (startup)"
				}
				fmt.Printf("%s%s\n", name, marker)
			}
			return nil
		},
	}
}
