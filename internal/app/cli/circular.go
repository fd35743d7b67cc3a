package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ozacod/cforge/internal/pkg/include"
	"github.com/ozacod/cforge/internal/pkg/workspace"
	"github.com/ozacod/cforge/pkg/manifest"
)

// CircularCmd reports #include cycles (and, with --workspace,
// inter-project dependency cycles) found under the project
// (spec §4.11, §6: `circular [--include-deps|--workspace|--json|--limit N]`).
func CircularCmd() *cobra.Command {
	var includeDeps, workspaceMode, jsonOutput bool
	var limit int

	cmd := &cobra.Command{
		Use:   "circular",
		Short: "Detect #include and workspace dependency cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, ws, err := LoadHere()
			if err != nil {
				return Fail(err)
			}

			if workspaceMode {
				if ws == nil {
					return Fail(fmt.Errorf("circular --workspace: no workspace found at %s", root))
				}
				if err := reportWorkspaceCycle(root, ws, jsonOutput); err != nil {
					return Fail(err)
				}
				return nil
			}

			var includeDirs []string
			if includeDeps {
				includeDirs = append(includeDirs, DependenciesDir(root))
			}

			graph, err := include.Scan(include.Options{Root: root, IncludeDirs: includeDirs})
			if err != nil {
				return Fail(err)
			}

			chains := graph.FindCycles()
			if limit > 0 && len(chains) > limit {
				chains = chains[:limit]
			}

			if jsonOutput {
				if err := printChainsJSON(chains); err != nil {
					return Fail(err)
				}
				return nil
			}
			if len(chains) == 0 {
				Logger().Success("no include cycles found")
				return nil
			}
			for _, c := range chains {
				fmt.Println(include.Chain(c).Error())
			}
			return Fail(fmt.Errorf("%d include cycle(s) found", len(chains)))
		},
	}

	cmd.Flags().BoolVar(&includeDeps, "include-deps", false, "also search materialized dependency headers")
	cmd.Flags().BoolVar(&workspaceMode, "workspace", false, "check the workspace's inter-project dependency graph instead of #include cycles")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after N cycles (0 = unlimited)")
	return cmd
}

func reportWorkspaceCycle(root string, ws *manifest.Workspace, jsonOutput bool) error {
	graph, warnings, err := workspace.Load(root, ws, manifest.LoadProject)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		Logger().Warn("%s", w)
	}

	_, err = graph.BuildOrder()
	if err == nil {
		Logger().Success("no workspace dependency cycles found")
		return nil
	}
	if jsonOutput {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Println(string(data))
	} else {
		fmt.Println(err)
	}
	return err
}

func printChainsJSON(chains []include.Chain) error {
	type jsonChain struct {
		Files []string `json:"files"`
	}
	out := make([]jsonChain, len(chains))
	for i, c := range chains {
		out[i] = jsonChain{Files: c.Files}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	if len(chains) > 0 {
		return fmt.Errorf("%d include cycle(s) found", len(chains))
	}
	return nil
}
