package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ozacod/cforge/internal/pkg/workspace"
	"github.com/ozacod/cforge/pkg/manifest"
)

// BuildCmd builds the project or every workspace member in dependency
// order (spec §4.10, §4.12).
func BuildCmd() *cobra.Command {
	var globals GlobalFlags
	var keepGoing bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Configure and build the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ApplyGlobalFlags(globals)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			root, proj, ws, err := LoadHere()
			if err != nil {
				return Fail(err)
			}

			if ws != nil {
				return Fail(buildWorkspace(ctx, root, ws, globals, keepGoing))
			}
			_, err = RunPipeline(ctx, Logger(), PipelineOptions{
				ProjectDir:  root,
				Project:     proj,
				BuildConfig: globals.Config,
				Jobs:        globals.Jobs,
				Verbose:     globals.Verbose,
			})
			if err != nil {
				return Fail(err)
			}
			return nil
		},
	}

	bindGlobalFlags(cmd, &globals)
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue building independent workspace members after a failure")
	return cmd
}

func buildWorkspace(ctx context.Context, root string, ws *manifest.Workspace, globals GlobalFlags, keepGoing bool) error {
	graph, warnings, err := workspace.Load(root, ws, manifest.LoadProject)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		Logger().Warn("%s", w)
	}

	order, err := graph.BuildOrder()
	if err != nil {
		return err
	}

	failed := ""
	skip := map[string]bool{}
	for _, name := range order {
		if skip[name] {
			Logger().Warn("skipping %s (depends on failed member %s)", name, failed)
			continue
		}
		member := graph.Members[name]
		Logger().Info("Building workspace member %q", name)

		defines := siblingDefines(graph, name)
		_, err := RunPipeline(ctx, Logger(), PipelineOptions{
			ProjectDir:  member.Dir,
			Project:     member.Project,
			BuildConfig: globals.Config,
			Jobs:        globals.Jobs,
			Verbose:     globals.Verbose,
			ExtraArgs:   defines,
		})
		if err != nil {
			if !keepGoing {
				return fmt.Errorf("building %s: %w", name, err)
			}
			failed = name
			_, toSkip := graph.KeepGoingPlan(order, name)
			for _, s := range toSkip {
				skip[s] = true
			}
			Logger().Error("building %s: %s", name, err)
		}
	}
	return nil
}

// siblingDefines resolves the -DCFORGE_DEP_* wiring for a workspace
// member's already-built sibling dependencies (spec §4.10).
func siblingDefines(g *workspace.Graph, member string) []string {
	includes := map[string]string{}
	libs := map[string]string{}
	for _, dep := range g.Edges[member] {
		sib, ok := g.Members[dep]
		if !ok {
			continue
		}
		includes[dep] = sib.Dir
	}
	return workspace.CMakeDefines(member, includes, libs)
}

func bindGlobalFlags(cmd *cobra.Command, g *GlobalFlags) {
	cmd.Flags().StringVarP(&g.Config, "config", "c", "", "build configuration (Debug, Release, ...)")
	cmd.Flags().BoolVarP(&g.Verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().BoolVar(&g.Quiet, "quiet", false, "suppress non-error output")
	cmd.Flags().IntVarP(&g.Jobs, "jobs", "j", 0, "parallel build jobs (default: number of CPUs)")
	cmd.Flags().StringVar(&g.Project, "project", "", "workspace member to target")
}
