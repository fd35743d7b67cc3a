package cli

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ozacod/cforge/internal/pkg/testrunner"
	"github.com/ozacod/cforge/internal/pkg/workspace"
	cferrors "github.com/ozacod/cforge/pkg/errors"
	"github.com/ozacod/cforge/pkg/manifest"
)

// RunCmd builds (if needed) and executes the project's (or workspace
// startup member's) built binary, forwarding extra args after `--`.
func RunCmd() *cobra.Command {
	var globals GlobalFlags
	var keepGoing bool

	cmd := &cobra.Command{
		Use:   "run [-- args...]",
		Short: "Build and run the project's executable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ApplyGlobalFlags(globals)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			root, proj, ws, err := LoadHere()
			if err != nil {
				return Fail(err)
			}

			runDir := root
			runProj := proj
			if ws != nil {
				if err := buildWorkspace(ctx, root, ws, globals, keepGoing); err != nil {
					return Fail(err)
				}
				graph, _, err := workspace.Load(root, ws, manifest.LoadProject)
				if err != nil {
					return Fail(err)
				}
				startup, ok := graph.Startup()
				if globals.Project != "" {
					startup, ok = graph.Members[globals.Project]
				}
				if !ok {
					return Fail(cferrorsNoStartup())
				}
				runDir, runProj = startup.Dir, startup.Project
			} else {
				if _, err := RunPipeline(ctx, Logger(), PipelineOptions{
					ProjectDir:  root,
					Project:     proj,
					BuildConfig: globals.Config,
					Jobs:        globals.Jobs,
					Verbose:     globals.Verbose,
				}); err != nil {
					return Fail(err)
				}
			}

			buildDir := BuildDirFor(runDir, globals.Config)
			binary := testrunner.LookPath(buildDir, buildConfigOrDefault(globals.Config), runProj.Name)
			if _, err := os.Stat(binary); err != nil {
				return Fail(cferrors.ErrBuildNotConfigured)
			}

			Logger().Info("Running %s", binary)
			c := exec.Command(binary, args...)
			c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
			if err := c.Run(); err != nil {
				return Fail(err)
			}
			return nil
		},
	}

	bindGlobalFlags(cmd, &globals)
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue building independent workspace members after a failure")
	return cmd
}

func cferrorsNoStartup() error {
	return &noStartupMemberError{}
}

type noStartupMemberError struct{}

func (e *noStartupMemberError) Error() string {
	return "no workspace startup member designated; set `startup` in cforge.toml or pass --project"
}
