package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ozacod/cforge/internal/pkg/procexec"
	cferrors "github.com/ozacod/cforge/pkg/errors"
)

// PackageCmd builds the project, then runs cpack inside the build
// directory using the generators and metadata emitted into
// CMakeLists.txt by emit.writePackaging (spec §4.9).
func PackageCmd() *cobra.Command {
	var globals GlobalFlags

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Build and package the project with CPack",
		RunE: func(cmd *cobra.Command, args []string) error {
			ApplyGlobalFlags(globals)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			root, proj, _, err := LoadHere()
			if err != nil {
				return Fail(err)
			}
			if len(proj.Packaging.Generators) == 0 {
				return Fail(cferrors.NewConfigError("packaging.generators", "no [packaging] generators declared", "add a [packaging] section with generators = [\"TGZ\"] (or similar) to cforge.toml"))
			}

			if _, err := RunPipeline(ctx, Logger(), PipelineOptions{
				ProjectDir:  root,
				Project:     proj,
				BuildConfig: globals.Config,
				Jobs:        globals.Jobs,
				Verbose:     globals.Verbose,
			}); err != nil {
				return Fail(err)
			}

			buildDir := BuildDirFor(root, globals.Config)
			Logger().Info("Packaging (%v)...", proj.Packaging.Generators)

			cpackArgs := []string{"-C", buildConfigOrDefault(globals.Config)}
			res, err := procexec.Run(ctx, "cpack", cpackArgs, procexec.Options{
				Dir:    buildDir,
				OnLine: verboseLinePrinter(globals.Verbose),
			})
			if err != nil {
				return Fail(&cferrors.BuildFailed{Output: res.Output, ExitCode: res.ExitCode})
			}
			Logger().Success("package(s) written to %s", buildDir)
			return nil
		},
	}

	bindGlobalFlags(cmd, &globals)
	return cmd
}

func verboseLinePrinter(verbose bool) procexec.LineFunc {
	if !verbose {
		return nil
	}
	return func(line string) { Logger().Info("%s", line) }
}
