package cli

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ozacod/cforge/internal/pkg/testrunner"
	cferrors "github.com/ozacod/cforge/pkg/errors"
)

// TestCmd builds the project and runs its tests/ targets through the
// Test/Benchmark Runner, reporting in cargo-style grouped output
// (spec §4.13).
func TestCmd() *cobra.Command {
	return testLikeCmd("test", "tests", "Build and run the project's tests")
}

// BenchCmd is TestCmd's counterpart over the bench/ directory.
func BenchCmd() *cobra.Command {
	return testLikeCmd("bench", "bench", "Build and run the project's benchmarks")
}

func testLikeCmd(use, subdir, short string) *cobra.Command {
	var globals GlobalFlags
	var filter string
	var jsonOutput bool
	var timeoutSeconds int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ApplyGlobalFlags(globals)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			root, proj, ws, err := LoadHere()
			if err != nil {
				return Fail(err)
			}
			if ws != nil {
				return Fail(fmt.Errorf("%s: run from within a workspace member directory, or pass --project once workspace-wide %s is supported", use, use))
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

			targets, err := testrunner.Discover(filepath.Join(root, subdir), nil)
			if err != nil {
				return Fail(err)
			}
			if len(targets) == 0 {
				Logger().Info("no %s targets found in %s/", use, subdir)
				return nil
			}

			buildDir := BuildDirFor(root, globals.Config)
			cfg := buildConfigOrDefault(globals.Config)
			timeout := time.Duration(timeoutSeconds) * time.Second

			var allCases []testrunner.CaseResult
			for _, target := range targets {
				binary := testrunner.LookPath(buildDir, cfg, target.Name)
				cases, err := testrunner.Run(ctx, target, binary, timeout, filter, jsonOutput)
				if err != nil {
					return Fail(err)
				}
				allCases = append(allCases, cases...)
			}

			fmt.Print(testrunner.FormatCargoStyle(allCases))
			summary := testrunner.Summarize(allCases)
			if summary.Failed > 0 || summary.TimedOut > 0 {
				return Fail(&cferrors.TestFailed{Target: use, Output: testrunner.FormatCargoStyle(allCases)})
			}
			return nil
		},
	}

	bindGlobalFlags(cmd, &globals)
	cmd.Flags().StringVar(&filter, "filter", "", "filter test/benchmark cases by name")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "request JSON output from the underlying test framework")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 120, "per-target timeout in seconds")
	return cmd
}
