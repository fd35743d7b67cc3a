// Package builddriver selects a CMake generator and drives configure
// and build invocations, streaming progress through the teacher's
// regex-based line parser generalized to Ninja, Make, and MSBuild
// progress forms.
//
// Grounded on the teacher's internal/pkg/build/buildexec.go
// (runCMakeBuild/runCMakeConfigure) and
// internal/pkg/build/interfaces/interface.go's BuildOptions/BuildResult
// shapes, reused here via internal/pkg/procexec instead of being
// reimplemented per build system.
package builddriver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ozacod/cforge/internal/pkg/procexec"
	"github.com/ozacod/cforge/internal/pkg/style"
	cferrors "github.com/ozacod/cforge/pkg/errors"
)

var (
	makeProgressRe = regexp.MustCompile(`^\[\s*(\d+)%]`)
	ninjaProgressRe = regexp.MustCompile(`^\[(\d+)/(\d+)]`)
	msbuildProgressRe = regexp.MustCompile(`^\s*(\d+)>`)
	compilingFileRe = regexp.MustCompile(`Building (?:CXX|C) object (\S+)`)
)

// Generator identifies the CMake generator to invoke.
type Generator string

const (
	NinjaMultiConfig Generator = "Ninja Multi-Config"
	VisualStudio     Generator = "Visual Studio 17 2022"
	UnixMakefiles    Generator = "Unix Makefiles"
)

// SelectGenerator prefers Ninja Multi-Config when ninja is on PATH,
// otherwise falls back to the platform default (spec §4.12).
func SelectGenerator() Generator {
	if _, err := exec.LookPath("ninja"); err == nil {
		return NinjaMultiConfig
	}
	if runtime.GOOS == "windows" {
		return VisualStudio
	}
	return UnixMakefiles
}

// Options configures one configure+build invocation.
type Options struct {
	ProjectDir string
	BuildDir   string
	Config     string // "Debug", "Release", ...
	Jobs       int
	ExtraArgs  []string // additional -D defines (e.g. workspace sibling wiring)
	Verbose    bool
	Logger     *style.Logger
}

// FileTiming records how long a single translation unit took to build,
// feeding the "slowest files" report.
type FileTiming struct {
	File     string
	Duration time.Duration
}

// Result is the outcome of a configure+build invocation.
type Result struct {
	ConfigureOutput string
	BuildOutput     string
	SlowestFiles    []FileTiming
}

// Configure runs "cmake -S <project> -B <build>" with the selected
// generator and any extra -D defines.
func Configure(ctx context.Context, gen Generator, opts Options) (string, error) {
	args := []string{"-S", opts.ProjectDir, "-B", opts.BuildDir, "-G", string(gen)}
	args = append(args, opts.ExtraArgs...)

	res, err := procexec.Run(ctx, "cmake", args, procexec.Options{
		OnLine: verboseLine(opts),
	})
	if err != nil {
		return res.Output, &cferrors.ConfigureFailed{Output: res.Output, ExitCode: res.ExitCode}
	}
	return res.Output, nil
}

// Build runs "cmake --build <build> --config <cfg> --parallel <jobs>",
// streaming progress through a line parser recognizing Ninja, Make, and
// MSBuild forms, and tracking per-file timings for the slowest-files
// report.
func Build(ctx context.Context, opts Options) (Result, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	args := []string{"--build", opts.BuildDir}
	if opts.Config != "" {
		args = append(args, "--config", opts.Config)
	}
	args = append(args, "--parallel", strconv.Itoa(jobs))

	if opts.Verbose {
		res, err := procexec.Run(ctx, "cmake", args, procexec.Options{OnLine: verboseLine(opts)})
		if err != nil {
			return Result{BuildOutput: res.Output}, &cferrors.BuildFailed{Output: res.Output, ExitCode: res.ExitCode}
		}
		return Result{BuildOutput: res.Output}, nil
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription("[cyan]Building[reset]"),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Clear()

	var finished []FileTiming
	lastPercent := -1
	var currentFile string
	var currentStart time.Time

	res, err := procexec.Run(ctx, "cmake", args, procexec.Options{
		OnLine: func(line string) {
			if pct, ok := parseProgress(line); ok && pct != lastPercent {
				bar.Set(pct)
				lastPercent = pct
			} else if msbuildProgressRe.MatchString(line) {
				bar.Add(1)
			}
			// Each progress line marks the start of the next file; the
			// previous one (if any) just finished.
			if m := compilingFileRe.FindStringSubmatch(line); m != nil {
				if currentFile != "" {
					finished = append(finished, FileTiming{File: currentFile, Duration: time.Since(currentStart)})
				}
				currentFile = m[1]
				currentStart = time.Now()
			}
		},
	})
	if currentFile != "" {
		finished = append(finished, FileTiming{File: currentFile, Duration: time.Since(currentStart)})
	}

	sort.Slice(finished, func(i, j int) bool { return finished[i].Duration > finished[j].Duration })

	if err != nil {
		return Result{BuildOutput: res.Output, SlowestFiles: finished}, &cferrors.BuildFailed{Output: res.Output, ExitCode: res.ExitCode}
	}
	return Result{BuildOutput: res.Output, SlowestFiles: finished}, nil
}

// parseProgress recognizes Ninja ([N/M]) and Make ([NN%]) progress-line
// forms and returns a 0-100 percentage. MSBuild lines are recognized
// separately by Build, which has no percentage to report for them.
func parseProgress(line string) (int, bool) {
	if m := makeProgressRe.FindStringSubmatch(line); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	if m := ninjaProgressRe.FindStringSubmatch(line); m != nil {
		cur, err1 := strconv.Atoi(m[1])
		total, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil && total > 0 {
			return cur * 100 / total, true
		}
	}
	// MSBuild lines (e.g. "1>main.cpp") carry a project index, not a
	// percentage; Build ticks the bar on their presence instead of
	// treating them as a percentage sample.
	return 0, false
}

func verboseLine(opts Options) procexec.LineFunc {
	if !opts.Verbose || opts.Logger == nil {
		return nil
	}
	return func(line string) { fmt.Fprintln(os.Stdout, strings.TrimRight(line, "\r\n")) }
}
