package cli

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ozacod/cforge/internal/pkg/builddriver"
	"github.com/ozacod/cforge/internal/pkg/deps"
	"github.com/ozacod/cforge/internal/pkg/emit"
	"github.com/ozacod/cforge/internal/pkg/hash"
	"github.com/ozacod/cforge/internal/pkg/resolve"
	"github.com/ozacod/cforge/internal/pkg/style"
	cferrors "github.com/ozacod/cforge/pkg/errors"
	"github.com/ozacod/cforge/pkg/manifest"
)

// PipelineOptions configures one single-project build pipeline run
// (resolve dependencies, emit CMakeLists.txt, configure, build).
type PipelineOptions struct {
	ProjectDir  string
	Project     *manifest.Project
	BuildConfig string
	Jobs        int
	Verbose     bool
	Update      bool
	ExtraArgs   []string // workspace sibling -D defines, see workspace.CMakeDefines
}

// RunPipeline resolves dependencies, regenerates CMakeLists.txt only
// when its content actually changed, then configures and builds.
func RunPipeline(ctx context.Context, logger *style.Logger, opts PipelineOptions) (builddriver.Result, error) {
	if _, err := exec.LookPath("cmake"); err != nil {
		return builddriver.Result{}, cferrors.NewToolError("cmake", "not found on PATH", "install CMake from your system package manager")
	}

	plat, comp := ResolvedPlatformCompiler("")

	reg := OpenRegistry()
	resolver := deps.NewResolver(opts.ProjectDir, DependenciesDir(opts.ProjectDir), reg, logger)
	resolver.Update = opts.Update

	logger.Info("Resolving dependencies...")
	resolved, _, err := resolver.ResolveAll(ctx, opts.Project.Dependencies)
	if err != nil {
		return builddriver.Result{}, cferrors.NewBuildError("dependencies", "failed to resolve dependencies", err)
	}

	cfg := resolve.Resolve(opts.Project, plat, comp, opts.BuildConfig)
	for _, w := range cfg.Warnings {
		logger.Warn("%s", w)
	}

	hasTests := dirExists(filepath.Join(opts.ProjectDir, "tests"))

	content := emit.Emit(emit.Input{
		Project:  opts.Project,
		Platform: plat,
		Compiler: comp,
		Configs: []emit.ConfigOverlay{
			{Name: buildConfigOrDefault(opts.BuildConfig), Config: cfg},
		},
		Dependencies: resolved,
		HasTests:     hasTests,
	})

	if err := writeCMakeListsIfChanged(opts.ProjectDir, content, logger); err != nil {
		return builddriver.Result{}, cferrors.NewBuildError("emit", "failed to write CMakeLists.txt", err)
	}

	gen := builddriver.SelectGenerator()
	buildDir := BuildDirFor(opts.ProjectDir, opts.BuildConfig)
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return builddriver.Result{}, err
	}

	driverOpts := builddriver.Options{
		ProjectDir: opts.ProjectDir,
		BuildDir:   buildDir,
		Config:     buildConfigOrDefault(opts.BuildConfig),
		Jobs:       opts.Jobs,
		ExtraArgs:  opts.ExtraArgs,
		Verbose:    opts.Verbose,
		Logger:     logger,
	}

	logger.Info("Configuring (%s)...", gen)
	if _, err := builddriver.Configure(ctx, gen, driverOpts); err != nil {
		return builddriver.Result{}, err
	}

	logger.Info("Building...")
	result, err := builddriver.Build(ctx, driverOpts)
	if err != nil {
		return result, err
	}
	logger.Success("Build finished")
	return result, nil
}

func buildConfigOrDefault(cfg string) string {
	if cfg == "" {
		return "Debug"
	}
	return cfg
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// writeCMakeListsIfChanged skips the write (and the downstream
// reconfigure it would otherwise trigger) when content's hash matches
// the cached one from the last run.
func writeCMakeListsIfChanged(projectDir, content string, logger *style.Logger) error {
	cache := hash.LoadCache(projectDir)
	h := hash.String(content)
	const key = "CMakeLists.txt"

	if cache.Matches(key, h) {
		logger.Debug("CMakeLists.txt unchanged, skipping regeneration")
		return nil
	}

	path := filepath.Join(projectDir, "CMakeLists.txt")
	tmp, err := os.CreateTemp(projectDir, "CMakeLists.*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	cache.Set(key, h)
	return cache.Save(projectDir)
}
