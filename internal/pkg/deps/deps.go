// Package deps materializes a project's declared dependencies to disk
// and maintains the lock file that records what was resolved.
//
// git/registry fetching follows the teacher's progressbar-driven
// subprocess pattern (internal/pkg/build/buildexec.go,
// internal/pkg/build/vcpkg/vcpkg.go); per-name locking and
// atomic-rename materialization follow spec §4.5's guarantees.
package deps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/ozacod/cforge/internal/pkg/platform"
	"github.com/ozacod/cforge/internal/pkg/procexec"
	"github.com/ozacod/cforge/internal/pkg/registry"
	"github.com/ozacod/cforge/internal/pkg/semver"
	"github.com/ozacod/cforge/internal/pkg/style"
	cferrors "github.com/ozacod/cforge/pkg/errors"
	"github.com/ozacod/cforge/pkg/manifest"
)

// Resolved is one dependency's post-resolution record (spec §3).
type Resolved struct {
	Name         string
	Kind         manifest.DependencyKind
	Version      string
	Path         string
	ContentHash  string
	IncludeDirs  []string
	LinkTarget   string
	CMakeOptions map[string]string
}

// Resolver materializes dependencies for one project.
type Resolver struct {
	ProjectDir   string
	DepsDir      string
	Registry     *registry.Client
	Logger       *style.Logger
	Update       bool // --update: re-resolve even if lock is authoritative
	GeneratedAt  string

	locks sync.Map // name -> *sync.Mutex, at-most-one concurrent materialization per name
}

// NewResolver builds a Resolver rooted at projectDir, materializing
// into depsDir (relative paths are resolved against projectDir).
func NewResolver(projectDir, depsDir string, reg *registry.Client, logger *style.Logger) *Resolver {
	if !filepath.IsAbs(depsDir) {
		depsDir = filepath.Join(projectDir, depsDir)
	}
	return &Resolver{ProjectDir: projectDir, DepsDir: depsDir, Registry: reg, Logger: logger}
}

func (r *Resolver) mutexFor(name string) *sync.Mutex {
	v, _ := r.locks.LoadOrStore(name, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// ResolveAll materializes every declared dependency, returning one
// Resolved record per entry and writing the updated lock file.
func (r *Resolver) ResolveAll(ctx context.Context, deps []manifest.Dependency) ([]Resolved, *Lock, error) {
	lock, err := LoadLock(r.ProjectDir)
	if err != nil {
		return nil, nil, err
	}

	results := make([]Resolved, 0, len(deps))
	for _, d := range deps {
		res, err := r.resolveOne(ctx, d, lock)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving %s: %w", d.Name, err)
		}
		results = append(results, res)
	}

	if err := lock.Save(r.ProjectDir); err != nil {
		return nil, nil, err
	}
	return results, lock, nil
}

func (r *Resolver) resolveOne(ctx context.Context, d manifest.Dependency, lock *Lock) (Resolved, error) {
	mu := r.mutexFor(d.Name)
	mu.Lock()
	defer mu.Unlock()

	switch d.Kind {
	case manifest.KindGit:
		return r.resolveGit(ctx, d.Name, d.Git, lock)
	case manifest.KindRegistry:
		return r.resolveRegistry(ctx, d.Name, d.Registry, lock)
	case manifest.KindSubdirectory:
		return r.resolveSubdirectory(d.Name, d.Subdirectory)
	case manifest.KindSystem:
		return r.resolveSystem(d.Name, d.System)
	case manifest.KindVcpkg:
		return r.resolveVcpkg(d.Name, d.Vcpkg, lock)
	default:
		return Resolved{}, fmt.Errorf("unknown dependency kind %q", d.Kind)
	}
}

func (r *Resolver) resolveGit(ctx context.Context, name string, g *manifest.GitDependency, lock *Lock) (Resolved, error) {
	dest := filepath.Join(r.DepsDir, name)

	ref := g.Commit
	if ref == "" {
		ref = g.Tag
	}
	if ref == "" {
		ref = g.Branch
	}

	existing, hasLock := lock.Get(name)
	if hasLock && !r.Update {
		if sha, ok := r.onDiskSHA(dest); ok && sha == existing.Resolved {
			return Resolved{
				Name: name, Kind: manifest.KindGit, Version: existing.Version,
				Path: dest, IncludeDirs: []string{dest}, LinkTarget: g.Target,
			}, nil
		}
	}

	if err := r.cloneInto(ctx, name, g.URL, ref, g.Commit != "", g.Shallow, dest); err != nil {
		return Resolved{}, err
	}

	sha, _ := r.onDiskSHA(dest)
	lock.Set(name, LockEntry{Source: "git", URL: g.URL, Version: ref, Resolved: sha})

	return Resolved{
		Name: name, Kind: manifest.KindGit, Version: sha,
		Path: dest, IncludeDirs: []string{dest}, LinkTarget: g.Target,
	}, nil
}

func (r *Resolver) resolveRegistry(ctx context.Context, name string, rd *manifest.RegistryDependency, lock *Lock) (Resolved, error) {
	entry, err := r.Registry.Lookup(name)
	if err != nil {
		return Resolved{}, err
	}

	versions, err := r.Registry.Versions(name)
	if err != nil {
		return Resolved{}, err
	}

	req, err := semver.ParseRequirement(rd.Constraint)
	if err != nil {
		return Resolved{}, fmt.Errorf("invalid constraint %q for %s: %w", rd.Constraint, name, err)
	}

	best, ok := semver.FindBest(versions, req)
	if !ok {
		return Resolved{}, &cferrors.NoMatchingVersion{Package: name, Constraint: rd.Constraint}
	}

	tag, err := r.Registry.TagFor(name, best)
	if err != nil {
		return Resolved{}, err
	}

	dest := filepath.Join(r.DepsDir, name)
	existing, hasLock := lock.Get(name)
	if hasLock && !r.Update {
		if sha, ok := r.onDiskSHA(dest); ok && sha == existing.Resolved && existing.Version == rd.Constraint {
			return Resolved{
				Name: name, Kind: manifest.KindRegistry, Version: best, Path: dest,
				IncludeDirs: []string{dest}, LinkTarget: entry.Integration.Target,
				CMakeOptions: entry.Integration.Options,
			}, nil
		}
	}

	if err := r.cloneInto(ctx, name, entry.URL, tag, false, true, dest); err != nil {
		return Resolved{}, err
	}
	if err := r.runSetupCommands(ctx, entry, dest); err != nil {
		return Resolved{}, err
	}

	sha, _ := r.onDiskSHA(dest)
	lock.Set(name, LockEntry{Source: "registry", URL: entry.URL, Version: rd.Constraint, Resolved: sha})

	return Resolved{
		Name: name, Kind: manifest.KindRegistry, Version: best, Path: dest,
		IncludeDirs: []string{dest}, LinkTarget: entry.Integration.Target,
		CMakeOptions: entry.Integration.Options,
	}, nil
}

func (r *Resolver) resolveSubdirectory(name string, sd *manifest.SubdirectoryDependency) (Resolved, error) {
	path := sd.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.ProjectDir, path)
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return Resolved{}, cferrors.NewDependencyError(name, "subdirectory path does not exist", "")
	}
	if _, err := os.Stat(filepath.Join(path, "CMakeLists.txt")); err != nil {
		return Resolved{}, cferrors.NewDependencyError(name, "subdirectory has no CMakeLists.txt", "")
	}
	return Resolved{
		Name: name, Kind: manifest.KindSubdirectory, Path: path,
		LinkTarget: sd.Target, CMakeOptions: sd.Options,
	}, nil
}

func (r *Resolver) resolveSystem(name string, sd *manifest.SystemDependency) (Resolved, error) {
	return Resolved{
		Name: name, Kind: manifest.KindSystem,
		IncludeDirs: sd.IncludeDirs, LinkTarget: sd.Target,
	}, nil
}

func (r *Resolver) resolveVcpkg(name string, vd *manifest.VcpkgDependency, lock *Lock) (Resolved, error) {
	if os.Getenv("VCPKG_ROOT") == "" {
		return Resolved{}, cferrors.ErrNoVcpkgRoot
	}
	lock.Set(name, LockEntry{Source: "vcpkg", Version: vd.Triplet, Resolved: vd.Package})
	return Resolved{Name: name, Kind: manifest.KindVcpkg, LinkTarget: vd.Package}, nil
}

// cloneInto fetches a git repository at ref into a temporary sibling
// directory, then atomically renames it into dest — a failed fetch
// never disturbs a previously-good materialization. isCommit marks ref
// as a commit SHA (explicit commit wins over tag wins over branch):
// `git clone --branch` only accepts branch/tag names, so a commit ref
// is fetched by SHA after a plain clone instead of passed to --branch.
func (r *Resolver) cloneInto(ctx context.Context, name, url, ref string, isCommit, shallow bool, dest string) error {
	if err := os.MkdirAll(r.DepsDir, 0o755); err != nil {
		return err
	}
	tmp, err := os.MkdirTemp(r.DepsDir, "."+name+"-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	args := []string{"clone"}
	if shallow && !isCommit {
		args = append(args, "--depth", "1")
	}
	if ref != "" && !isCommit {
		args = append(args, "--branch", ref)
	}
	args = append(args, url, tmp)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]fetching[reset] %s", name)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
	)
	defer bar.Clear()

	res, err := procexec.Run(ctx, "git", args, procexec.Options{
		OnLine: func(string) { bar.Add(1) },
	})
	if err != nil {
		return fmt.Errorf("git clone %s: %w\n%s", url, err, res.Output)
	}

	if isCommit {
		fetchArgs := []string{"-C", tmp, "fetch", "--depth", "1", "origin", ref}
		if res, err := procexec.Run(ctx, "git", fetchArgs, procexec.Options{}); err != nil {
			return fmt.Errorf("git fetch %s: %w\n%s", ref, err, res.Output)
		}
		if res, err := procexec.Run(ctx, "git", []string{"-C", tmp, "checkout", "FETCH_HEAD"}, procexec.Options{}); err != nil {
			return fmt.Errorf("git checkout %s: %w\n%s", ref, err, res.Output)
		}
	}

	os.RemoveAll(dest)
	if err := os.Rename(tmp, dest); err != nil {
		return err
	}
	return nil
}

func (r *Resolver) onDiskSHA(dir string) (string, bool) {
	res, err := procexec.Run(context.Background(), "git", []string{"-C", dir, "rev-parse", "HEAD"}, procexec.Options{})
	if err != nil || res.ExitCode != 0 {
		return "", false
	}
	sha := res.Output
	for len(sha) > 0 && (sha[len(sha)-1] == '\n' || sha[len(sha)-1] == '\r') {
		sha = sha[:len(sha)-1]
	}
	return sha, sha != ""
}

func (r *Resolver) runSetupCommands(ctx context.Context, entry registry.Entry, dest string) error {
	cmds, ok := entry.Integration.SetupCmds[currentPlatformKey()]
	if !ok || len(cmds) == 0 {
		return nil
	}
	for _, c := range cmds {
		res, err := procexec.Run(ctx, "sh", []string{"-c", c}, procexec.Options{Dir: dest})
		if err != nil {
			return fmt.Errorf("setup command %q: %w\n%s", c, err, res.Output)
		}
	}
	return nil
}

func currentPlatformKey() string {
	return platform.Current().String()
}

// Verify checks every materialized dependency's on-disk SHA against its
// lock entry, returning a LockVerificationFailed for the first mismatch
// (spec §8 property 5, scenario S6).
func (r *Resolver) Verify(lock *Lock) error {
	for name, entry := range lock.Dependencies {
		if entry.Source != "git" && entry.Source != "registry" {
			continue
		}
		dest := filepath.Join(r.DepsDir, name)
		sha, ok := r.onDiskSHA(dest)
		if !ok || sha != entry.Resolved {
			return &cferrors.LockVerificationFailed{Package: name, Expected: entry.Resolved, Actual: sha}
		}
	}
	return nil
}
