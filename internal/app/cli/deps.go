package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/ozacod/cforge/internal/app/cli/tui"
	"github.com/ozacod/cforge/internal/pkg/deps"
	"github.com/ozacod/cforge/internal/pkg/registry"
	"github.com/ozacod/cforge/pkg/manifest"
)

// DepsCmd groups dependency management subcommands: add, remove, list,
// info, search.
func DepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Manage project dependencies",
	}
	cmd.AddCommand(depsAddCmd(), depsRemoveCmd(), depsListCmd(), depsInfoCmd(), depsSearchCmd())
	return cmd
}

// AddCmd is the top-level alias for `cforge deps add`: both forms reach
// the same command rather than duplicating its logic.
func AddCmd() *cobra.Command {
	return depsAddCmd()
}

// RemoveCmd is the top-level alias for `cforge deps remove`.
func RemoveCmd() *cobra.Command {
	return depsRemoveCmd()
}

func depsAddCmd() *cobra.Command {
	var constraint, gitURL, gitTag string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a dependency to cforge.toml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := FindProjectRoot(".")
			if err != nil {
				return Fail(err)
			}
			name := args[0]

			if gitURL != "" {
				if err := addGitDependency(root, name, gitURL, gitTag); err != nil {
					return Fail(err)
				}
				Logger().Success("added git dependency %s", name)
				return nil
			}

			if constraint == "" {
				constraint = "*"
			}
			if err := addRegistryDependency(root, name, constraint); err != nil {
				return Fail(err)
			}
			Logger().Success("added %s %s", name, constraint)
			return nil
		},
	}
	cmd.Flags().StringVar(&constraint, "version", "", "semver constraint (default: *)")
	cmd.Flags().StringVar(&gitURL, "git", "", "git repository URL instead of a registry lookup")
	cmd.Flags().StringVar(&gitTag, "tag", "", "git tag to pin, used with --git")
	return cmd
}

func depsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a dependency from cforge.toml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := FindProjectRoot(".")
			if err != nil {
				return Fail(err)
			}
			if err := removeDependency(root, args[0]); err != nil {
				return Fail(err)
			}
			Logger().Success("removed %s", args[0])
			return nil
		},
	}
}

func depsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List declared dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := FindProjectRoot(".")
			if err != nil {
				return Fail(err)
			}
			proj, err := manifest.LoadProject(root)
			if err != nil {
				return Fail(err)
			}
			for _, d := range proj.Dependencies {
				fmt.Printf("%-20s %s\n", d.Name, d.Kind)
			}
			return nil
		},
	}
}

func depsInfoCmd() *cobra.Command {
	var copyToClipboard bool

	cmd := &cobra.Command{
		Use:   "info <name>",
		Short: "Show a resolved dependency's locked version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := FindProjectRoot(".")
			if err != nil {
				return Fail(err)
			}
			lock, err := deps.LoadLock(root)
			if err != nil {
				return Fail(err)
			}
			entry, ok := lock.Get(args[0])
			if !ok {
				return Fail(fmt.Errorf("%s is not locked; run `cforge build` first", args[0]))
			}
			fmt.Printf("name:     %s\n", args[0])
			fmt.Printf("source:   %s\n", entry.Source)
			fmt.Printf("version:  %s\n", entry.Version)
			fmt.Printf("resolved: %s\n", entry.Resolved)

			if copyToClipboard {
				if err := clipboard.WriteAll(entry.Resolved); err != nil {
					return Fail(err)
				}
				Logger().Info("copied resolved version to clipboard")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "copy the resolved version/commit to the clipboard")
	return cmd
}

func depsSearchCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the dependency registry, optionally adding results interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := FindProjectRoot(".")
			if err != nil {
				return Fail(err)
			}
			reg := OpenRegistry()

			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			searchFn := func(q string) ([]tui.SearchResult, error) {
				return toSearchResults(reg.Search(q)), nil
			}
			addFn := func(pkg string) error {
				return addRegistryDependency(root, pkg, "*")
			}

			if interactive || query == "" {
				return tui.RunSearch(query, searchFn, addFn)
			}

			results, _ := searchFn(query)
			for _, r := range results {
				fmt.Printf("%-20s %-10s %s\n", r.Name, r.Version, r.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&interactive, "interactive", false, "force the interactive TUI even with a query given")
	return cmd
}

func toSearchResults(entries []registry.Entry) []tui.SearchResult {
	out := make([]tui.SearchResult, len(entries))
	for i, e := range entries {
		out[i] = tui.SearchResult{
			Name:        e.Name,
			Version:     e.LatestVersion(),
			Description: e.Integration.Target,
		}
	}
	return out
}
