package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X ...cli.Version=...".
var Version = "dev"

// VersionCmd prints cforge's version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cforge version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("cforge %s\n", Version)
			return nil
		},
	}
}
