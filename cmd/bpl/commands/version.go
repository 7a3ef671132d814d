package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set through -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print bpl version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bpl %s\n", Version)
			if GitCommit != "none" {
				fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
			}
			if BuildDate != "unknown" {
				fmt.Fprintf(out, "Build date: %s\n", BuildDate)
			}
		},
	}
}
