package commands

import (
	"github.com/panyam/bpl/decl"
	"github.com/spf13/cobra"
)

func newPrintCmd(a *app) *cobra.Command {
	var files fileOptions
	cmd := &cobra.Command{
		Use:   "print <file...>",
		Short: "Parses files and pretty prints the merged program",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, problems := a.parseAll(cmd, &files, args, false)
			if problems > 0 {
				return &ExitError{Code: 1}
			}
			return decl.FPrint(cmd.OutOrStdout(), results.Program)
		},
	}
	files.register(cmd)
	return cmd
}
