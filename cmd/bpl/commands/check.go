package commands

import "github.com/spf13/cobra"

func newCheckCmd(a *app) *cobra.Command {
	var files fileOptions
	cmd := &cobra.Command{
		Use:   "check <file...>",
		Short: "Parses files and reports only whether they are well formed",
		Long: `The check command parses one or more files and prints one line per file
with errors. The exit status is 1 when any file has errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, problems := a.parseAll(cmd, &files, args, true); problems > 0 {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	files.register(cmd)
	return cmd
}
