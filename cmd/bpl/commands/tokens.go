package commands

import (
	"fmt"

	"github.com/panyam/bpl/parser"
	"github.com/spf13/cobra"
)

func newTokensCmd(a *app) *cobra.Command {
	var files fileOptions
	var comments bool
	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Prints the token stream of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("comments") {
				a.cfg.Parser.KeepComments = comments
			}
			tokens, _, err := a.newLoader(&files).ScanFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tok := range tokens {
				fmt.Fprintf(out, "%d:%d\t%s\t%q\n", tok.Line, tok.Col, parser.TokenString(tok.Kind), tok.Val)
			}
			return nil
		},
	}
	files.register(cmd)
	cmd.Flags().BoolVar(&comments, "comments", false, "Include comments in the stream")
	return cmd
}
