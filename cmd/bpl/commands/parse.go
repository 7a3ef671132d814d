package commands

import (
	"fmt"
	"log/slog"

	"github.com/panyam/bpl/loader"
	"github.com/spf13/cobra"
)

// fileOptions are the flags shared by commands that read source files.
type fileOptions struct {
	defines []string
}

func (f *fileOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.defines, "define", "D", nil, "Define a name for #if (repeatable)")
}

// newLoader builds a loader from the resolved config plus -D names.
func (a *app) newLoader(f *fileOptions) *loader.Loader {
	opts := a.cfg.LoaderOptions()
	opts.Defines = append(opts.Defines, f.defines...)
	return loader.NewLoader(nil, opts)
}

// parseAll parses args, reports diagnostics to stderr and returns the results
// with the number of problems found (syntax errors plus unreadable files).
func (a *app) parseAll(cmd *cobra.Command, f *fileOptions, args []string, quiet bool) (*loader.Results, int) {
	stderr := cmd.ErrOrStderr()
	results, err := a.newLoader(f).ParseFiles(args...)
	problems := results.ErrorCount()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		problems++
	}
	for _, res := range results.Files {
		if quiet {
			if res.Errors.HasErrors() {
				fmt.Fprintf(stderr, "%d parse errors detected in %s\n", res.Errors.Count, res.Path)
			}
			continue
		}
		printDiagnostics(stderr, res)
	}
	slog.Debug("Parsed files", "files", len(results.Files), "problems", problems)
	return results, problems
}

func newParseCmd(a *app) *cobra.Command {
	var files fileOptions
	var format string
	cmd := &cobra.Command{
		Use:   "parse <file...>",
		Short: "Parses files and summarises their declarations",
		Long: `The parse command parses one or more files, prints every diagnostic and
a summary of the top level declarations (text, yaml or none).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Output.Format
			}
			switch format {
			case "text", "yaml", "none":
			default:
				return fmt.Errorf("--format must be text, yaml or none, got %q", format)
			}
			results, problems := a.parseAll(cmd, &files, args, false)
			if err := writeSummaries(cmd.OutOrStdout(), format, results); err != nil {
				return err
			}
			if problems > 0 {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	files.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Summary format: text, yaml or none")
	return cmd
}
