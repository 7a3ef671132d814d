package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/panyam/bpl/config"
	"github.com/spf13/cobra"
)

// app carries the resolved configuration and global flags to subcommands.
type app struct {
	cfgFile  string
	noColor  bool
	logLevel string
	maxDepth int

	cfg *config.Config
}

// ExitError ends the process with Code without printing anything further.
// Commands return it once their own output has already reported the problem.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// NewRootCommand builds the bpl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "bpl",
		Short: "bpl parses Boogie programs",
		Long: `bpl reads programs in the Boogie intermediate verification language,
reports syntax errors, and prints the parsed declarations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (default: BPL_CONFIG or ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable coloured output")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().IntVar(&a.maxDepth, "max-depth", 0, "Maximum nesting depth accepted by the parser")

	rootCmd.AddCommand(
		newParseCmd(a),
		newPrintCmd(a),
		newTokensCmd(a),
		newCheckCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup resolves configuration, then applies flag overrides and the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(a.cfgFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.General.LogLevel = a.logLevel
	}
	if flags.Changed("max-depth") {
		cfg.Parser.MaxDepth = a.maxDepth
	}
	if a.noColor {
		cfg.Output.Color = "never"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	switch cfg.Output.Color {
	case "never":
		color.NoColor = true
	case "always":
		color.NoColor = false
	}

	level, _ := config.ParseLogLevel(cfg.General.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	slog.Debug("Resolved config", "logLevel", cfg.General.LogLevel, "maxDepth", cfg.Parser.MaxDepth,
		"defines", cfg.Preprocess.Defines, "format", cfg.Output.Format)

	a.cfg = cfg
	return nil
}

// Run executes the command tree with args and returns the exit status.
func Run(args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// Execute runs bpl with the process arguments. This is called by main.main().
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
