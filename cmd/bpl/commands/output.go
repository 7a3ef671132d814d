package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/panyam/bpl/decl"
	"github.com/panyam/bpl/loader"
	gfn "github.com/panyam/goutils/fn"
	"gopkg.in/yaml.v3"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	pathLabel  = color.New(color.Bold)
)

// printDiagnostics writes each diagnostic of res as `path:line:col: error: msg`.
func printDiagnostics(w io.Writer, res *loader.Result) {
	for _, d := range res.Errors.Diagnostics {
		if d.Line > 0 {
			pathLabel.Fprintf(w, "%s:%d:%d:", res.Path, d.Line, d.Col)
		} else {
			pathLabel.Fprintf(w, "%s:", res.Path)
		}
		errorLabel.Fprint(w, " error:")
		fmt.Fprintf(w, " %s\n", d.Msg)
	}
	if n := res.Errors.Count; n > 0 {
		fmt.Fprintf(w, "%d parse errors detected in %s\n", n, res.Path)
	}
}

// DeclSummary describes one top level declaration.
type DeclSummary struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name,omitempty"`
	Line int    `yaml:"line"`
	Col  int    `yaml:"col"`
}

// FileSummary is the yaml report for one parsed file.
type FileSummary struct {
	Path         string        `yaml:"path"`
	Errors       int           `yaml:"errors"`
	Declarations []DeclSummary `yaml:"declarations"`
}

func declKind(d decl.Declaration) string {
	switch d.(type) {
	case *decl.ConstDecl:
		return "const"
	case *decl.FunctionDecl:
		return "function"
	case *decl.AxiomDecl:
		return "axiom"
	case *decl.TypeCtorDecl:
		return "type"
	case *decl.TypeSynonymDecl:
		return "type synonym"
	case *decl.GlobalVarDecl:
		return "var"
	case *decl.ProcedureDecl:
		return "procedure"
	case *decl.ImplementationDecl:
		return "implementation"
	}
	return fmt.Sprintf("%T", d)
}

func summarize(res *loader.Result) FileSummary {
	return FileSummary{
		Path:   res.Path,
		Errors: res.Errors.Count,
		Declarations: gfn.Map(res.Program.TopLevelDeclarations, func(d decl.Declaration) DeclSummary {
			pos := d.Pos()
			return DeclSummary{Kind: declKind(d), Name: d.DeclName(), Line: pos.Line, Col: pos.Col}
		}),
	}
}

// writeSummaries prints declaration summaries in the given format.
func writeSummaries(w io.Writer, format string, results *loader.Results) error {
	summaries := gfn.Map(results.Files, summarize)
	switch format {
	case "none":
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summaries); err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		return enc.Close()
	}
	for _, sum := range summaries {
		for _, d := range sum.Declarations {
			fmt.Fprintf(w, "%s:%d:%d: %s\n", sum.Path, d.Line, d.Col, strings.TrimSpace(d.Kind+" "+d.Name))
		}
	}
	return nil
}
