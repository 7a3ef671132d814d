package parser

import (
	"fmt"
	"io"

	gfn "github.com/panyam/goutils/fn"
)

// Syntax error codes above maxT name the grammar rule whose alternatives
// all failed to match.
const (
	errFunction = maxT + 1 + iota
	errFunctionBody
	errProcedure
	errType
	errTypeAtom
	errTypeArgs
	errSpec
	errRequires
	errEnsures
	errSpecPrePost
	errSpecBlock
	errLabelOrCmd
	errStructuredCmd
	errTransferCmd
	errIfCmd
	errGuard
	errLabelOrAssign
	errCallAfterIdent
	errCallCmd
	errCallForallArg
	errCallOutIdent
	errEquivOp
	errImpliesOp
	errExpliesOp
	errAndOp
	errOrOp
	errRelOp
	errAddOp
	errUnaryExpression
	errMulOp
	errNegOp
	errCoercionExpression
	errCallArgs
	errParenExpr
	errAtomExpression
	errForall
	errQuantifierBody
	errExists
	errLambda
	errAttributeOrTrigger
	errAttributeParameter
	errQSep
	errDeclaration
	errStatement
)

var ruleErrors = map[int]string{
	errFunction: "invalid Function", errFunctionBody: "invalid Function",
	errProcedure: "invalid Procedure", errType: "invalid Type", errTypeAtom: "invalid TypeAtom",
	errTypeArgs: "invalid TypeArgs", errSpec: "invalid Spec",
	errRequires: "invalid SpecPrePost", errEnsures: "invalid SpecPrePost",
	errSpecPrePost: "invalid SpecPrePost", errSpecBlock: "invalid SpecBlock",
	errLabelOrCmd: "invalid LabelOrCmd", errStructuredCmd: "invalid StructuredCmd",
	errTransferCmd: "invalid TransferCmd", errIfCmd: "invalid IfCmd", errGuard: "invalid Guard",
	errLabelOrAssign: "invalid LabelOrAssign", errCallAfterIdent: "invalid CallCmd",
	errCallCmd: "invalid CallCmd", errCallForallArg: "invalid CallForallArg",
	errCallOutIdent: "invalid CallOutIdent", errEquivOp: "invalid EquivOp",
	errImpliesOp: "invalid ImpliesOp", errExpliesOp: "invalid ExpliesOp", errAndOp: "invalid AndOp",
	errOrOp: "invalid OrOp", errRelOp: "invalid RelOp", errAddOp: "invalid AddOp",
	errUnaryExpression: "invalid UnaryExpression", errMulOp: "invalid MulOp", errNegOp: "invalid NegOp",
	errCoercionExpression: "invalid CoercionExpression", errCallArgs: "invalid AtomExpression",
	errParenExpr: "invalid AtomExpression", errAtomExpression: "invalid AtomExpression",
	errForall: "invalid Forall", errQuantifierBody: "invalid QuantifierBody", errExists: "invalid Exists",
	errLambda: "invalid Lambda", errAttributeOrTrigger: "invalid AttributeOrTrigger",
	errAttributeParameter: "invalid AttributeParameter", errQSep: "invalid QSep",
	errDeclaration: "invalid Declaration", errStatement: "invalid statement",
}

// SyntaxMessage returns the message for a syntax error code: either a token
// kind that was expected or a grammar rule that could not be matched.
func SyntaxMessage(n int) string {
	if n >= 0 && n <= maxT {
		return TokenString(n) + " expected"
	}
	if msg, ok := ruleErrors[n]; ok {
		return msg
	}
	return fmt.Sprintf("error %d", n)
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Line   int
	Col    int
	Msg    string
	Syntax bool // false for semantic errors
}

func (d Diagnostic) String() string {
	if d.Line == 0 && d.Col == 0 {
		return d.Msg
	}
	return fmt.Sprintf("-- line %d col %d: %s", d.Line, d.Col, d.Msg)
}

// Errors collects the diagnostics of one parse. When Out is set every
// diagnostic is also written to it as one line.
type Errors struct {
	Count       int
	Diagnostics []Diagnostic
	Out         io.Writer
}

// NewErrors creates an error sink that echoes to out (which may be nil).
func NewErrors(out io.Writer) *Errors {
	return &Errors{Out: out}
}

func (e *Errors) add(d Diagnostic) {
	e.Diagnostics = append(e.Diagnostics, d)
	e.Count++
	if e.Out != nil {
		fmt.Fprintln(e.Out, d.String())
	}
}

// SynErr records syntax error n at the given position.
func (e *Errors) SynErr(line, col, n int) {
	e.add(Diagnostic{Line: line, Col: col, Msg: SyntaxMessage(n), Syntax: true})
}

// SemErr records a semantic error at the given position.
func (e *Errors) SemErr(line, col int, msg string) {
	e.add(Diagnostic{Line: line, Col: col, Msg: msg})
}

func (e *Errors) HasErrors() bool {
	return e.Count > 0
}

// Messages returns the rendered diagnostics in report order.
func (e *Errors) Messages() []string {
	return gfn.Map(e.Diagnostics, Diagnostic.String)
}
