package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// --- Commands ---

// Cmd is a straight-line command.
type Cmd interface {
	Node
	cmdNode() // Marker method for commands
}

// AssertCmd represents `assert {:attrs} e;`
type AssertCmd struct {
	NodeInfo
	Expr       Expr
	Attributes Attributes
}

func (c *AssertCmd) cmdNode()                    {}
func (c *AssertCmd) String() string              { return "assert " + c.Attributes.prefix() + c.Expr.String() + ";" }
func (c *AssertCmd) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

// AssumeCmd represents `assume e;`
type AssumeCmd struct {
	NodeInfo
	Expr Expr
}

func (c *AssumeCmd) cmdNode()                    {}
func (c *AssumeCmd) String() string              { return "assume " + c.Expr.String() + ";" }
func (c *AssumeCmd) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

// HavocCmd represents `havoc x, y;`
type HavocCmd struct {
	NodeInfo
	Vars []*IdentifierExpr
}

func (c *HavocCmd) cmdNode() {}
func (c *HavocCmd) String() string {
	return "havoc " + strings.Join(gfn.Map(c.Vars, func(v *IdentifierExpr) string { return v.String() }), ", ") + ";"
}
func (c *HavocCmd) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

// AssignLhs is the target of an assignment.
type AssignLhs interface {
	Node
	// AssignedVariable is the variable at the root of the lhs.
	AssignedVariable() *IdentifierExpr
}

// SimpleAssignLhs assigns a whole variable.
type SimpleAssignLhs struct {
	NodeInfo
	Var *IdentifierExpr
}

func (l *SimpleAssignLhs) AssignedVariable() *IdentifierExpr { return l.Var }
func (l *SimpleAssignLhs) String() string                    { return l.Var.String() }
func (l *SimpleAssignLhs) PrettyPrint(cp CodePrinter)        { cp.Print(l.String()) }

// MapAssignLhs assigns one map entry, eg `m[i][j]`.
type MapAssignLhs struct {
	NodeInfo
	Map     AssignLhs
	Indexes []Expr
}

func (l *MapAssignLhs) AssignedVariable() *IdentifierExpr { return l.Map.AssignedVariable() }
func (l *MapAssignLhs) String() string                    { return l.Map.String() + "[" + exprsString(l.Indexes) + "]" }
func (l *MapAssignLhs) PrettyPrint(cp CodePrinter)        { cp.Print(l.String()) }

// AssignCmd represents `a, b[i] := e1, e2;`. Lhs and Rhs lengths are checked later, not by the parser.
type AssignCmd struct {
	NodeInfo
	Lhss []AssignLhs
	Rhss []Expr
}

func (c *AssignCmd) cmdNode() {}
func (c *AssignCmd) String() string {
	return strings.Join(gfn.Map(c.Lhss, func(l AssignLhs) string { return l.String() }), ", ") + " := " + exprsString(c.Rhss) + ";"
}
func (c *AssignCmd) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

// CallCmd represents `call x, * := P(args);`. A nil entry in Outs discards that output
// and a nil entry in Ins is a `*` argument.
type CallCmd struct {
	NodeInfo
	Callee     string
	Ins        []Expr
	Outs       []*IdentifierExpr
	Attributes Attributes
}

func (c *CallCmd) cmdNode() {}
func (c *CallCmd) String() string {
	outs := ""
	if len(c.Outs) > 0 {
		outs = strings.Join(gfn.Map(c.Outs, func(o *IdentifierExpr) string {
			if o == nil {
				return "*"
			}
			return o.String()
		}), ", ") + " := "
	}
	return fmt.Sprintf("call %s%s%s(%s);", c.Attributes.prefix(), outs, QuoteIdent(c.Callee), exprsString(c.Ins))
}
func (c *CallCmd) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

// CallForallCmd represents `call forall P(args);`. A nil entry in Ins is a `*` argument.
type CallForallCmd struct {
	NodeInfo
	Callee     string
	Ins        []Expr
	Attributes Attributes
}

func (c *CallForallCmd) cmdNode() {}
func (c *CallForallCmd) String() string {
	return fmt.Sprintf("call %sforall %s(%s);", c.Attributes.prefix(), QuoteIdent(c.Callee), exprsString(c.Ins))
}
func (c *CallForallCmd) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

// --- Structured commands ---

// StructuredCmd is a control construct that has not been lowered to gotos yet.
type StructuredCmd interface {
	Node
	structuredCmdNode()
}

// IfCmd represents `if (guard) { } else ...`. A nil Guard is the nondeterministic `*` guard.
// At most one of ElseIf and Else is set.
type IfCmd struct {
	NodeInfo
	Guard  Expr
	Then   *StmtList
	ElseIf *IfCmd
	Else   *StmtList
}

func (c *IfCmd) structuredCmdNode() {}
func (c *IfCmd) String() string     { return "if (" + guardString(c.Guard) + ") { ... }" }
func (c *IfCmd) PrettyPrint(cp CodePrinter) {
	cp.Println("if (" + guardString(c.Guard) + ") {")
	WithIndent(1, cp, c.Then.printBlocks)
	cp.Print("}")
	if c.ElseIf != nil {
		cp.Print(" else ")
		c.ElseIf.PrettyPrint(cp)
	} else if c.Else != nil {
		cp.Println(" else {")
		WithIndent(1, cp, c.Else.printBlocks)
		cp.Print("}")
	}
}

// Invariant is a loop invariant; free invariants are assumed rather than checked.
type Invariant struct {
	NodeInfo
	Free bool
	Expr Expr
}

func (i *Invariant) String() string {
	if i.Free {
		return "free invariant " + i.Expr.String() + ";"
	}
	return "invariant " + i.Expr.String() + ";"
}

// WhileCmd represents `while (guard) invariant e; { body }`. A nil Guard is `*`.
type WhileCmd struct {
	NodeInfo
	Guard      Expr
	Invariants []*Invariant
	Body       *StmtList
}

func (c *WhileCmd) structuredCmdNode() {}
func (c *WhileCmd) String() string     { return "while (" + guardString(c.Guard) + ") { ... }" }
func (c *WhileCmd) PrettyPrint(cp CodePrinter) {
	cp.Print("while (" + guardString(c.Guard) + ")")
	WithIndent(1, cp, func(cp CodePrinter) {
		for _, inv := range c.Invariants {
			cp.Println("")
			cp.Print(inv.String())
		}
	})
	cp.Println(" {")
	WithIndent(1, cp, c.Body.printBlocks)
	cp.Print("}")
}

// BreakCmd represents `break [label];`
type BreakCmd struct {
	NodeInfo
	Label string
}

func (c *BreakCmd) structuredCmdNode() {}
func (c *BreakCmd) String() string {
	if c.Label == "" {
		return "break;"
	}
	return "break " + QuoteIdent(c.Label) + ";"
}
func (c *BreakCmd) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

// --- Transfer commands ---

// TransferCmd ends a block unconditionally.
type TransferCmd interface {
	Node
	transferCmdNode()
}

// GotoCmd represents `goto L1, L2;`
type GotoCmd struct {
	NodeInfo
	Labels []string
}

func (c *GotoCmd) transferCmdNode()           {}
func (c *GotoCmd) String() string              { return "goto " + strings.Join(quoteIdents(c.Labels), ", ") + ";" }
func (c *GotoCmd) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

// ReturnCmd represents `return;`
type ReturnCmd struct {
	NodeInfo
}

func (c *ReturnCmd) transferCmdNode()           {}
func (c *ReturnCmd) String() string              { return "return;" }
func (c *ReturnCmd) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

// ReturnExprCmd represents `return e;` and only ends blocks of specification bodies.
type ReturnExprCmd struct {
	NodeInfo
	Expr Expr
}

func (c *ReturnExprCmd) transferCmdNode()           {}
func (c *ReturnExprCmd) String() string              { return "return " + c.Expr.String() + ";" }
func (c *ReturnExprCmd) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

// --- Blocks ---

// BigBlock is a labelled run of commands ended by at most one structured or transfer command.
type BigBlock struct {
	NodeInfo
	Label string
	Cmds  []Cmd
	Ec    StructuredCmd
	Tc    TransferCmd
}

func (b *BigBlock) String() string {
	return fmt.Sprintf("BigBlock(%q, %d cmds)", b.Label, len(b.Cmds))
}

func (b *BigBlock) PrettyPrint(cp CodePrinter) {
	if b.Label != "" {
		cp.Unindent(1)
		cp.Println(QuoteIdent(b.Label) + ":")
		cp.Indent(1)
	}
	for _, c := range b.Cmds {
		c.PrettyPrint(cp)
		cp.Println("")
	}
	if b.Ec != nil {
		b.Ec.PrettyPrint(cp)
		cp.Println("")
	}
	if b.Tc != nil {
		b.Tc.PrettyPrint(cp)
		cp.Println("")
	}
}

// StmtList is the body of one `{ ... }`.
type StmtList struct {
	BigBlocks []*BigBlock
	EndCurly  Location
}

func (s *StmtList) printBlocks(cp CodePrinter) {
	if s == nil {
		return
	}
	for _, b := range s.BigBlocks {
		b.PrettyPrint(cp)
	}
}

// Block is a basic block of a specification body.
type Block struct {
	NodeInfo
	Label    string
	Cmds     []Cmd
	Transfer TransferCmd
}

func (b *Block) String() string {
	parts := []string{QuoteIdent(b.Label) + ":"}
	parts = append(parts, gfn.Map(b.Cmds, func(c Cmd) string { return c.String() })...)
	if b.Transfer != nil {
		parts = append(parts, b.Transfer.String())
	}
	return strings.Join(parts, " ")
}

func guardString(g Expr) string {
	if g == nil {
		return "*"
	}
	return g.String()
}
