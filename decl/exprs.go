package decl

import (
	"fmt"
	"math/big"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode() // Marker method for expressions
}

type ExprBase struct {
	NodeInfo
}

func (e *ExprBase) exprNode() {}

// ExprAt builds an ExprBase for the given position.
func ExprAt(loc Location) ExprBase { return ExprBase{At(loc)} }

type LitKind int

const (
	LitBool LitKind = iota
	LitInt
	LitBv
)

// LiteralExpr is a boolean, integer or bitvector literal.
type LiteralExpr struct {
	ExprBase
	Kind  LitKind
	Bool  bool
	Int   *big.Int // value for LitInt and LitBv
	Width int      // bit width for LitBv
}

func NewBoolLit(loc Location, v bool) *LiteralExpr {
	return &LiteralExpr{ExprBase: ExprBase{At(loc)}, Kind: LitBool, Bool: v}
}

func NewIntLit(loc Location, v *big.Int) *LiteralExpr {
	return &LiteralExpr{ExprBase: ExprBase{At(loc)}, Kind: LitInt, Int: v}
}

func NewBvLit(loc Location, v *big.Int, width int) *LiteralExpr {
	return &LiteralExpr{ExprBase: ExprBase{At(loc)}, Kind: LitBv, Int: v, Width: width}
}

func (l *LiteralExpr) String() string {
	switch l.Kind {
	case LitBool:
		if l.Bool {
			return "true"
		}
		return "false"
	case LitBv:
		return fmt.Sprintf("%sbv%d", l.Int.String(), l.Width)
	}
	return l.Int.String()
}
func (l *LiteralExpr) PrettyPrint(cp CodePrinter) { cp.Print(l.String()) }

// IdentifierExpr is a reference to a variable, constant or function name.
type IdentifierExpr struct {
	ExprBase
	Name string
}

func NewIdentifierExpr(loc Location, name string) *IdentifierExpr {
	return &IdentifierExpr{ExprBase: ExprBase{At(loc)}, Name: name}
}

func (i *IdentifierExpr) String() string              { return QuoteIdent(i.Name) }
func (i *IdentifierExpr) PrettyPrint(cp CodePrinter) { cp.Print(i.String()) }

// OldExpr is `old(expr)`.
type OldExpr struct {
	ExprBase
	Expr Expr
}

func (o *OldExpr) String() string              { return "old(" + o.Expr.String() + ")" }
func (o *OldExpr) PrettyPrint(cp CodePrinter) { cp.Print(o.String()) }

// FunctionCall is `f(args)`.
type FunctionCall struct {
	ExprBase
	Callee *IdentifierExpr
	Args   []Expr
}

func (f *FunctionCall) String() string {
	return f.Callee.String() + "(" + exprsString(f.Args) + ")"
}
func (f *FunctionCall) PrettyPrint(cp CodePrinter) { cp.Print(f.String()) }

type UnaryOp int

const (
	OpNot UnaryOp = iota
)

// UnaryExpr is `!e`. Unary minus is desugared to `0 - e`.
type UnaryExpr struct {
	ExprBase
	Op      UnaryOp
	Operand Expr
}

func (u *UnaryExpr) String() string              { return "!" + parenthesized(u.Operand) }
func (u *UnaryExpr) PrettyPrint(cp CodePrinter) { cp.Print(u.String()) }

type BinaryOp int

const (
	OpIff BinaryOp = iota
	OpImp
	OpAnd
	OpOr
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLe
	OpGe
	OpSubtype
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

var binaryOpStrings = map[BinaryOp]string{
	OpIff: "<==>", OpImp: "==>", OpAnd: "&&", OpOr: "||",
	OpEq: "==", OpNeq: "!=", OpLt: "<", OpGt: ">", OpLe: "<=", OpGe: ">=", OpSubtype: "<:",
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
}

func (op BinaryOp) String() string { return binaryOpStrings[op] }

// BinaryExpr represents `left operator right`
type BinaryExpr struct {
	ExprBase
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func NewBinaryExpr(loc Location, op BinaryOp, left, right Expr) *BinaryExpr {
	return &BinaryExpr{ExprBase: ExprBase{At(loc)}, Op: op, Left: left, Right: right}
}

func (b *BinaryExpr) String() string {
	return parenthesized(b.Left) + " " + b.Op.String() + " " + parenthesized(b.Right)
}
func (b *BinaryExpr) PrettyPrint(cp CodePrinter) { cp.Print(b.String()) }

// BvConcatExpr is `a ++ b`.
type BvConcatExpr struct {
	ExprBase
	Left  Expr
	Right Expr
}

func (b *BvConcatExpr) String() string {
	return parenthesized(b.Left) + " ++ " + parenthesized(b.Right)
}
func (b *BvConcatExpr) PrettyPrint(cp CodePrinter) { cp.Print(b.String()) }

// BvExtractExpr is `bv[upper:lower]`.
type BvExtractExpr struct {
	ExprBase
	Bitvector Expr
	Upper     int
	Lower     int
}

func (b *BvExtractExpr) String() string {
	return fmt.Sprintf("%s[%d:%d]", parenthesized(b.Bitvector), b.Upper, b.Lower)
}
func (b *BvExtractExpr) PrettyPrint(cp CodePrinter) { cp.Print(b.String()) }

// MapSelectExpr is `m[i, j]`.
type MapSelectExpr struct {
	ExprBase
	Map     Expr
	Indexes []Expr
}

func (m *MapSelectExpr) String() string {
	return parenthesized(m.Map) + "[" + exprsString(m.Indexes) + "]"
}
func (m *MapSelectExpr) PrettyPrint(cp CodePrinter) { cp.Print(m.String()) }

// MapStoreExpr is `m[i, j := v]`.
type MapStoreExpr struct {
	ExprBase
	Map     Expr
	Indexes []Expr
	Value   Expr
}

func (m *MapStoreExpr) String() string {
	idx := exprsString(m.Indexes)
	if idx != "" {
		idx += " "
	}
	return parenthesized(m.Map) + "[" + idx + ":= " + m.Value.String() + "]"
}
func (m *MapStoreExpr) PrettyPrint(cp CodePrinter) { cp.Print(m.String()) }

// IfThenElseExpr is the expression level `if c then a else b`.
type IfThenElseExpr struct {
	ExprBase
	Cond Expr
	Then Expr
	Else Expr
}

func (i *IfThenElseExpr) String() string {
	return fmt.Sprintf("(if %s then %s else %s)", i.Cond, i.Then, i.Else)
}
func (i *IfThenElseExpr) PrettyPrint(cp CodePrinter) { cp.Print(i.String()) }

// CoerceExpr is an explicit type annotation `e : T`.
type CoerceExpr struct {
	ExprBase
	Expr Expr
	Type Type
}

func (c *CoerceExpr) String() string              { return parenthesized(c.Expr) + ": " + c.Type.String() }
func (c *CoerceExpr) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

type QuantifierKind int

const (
	Forall QuantifierKind = iota
	Exists
	Lambda
)

func (q QuantifierKind) String() string {
	switch q {
	case Exists:
		return "exists"
	case Lambda:
		return "lambda"
	}
	return "forall"
}

// QuantifierExpr is a forall, exists or lambda binder.
type QuantifierExpr struct {
	ExprBase
	Kind       QuantifierKind
	TypeParams []*TypeVariable
	Dummies    []*TypedIdent
	Attributes Attributes
	Triggers   []*Trigger
	Body       Expr
}

func (q *QuantifierExpr) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(q.Kind.String())
	sb.WriteString(" ")
	sb.WriteString(typeParamsString(q.TypeParams))
	if len(q.TypeParams) > 0 && len(q.Dummies) > 0 {
		sb.WriteString(" ")
	}
	sb.WriteString(typedIdentsString(q.Dummies))
	sb.WriteString(" :: ")
	sb.WriteString(q.Attributes.prefix())
	for _, t := range q.Triggers {
		sb.WriteString(t.String())
		sb.WriteString(" ")
	}
	sb.WriteString(q.Body.String())
	sb.WriteString(")")
	return sb.String()
}
func (q *QuantifierExpr) PrettyPrint(cp CodePrinter) { cp.Print(q.String()) }

// BlockExpr is a `{{ ... }}` specification body.
type BlockExpr struct {
	ExprBase
	Locals []*LocalVar
	Blocks []*Block
}

func (b *BlockExpr) String() string {
	var sb strings.Builder
	sb.WriteString("{{ ")
	for _, l := range b.Locals {
		sb.WriteString(l.String())
		sb.WriteString(" ")
	}
	for _, blk := range b.Blocks {
		sb.WriteString(blk.String())
		sb.WriteString(" ")
	}
	sb.WriteString("}}")
	return sb.String()
}
func (b *BlockExpr) PrettyPrint(cp CodePrinter) { cp.Print(b.String()) }

func exprsString(es []Expr) string {
	return strings.Join(gfn.Map(es, func(e Expr) string {
		if e == nil {
			return "*"
		}
		return e.String()
	}), ", ")
}

// parenthesized wraps compound expressions so printed output reparses to the same tree.
func parenthesized(e Expr) string {
	switch e.(type) {
	case *BinaryExpr, *BvConcatExpr, *CoerceExpr, *UnaryExpr:
		return "(" + e.String() + ")"
	}
	return e.String()
}
