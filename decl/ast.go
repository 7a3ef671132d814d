package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// --- Interfaces ---

// Node represents any node in the Abstract Syntax Tree.
type Node interface {
	Pos() Location // Starting position (for error reporting)
	String() string
	PrettyPrint(cp CodePrinter)
}

// Location is a 1-based line/column position in the source text.
type Location struct {
	Line int
	Col  int
}

// NoLocation marks synthesized nodes that have no source text.
var NoLocation = Location{}

func (l Location) String() string { return fmt.Sprintf("%d:%d", l.Line, l.Col) }

// --- Base Struct ---

// NodeInfo embeddable struct for position tracking.
type NodeInfo struct{ StartPos Location }

func (n *NodeInfo) Pos() Location { return n.StartPos }

// At builds a NodeInfo for the given position.
func At(loc Location) NodeInfo { return NodeInfo{StartPos: loc} }

// Declaration is any top level construct of a program.
type Declaration interface {
	Node
	declNode()
	// DeclName returns the declared name, or "" for anonymous declarations (axioms).
	DeclName() string
}

// --- Top Level declarations ---

// Program is the ordered list of top level declarations produced by one parse.
type Program struct {
	TopLevelDeclarations []Declaration
}

func NewProgram() *Program { return &Program{} }

// Pos is NoLocation: a program may merge several files.
func (p *Program) Pos() Location { return NoLocation }

func (p *Program) Add(d ...Declaration) {
	p.TopLevelDeclarations = append(p.TopLevelDeclarations, d...)
}

// Merge appends all of other's declarations, in order.
func (p *Program) Merge(other *Program) {
	if other != nil {
		p.Add(other.TopLevelDeclarations...)
	}
}

func (p *Program) String() string {
	return strings.Join(gfn.Map(p.TopLevelDeclarations, func(d Declaration) string { return d.String() }), "\n")
}

func (p *Program) PrettyPrint(cp CodePrinter) {
	for _, d := range p.TopLevelDeclarations {
		d.PrettyPrint(cp)
		cp.Println("")
	}
}

// TypedIdent is a (possibly unnamed) name with a type and an optional where clause.
type TypedIdent struct {
	NodeInfo
	Name  string
	Type  Type
	Where Expr
}

func NewTypedIdent(loc Location, name string, ty Type, where Expr) *TypedIdent {
	return &TypedIdent{NodeInfo: At(loc), Name: name, Type: ty, Where: where}
}

func (t *TypedIdent) HasName() bool { return t.Name != "" }

// WithoutWhere returns a copy of t without its where clause.
func (t *TypedIdent) WithoutWhere() *TypedIdent {
	return &TypedIdent{NodeInfo: t.NodeInfo, Name: t.Name, Type: t.Type}
}

func (t *TypedIdent) String() string {
	var sb strings.Builder
	if t.HasName() {
		sb.WriteString(QuoteIdent(t.Name))
		sb.WriteString(": ")
	}
	sb.WriteString(typeString(t.Type))
	if t.Where != nil {
		sb.WriteString(" where ")
		sb.WriteString(t.Where.String())
	}
	return sb.String()
}

func (t *TypedIdent) PrettyPrint(cp CodePrinter) { cp.Print(t.String()) }

func typedIdentsString(tis []*TypedIdent) string {
	return strings.Join(gfn.Map(tis, func(t *TypedIdent) string { return t.String() }), ", ")
}

// ConstantParent is one entry of a constant's `extends` clause.
type ConstantParent struct {
	Parent *IdentifierExpr
	Unique bool
}

// ConstDecl represents one constant of a `const` declaration.
type ConstDecl struct {
	NodeInfo
	Ident  *TypedIdent
	Unique bool
	// Parents is nil when no extends clause was given.
	Parents          []*ConstantParent
	ChildrenComplete bool
	Attributes       Attributes
}

func (d *ConstDecl) declNode()        {}
func (d *ConstDecl) DeclName() string { return d.Ident.Name }
func (d *ConstDecl) String() string {
	var sb strings.Builder
	sb.WriteString("const ")
	sb.WriteString(d.Attributes.prefix())
	if d.Unique {
		sb.WriteString("unique ")
	}
	sb.WriteString(d.Ident.String())
	if d.Parents != nil {
		sb.WriteString(" extends")
		for i, p := range d.Parents {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(" ")
			if p.Unique {
				sb.WriteString("unique ")
			}
			sb.WriteString(QuoteIdent(p.Parent.Name))
		}
		if d.ChildrenComplete {
			sb.WriteString(" complete")
		}
	}
	sb.WriteString(";")
	return sb.String()
}
func (d *ConstDecl) PrettyPrint(cp CodePrinter) { cp.Print(d.String()) }

// FunctionDecl represents `function f<T>(formals) returns (result);`
type FunctionDecl struct {
	NodeInfo
	Name       string
	TypeParams []*TypeVariable
	InParams   []*TypedIdent
	Result     *TypedIdent
	// Body is only set for functions marked {:inline}; otherwise a definition
	// axiom follows the function in the program.
	Body       Expr
	Attributes Attributes
}

func (d *FunctionDecl) declNode()        {}
func (d *FunctionDecl) DeclName() string { return d.Name }
func (d *FunctionDecl) String() string {
	out := fmt.Sprintf("function %s%s%s(%s) returns (%s)", d.Attributes.prefix(), QuoteIdent(d.Name),
		typeParamsString(d.TypeParams), typedIdentsString(d.InParams), d.Result.String())
	if d.Body != nil {
		return out + " { " + d.Body.String() + " }"
	}
	return out + ";"
}
func (d *FunctionDecl) PrettyPrint(cp CodePrinter) { cp.Print(d.String()) }

// AxiomDecl represents `axiom expr;`
type AxiomDecl struct {
	NodeInfo
	Expr       Expr
	Comment    string
	Attributes Attributes
}

func (d *AxiomDecl) declNode()        {}
func (d *AxiomDecl) DeclName() string { return "" }
func (d *AxiomDecl) String() string {
	return fmt.Sprintf("axiom %s%s;", d.Attributes.prefix(), d.Expr.String())
}
func (d *AxiomDecl) PrettyPrint(cp CodePrinter) {
	if d.Comment != "" {
		cp.Println("// " + d.Comment)
	}
	cp.Print(d.String())
}

// TypeCtorDecl represents an abstract type constructor `type C a b;`
type TypeCtorDecl struct {
	NodeInfo
	Name       string
	Arity      int
	Attributes Attributes
}

func (d *TypeCtorDecl) declNode()        {}
func (d *TypeCtorDecl) DeclName() string { return d.Name }
func (d *TypeCtorDecl) String() string {
	params := ""
	for i := 0; i < d.Arity; i++ {
		params += fmt.Sprintf(" _%d", i)
	}
	return fmt.Sprintf("type %s%s%s;", d.Attributes.prefix(), QuoteIdent(d.Name), params)
}
func (d *TypeCtorDecl) PrettyPrint(cp CodePrinter) { cp.Print(d.String()) }

// TypeSynonymDecl represents `type S a = body;`
type TypeSynonymDecl struct {
	NodeInfo
	Name       string
	TypeParams []*TypeVariable
	Body       Type
	Attributes Attributes
}

func (d *TypeSynonymDecl) declNode()        {}
func (d *TypeSynonymDecl) DeclName() string { return d.Name }
func (d *TypeSynonymDecl) String() string {
	params := ""
	for _, tp := range d.TypeParams {
		params += " " + QuoteIdent(tp.Name)
	}
	return fmt.Sprintf("type %s%s%s = %s;", d.Attributes.prefix(), QuoteIdent(d.Name), params, typeString(d.Body))
}
func (d *TypeSynonymDecl) PrettyPrint(cp CodePrinter) { cp.Print(d.String()) }

// GlobalVarDecl represents one variable of a top level `var` declaration.
type GlobalVarDecl struct {
	NodeInfo
	Ident      *TypedIdent
	Attributes Attributes
}

func (d *GlobalVarDecl) declNode()        {}
func (d *GlobalVarDecl) DeclName() string { return d.Ident.Name }
func (d *GlobalVarDecl) String() string {
	return fmt.Sprintf("var %s%s;", d.Attributes.prefix(), d.Ident.String())
}
func (d *GlobalVarDecl) PrettyPrint(cp CodePrinter) { cp.Print(d.String()) }

// LocalVar is an implementation local (`var`) or hole (`hole`), or a local of a spec body.
type LocalVar struct {
	NodeInfo
	Ident      *TypedIdent
	Hole       bool
	Attributes Attributes
}

func (l *LocalVar) String() string {
	kw := "var"
	if l.Hole {
		kw = "hole"
	}
	return fmt.Sprintf("%s %s%s;", kw, l.Attributes.prefix(), l.Ident.String())
}
func (l *LocalVar) PrettyPrint(cp CodePrinter) { cp.Print(l.String()) }

// Requires is a (possibly free) precondition.
type Requires struct {
	NodeInfo
	Free       bool
	Condition  Expr
	Attributes Attributes
}

func (r *Requires) String() string { return specString("requires", r.Free, r.Attributes, r.Condition) }

// Ensures is a (possibly free) postcondition.
type Ensures struct {
	NodeInfo
	Free       bool
	Condition  Expr
	Attributes Attributes
}

func (e *Ensures) String() string { return specString("ensures", e.Free, e.Attributes, e.Condition) }

func specString(kw string, free bool, attrs Attributes, cond Expr) string {
	if free {
		kw = "free " + kw
	}
	return fmt.Sprintf("%s %s%s;", kw, attrs.prefix(), cond.String())
}

// ProcedureDecl represents a procedure signature plus its specification.
type ProcedureDecl struct {
	NodeInfo
	Name       string
	TypeParams []*TypeVariable
	InParams   []*TypedIdent
	OutParams  []*TypedIdent
	Requires   []*Requires
	Modifies   []*IdentifierExpr
	Ensures    []*Ensures
	Attributes Attributes
}

func (d *ProcedureDecl) declNode()        {}
func (d *ProcedureDecl) DeclName() string { return d.Name }
func (d *ProcedureDecl) String() string {
	return "procedure " + d.Attributes.prefix() + signatureString(d.Name, d.TypeParams, d.InParams, d.OutParams) + ";"
}
func (d *ProcedureDecl) PrettyPrint(cp CodePrinter) {
	cp.Println(d.String())
	WithIndent(1, cp, func(cp CodePrinter) {
		for _, r := range d.Requires {
			cp.Println(r.String())
		}
		if len(d.Modifies) > 0 {
			cp.Println("modifies " + strings.Join(gfn.Map(d.Modifies, func(m *IdentifierExpr) string { return m.String() }), ", ") + ";")
		}
		for _, e := range d.Ensures {
			cp.Println(e.String())
		}
	})
}

// ImplementationDecl represents a procedure body.
type ImplementationDecl struct {
	NodeInfo
	Name       string
	TypeParams []*TypeVariable
	InParams   []*TypedIdent
	OutParams  []*TypedIdent
	Locals     []*LocalVar
	Body       *StmtList
	Attributes Attributes
}

func (d *ImplementationDecl) declNode()        {}
func (d *ImplementationDecl) DeclName() string { return d.Name }
func (d *ImplementationDecl) String() string {
	return "implementation " + d.Attributes.prefix() + signatureString(d.Name, d.TypeParams, d.InParams, d.OutParams)
}
func (d *ImplementationDecl) PrettyPrint(cp CodePrinter) {
	cp.Println(d.String())
	cp.Println("{")
	WithIndent(1, cp, func(cp CodePrinter) {
		for _, l := range d.Locals {
			cp.Println(l.String())
		}
		if d.Body != nil {
			d.Body.printBlocks(cp)
		}
	})
	cp.Print("}")
}

func signatureString(name string, typeParams []*TypeVariable, ins, outs []*TypedIdent) string {
	out := fmt.Sprintf("%s%s(%s)", QuoteIdent(name), typeParamsString(typeParams), typedIdentsString(ins))
	if len(outs) > 0 {
		out += fmt.Sprintf(" returns (%s)", typedIdentsString(outs))
	}
	return out
}

func typeParamsString(tps []*TypeVariable) string {
	if len(tps) == 0 {
		return ""
	}
	return "<" + strings.Join(gfn.Map(tps, func(t *TypeVariable) string { return t.String() }), ", ") + ">"
}
