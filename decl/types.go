package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// Type is a syntactic type. Named types are unresolved at parse time.
type Type interface {
	Node
	typeNode()
}

type SimpleType int

const (
	SimpleInt SimpleType = iota
	SimpleBool
)

// BasicType is `int` or `bool`.
type BasicType struct {
	NodeInfo
	Kind SimpleType
}

func NewBasicType(loc Location, kind SimpleType) *BasicType {
	return &BasicType{NodeInfo: At(loc), Kind: kind}
}

func (t *BasicType) typeNode() {}
func (t *BasicType) String() string {
	if t.Kind == SimpleBool {
		return "bool"
	}
	return "int"
}
func (t *BasicType) PrettyPrint(cp CodePrinter) { cp.Print(t.String()) }

// NamedType is an identifier applied to zero or more type arguments, eg `Seq int`.
type NamedType struct {
	NodeInfo
	Name string
	Args []Type
}

func (t *NamedType) typeNode() {}

// IsBareName reports whether t is a plain identifier with no arguments.
func (t *NamedType) IsBareName() bool { return len(t.Args) == 0 }

func (t *NamedType) String() string {
	if len(t.Args) == 0 {
		return QuoteIdent(t.Name)
	}
	args := gfn.Map(t.Args, func(a Type) string {
		s := a.String()
		if nt, ok := a.(*NamedType); ok && len(nt.Args) > 0 {
			return "(" + s + ")"
		}
		if _, ok := a.(*MapType); ok {
			return "(" + s + ")"
		}
		return s
	})
	return QuoteIdent(t.Name) + " " + strings.Join(args, " ")
}
func (t *NamedType) PrettyPrint(cp CodePrinter) { cp.Print(t.String()) }

// MapType is `<a>[dom1, dom2]range`.
type MapType struct {
	NodeInfo
	TypeParams []*TypeVariable
	Args       []Type
	Result     Type
}

func (t *MapType) typeNode() {}
func (t *MapType) String() string {
	return fmt.Sprintf("%s[%s]%s", typeParamsString(t.TypeParams),
		strings.Join(gfn.Map(t.Args, func(a Type) string { return a.String() }), ", "), typeString(t.Result))
}
func (t *MapType) PrettyPrint(cp CodePrinter) { cp.Print(t.String()) }

// TypeVariable is a type parameter bound by a function, procedure, map type or quantifier.
type TypeVariable struct {
	NodeInfo
	Name string
}

func (t *TypeVariable) typeNode()                 {}
func (t *TypeVariable) String() string             { return QuoteIdent(t.Name) }
func (t *TypeVariable) PrettyPrint(cp CodePrinter) { cp.Print(t.String()) }

// CloneType returns a deep copy of t.
func CloneType(t Type) Type {
	switch tt := t.(type) {
	case *BasicType:
		c := *tt
		return &c
	case *NamedType:
		return &NamedType{NodeInfo: tt.NodeInfo, Name: tt.Name, Args: gfn.Map(tt.Args, CloneType)}
	case *MapType:
		return &MapType{
			NodeInfo:   tt.NodeInfo,
			TypeParams: gfn.Map(tt.TypeParams, func(v *TypeVariable) *TypeVariable { c := *v; return &c }),
			Args:       gfn.Map(tt.Args, CloneType),
			Result:     CloneType(tt.Result),
		}
	case *TypeVariable:
		c := *tt
		return &c
	}
	return t
}

func typeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
