package decl

import (
	"strconv"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// AttrParam is one parameter of an attribute: either a string literal or an expression.
type AttrParam struct {
	Str  string
	Expr Expr
}

func (a AttrParam) IsString() bool { return a.Expr == nil }

func (a AttrParam) String() string {
	if a.IsString() {
		return strconv.Quote(a.Str)
	}
	return a.Expr.String()
}

// Attribute is a `{:key p1, p2}` annotation.
type Attribute struct {
	NodeInfo
	Key    string
	Params []AttrParam
}

func (a *Attribute) String() string {
	if len(a.Params) == 0 {
		return "{:" + a.Key + "}"
	}
	return "{:" + a.Key + " " + strings.Join(gfn.Map(a.Params, func(p AttrParam) string { return p.String() }), ", ") + "}"
}

// Attributes keeps attributes in source order; a key may occur more than once.
type Attributes []*Attribute

// Find returns the first attribute with the given key.
func (as Attributes) Find(key string) *Attribute {
	for _, a := range as {
		if a.Key == key {
			return a
		}
	}
	return nil
}

// FindBool reports whether key is present as `{:key}` or `{:key true}`.
func (as Attributes) FindBool(key string) bool {
	a := as.Find(key)
	if a == nil {
		return false
	}
	if len(a.Params) == 0 {
		return true
	}
	if lit, ok := a.Params[0].Expr.(*LiteralExpr); ok && lit.Kind == LitBool {
		return lit.Bool
	}
	return false
}

func (as Attributes) prefix() string {
	if len(as) == 0 {
		return ""
	}
	return strings.Join(gfn.Map(as, func(a *Attribute) string { return a.String() }), " ") + " "
}

// Trigger is a quantifier pattern `{ e1, e2 }`, or a negative `{:nopats e}` pattern.
type Trigger struct {
	NodeInfo
	Positive bool
	Exprs    []Expr
}

func (t *Trigger) String() string {
	body := strings.Join(gfn.Map(t.Exprs, func(e Expr) string { return e.String() }), ", ")
	if !t.Positive {
		return "{:nopats " + body + "}"
	}
	return "{ " + body + " }"
}
