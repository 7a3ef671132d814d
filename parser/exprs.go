package parser

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/panyam/bpl/decl"
)

// bvBounds is the `hi : lo` pair of a bitvector extract. It only exists
// between the coercion tier that builds it and the index that consumes it.
type bvBounds struct {
	loc   decl.Location
	upper int
	lower int
}

// operand is what the precedence tiers pass upwards. Exactly one of expr and
// bounds is set; bounds survive only while no operator has been applied.
type operand struct {
	expr   decl.Expr
	bounds *bvBounds
}

func exprOperand(e decl.Expr) operand { return operand{expr: e} }

// asExpr unwraps an operand where a real expression is required.
func (p *Parser) asExpr(o operand) decl.Expr {
	if o.bounds != nil {
		p.semErr(o.bounds.loc, "bitvector bounds in illegal position")
		return dummyExpr(o.bounds.loc)
	}
	return o.expr
}

// dropBounds unwraps an operand whose bounds have already been reported.
func dropBounds(o operand) decl.Expr {
	if o.bounds != nil {
		return dummyExpr(o.bounds.loc)
	}
	return o.expr
}

// ParseExpression parses a full expression.
// Expression = ImpliesExpression { EquivOp ImpliesExpression } .
func (p *Parser) ParseExpression() decl.Expr {
	return p.asExpr(p.parseExpression())
}

func (p *Parser) parseExpression() operand {
	left := p.parseImplies(false)
	for p.startOf(equivOps) {
		p.Get()
		loc := p.loc(p.t)
		right := p.parseImplies(false)
		left = exprOperand(decl.NewBinaryExpr(loc, decl.OpIff, p.asExpr(left), p.asExpr(right)))
	}
	return left
}

// parseImplies parses `==>` to the right and `<==` to the left. Once inside
// the right operand of `==>`, a `<==` needs parentheses.
// ImpliesExpression = LogicalExpression [ ImpliesOp ImpliesExpression | ExpliesOp LogicalExpression { ExpliesOp LogicalExpression } ] .
func (p *Parser) parseImplies(noExplies bool) operand {
	loc := p.loc(p.la)
	if !p.enter() {
		p.leave()
		return exprOperand(dummyExpr(loc))
	}
	defer p.leave()

	left := p.parseLogical()
	switch {
	case p.startOf(impliesOps):
		p.Get()
		opLoc := p.loc(p.t)
		right := p.parseImplies(true)
		return exprOperand(decl.NewBinaryExpr(opLoc, decl.OpImp, p.asExpr(left), p.asExpr(right)))
	case p.startOf(expliesOps):
		p.Get()
		if noExplies {
			p.SemErr("illegal mixture of ==> and <==, use parentheses to disambiguate")
		}
		e0 := p.asExpr(left)
		for {
			opLoc := p.loc(p.t)
			e1 := p.asExpr(p.parseLogical())
			e0 = decl.NewBinaryExpr(opLoc, decl.OpImp, e1, e0)
			if !p.startOf(expliesOps) {
				break
			}
			p.Get()
		}
		return exprOperand(e0)
	}
	return left
}

// parseLogical parses a chain of either `&&` or `||`. The two cannot be mixed
// without parentheses.
// LogicalExpression = RelationalExpression [ AndOp RelationalExpression { AndOp RelationalExpression } | OrOp RelationalExpression { OrOp RelationalExpression } ] .
func (p *Parser) parseLogical() operand {
	left := p.parseRelational()
	var ops tokenSet
	var op decl.BinaryOp
	switch {
	case p.startOf(andOps):
		ops, op = andOps, decl.OpAnd
	case p.startOf(orOps):
		ops, op = orOps, decl.OpOr
	default:
		return left
	}
	e0 := p.asExpr(left)
	for p.startOf(ops) {
		p.Get()
		loc := p.loc(p.t)
		e1 := p.asExpr(p.parseRelational())
		e0 = decl.NewBinaryExpr(loc, op, e0, e1)
	}
	return exprOperand(e0)
}

var relOpCodes = map[int]decl.BinaryOp{
	EQ: decl.OpEq, LT: decl.OpLt, GT: decl.OpGt,
	LTE: decl.OpLe, LTE_U: decl.OpLe, GTE: decl.OpGe, GTE_U: decl.OpGe,
	NEQ: decl.OpNeq, NEQ_U: decl.OpNeq, SUBTYPE: decl.OpSubtype,
}

// RelationalExpression = BvTerm [ RelOp BvTerm ] .
func (p *Parser) parseRelational() operand {
	left := p.parseBvTerm()
	if !p.startOf(relOps) {
		return left
	}
	op := relOpCodes[p.la.Kind]
	p.Get()
	loc := p.loc(p.t)
	right := p.parseBvTerm()
	return exprOperand(decl.NewBinaryExpr(loc, op, p.asExpr(left), p.asExpr(right)))
}

// BvTerm = Term { "++" Term } .
func (p *Parser) parseBvTerm() operand {
	left := p.parseTerm()
	for p.la.Kind == CONCAT {
		p.Get()
		loc := p.loc(p.t)
		e0 := p.asExpr(left)
		e1 := p.asExpr(p.parseTerm())
		left = exprOperand(&decl.BvConcatExpr{ExprBase: decl.ExprAt(loc), Left: e0, Right: e1})
	}
	return left
}

// Term = Factor { AddOp Factor } .
func (p *Parser) parseTerm() operand {
	left := p.parseFactor()
	for p.startOf(addOps) {
		op := decl.OpAdd
		if p.la.Kind == MINUS {
			op = decl.OpSub
		}
		p.Get()
		loc := p.loc(p.t)
		e0 := p.asExpr(left)
		left = exprOperand(decl.NewBinaryExpr(loc, op, e0, p.asExpr(p.parseFactor())))
	}
	return left
}

var mulOpCodes = map[int]decl.BinaryOp{STAR: decl.OpMul, DIV: decl.OpDiv, MOD: decl.OpMod}

// Factor = UnaryExpression { MulOp UnaryExpression } .
func (p *Parser) parseFactor() operand {
	left := p.parseUnary()
	for p.startOf(mulOps) {
		op := mulOpCodes[p.la.Kind]
		p.Get()
		loc := p.loc(p.t)
		e0 := p.asExpr(left)
		left = exprOperand(decl.NewBinaryExpr(loc, op, e0, p.asExpr(p.parseUnary())))
	}
	return left
}

// parseUnary desugars `-e` to `0 - e`.
// UnaryExpression = "-" UnaryExpression | NegOp UnaryExpression | CoercionExpression .
func (p *Parser) parseUnary() operand {
	loc := p.loc(p.la)
	switch {
	case p.la.Kind == MINUS, p.startOf(negOps):
		if !p.enter() {
			p.leave()
			return exprOperand(dummyExpr(loc))
		}
		defer p.leave()
		minus := p.la.Kind == MINUS
		p.Get()
		e := p.asExpr(p.parseUnary())
		if minus {
			return exprOperand(decl.NewBinaryExpr(loc, decl.OpSub, decl.NewIntLit(loc, new(big.Int)), e))
		}
		return exprOperand(&decl.UnaryExpr{ExprBase: decl.ExprAt(loc), Op: decl.OpNot, Operand: e})
	case p.startOf(atomStart):
		return p.parseCoercion()
	}
	p.SynErr(errUnaryExpression)
	return exprOperand(dummyExpr(loc))
}

// parseCoercion handles `e : T` and the `hi : lo` extract bounds, which need
// an integer literal on the left.
// CoercionExpression = ArrayExpression { ":" ( Type | Nat ) } .
func (p *Parser) parseCoercion() operand {
	o := p.parseArray()
	for p.la.Kind == COLON {
		p.Get()
		loc := p.loc(p.t)
		switch {
		case p.startOf(typeStart):
			e := p.asExpr(o)
			o = exprOperand(&decl.CoerceExpr{ExprBase: decl.ExprAt(loc), Expr: e, Type: p.ParseType()})
		case p.la.Kind == DIGITS:
			lower := p.natInt(p.parseNat())
			lit, ok := o.expr.(*decl.LiteralExpr)
			if o.bounds != nil || !ok || lit.Kind != decl.LitInt {
				p.SemErr("arguments of extract need to be integer literals")
				o = operand{bounds: &bvBounds{loc: loc, lower: lower}}
			} else {
				o = operand{bounds: &bvBounds{loc: loc, upper: p.natInt(lit.Int), lower: lower}}
			}
		default:
			p.SynErr(errCoercionExpression)
		}
	}
	return o
}

// parseArray handles select, store and extract suffixes, which may be chained.
// ArrayExpression = AtomExpression { "[" [ Expressions [ ":=" Expression ] | ":=" Expression ] "]" } .
func (p *Parser) parseArray() operand {
	o := p.parseAtom()
	for p.la.Kind == LBRACKET {
		p.Get()
		loc := p.loc(p.t)
		base := p.asExpr(o)

		var indexes []decl.Expr
		var bounds *bvBounds
		var value decl.Expr
		if p.startOf(exprStart) {
			first := p.parseExpression()
			if first.bounds != nil {
				bounds = first.bounds
			} else {
				indexes = append(indexes, first.expr)
			}
			for p.la.Kind == COMMA {
				p.Get()
				e := p.parseExpression()
				if bounds != nil || e.bounds != nil {
					p.SemErr("bitvectors only have one dimension")
				}
				indexes = append(indexes, dropBounds(e))
			}
			if p.la.Kind == COLON_ASSIGN {
				p.Get()
				e := p.parseExpression()
				if bounds != nil || e.bounds != nil {
					p.SemErr("assignment to bitvectors is not possible")
				}
				value = dropBounds(e)
			}
		} else if p.la.Kind == COLON_ASSIGN {
			p.Get()
			value = p.ParseExpression()
		}
		p.Expect(RBRACKET)

		switch {
		case value != nil:
			o = exprOperand(&decl.MapStoreExpr{ExprBase: decl.ExprAt(loc), Map: base, Indexes: indexes, Value: value})
		case bounds != nil:
			o = exprOperand(&decl.BvExtractExpr{ExprBase: decl.ExprAt(loc), Bitvector: base, Upper: bounds.upper, Lower: bounds.lower})
		default:
			o = exprOperand(&decl.MapSelectExpr{ExprBase: decl.ExprAt(loc), Map: base, Indexes: indexes})
		}
	}
	return o
}

// Nat = digits .
func (p *Parser) parseNat() *big.Int {
	p.Expect(DIGITS)
	n := new(big.Int)
	if p.t.Kind != DIGITS {
		return n
	}
	if _, ok := n.SetString(p.t.Val, 10); !ok {
		p.SemErr("incorrectly formatted number")
		return new(big.Int)
	}
	return n
}

// natInt narrows an extract bound to an int.
func (p *Parser) natInt(n *big.Int) int {
	if !n.IsInt64() || n.Int64() > math.MaxInt32 {
		p.SemErr("incorrectly formatted number")
		return 0
	}
	return int(n.Int64())
}

// BvLit = bvlit .
func (p *Parser) parseBvLit() decl.Expr {
	p.Expect(BVLIT)
	loc := p.loc(p.t)
	digits, width, found := strings.Cut(p.t.Val, "bv")
	n, ok := new(big.Int).SetString(digits, 10)
	m, err := strconv.Atoi(width)
	if !found || !ok || err != nil {
		p.SemErr("incorrectly formatted bitvector")
		return decl.NewBvLit(loc, new(big.Int), 0)
	}
	return decl.NewBvLit(loc, n, m)
}

// AtomExpression = "false" | "true" | Nat | BvLit | Ident [ "(" [ Expressions ] ")" ]
//
//	| "old" "(" Expression ")" | "(" Expression ")" | Quantifier | IfThenElseExpression .
func (p *Parser) parseAtom() operand {
	loc := p.loc(p.la)
	switch p.la.Kind {
	case FALSE, TRUE:
		v := p.la.Kind == TRUE
		p.Get()
		return exprOperand(decl.NewBoolLit(loc, v))
	case DIGITS:
		return exprOperand(decl.NewIntLit(loc, p.parseNat()))
	case BVLIT:
		return exprOperand(p.parseBvLit())
	case IDENT:
		id := p.parseIdentToken()
		ident := decl.NewIdentifierExpr(loc, id.Val)
		if p.la.Kind != LPAREN {
			return exprOperand(ident)
		}
		p.Get()
		call := &decl.FunctionCall{ExprBase: decl.ExprAt(loc), Callee: ident}
		switch {
		case p.startOf(exprStart):
			call.Args = p.parseExpressions()
		case p.la.Kind == RPAREN:
		default:
			p.SynErr(errCallArgs)
		}
		p.Expect(RPAREN)
		return exprOperand(call)
	case OLD:
		p.Get()
		p.Expect(LPAREN)
		e := p.ParseExpression()
		p.Expect(RPAREN)
		return exprOperand(&decl.OldExpr{ExprBase: decl.ExprAt(loc), Expr: e})
	case LPAREN:
		p.Get()
		var e decl.Expr = dummyExpr(loc)
		if p.startOf(exprStart) {
			o := p.parseExpression()
			if o.bounds != nil {
				p.SemErr("parentheses around bitvector bounds are not allowed")
			}
			e = dropBounds(o)
		} else {
			p.SynErr(errParenExpr)
		}
		p.Expect(RPAREN)
		return exprOperand(e)
	case IF:
		return exprOperand(p.parseIfThenElse())
	}
	if p.startOf(quantifierStart) {
		return exprOperand(p.parseQuantifier())
	}
	p.SynErr(errAtomExpression)
	return exprOperand(dummyExpr(loc))
}

// IfThenElseExpression = "if" Expression "then" Expression "else" Expression .
func (p *Parser) parseIfThenElse() decl.Expr {
	p.Expect(IF)
	ite := &decl.IfThenElseExpr{ExprBase: decl.ExprAt(p.loc(p.t))}
	ite.Cond = p.ParseExpression()
	p.Expect(THEN)
	ite.Then = p.ParseExpression()
	p.Expect(ELSE)
	ite.Else = p.ParseExpression()
	return ite
}

var quantifierKinds = map[int]decl.QuantifierKind{
	FORALL: decl.Forall, FORALL_U: decl.Forall,
	EXISTS: decl.Exists, EXISTS_U: decl.Exists,
	LAMBDA: decl.Lambda, LAMBDA_U: decl.Lambda,
}

// parseQuantifier returns the bare body when nothing is bound.
// Quantifier = ( Forall | Exists | Lambda ) [ TypeParams ] [ BoundVars ] QSep { AttributeOrTrigger } Expression .
func (p *Parser) parseQuantifier() decl.Expr {
	kind, ok := quantifierKinds[p.la.Kind]
	if !ok {
		p.SynErr(errForall)
		return dummyExpr(p.loc(p.la))
	}
	p.Get()
	q := &decl.QuantifierExpr{ExprBase: decl.ExprAt(p.loc(p.t)), Kind: kind}

	switch p.la.Kind {
	case LT:
		q.TypeParams = p.parseTypeParams()
		if p.la.Kind == IDENT {
			q.Dummies = p.parseIdsTypeWheres(false)
		}
	case IDENT:
		q.Dummies = p.parseIdsTypeWheres(false)
	case QSEP, QSEP_U:
	default:
		p.SynErr(errQuantifierBody)
	}

	if p.la.Kind == QSEP || p.la.Kind == QSEP_U {
		p.Get()
	} else {
		p.SynErr(errQSep)
	}
	for p.la.Kind == LBRACE {
		attr, trig := p.parseAttributeOrTrigger()
		if attr != nil {
			q.Attributes = append(q.Attributes, attr)
		}
		if trig != nil {
			q.Triggers = append(q.Triggers, trig)
		}
	}
	q.Body = p.ParseExpression()

	if kind == decl.Lambda && len(q.Triggers) > 0 {
		p.SemErr("triggers not allowed in lambda expressions")
		q.Triggers = nil
	}
	if len(q.TypeParams)+len(q.Dummies) == 0 {
		return q.Body
	}
	return q
}

// parseAttributeOrTrigger returns at most one of an attribute and a trigger.
// `{:nopats e}` is a negative trigger.
// AttributeOrTrigger = "{" ( ":" ident [ AttributeParameter { "," AttributeParameter } ] | Expressions ) "}" .
func (p *Parser) parseAttributeOrTrigger() (attr *decl.Attribute, trig *decl.Trigger) {
	p.Expect(LBRACE)
	loc := p.loc(p.t)
	switch {
	case p.la.Kind == COLON:
		p.Get()
		key := p.parseIdentToken().Val
		var params []decl.AttrParam
		if p.startOf(attrParamStart) {
			params = append(params, p.parseAttributeParameter())
			for p.la.Kind == COMMA {
				p.Get()
				params = append(params, p.parseAttributeParameter())
			}
		}
		if key == "nopats" {
			if len(params) == 1 && !params[0].IsString() {
				trig = &decl.Trigger{NodeInfo: decl.At(loc), Positive: false, Exprs: []decl.Expr{params[0].Expr}}
			} else {
				p.SemErr("the 'nopats' quantifier attribute expects a string-literal parameter")
			}
		} else {
			attr = &decl.Attribute{NodeInfo: decl.At(loc), Key: key, Params: params}
		}
	case p.startOf(exprStart):
		trig = &decl.Trigger{NodeInfo: decl.At(loc), Positive: true, Exprs: p.parseExpressions()}
	default:
		p.SynErr(errAttributeOrTrigger)
	}
	p.Expect(RBRACE)
	return
}

// AttributeParameter = string | Expression .
func (p *Parser) parseAttributeParameter() decl.AttrParam {
	if p.la.Kind == STRING {
		p.Get()
		return decl.AttrParam{Str: strings.TrimSuffix(strings.TrimPrefix(p.t.Val, `"`), `"`)}
	}
	if p.startOf(exprStart) {
		return decl.AttrParam{Expr: p.ParseExpression()}
	}
	p.SynErr(errAttributeParameter)
	return decl.AttrParam{Str: "error"}
}

// parseAttributes parses the attributes in front of a declaration or
// command, where triggers are not allowed.
// Attribute = AttributeOrTrigger .
func (p *Parser) parseAttributes() decl.Attributes {
	var attrs decl.Attributes
	for p.la.Kind == LBRACE {
		attr, trig := p.parseAttributeOrTrigger()
		if trig != nil {
			p.SemErr("only attributes, not triggers, allowed here")
		}
		if attr != nil {
			attrs = append(attrs, attr)
		}
	}
	return attrs
}

// Expressions = Expression { "," Expression } .
func (p *Parser) parseExpressions() []decl.Expr {
	out := []decl.Expr{p.ParseExpression()}
	for p.la.Kind == COMMA {
		p.Get()
		out = append(out, p.ParseExpression())
	}
	return out
}
