package parser

import (
	"fmt"
	"strings"

	"github.com/panyam/bpl/decl"
	gfn "github.com/panyam/goutils/fn"
)

// ParseConsts parses one const declaration into a ConstDecl per name.
// Consts = "const" { Attribute } [ "unique" ] IdsType [ OrderSpec ] ";" .
func (p *Parser) ParseConsts() []*decl.ConstDecl {
	p.Expect(CONST)
	attrs := p.parseAttributes()
	unique := false
	if p.la.Kind == UNIQUE {
		p.Get()
		unique = true
	}
	idents := p.parseIdsType()
	var parents []*decl.ConstantParent
	complete := false
	if p.la.Kind == EXTENDS {
		parents, complete = p.parseOrderSpec()
	}

	out := make([]*decl.ConstDecl, 0, len(idents))
	for i, id := range idents {
		// every constant gets its own parent list
		ps := parents
		if i > 0 && parents != nil {
			ps = cloneParents(parents)
		}
		out = append(out, &decl.ConstDecl{
			NodeInfo:         id.NodeInfo,
			Ident:            id,
			Unique:           unique,
			Parents:          ps,
			ChildrenComplete: complete,
			Attributes:       attrs,
		})
	}
	p.Expect(SEMICOLON)
	return out
}

func cloneParents(parents []*decl.ConstantParent) []*decl.ConstantParent {
	return gfn.Map(parents, func(cp *decl.ConstantParent) *decl.ConstantParent {
		return &decl.ConstantParent{
			Parent: decl.NewIdentifierExpr(cp.Parent.Pos(), cp.Parent.Name),
			Unique: cp.Unique,
		}
	})
}

// OrderSpec = "extends" [ [ "unique" ] Ident { "," [ "unique" ] Ident } ] [ "complete" ] .
func (p *Parser) parseOrderSpec() (parents []*decl.ConstantParent, complete bool) {
	p.Expect(EXTENDS)
	parents = []*decl.ConstantParent{}
	if p.la.Kind == IDENT || p.la.Kind == UNIQUE {
		for {
			unique := false
			if p.la.Kind == UNIQUE {
				p.Get()
				unique = true
			}
			id := p.parseIdentToken()
			parents = append(parents, &decl.ConstantParent{
				Parent: decl.NewIdentifierExpr(p.loc(id), id.Val),
				Unique: unique,
			})
			if p.la.Kind != COMMA {
				break
			}
			p.Get()
		}
	}
	if p.la.Kind == COMPLETE {
		p.Get()
		complete = true
	}
	return
}

// ParseFunction parses a function declaration. A function with a body is
// followed by its definition axiom unless it is marked {:inline}.
// Function = "function" { Attribute } Ident [ TypeParams ] "(" [ VarOrType { "," VarOrType } ] ")"
//
//	( "returns" "(" VarOrType ")" | ":" Type ) ( "{" Expression "}" | ";" ) .
func (p *Parser) ParseFunction() []decl.Declaration {
	p.Expect(FUNCTION)
	attrs := p.parseAttributes()
	nameTok := p.parseIdentToken()
	fn := &decl.FunctionDecl{NodeInfo: decl.At(p.loc(nameTok)), Name: nameTok.Val, Attributes: attrs}
	if p.la.Kind == LT {
		fn.TypeParams = p.parseTypeParams()
	}

	p.Expect(LPAREN)
	var formals []*decl.TypedIdent
	if p.startOf(typeStart) {
		formals = append(formals, p.parseVarOrType())
		for p.la.Kind == COMMA {
			p.Get()
			formals = append(formals, p.parseVarOrType())
		}
	}
	p.Expect(RPAREN)

	switch p.la.Kind {
	case RETURNS:
		p.Get()
		p.Expect(LPAREN)
		fn.Result = p.parseVarOrType()
		p.Expect(RPAREN)
	case COLON:
		p.Get()
		ty := p.ParseType()
		fn.Result = decl.NewTypedIdent(ty.Pos(), "", ty, nil)
	default:
		p.SynErr(errFunction)
	}

	var body decl.Expr
	switch p.la.Kind {
	case LBRACE:
		p.Get()
		body = p.ParseExpression()
		p.Expect(RBRACE)
	case SEMICOLON:
		p.Get()
	default:
		p.SynErr(errFunctionBody)
	}

	if fn.Result == nil {
		loc := p.loc(p.t)
		fn.Result = decl.NewTypedIdent(loc, "", decl.NewBasicType(loc, decl.SimpleInt), nil)
	}
	fn.InParams = p.resolveFormals(formals)

	out := []decl.Declaration{fn}
	if body != nil {
		if attrs.FindBool("inline") {
			fn.Body = body
		} else {
			out = append(out, definitionAxiom(fn, body))
		}
	}
	return out
}

// resolveFormals applies the `f(x, y: int)` shorthand. When at least one
// formal is named, an unnamed formal whose type is a bare identifier takes
// that identifier as its name and the type of the nearest named formal to
// its right. The input list is left untouched.
func (p *Parser) resolveFormals(formals []*decl.TypedIdent) []*decl.TypedIdent {
	named := false
	for _, f := range formals {
		if f.HasName() {
			named = true
			break
		}
	}
	if !named {
		return formals
	}

	out := make([]*decl.TypedIdent, len(formals))
	copy(out, formals)
	var prevType decl.Type
	for i := len(formals) - 1; i >= 0; i-- {
		f := formals[i]
		if f.HasName() {
			prevType = f.Type
			continue
		}
		if prevType == nil {
			p.semErrAt(f.Pos(), "the type of the last parameter is unspecified")
			break
		}
		if nt, ok := f.Type.(*decl.NamedType); ok && nt.IsBareName() {
			out[i] = decl.NewTypedIdent(f.Pos(), nt.Name, prevType, nil)
		} else {
			p.semErrAt(f.Pos(), "expecting an identifier as parameter name")
		}
	}
	return out
}

// definitionAxiom builds `forall <tps> formals :: {f(formals)} f(formals):T == body`.
// The coercion pins down type parameters that only occur in the result type.
func definitionAxiom(fn *decl.FunctionDecl, body decl.Expr) *decl.AxiomDecl {
	loc := fn.Pos()
	var dummies []*decl.TypedIdent
	var args []decl.Expr
	for i, f := range fn.InParams {
		name := f.Name
		if !f.HasName() {
			name = fmt.Sprintf("_%d", i)
		}
		dummies = append(dummies, decl.NewTypedIdent(f.Pos(), name, f.Type, nil))
		args = append(args, decl.NewIdentifierExpr(f.Pos(), name))
	}
	typeVars := gfn.Map(fn.TypeParams, func(tv *decl.TypeVariable) *decl.TypeVariable {
		return &decl.TypeVariable{Name: tv.Name}
	})

	call := &decl.CoerceExpr{
		ExprBase: decl.ExprAt(loc),
		Expr: &decl.FunctionCall{
			ExprBase: decl.ExprAt(loc),
			Callee:   decl.NewIdentifierExpr(loc, fn.Name),
			Args:     args,
		},
		Type: decl.CloneType(fn.Result.Type),
	}
	var def decl.Expr = decl.NewBinaryExpr(loc, decl.OpEq, call, body)
	if len(typeVars)+len(dummies) > 0 {
		def = &decl.QuantifierExpr{
			ExprBase:   decl.ExprAt(loc),
			Kind:       decl.Forall,
			TypeParams: typeVars,
			Dummies:    dummies,
			Attributes: fn.Attributes,
			Triggers:   []*decl.Trigger{{NodeInfo: decl.At(loc), Positive: true, Exprs: []decl.Expr{call}}},
			Body:       def,
		}
	}
	return &decl.AxiomDecl{NodeInfo: decl.At(loc), Expr: def, Comment: "autogenerated definition axiom"}
}

// VarOrType = Type [ ":" Type ] .
func (p *Parser) parseVarOrType() *decl.TypedIdent {
	loc := p.loc(p.la)
	ty := p.ParseType()
	name := ""
	if p.la.Kind == COLON {
		p.Get()
		if nt, ok := ty.(*decl.NamedType); ok && nt.IsBareName() {
			name = nt.Name
		} else {
			p.SemErr("expected identifier before ':'")
		}
		ty = p.ParseType()
	}
	return decl.NewTypedIdent(loc, name, ty, nil)
}

// ParseAxiom = "axiom" { Attribute } Proposition ";" .
func (p *Parser) ParseAxiom() *decl.AxiomDecl {
	p.Expect(AXIOM)
	loc := p.loc(p.t)
	attrs := p.parseAttributes()
	e := p.ParseExpression()
	p.Expect(SEMICOLON)
	return &decl.AxiomDecl{NodeInfo: decl.At(loc), Expr: e, Attributes: attrs}
}

// ParseUserDefinedTypes parses a type declaration, which may declare several types.
// UserDefinedTypes = "type" { Attribute } UserDefinedType { "," UserDefinedType } ";" .
func (p *Parser) ParseUserDefinedTypes() []decl.Declaration {
	p.Expect(TYPE)
	attrs := p.parseAttributes()
	out := []decl.Declaration{p.parseUserDefinedType(attrs)}
	for p.la.Kind == COMMA {
		p.Get()
		out = append(out, p.parseUserDefinedType(attrs))
	}
	p.Expect(SEMICOLON)
	return out
}

// UserDefinedType = Ident { Ident } [ "=" Type ] .
func (p *Parser) parseUserDefinedType(attrs decl.Attributes) decl.Declaration {
	id := p.parseIdentToken()
	var params []Token
	for p.la.Kind == IDENT {
		params = append(params, p.parseIdentToken())
	}
	if p.la.Kind != ASSIGN {
		return &decl.TypeCtorDecl{NodeInfo: decl.At(p.loc(id)), Name: id.Val, Arity: len(params), Attributes: attrs}
	}
	p.Get()
	body := p.ParseType()
	return &decl.TypeSynonymDecl{
		NodeInfo: decl.At(p.loc(id)),
		Name:     id.Val,
		TypeParams: gfn.Map(params, func(t Token) *decl.TypeVariable {
			return &decl.TypeVariable{NodeInfo: decl.At(p.loc(t)), Name: t.Val}
		}),
		Body:       body,
		Attributes: attrs,
	}
}

// ParseGlobalVars = "var" { Attribute } IdsTypeWheres ";" .
func (p *Parser) ParseGlobalVars() []*decl.GlobalVarDecl {
	p.Expect(VAR)
	attrs := p.parseAttributes()
	idents := p.parseIdsTypeWheres(true)
	p.Expect(SEMICOLON)
	return gfn.Map(idents, func(id *decl.TypedIdent) *decl.GlobalVarDecl {
		return &decl.GlobalVarDecl{NodeInfo: id.NodeInfo, Ident: id, Attributes: attrs}
	})
}

// parseLocalVars parses `var` locals, or `hole` locals when hole is set.
// LocalVars = ( "var" | "hole" ) { Attribute } IdsTypeWheres ";" .
func (p *Parser) parseLocalVars(hole bool) []*decl.LocalVar {
	if hole {
		p.Expect(HOLE)
	} else {
		p.Expect(VAR)
	}
	attrs := p.parseAttributes()
	idents := p.parseIdsTypeWheres(true)
	p.Expect(SEMICOLON)
	return gfn.Map(idents, func(id *decl.TypedIdent) *decl.LocalVar {
		return &decl.LocalVar{NodeInfo: id.NodeInfo, Ident: id, Hole: hole, Attributes: attrs}
	})
}

type procSignature struct {
	name       Token
	typeParams []*decl.TypeVariable
	ins, outs  []*decl.TypedIdent
	attrs      decl.Attributes
}

// ProcSignature = { Attribute } Ident [ TypeParams ] ProcFormals [ "returns" ProcFormals ] .
func (p *Parser) parseProcSignature(allowWhere bool) procSignature {
	var sig procSignature
	sig.attrs = p.parseAttributes()
	sig.name = p.parseIdentToken()
	if p.la.Kind == LT {
		sig.typeParams = p.parseTypeParams()
	}
	sig.ins = p.parseProcFormals(allowWhere)
	if p.la.Kind == RETURNS {
		p.Get()
		sig.outs = p.parseProcFormals(allowWhere)
	}
	return sig
}

// ProcFormals = "(" [ IdsTypeWheres ] ")" .
func (p *Parser) parseProcFormals(allowWhere bool) []*decl.TypedIdent {
	p.Expect(LPAREN)
	var out []*decl.TypedIdent
	if p.la.Kind == IDENT {
		out = p.parseIdsTypeWheres(allowWhere)
	}
	p.Expect(RPAREN)
	return out
}

// ParseProcedure parses a procedure. A procedure with a body also yields the
// implementation of that body; its formals carry no where clauses.
// Procedure = "procedure" ProcSignature ( ";" { Spec } | { Spec } ImplBody ) .
func (p *Parser) ParseProcedure() (*decl.ProcedureDecl, *decl.ImplementationDecl) {
	p.Expect(PROCEDURE)
	sig := p.parseProcSignature(true)
	proc := &decl.ProcedureDecl{
		NodeInfo:   decl.At(p.loc(sig.name)),
		Name:       sig.name.Val,
		TypeParams: sig.typeParams,
		InParams:   sig.ins,
		OutParams:  sig.outs,
		Attributes: sig.attrs,
	}

	var impl *decl.ImplementationDecl
	switch {
	case p.la.Kind == SEMICOLON:
		p.Get()
		for p.startOf(specStart) {
			p.parseSpec(proc)
		}
	case p.startOf(specStart) || p.la.Kind == LBRACE:
		for p.startOf(specStart) {
			p.parseSpec(proc)
		}
		locals, body := p.parseImplBody()
		impl = &decl.ImplementationDecl{
			NodeInfo:   proc.NodeInfo,
			Name:       proc.Name,
			TypeParams: proc.TypeParams,
			InParams:   stripWhereClauses(proc.InParams),
			OutParams:  stripWhereClauses(proc.OutParams),
			Locals:     locals,
			Body:       body,
		}
	default:
		p.SynErr(errProcedure)
	}
	return proc, impl
}

func stripWhereClauses(formals []*decl.TypedIdent) []*decl.TypedIdent {
	return gfn.Map(formals, (*decl.TypedIdent).WithoutWhere)
}

// ParseImplementation = "implementation" ProcSignature ImplBody .
func (p *Parser) ParseImplementation() *decl.ImplementationDecl {
	p.Expect(IMPLEMENTATION)
	sig := p.parseProcSignature(false)
	locals, body := p.parseImplBody()
	return &decl.ImplementationDecl{
		NodeInfo:   decl.At(p.loc(sig.name)),
		Name:       sig.name.Val,
		TypeParams: sig.typeParams,
		InParams:   sig.ins,
		OutParams:  sig.outs,
		Locals:     locals,
		Body:       body,
		Attributes: sig.attrs,
	}
}

// ImplBody = "{" { LocalVars } { LocalHoles } StmtList .
func (p *Parser) parseImplBody() ([]*decl.LocalVar, *decl.StmtList) {
	p.Expect(LBRACE)
	var locals []*decl.LocalVar
	for p.la.Kind == VAR {
		locals = append(locals, p.parseLocalVars(false)...)
	}
	for p.la.Kind == HOLE {
		locals = append(locals, p.parseLocalVars(true)...)
	}
	return locals, p.ParseStmtList()
}

// Spec = "modifies" [ Idents ] ";" | "free" SpecPrePost | SpecPrePost .
func (p *Parser) parseSpec(proc *decl.ProcedureDecl) {
	switch p.la.Kind {
	case MODIFIES:
		p.Get()
		if p.la.Kind == IDENT {
			for _, id := range p.parseIdentTokens() {
				proc.Modifies = append(proc.Modifies, decl.NewIdentifierExpr(p.loc(id), id.Val))
			}
		}
		p.Expect(SEMICOLON)
	case FREE:
		p.Get()
		p.parseSpecPrePost(true, proc)
	case REQUIRES, ENSURES:
		p.parseSpecPrePost(false, proc)
	default:
		p.SynErr(errSpec)
	}
}

// SpecPrePost = ( "requires" | "ensures" ) { Attribute } ( Proposition ";" | SpecBody ";" ) .
func (p *Parser) parseSpecPrePost(free bool, proc *decl.ProcedureDecl) {
	kind := p.la.Kind
	if kind != REQUIRES && kind != ENSURES {
		p.SynErr(errSpecPrePost)
		return
	}
	p.Get()
	loc := p.loc(p.t)
	attrs := p.parseAttributes()

	var cond decl.Expr
	switch {
	case p.startOf(exprStart):
		cond = p.ParseExpression()
		p.Expect(SEMICOLON)
	case p.la.Kind == LDBRACE:
		cond = p.parseSpecBody()
		p.Expect(SEMICOLON)
	default:
		if kind == REQUIRES {
			p.SynErr(errRequires)
		} else {
			p.SynErr(errEnsures)
		}
		cond = dummyExpr(loc)
	}

	if kind == REQUIRES {
		proc.Requires = append(proc.Requires, &decl.Requires{NodeInfo: decl.At(loc), Free: free, Condition: cond, Attributes: attrs})
	} else {
		proc.Ensures = append(proc.Ensures, &decl.Ensures{NodeInfo: decl.At(loc), Free: free, Condition: cond, Attributes: attrs})
	}
}

// SpecBody = "{{" { LocalVars } SpecBlock { SpecBlock } "}}" .
func (p *Parser) parseSpecBody() *decl.BlockExpr {
	p.Expect(LDBRACE)
	be := &decl.BlockExpr{ExprBase: decl.ExprAt(p.loc(p.t))}
	for p.la.Kind == VAR {
		be.Locals = append(be.Locals, p.parseLocalVars(false)...)
	}
	be.Blocks = append(be.Blocks, p.parseSpecBlock())
	for p.la.Kind == IDENT {
		be.Blocks = append(be.Blocks, p.parseSpecBlock())
	}
	p.Expect(RDBRACE)
	return be
}

// SpecBlock = Ident ":" { LabelOrCmd } ( "goto" Idents | "return" Expression ) ";" .
func (p *Parser) parseSpecBlock() *decl.Block {
	label := p.parseIdentToken()
	p.Expect(COLON)
	b := &decl.Block{NodeInfo: decl.At(p.loc(label)), Label: label.Val}
	for p.startOf(cmdStart) {
		if c, _ := p.parseLabelOrCmd(); c != nil {
			b.Cmds = append(b.Cmds, c)
		} else {
			p.SemErr("SpecBlock's can only have one label")
		}
	}
	switch p.la.Kind {
	case GOTO:
		p.Get()
		loc := p.loc(p.t)
		labels := gfn.Map(p.parseIdentTokens(), func(t Token) string { return t.Val })
		b.Transfer = &decl.GotoCmd{NodeInfo: decl.At(loc), Labels: labels}
	case RETURN:
		p.Get()
		loc := p.loc(p.t)
		b.Transfer = &decl.ReturnExprCmd{NodeInfo: decl.At(loc), Expr: p.ParseExpression()}
	default:
		p.SynErr(errSpecBlock)
	}
	p.Expect(SEMICOLON)
	return b
}

// --- Identifiers and typed identifiers ---

// parseIdentToken consumes an identifier, dropping a leading backslash that
// lets keywords be used as names.
// Ident = ident .
func (p *Parser) parseIdentToken() Token {
	if p.la.Kind != IDENT {
		p.SynErr(IDENT)
		return Token{Kind: IDENT, Line: p.la.Line, Col: p.la.Col, Pos: p.la.Pos}
	}
	p.Get()
	tok := p.t
	tok.Val = strings.TrimPrefix(tok.Val, `\`)
	return tok
}

// ParseIdent parses an identifier and returns its name.
func (p *Parser) ParseIdent() string {
	return p.parseIdentToken().Val
}

// Idents = Ident { "," Ident } .
func (p *Parser) parseIdentTokens() []Token {
	out := []Token{p.parseIdentToken()}
	for p.la.Kind == COMMA {
		p.Get()
		out = append(out, p.parseIdentToken())
	}
	return out
}

// IdsType = Idents ":" Type .
func (p *Parser) parseIdsType() []*decl.TypedIdent {
	ids := p.parseIdentTokens()
	p.Expect(COLON)
	ty := p.ParseType()
	return gfn.Map(ids, func(id Token) *decl.TypedIdent {
		return decl.NewTypedIdent(p.loc(id), id.Val, ty, nil)
	})
}

// IdsTypeWheres = IdsTypeWhere { "," IdsTypeWhere } .
func (p *Parser) parseIdsTypeWheres(allowWhere bool) []*decl.TypedIdent {
	out := p.parseIdsTypeWhere(allowWhere)
	for p.la.Kind == COMMA {
		p.Get()
		out = append(out, p.parseIdsTypeWhere(allowWhere)...)
	}
	return out
}

// IdsTypeWhere = Idents ":" Type [ "where" Expression ] .
func (p *Parser) parseIdsTypeWhere(allowWhere bool) []*decl.TypedIdent {
	ids := p.parseIdentTokens()
	p.Expect(COLON)
	ty := p.ParseType()
	var where decl.Expr
	if p.la.Kind == WHERE {
		p.Get()
		e := p.ParseExpression()
		if allowWhere {
			where = e
		} else {
			p.SemErr("where clause not allowed here")
		}
	}
	return gfn.Map(ids, func(id Token) *decl.TypedIdent {
		return decl.NewTypedIdent(p.loc(id), id.Val, ty, where)
	})
}
