package parser

import (
	"github.com/panyam/bpl/decl"
)

// ParseType parses a type.
// Type = TypeAtom | Ident [ TypeArgs ] | MapType .
func (p *Parser) ParseType() decl.Type {
	loc := p.loc(p.la)
	if !p.enter() {
		p.leave()
		return dummyType(loc)
	}
	defer p.leave()

	switch p.la.Kind {
	case LPAREN, INT, BOOL:
		return p.parseTypeAtom()
	case IDENT:
		name := p.ParseIdent()
		nt := &decl.NamedType{NodeInfo: decl.At(loc), Name: name}
		if p.startOf(typeStart) {
			nt.Args = p.parseTypeArgs(nil)
		}
		return nt
	case LBRACKET, LT:
		return p.parseMapType()
	}
	p.SynErr(errType)
	return dummyType(loc)
}

// TypeAtom = "int" | "bool" | "(" Type ")" .
func (p *Parser) parseTypeAtom() decl.Type {
	loc := p.loc(p.la)
	switch p.la.Kind {
	case INT:
		p.Get()
		return decl.NewBasicType(loc, decl.SimpleInt)
	case BOOL:
		p.Get()
		return decl.NewBasicType(loc, decl.SimpleBool)
	case LPAREN:
		p.Get()
		ty := p.ParseType()
		p.Expect(RPAREN)
		return ty
	}
	p.SynErr(errTypeAtom)
	return dummyType(loc)
}

// parseTypeArgs collects the juxtaposed arguments of a type constructor. An
// identifier argument never takes arguments of its own, so `C a b` is C
// applied to a and b. A map type swallows everything after it.
// TypeArgs = TypeAtom [ TypeArgs ] | Ident [ TypeArgs ] | MapType .
func (p *Parser) parseTypeArgs(args []decl.Type) []decl.Type {
	for {
		loc := p.loc(p.la)
		switch p.la.Kind {
		case LPAREN, INT, BOOL:
			args = append(args, p.parseTypeAtom())
		case IDENT:
			args = append(args, &decl.NamedType{NodeInfo: decl.At(loc), Name: p.ParseIdent()})
		case LBRACKET, LT:
			return append(args, p.parseMapType())
		default:
			p.SynErr(errTypeArgs)
			return args
		}
		if !p.startOf(typeStart) {
			return args
		}
	}
}

// MapType = [ TypeParams ] "[" [ Types ] "]" Type .
func (p *Parser) parseMapType() decl.Type {
	mt := &decl.MapType{NodeInfo: decl.At(p.loc(p.la))}
	if p.la.Kind == LT {
		mt.TypeParams = p.parseTypeParams()
	}
	p.Expect(LBRACKET)
	if p.startOf(typeStart) {
		mt.Args = p.parseTypes()
	}
	p.Expect(RBRACKET)
	mt.Result = p.ParseType()
	return mt
}

// TypeParams = "<" Idents ">" .
func (p *Parser) parseTypeParams() []*decl.TypeVariable {
	p.Expect(LT)
	var out []*decl.TypeVariable
	for _, id := range p.parseIdentTokens() {
		out = append(out, &decl.TypeVariable{NodeInfo: decl.At(p.loc(id)), Name: id.Val})
	}
	p.Expect(GT)
	return out
}

// Types = Type { "," Type } .
func (p *Parser) parseTypes() []decl.Type {
	out := []decl.Type{p.ParseType()}
	for p.la.Kind == COMMA {
		p.Get()
		out = append(out, p.ParseType())
	}
	return out
}
