package parser

import (
	"github.com/panyam/bpl/decl"
	gfn "github.com/panyam/goutils/fn"
)

// ParseStmtList parses statements up to and including the closing brace and
// groups them into BigBlocks. A label starts a new BigBlock; a structured or
// transfer command ends the current one. The list always has at least one
// BigBlock.
// StmtList = { LabelOrCmd | StructuredCmd | TransferCmd } "}" .
func (p *Parser) ParseStmtList() *decl.StmtList {
	sl := &decl.StmtList{}
	if !p.enter() {
		p.leave()
		loc := p.loc(p.la)
		sl.EndCurly = loc
		sl.BigBlocks = []*decl.BigBlock{{NodeInfo: decl.At(loc)}}
		return sl
	}
	defer p.leave()

	// cur is the BigBlock being built, nil when none is open
	var cur *decl.BigBlock
	open := func(loc decl.Location) {
		if cur == nil {
			cur = &decl.BigBlock{NodeInfo: decl.At(loc)}
		}
	}
	flush := func() {
		if cur != nil {
			sl.BigBlocks = append(sl.BigBlocks, cur)
			cur = nil
		}
	}

loop:
	for {
		p.splitBraces(RBRACE)
		switch {
		case p.startOf(cmdStart):
			c, label := p.parseLabelOrCmd()
			if c == nil {
				flush()
				cur = &decl.BigBlock{NodeInfo: decl.At(p.loc(*label)), Label: label.Val}
				continue
			}
			open(c.Pos())
			cur.Cmds = append(cur.Cmds, c)
		case p.la.Kind == IF, p.la.Kind == WHILE, p.la.Kind == BREAK:
			ec := p.parseStructuredCmd()
			open(ec.Pos())
			cur.Ec = ec
			flush()
		case p.la.Kind == GOTO, p.la.Kind == RETURN:
			tc := p.parseTransferCmd()
			open(tc.Pos())
			cur.Tc = tc
			flush()
		case p.la.Kind == RBRACE, p.startOf(syncSet):
			break loop
		default:
			p.SynErr(errStatement)
			p.RecoverTo(stmtRecovery)
		}
	}

	p.Expect(RBRACE)
	sl.EndCurly = p.loc(p.t)
	if cur == nil && len(sl.BigBlocks) == 0 {
		open(sl.EndCurly)
	}
	flush()
	return sl
}

// parseLabelOrCmd returns either a command or, for `L:`, the label token.
// LabelOrCmd = Assert | Assume | Havoc | Call | LabelOrAssign .
func (p *Parser) parseLabelOrCmd() (decl.Cmd, *Token) {
	switch p.la.Kind {
	case IDENT:
		return p.parseLabelOrAssign()
	case ASSERT:
		p.Get()
		c := &decl.AssertCmd{NodeInfo: decl.At(p.loc(p.t))}
		c.Attributes = p.parseAttributes()
		c.Expr = p.ParseExpression()
		p.Expect(SEMICOLON)
		return c, nil
	case ASSUME:
		p.Get()
		c := &decl.AssumeCmd{NodeInfo: decl.At(p.loc(p.t))}
		c.Expr = p.ParseExpression()
		p.Expect(SEMICOLON)
		return c, nil
	case HAVOC:
		p.Get()
		c := &decl.HavocCmd{NodeInfo: decl.At(p.loc(p.t))}
		c.Vars = gfn.Map(p.parseIdentTokens(), func(t Token) *decl.IdentifierExpr {
			return decl.NewIdentifierExpr(p.loc(t), t.Val)
		})
		p.Expect(SEMICOLON)
		return c, nil
	case CALL:
		c := p.parseCallCmd()
		p.Expect(SEMICOLON)
		return c, nil
	}
	p.SynErr(errLabelOrCmd)
	return dummyCmd(p.loc(p.la)), nil
}

// parseLabelOrAssign positions an assignment at its `:=`.
// LabelOrAssign = Ident ( ":" | MapAssignIndexes { "," Ident MapAssignIndexes } ":=" Expressions ";" ) .
func (p *Parser) parseLabelOrAssign() (decl.Cmd, *Token) {
	id := p.parseIdentToken()
	switch p.la.Kind {
	case COLON:
		p.Get()
		return nil, &id
	case COMMA, LBRACKET, COLON_ASSIGN:
		lhss := []decl.AssignLhs{p.parseMapAssignIndexes(id)}
		for p.la.Kind == COMMA {
			p.Get()
			lhss = append(lhss, p.parseMapAssignIndexes(p.parseIdentToken()))
		}
		p.Expect(COLON_ASSIGN)
		c := &decl.AssignCmd{NodeInfo: decl.At(p.loc(p.t)), Lhss: lhss}
		c.Rhss = p.parseExpressions()
		p.Expect(SEMICOLON)
		return c, nil
	}
	p.SynErr(errLabelOrAssign)
	return dummyCmd(p.loc(id)), nil
}

// MapAssignIndexes = { "[" [ Expressions ] "]" } .
func (p *Parser) parseMapAssignIndexes(id Token) decl.AssignLhs {
	var lhs decl.AssignLhs = &decl.SimpleAssignLhs{
		NodeInfo: decl.At(p.loc(id)),
		Var:      decl.NewIdentifierExpr(p.loc(id), id.Val),
	}
	for p.la.Kind == LBRACKET {
		p.Get()
		loc := p.loc(p.t)
		var indexes []decl.Expr
		if p.startOf(exprStart) {
			indexes = p.parseExpressions()
		}
		p.Expect(RBRACKET)
		lhs = &decl.MapAssignLhs{NodeInfo: decl.At(loc), Map: lhs, Indexes: indexes}
	}
	return lhs
}

// CallCmd = "call" { Attribute } ( Ident CallArgs | CallOuts ":=" Ident CallArgs | "forall" Ident CallArgs ) .
func (p *Parser) parseCallCmd() decl.Cmd {
	p.Expect(CALL)
	loc := p.loc(p.t)
	attrs := p.parseAttributes()
	switch p.la.Kind {
	case IDENT:
		first := p.parseIdentToken()
		switch p.la.Kind {
		case LPAREN:
			return &decl.CallCmd{NodeInfo: decl.At(loc), Callee: first.Val, Ins: p.parseCallArgs(), Attributes: attrs}
		case COMMA, COLON_ASSIGN:
			out := decl.NewIdentifierExpr(p.loc(first), first.Val)
			return p.parseCallOuts(loc, attrs, out)
		}
		p.SynErr(errCallAfterIdent)
	case FORALL:
		p.Get()
		callee := p.ParseIdent()
		return &decl.CallForallCmd{NodeInfo: decl.At(loc), Callee: callee, Ins: p.parseCallArgs(), Attributes: attrs}
	case STAR:
		p.Get()
		return p.parseCallOuts(loc, attrs, nil)
	default:
		p.SynErr(errCallCmd)
	}
	return dummyCmd(loc)
}

// parseCallOuts finishes a call once its first output is known. A nil output is `*`.
func (p *Parser) parseCallOuts(loc decl.Location, attrs decl.Attributes, first *decl.IdentifierExpr) decl.Cmd {
	outs := []*decl.IdentifierExpr{first}
	for p.la.Kind == COMMA {
		p.Get()
		outs = append(outs, p.parseCallOutIdent())
	}
	p.Expect(COLON_ASSIGN)
	callee := p.ParseIdent()
	return &decl.CallCmd{NodeInfo: decl.At(loc), Callee: callee, Ins: p.parseCallArgs(), Outs: outs, Attributes: attrs}
}

// CallArgs = "(" [ CallForallArg { "," CallForallArg } ] ")" .
func (p *Parser) parseCallArgs() []decl.Expr {
	p.Expect(LPAREN)
	var args []decl.Expr
	if p.startOf(callArgStart) {
		args = append(args, p.parseCallForallArg())
		for p.la.Kind == COMMA {
			p.Get()
			args = append(args, p.parseCallForallArg())
		}
	}
	p.Expect(RPAREN)
	return args
}

// CallForallArg = "*" | Expression .
func (p *Parser) parseCallForallArg() decl.Expr {
	switch {
	case p.la.Kind == STAR:
		p.Get()
		return nil
	case p.startOf(exprStart):
		return p.ParseExpression()
	}
	p.SynErr(errCallForallArg)
	return dummyExpr(p.loc(p.la))
}

// CallOutIdent = "*" | Ident .
func (p *Parser) parseCallOutIdent() *decl.IdentifierExpr {
	switch p.la.Kind {
	case STAR:
		p.Get()
		return nil
	case IDENT:
		id := p.parseIdentToken()
		return decl.NewIdentifierExpr(p.loc(id), id.Val)
	}
	p.SynErr(errCallOutIdent)
	return nil
}

// StructuredCmd = IfCmd | WhileCmd | BreakCmd .
func (p *Parser) parseStructuredCmd() decl.StructuredCmd {
	switch p.la.Kind {
	case IF:
		return p.parseIfCmd()
	case WHILE:
		return p.parseWhileCmd()
	case BREAK:
		return p.parseBreakCmd()
	}
	loc := p.loc(p.la)
	p.SynErr(errStructuredCmd)
	return &decl.BreakCmd{NodeInfo: decl.At(loc)}
}

// TransferCmd = ( "goto" Idents | "return" ) ";" .
func (p *Parser) parseTransferCmd() decl.TransferCmd {
	loc := p.loc(p.la)
	var tc decl.TransferCmd
	switch p.la.Kind {
	case GOTO:
		p.Get()
		labels := gfn.Map(p.parseIdentTokens(), func(t Token) string { return t.Val })
		tc = &decl.GotoCmd{NodeInfo: decl.At(loc), Labels: labels}
	case RETURN:
		p.Get()
		tc = &decl.ReturnCmd{NodeInfo: decl.At(loc)}
	default:
		p.SynErr(errTransferCmd)
		tc = &decl.ReturnCmd{NodeInfo: decl.At(loc)}
	}
	p.Expect(SEMICOLON)
	return tc
}

// IfCmd = "if" Guard "{" StmtList [ "else" ( IfCmd | "{" StmtList ) ] .
func (p *Parser) parseIfCmd() *decl.IfCmd {
	p.Expect(IF)
	c := &decl.IfCmd{NodeInfo: decl.At(p.loc(p.t))}
	if !p.enter() {
		p.leave()
		return c
	}
	defer p.leave()

	c.Guard = p.parseGuard()
	p.Expect(LBRACE)
	c.Then = p.ParseStmtList()
	if p.la.Kind == ELSE {
		p.Get()
		switch {
		case p.la.Kind == IF:
			c.ElseIf = p.parseIfCmd()
		case p.is(LBRACE):
			p.Get()
			c.Else = p.ParseStmtList()
		default:
			p.SynErr(errIfCmd)
		}
	}
	return c
}

// WhileCmd = "while" Guard { [ "free" ] "invariant" Expression ";" } "{" StmtList .
func (p *Parser) parseWhileCmd() *decl.WhileCmd {
	p.Expect(WHILE)
	c := &decl.WhileCmd{NodeInfo: decl.At(p.loc(p.t))}
	c.Guard = p.parseGuard()
	for p.la.Kind == FREE || p.la.Kind == INVARIANT {
		inv := &decl.Invariant{NodeInfo: decl.At(p.loc(p.la))}
		if p.la.Kind == FREE {
			p.Get()
			inv.Free = true
		}
		p.Expect(INVARIANT)
		inv.Expr = p.ParseExpression()
		c.Invariants = append(c.Invariants, inv)
		p.Expect(SEMICOLON)
	}
	p.Expect(LBRACE)
	c.Body = p.ParseStmtList()
	return c
}

// BreakCmd = "break" [ Ident ] ";" .
func (p *Parser) parseBreakCmd() *decl.BreakCmd {
	p.Expect(BREAK)
	c := &decl.BreakCmd{NodeInfo: decl.At(p.loc(p.t))}
	if p.la.Kind == IDENT {
		c.Label = p.ParseIdent()
	}
	p.Expect(SEMICOLON)
	return c
}

// parseGuard returns nil for the nondeterministic `*` guard. A malformed
// guard yields a placeholder so that nil always means `*`.
// Guard = "(" ( "*" | Expression ) ")" .
func (p *Parser) parseGuard() decl.Expr {
	p.Expect(LPAREN)
	var e decl.Expr
	switch {
	case p.la.Kind == STAR:
		p.Get()
	case p.startOf(exprStart):
		e = p.ParseExpression()
	default:
		p.SynErr(errGuard)
		e = dummyExpr(p.loc(p.la))
	}
	p.Expect(RPAREN)
	return e
}
