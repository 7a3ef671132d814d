package parser

// tokenSet is a membership table over the grammar's token kinds.
type tokenSet [maxT + 1]bool

func newSet(kinds ...int) (s tokenSet) {
	for _, k := range kinds {
		s[k] = true
	}
	return
}

func (s tokenSet) with(kinds ...int) tokenSet {
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

func (s tokenSet) union(o tokenSet) tokenSet {
	for k, in := range o {
		if in {
			s[k] = true
		}
	}
	return s
}

func (s tokenSet) has(kind int) bool {
	return kind >= 0 && kind <= maxT && s[kind]
}

var (
	declStart = newSet(VAR, CONST, FUNCTION, AXIOM, TYPE, PROCEDURE, IMPLEMENTATION)
	typeStart = newSet(IDENT, LPAREN, INT, BOOL, LBRACKET, LT)
	specStart = newSet(MODIFIES, FREE, REQUIRES, ENSURES)

	quantifierStart = newSet(FORALL, FORALL_U, EXISTS, EXISTS_U, LAMBDA, LAMBDA_U)
	// atomStart begins the operand of a coercion: everything an expression
	// can start with except the prefix operators.
	atomStart      = newSet(IDENT, BVLIT, DIGITS, LPAREN, IF, FALSE, TRUE, OLD).union(quantifierStart)
	exprStart      = atomStart.with(MINUS, NOT, NOT_U)
	attrParamStart = exprStart.with(STRING)
	callArgStart   = exprStart.with(STAR)

	cmdStart  = newSet(IDENT, ASSERT, ASSUME, HAVOC, CALL)
	stmtStart = cmdStart.with(GOTO, RETURN, IF, WHILE, BREAK)

	equivOps   = newSet(EQUIV, EQUIV_U)
	impliesOps = newSet(IMPLIES, IMPLIES_U)
	expliesOps = newSet(EXPLIES, EXPLIES_U)
	andOps     = newSet(AND, AND_U)
	orOps      = newSet(OR, OR_U)
	relOps     = newSet(EQ, LT, GT, LTE, GTE, NEQ, SUBTYPE, NEQ_U, LTE_U, GTE_U)
	addOps     = newSet(PLUS, MINUS)
	mulOps     = newSet(STAR, DIV, MOD)
	negOps     = newSet(NOT, NOT_U)

	// syncSet is always part of a recovery set so that panic mode stops at
	// the next declaration or the end of input.
	syncSet = declStart.with(eof)

	// stmtRecovery is where a statement list resumes after an unexpected token.
	stmtRecovery = stmtStart.with(RBRACE, RDBRACE)
	// declRecovery is where the top level resumes after an unexpected token.
	declRecovery = newSet(SEMICOLON)
)
