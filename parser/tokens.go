package parser

import "fmt"

// Token kinds. The numbering is the grammar's symbol table: error messages,
// recovery sets and the lexer all index by these values.
const (
	eof = iota // end of file
	IDENT
	BVLIT
	DIGITS
	STRING
	FLOAT
	VAR       // var
	SEMICOLON // ;
	HOLE      // hole
	LPAREN    // (
	RPAREN    // )
	COLON     // :
	COMMA     // ,
	WHERE     // where
	INT       // int
	BOOL      // bool
	LBRACKET  // [
	RBRACKET  // ]
	LT        // <
	GT        // >
	CONST     // const
	UNIQUE    // unique
	EXTENDS   // extends
	COMPLETE  // complete
	FUNCTION  // function
	RETURNS   // returns
	LBRACE    // {
	RBRACE    // }
	AXIOM     // axiom
	TYPE      // type
	ASSIGN    // =
	PROCEDURE
	IMPLEMENTATION
	MODIFIES
	FREE
	REQUIRES
	ENSURES
	LDBRACE // {{
	RDBRACE // }}
	GOTO
	RETURN
	IF
	ELSE
	WHILE
	INVARIANT
	STAR // *
	BREAK
	ASSERT
	ASSUME
	HAVOC
	COLON_ASSIGN // :=
	CALL
	FORALL    // forall
	EQUIV     // <==>
	EQUIV_U   // ⇔
	IMPLIES   // ==>
	IMPLIES_U // ⇒
	EXPLIES   // <==
	EXPLIES_U // ⇐
	AND       // &&
	AND_U     // ∧
	OR        // ||
	OR_U      // ∨
	EQ        // ==
	LTE       // <=
	GTE       // >=
	NEQ       // !=
	SUBTYPE   // <:
	NEQ_U     // ≠
	LTE_U     // ≤
	GTE_U     // ≥
	CONCAT    // ++
	PLUS      // +
	MINUS     // -
	DIV       // /
	MOD       // %
	NOT       // !
	NOT_U     // ¬
	FALSE     // false
	TRUE      // true
	OLD       // old
	THEN      // then
	FORALL_U  // ∀
	EXISTS    // exists
	EXISTS_U  // ∃
	LAMBDA    // lambda
	LAMBDA_U  // λ
	QSEP      // ::
	QSEP_U    // •
	maxT      // any symbol the lexer does not know
	COMMENT   // only produced with Lexer.KeepComments; skipped by the parser
)

// EOF is exported for token source implementations outside this package.
const EOF = eof

var tokenNames = [...]string{
	eof: "EOF", IDENT: "ident", BVLIT: "bvlit", DIGITS: "digits", STRING: "string", FLOAT: "float",
	VAR: `"var"`, SEMICOLON: `";"`, HOLE: `"hole"`, LPAREN: `"("`, RPAREN: `")"`, COLON: `":"`,
	COMMA: `","`, WHERE: `"where"`, INT: `"int"`, BOOL: `"bool"`, LBRACKET: `"["`, RBRACKET: `"]"`,
	LT: `"<"`, GT: `">"`, CONST: `"const"`, UNIQUE: `"unique"`, EXTENDS: `"extends"`,
	COMPLETE: `"complete"`, FUNCTION: `"function"`, RETURNS: `"returns"`, LBRACE: `"{"`,
	RBRACE: `"}"`, AXIOM: `"axiom"`, TYPE: `"type"`, ASSIGN: `"="`, PROCEDURE: `"procedure"`,
	IMPLEMENTATION: `"implementation"`, MODIFIES: `"modifies"`, FREE: `"free"`,
	REQUIRES: `"requires"`, ENSURES: `"ensures"`, LDBRACE: `"{{"`, RDBRACE: `"}}"`,
	GOTO: `"goto"`, RETURN: `"return"`, IF: `"if"`, ELSE: `"else"`, WHILE: `"while"`,
	INVARIANT: `"invariant"`, STAR: `"*"`, BREAK: `"break"`, ASSERT: `"assert"`,
	ASSUME: `"assume"`, HAVOC: `"havoc"`, COLON_ASSIGN: `":="`, CALL: `"call"`,
	FORALL: `"forall"`, EQUIV: `"<==>"`, EQUIV_U: `"⇔"`, IMPLIES: `"==>"`,
	IMPLIES_U: `"⇒"`, EXPLIES: `"<=="`, EXPLIES_U: `"⇐"`, AND: `"&&"`,
	AND_U: `"∧"`, OR: `"||"`, OR_U: `"∨"`, EQ: `"=="`, LTE: `"<="`, GTE: `">="`,
	NEQ: `"!="`, SUBTYPE: `"<:"`, NEQ_U: `"≠"`, LTE_U: `"≤"`, GTE_U: `"≥"`,
	CONCAT: `"++"`, PLUS: `"+"`, MINUS: `"-"`, DIV: `"/"`, MOD: `"%"`, NOT: `"!"`,
	NOT_U: `"¬"`, FALSE: `"false"`, TRUE: `"true"`, OLD: `"old"`, THEN: `"then"`,
	FORALL_U: `"∀"`, EXISTS: `"exists"`, EXISTS_U: `"∃"`, LAMBDA: `"lambda"`,
	LAMBDA_U: `"λ"`, QSEP: `"::"`, QSEP_U: `"•"`, maxT: "???", COMMENT: "comment",
}

// TokenString returns the printable name of a token kind.
func TokenString(kind int) string {
	if kind >= 0 && kind < len(tokenNames) {
		return tokenNames[kind]
	}
	return fmt.Sprintf("token(%d)", kind)
}

var keywords = map[string]int{
	"var": VAR, "hole": HOLE, "where": WHERE, "int": INT, "bool": BOOL,
	"const": CONST, "unique": UNIQUE, "extends": EXTENDS, "complete": COMPLETE,
	"function": FUNCTION, "returns": RETURNS, "axiom": AXIOM, "type": TYPE,
	"procedure": PROCEDURE, "implementation": IMPLEMENTATION, "modifies": MODIFIES,
	"free": FREE, "requires": REQUIRES, "ensures": ENSURES, "goto": GOTO, "return": RETURN,
	"if": IF, "else": ELSE, "while": WHILE, "invariant": INVARIANT, "break": BREAK,
	"assert": ASSERT, "assume": ASSUME, "havoc": HAVOC, "call": CALL, "forall": FORALL,
	"false": FALSE, "true": TRUE, "old": OLD, "then": THEN, "exists": EXISTS, "lambda": LAMBDA,
}

// Token is one lexical unit. Line and Col are 1-based.
type Token struct {
	Kind int
	Val  string
	Line int
	Col  int
	Pos  int // byte offset
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %d:%d", TokenString(t.Kind), t.Val, t.Line, t.Col)
}

// TokenSource is a pull based stream of tokens. After the end of input it
// keeps returning EOF tokens.
type TokenSource interface {
	Scan() Token
}
