package parser

import (
	"io"
	"strings"

	"github.com/panyam/bpl/decl"
)

const (
	// DefaultMinErrDist is the number of tokens that must be matched after a
	// reported error before the next one is reported.
	DefaultMinErrDist = 2
	// DefaultMaxDepth bounds the nesting of expressions, types and statements.
	DefaultMaxDepth = 1000
)

// Parser is a recursive descent parser with one token of lookahead. Syntax
// errors never stop a parse: they are reported to the Errors sink and the
// parser resynchronises on the next token it knows how to continue with.
type Parser struct {
	scanner TokenSource
	errors  *Errors

	t       Token   // last recognized token
	la      Token   // lookahead token
	pending []Token // halves of split `{{` / `}}` tokens
	errDist int

	MinErrDist int
	MaxDepth   int
	depth      int
	overflow   bool

	program *decl.Program
}

// NewParser creates a parser reading tokens from src and reporting to errs.
// A nil errs gets a fresh sink that is available from Errors().
func NewParser(src TokenSource, errs *Errors) *Parser {
	if errs == nil {
		errs = NewErrors(nil)
	}
	return &Parser{
		scanner:    src,
		errors:     errs,
		MinErrDist: DefaultMinErrDist,
		MaxDepth:   DefaultMaxDepth,
		errDist:    DefaultMinErrDist,
	}
}

func (p *Parser) Errors() *Errors { return p.errors }

// Parse reads a whole program. The returned program is complete only when
// the error count is zero; otherwise it is a best effort tree.
func (p *Parser) Parse() *decl.Program {
	p.program = decl.NewProgram()
	p.errDist = p.MinErrDist
	p.la = Token{}
	p.Get()
	p.ParseProgram()
	return p.program
}

// Parse reads a program from src and returns it with the number of errors found.
func Parse(src TokenSource, errs *Errors) (*decl.Program, int) {
	p := NewParser(src, errs)
	prog := p.Parse()
	return prog, p.errors.Count
}

// ParseReader scans and parses all of r.
func ParseReader(r io.Reader, errs *Errors) (*decl.Program, int) {
	return Parse(NewLexer(r), errs)
}

// ParseString parses text with a fresh error sink.
func ParseString(text string) (*decl.Program, *Errors) {
	errs := NewErrors(nil)
	prog, _ := Parse(NewLexer(strings.NewReader(text)), errs)
	return prog, errs
}

// start primes the lookahead so that a single rule can be run on its own.
func (p *Parser) start() {
	if p.program == nil {
		p.program = decl.NewProgram()
	}
	p.la = Token{}
	p.Get()
}

// --- Token handling ---

func (p *Parser) next() Token {
	if n := len(p.pending); n > 0 {
		tok := p.pending[n-1]
		p.pending = p.pending[:n-1]
		return tok
	}
	return p.scanner.Scan()
}

// Get advances to the next token the grammar knows about. Tokens with a kind
// above maxT (comments) are skipped.
func (p *Parser) Get() {
	p.t = p.la
	for {
		p.la = p.next()
		if p.la.Kind <= maxT {
			p.errDist++
			return
		}
	}
}

// Expect consumes a token of kind n or reports that it was expected. It
// never consumes a token of another kind.
func (p *Parser) Expect(n int) {
	p.splitBraces(n)
	if p.la.Kind == n {
		p.Get()
	} else {
		p.SynErr(n)
	}
}

// splitBraces turns a lookahead `{{` or `}}` into two single braces when a
// single brace is wanted, eg the `}}` closing two nested blocks.
func (p *Parser) splitBraces(want int) {
	var single int
	switch {
	case want == RBRACE && p.la.Kind == RDBRACE:
		single = RBRACE
	case want == LBRACE && p.la.Kind == LDBRACE:
		single = LBRACE
	default:
		return
	}
	text := p.la.Val[:1]
	second := Token{Kind: single, Val: text, Line: p.la.Line, Col: p.la.Col + 1, Pos: p.la.Pos + 1}
	p.pending = append(p.pending, second)
	p.la = Token{Kind: single, Val: text, Line: p.la.Line, Col: p.la.Col, Pos: p.la.Pos}
}

// is reports whether the lookahead has kind n, splitting double braces as Expect would.
func (p *Parser) is(n int) bool {
	p.splitBraces(n)
	return p.la.Kind == n
}

func (p *Parser) startOf(s tokenSet) bool {
	return s.has(p.la.Kind)
}

// SynErr reports syntax error n at the lookahead unless another error was
// reported fewer than MinErrDist tokens ago.
func (p *Parser) SynErr(n int) {
	if p.errDist >= p.MinErrDist && !p.overflow {
		p.errors.SynErr(p.la.Line, p.la.Col, n)
	}
	p.errDist = 0
}

// SemErr reports a semantic error at the last recognized token, debounced
// like SynErr.
func (p *Parser) SemErr(msg string) {
	p.semErr(p.loc(p.t), msg)
}

func (p *Parser) semErr(loc decl.Location, msg string) {
	if p.errDist >= p.MinErrDist && !p.overflow {
		p.errors.SemErr(loc.Line, loc.Col, msg)
	}
	p.errDist = 0
}

// semErrAt reports a semantic error at tok without debouncing.
func (p *Parser) semErrAt(loc decl.Location, msg string) {
	if !p.overflow {
		p.errors.SemErr(loc.Line, loc.Col, msg)
	}
}

// RecoverTo skips tokens until one in follow, or in the sync set, is found.
// It terminates because EOF is in the sync set.
func (p *Parser) RecoverTo(follow tokenSet) {
	stop := follow.union(syncSet)
	for !stop.has(p.la.Kind) {
		p.Get()
	}
}

// enter tracks nesting depth. Once MaxDepth is exceeded a single error is
// reported and the rest of the input is dropped, so every rule unwinds on EOF.
func (p *Parser) enter() bool {
	p.depth++
	if p.depth > p.MaxDepth && !p.overflow {
		p.errors.SemErr(p.la.Line, p.la.Col, "maximum nesting depth exceeded")
		p.overflow = true
		for p.la.Kind != eof {
			p.la = p.next()
		}
	}
	return !p.overflow
}

func (p *Parser) leave() { p.depth-- }

func (p *Parser) loc(tok Token) decl.Location {
	return decl.Location{Line: tok.Line, Col: tok.Col}
}

// --- Placeholders substituted after errors ---

func dummyExpr(loc decl.Location) decl.Expr { return decl.NewBoolLit(loc, false) }

func dummyType(loc decl.Location) decl.Type { return decl.NewBasicType(loc, decl.SimpleBool) }

func dummyCmd(loc decl.Location) decl.Cmd {
	return &decl.AssumeCmd{NodeInfo: decl.At(loc), Expr: dummyExpr(loc)}
}

// --- Program ---

// ParseProgram parses declarations until the end of input.
// Program = { Consts | Function | Axiom | UserDefinedTypes | GlobalVars | Procedure | Implementation } EOF .
func (p *Parser) ParseProgram() {
	for {
		switch p.la.Kind {
		case CONST:
			for _, c := range p.ParseConsts() {
				p.program.Add(c)
			}
		case FUNCTION:
			p.program.Add(p.ParseFunction()...)
		case AXIOM:
			p.program.Add(p.ParseAxiom())
		case TYPE:
			p.program.Add(p.ParseUserDefinedTypes()...)
		case VAR:
			for _, v := range p.ParseGlobalVars() {
				p.program.Add(v)
			}
		case PROCEDURE:
			proc, impl := p.ParseProcedure()
			p.program.Add(proc)
			if impl != nil {
				p.program.Add(impl)
			}
		case IMPLEMENTATION:
			p.program.Add(p.ParseImplementation())
		case eof:
			return
		default:
			p.SynErr(errDeclaration)
			p.RecoverTo(declRecovery)
			if p.la.Kind == SEMICOLON {
				p.Get()
			}
		}
	}
}
