package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode"
)

// endOfInput is returned by the rune readers once the input is exhausted.
// It is not a valid rune, so a NUL in the source is scanned as an unknown symbol.
const endOfInput rune = -1

// Lexer turns source text into Tokens. It implements TokenSource.
type Lexer struct {
	lookaheadRunes  []rune
	lookaheadWidths []int
	reader          *bufio.Reader
	buf             bytes.Buffer // Temporary buffer for scanned text
	pos             int          // Current byte offset from the beginning of the input
	lastError       error

	// Position of the token being scanned
	tokenStartPos  int
	tokenStartLine int
	tokenStartCol  int

	// Current line and column (rune-based) in the input
	line int
	col  int

	// KeepComments makes Scan return comments as COMMENT tokens instead of
	// dropping them. The parser skips them.
	KeepComments bool
}

// NewLexer creates a new lexer instance
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(r),
		pos:    0,
		line:   1,
		col:    1,
	}
}

// Err returns the last lexical problem seen (unterminated string or comment).
// Such problems are also visible to the parser as unknown-symbol tokens.
func (l *Lexer) Err() error {
	return l.lastError
}

func (l *Lexer) errorf(format string, args ...any) {
	l.lastError = fmt.Errorf("line %d col %d: %s", l.tokenStartLine, l.tokenStartCol, fmt.Sprintf(format, args...))
}

// --- Rune Reading Helpers (with line/col tracking) ---
func (l *Lexer) read() (r rune, width int) {
	if l.peek() == endOfInput {
		return endOfInput, 0
	}
	r, width = l.lookaheadRunes[0], l.lookaheadWidths[0]
	l.lookaheadRunes, l.lookaheadWidths = l.lookaheadRunes[1:], l.lookaheadWidths[1:]
	l.updatePosition(r, width)
	return r, width
}

func (l *Lexer) updatePosition(r rune, width int) {
	l.pos += width
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) peekN(nthchar int) rune {
	l.ensureLookAhead(nthchar + 1)
	if nthchar >= len(l.lookaheadRunes) {
		return endOfInput
	}
	return l.lookaheadRunes[nthchar]
}

func (l *Lexer) peek() rune {
	return l.peekN(0)
}

func (l *Lexer) ensureLookAhead(numchars int) int {
	for len(l.lookaheadRunes) < numchars {
		r, width, err := l.reader.ReadRune()
		if err != nil {
			break
		}
		l.lookaheadRunes = append(l.lookaheadRunes, r)
		l.lookaheadWidths = append(l.lookaheadWidths, width)
	}
	return len(l.lookaheadRunes)
}

// hasPrefix reports whether the upcoming runes spell prefix, consuming them if asked to.
func (l *Lexer) hasPrefix(prefix string, consume bool) bool {
	runes := []rune(prefix)
	if l.ensureLookAhead(len(runes)) < len(runes) {
		return false
	}
	for i, r := range runes {
		if l.lookaheadRunes[i] != r {
			return false
		}
	}
	if consume {
		for range runes {
			l.read()
		}
	}
	return true
}

func (l *Lexer) readTill(stop rune) (foundeof bool) {
	for {
		r := l.peek()
		if r == endOfInput {
			return true
		}
		if r == stop {
			return false
		}
		l.read()
		l.buf.WriteRune(r)
	}
}

func (l *Lexer) markStart() {
	l.tokenStartPos = l.pos
	l.tokenStartLine = l.line
	l.tokenStartCol = l.col
}

func (l *Lexer) token(kind int, val string) Token {
	return Token{Kind: kind, Val: val, Line: l.tokenStartLine, Col: l.tokenStartCol, Pos: l.tokenStartPos}
}

// --- Scanning Functions ---

// skipWhitespace skips blanks and comments. When KeepComments is set a
// comment is returned instead of skipped.
func (l *Lexer) skipWhitespace() (comment *Token) {
	for {
		r := l.peek()
		if r == endOfInput {
			return nil
		}
		if unicode.IsSpace(r) {
			l.read()
			continue
		}
		if r != '/' || (l.peekN(1) != '/' && l.peekN(1) != '*') {
			return nil
		}
		l.markStart()
		l.buf.Reset()
		if l.hasPrefix("//", true) {
			l.buf.WriteString("//")
			l.readTill('\n')
		} else {
			l.hasPrefix("/*", true)
			l.buf.WriteString("/*")
			for {
				if l.hasPrefix("*/", true) {
					l.buf.WriteString("*/")
					break
				}
				ch, _ := l.read()
				if ch == endOfInput {
					l.errorf("unterminated block comment")
					tok := l.token(maxT, l.buf.String())
					return &tok
				}
				l.buf.WriteRune(ch)
			}
		}
		if l.KeepComments {
			tok := l.token(COMMENT, l.buf.String())
			return &tok
		}
	}
}

func isIdentStart(r rune) bool {
	return isLetter(r) || isSpecial(r)
}

func isIdentRune(r rune) bool {
	return isLetter(r) || isSpecial(r) || isDigit(r)
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSpecial(r rune) bool {
	switch r {
	case '\'', '~', '#', '$', '^', '_', '.', '?', '`':
		return true
	}
	return false
}

func (l *Lexer) scanIdentifierOrKeyword() Token {
	l.buf.Reset()
	if l.peek() == '\\' {
		l.read()
		l.buf.WriteRune('\\')
	}
	for r := l.peek(); r != endOfInput && isIdentRune(r); r = l.peek() {
		l.read()
		l.buf.WriteRune(r)
	}
	text := l.buf.String()
	if kind, ok := keywords[text]; ok {
		return l.token(kind, text)
	}
	return l.token(IDENT, text)
}

// scanNumber scans digits, bitvector literals (`5bv32`) and floats (`1.5`, `2e10`).
func (l *Lexer) scanNumber() Token {
	l.buf.Reset()
	l.scanDigits()
	switch {
	case l.peek() == 'b' && l.peekN(1) == 'v' && isDigit(l.peekN(2)):
		l.read()
		l.read()
		l.buf.WriteString("bv")
		l.scanDigits()
		return l.token(BVLIT, l.buf.String())
	case l.peek() == '.' && isDigit(l.peekN(1)):
		l.read()
		l.buf.WriteRune('.')
		l.scanDigits()
		l.scanExponent()
		return l.token(FLOAT, l.buf.String())
	case l.scanExponent():
		return l.token(FLOAT, l.buf.String())
	}
	return l.token(DIGITS, l.buf.String())
}

func (l *Lexer) scanDigits() {
	for r := l.peek(); isDigit(r); r = l.peek() {
		l.read()
		l.buf.WriteRune(r)
	}
}

func (l *Lexer) scanExponent() bool {
	if l.peek() != 'e' {
		return false
	}
	n := 1
	if l.peekN(1) == '-' {
		n = 2
	}
	if !isDigit(l.peekN(n)) {
		return false
	}
	for k := 0; k < n; k++ {
		r, _ := l.read()
		l.buf.WriteRune(r)
	}
	l.scanDigits()
	return true
}

// scanString scans a string literal. The token value keeps the quotes.
func (l *Lexer) scanString() Token {
	l.buf.Reset()
	l.read()
	l.buf.WriteRune('"')
	for {
		r := l.peek()
		if r == endOfInput || r == '\n' {
			l.errorf("unterminated string literal")
			return l.token(maxT, l.buf.String())
		}
		l.read()
		l.buf.WriteRune(r)
		if r == '"' {
			return l.token(STRING, l.buf.String())
		}
	}
}

// operators ordered so that longer spellings are tried before their prefixes.
var operators = []struct {
	text string
	kind int
}{
	{"<==>", EQUIV}, {"<==", EXPLIES}, {"<=", LTE}, {"<:", SUBTYPE}, {"<", LT},
	{"==>", IMPLIES}, {"==", EQ}, {"=", ASSIGN},
	{":=", COLON_ASSIGN}, {"::", QSEP}, {":", COLON},
	{"{{", LDBRACE}, {"{", LBRACE}, {"}}", RDBRACE}, {"}", RBRACE},
	{"&&", AND}, {"||", OR}, {"!=", NEQ}, {"!", NOT},
	{">=", GTE}, {">", GT}, {"++", CONCAT}, {"+", PLUS},
	{";", SEMICOLON}, {"(", LPAREN}, {")", RPAREN}, {",", COMMA},
	{"[", LBRACKET}, {"]", RBRACKET}, {"*", STAR}, {"-", MINUS}, {"/", DIV}, {"%", MOD},
	{"⇔", EQUIV_U}, {"⇒", IMPLIES_U}, {"⇐", EXPLIES_U}, {"∧", AND_U}, {"∨", OR_U},
	{"≠", NEQ_U}, {"≤", LTE_U}, {"≥", GTE_U}, {"¬", NOT_U}, {"∀", FORALL_U},
	{"∃", EXISTS_U}, {"λ", LAMBDA_U}, {"•", QSEP_U},
}

// Scan returns the next token. At the end of input it keeps returning EOF.
func (l *Lexer) Scan() Token {
	if comment := l.skipWhitespace(); comment != nil {
		return *comment
	}
	l.markStart()

	r := l.peek()
	switch {
	case r == endOfInput:
		return l.token(eof, "")
	case isIdentStart(r) || (r == '\\' && isIdentStart(l.peekN(1))):
		return l.scanIdentifierOrKeyword()
	case isDigit(r):
		return l.scanNumber()
	case r == '"':
		return l.scanString()
	}

	for _, op := range operators {
		if l.hasPrefix(op.text, true) {
			return l.token(op.kind, op.text)
		}
	}

	// Unknown symbol: the parser reports it as a syntax error
	l.read()
	return l.token(maxT, string(r))
}

// ScanAll returns every token up to and including the first EOF.
func ScanAll(src TokenSource) []Token {
	var out []Token
	for {
		tok := src.Scan()
		out = append(out, tok)
		if tok.Kind == eof {
			return out
		}
	}
}
