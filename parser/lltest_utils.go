package parser

import (
	"strings"
	"testing"

	"github.com/panyam/bpl/decl"
	"github.com/stretchr/testify/assert"
)

// --- Test Helpers ---

// newTestParser creates a parser over input with the lookahead already primed,
// so that any single rule can be run on it.
func newTestParser(input string) *Parser {
	p := NewParser(NewLexer(strings.NewReader(input)), nil)
	p.start()
	return p
}

// parseFragment runs a single rule (eg p.ParseExpression) over input and
// returns its result along with the diagnostics it produced. Unless the
// fragment had errors, all of the input must have been consumed.
func parseFragment[T any](t *testing.T, input string, rule func(p *Parser) T) (T, *Errors) {
	t.Helper()
	p := newTestParser(input)
	out := rule(p)
	if p.errors.Count == 0 && p.la.Kind != eof {
		t.Errorf("Input: %q\nParser did not consume all input. Remaining token: %s (%q)",
			input, TokenString(p.la.Kind), p.la.Val)
	}
	return out, p.errors
}

// parseProgram parses a whole program.
func parseProgram(t *testing.T, input string) (*decl.Program, *Errors) {
	t.Helper()
	return ParseString(input)
}

// parseValid parses a whole program and fails the test on any diagnostic.
func parseValid(t *testing.T, input string) *decl.Program {
	t.Helper()
	prog, errs := ParseString(input)
	assertNoErrors(t, input, errs)
	return prog
}

// assertNodeEqual compares a node by its printed form.
func assertNodeEqual(t *testing.T, input string, expected string, actual decl.Node) {
	t.Helper()
	if actual == nil {
		t.Errorf("Input: %q\nExpected %q, got nil node", input, expected)
		return
	}
	assert.Equal(t, expected, actual.String(), "Input: %q", input)
}

func assertNoErrors(t *testing.T, input string, errs *Errors) {
	t.Helper()
	if errs.Count != 0 {
		t.Errorf("Input: %q\nDid not expect errors, but got:\n%s", input, strings.Join(errs.Messages(), "\n"))
	}
}

// assertErrorContains checks that some diagnostic contains the given text.
func assertErrorContains(t *testing.T, input string, errs *Errors, errorContains string) {
	t.Helper()
	if errs.Count == 0 {
		t.Errorf("Input: %q\nExpected an error, but got none", input)
		return
	}
	for _, msg := range errs.Messages() {
		if strings.Contains(msg, errorContains) {
			return
		}
	}
	t.Errorf("Input: %q\nNo error message contains %q:\n%s", input, errorContains, strings.Join(errs.Messages(), "\n"))
}
