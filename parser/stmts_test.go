package parser

import (
	"testing"

	"github.com/panyam/bpl/decl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseStmts parses a statement list; input starts just after the opening brace.
func parseStmts(t *testing.T, input string) (*decl.StmtList, *Errors) {
	t.Helper()
	return parseFragment(t, input, (*Parser).ParseStmtList)
}

func parseValidStmts(t *testing.T, input string) *decl.StmtList {
	t.Helper()
	sl, errs := parseStmts(t, input)
	assertNoErrors(t, input, errs)
	require.NotNil(t, sl)
	return sl
}

func TestBigBlockStructure(t *testing.T) {
	t.Run("empty list has one block", func(t *testing.T) {
		sl := parseValidStmts(t, "}")
		require.Len(t, sl.BigBlocks, 1)
		bb := sl.BigBlocks[0]
		assert.Empty(t, bb.Label)
		assert.Empty(t, bb.Cmds)
		assert.Nil(t, bb.Ec)
		assert.Nil(t, bb.Tc)
		assert.Equal(t, decl.Location{Line: 1, Col: 1}, sl.EndCurly)
	})

	t.Run("structured command ends a block", func(t *testing.T) {
		sl := parseValidStmts(t, "if (*) {} else {} goto L; }")
		require.Len(t, sl.BigBlocks, 2)
		_, ok := sl.BigBlocks[0].Ec.(*decl.IfCmd)
		assert.True(t, ok)
		assert.Nil(t, sl.BigBlocks[0].Tc)
		assert.Nil(t, sl.BigBlocks[1].Ec)
		gotoCmd, ok := sl.BigBlocks[1].Tc.(*decl.GotoCmd)
		require.True(t, ok)
		assert.Equal(t, []string{"L"}, gotoCmd.Labels)
	})

	t.Run("labels start blocks", func(t *testing.T) {
		sl := parseValidStmts(t, "a := 1; L1: b := 2; c := 3; L2: return; }")
		require.Len(t, sl.BigBlocks, 3)
		assert.Equal(t, "", sl.BigBlocks[0].Label)
		assert.Len(t, sl.BigBlocks[0].Cmds, 1)
		assert.Equal(t, "L1", sl.BigBlocks[1].Label)
		assert.Len(t, sl.BigBlocks[1].Cmds, 2)
		assert.Equal(t, "L2", sl.BigBlocks[2].Label)
		assert.Empty(t, sl.BigBlocks[2].Cmds)
		_, ok := sl.BigBlocks[2].Tc.(*decl.ReturnCmd)
		assert.True(t, ok)
	})

	t.Run("trailing label", func(t *testing.T) {
		sl := parseValidStmts(t, "x := 1; done: }")
		require.Len(t, sl.BigBlocks, 2)
		assert.Equal(t, "done", sl.BigBlocks[1].Label)
		assert.Empty(t, sl.BigBlocks[1].Cmds)
	})

	t.Run("consecutive labels", func(t *testing.T) {
		sl := parseValidStmts(t, "A: B: x := 1; }")
		require.Len(t, sl.BigBlocks, 2)
		assert.Equal(t, "A", sl.BigBlocks[0].Label)
		assert.Empty(t, sl.BigBlocks[0].Cmds)
		assert.Equal(t, "B", sl.BigBlocks[1].Label)
	})

	t.Run("commands after a transfer open a new block", func(t *testing.T) {
		sl := parseValidStmts(t, "return; x := 1; }")
		require.Len(t, sl.BigBlocks, 2)
		assert.NotNil(t, sl.BigBlocks[0].Tc)
		assert.Len(t, sl.BigBlocks[1].Cmds, 1)
	})
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"assert", "assert x > 0; }", "assert x > 0;"},
		{"assert with attributes", `assert {:msg "m"} {:id 1} x; }`, `assert {:msg "m"} {:id 1} x;`},
		{"assume", "assume p ==> q; }", "assume p ==> q;"},
		{"havoc", "havoc x, y; }", "havoc x, y;"},
		{"assignment", "x := 1; }", "x := 1;"},
		{"parallel assignment", "x, m[i][j] := 1, 2; }", "x, m[i][j] := 1, 2;"},
		{"empty map index", "m[] := 1; }", "m[] := 1;"},
		{"call", "call P(x, 1); }", "call P(x, 1);"},
		{"call with wildcard argument", "call P(x, *); }", "call P(x, *);"},
		{"call with outputs", "call r, s := P(1); }", "call r, s := P(1);"},
		{"call with single discarded output", "call * := P(); }", "call * := P();"},
		{"call with discarded outputs", "call *, s := P(); }", "call *, s := P();"},
		{"call with discarded second output", "call r, * := P(); }", "call r, * := P();"},
		{"call with attributes", "call {:async} P(); }", "call {:async} P();"},
		{"call forall", "call forall P(*, 1); }", "call forall P(*, 1);"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sl := parseValidStmts(t, tt.input)
			require.Len(t, sl.BigBlocks, 1)
			require.Len(t, sl.BigBlocks[0].Cmds, 1)
			assertNodeEqual(t, tt.input, tt.expected, sl.BigBlocks[0].Cmds[0])
		})
	}
}

func TestCallOutputs(t *testing.T) {
	sl := parseValidStmts(t, "call *, s := P(*); }")
	call, ok := sl.BigBlocks[0].Cmds[0].(*decl.CallCmd)
	require.True(t, ok)
	require.Len(t, call.Outs, 2)
	assert.Nil(t, call.Outs[0])
	assert.Equal(t, "s", call.Outs[1].Name)
	require.Len(t, call.Ins, 1)
	assert.Nil(t, call.Ins[0])
	assert.Equal(t, "P", call.Callee)

	sl = parseValidStmts(t, "call * := P(); }")
	call = sl.BigBlocks[0].Cmds[0].(*decl.CallCmd)
	require.Len(t, call.Outs, 1)
	assert.Nil(t, call.Outs[0])
	assert.Empty(t, call.Ins)
}

func TestAssignmentPosition(t *testing.T) {
	sl := parseValidStmts(t, "x := 1; }")
	c := sl.BigBlocks[0].Cmds[0].(*decl.AssignCmd)
	assert.Equal(t, decl.Location{Line: 1, Col: 3}, c.Pos())
	require.Len(t, c.Lhss, 1)
	assert.Equal(t, "x", c.Lhss[0].AssignedVariable().Name)
}

func TestMapAssignTarget(t *testing.T) {
	sl := parseValidStmts(t, "m[i][j] := v; }")
	c := sl.BigBlocks[0].Cmds[0].(*decl.AssignCmd)
	outer, ok := c.Lhss[0].(*decl.MapAssignLhs)
	require.True(t, ok)
	assert.Equal(t, "j", outer.Indexes[0].String())
	inner, ok := outer.Map.(*decl.MapAssignLhs)
	require.True(t, ok)
	assert.Equal(t, "i", inner.Indexes[0].String())
	assert.Equal(t, "m", outer.AssignedVariable().Name)
}

func TestStructuredCommands(t *testing.T) {
	t.Run("while with invariants", func(t *testing.T) {
		sl := parseValidStmts(t, "while (x > 0) free invariant a; invariant b; { x := x - 1; } }")
		w, ok := sl.BigBlocks[0].Ec.(*decl.WhileCmd)
		require.True(t, ok)
		assert.Equal(t, "x > 0", w.Guard.String())
		require.Len(t, w.Invariants, 2)
		assert.True(t, w.Invariants[0].Free)
		assert.Equal(t, "free invariant a;", w.Invariants[0].String())
		assert.False(t, w.Invariants[1].Free)
		require.Len(t, w.Body.BigBlocks, 1)
		assert.Len(t, w.Body.BigBlocks[0].Cmds, 1)
	})

	t.Run("nondeterministic guard", func(t *testing.T) {
		sl := parseValidStmts(t, "while (*) { } }")
		w := sl.BigBlocks[0].Ec.(*decl.WhileCmd)
		assert.Nil(t, w.Guard)
		assert.Empty(t, w.Invariants)
	})

	t.Run("break", func(t *testing.T) {
		sl := parseValidStmts(t, "L: while (*) { break; break L; } }")
		assert.Equal(t, "L", sl.BigBlocks[0].Label)
		w := sl.BigBlocks[0].Ec.(*decl.WhileCmd)
		require.Len(t, w.Body.BigBlocks, 2)
		assert.Equal(t, "break;", w.Body.BigBlocks[0].Ec.String())
		assert.Equal(t, "break L;", w.Body.BigBlocks[1].Ec.String())
	})

	t.Run("else if chain", func(t *testing.T) {
		sl := parseValidStmts(t, "if (a) { x := 1; } else if (b) { } else { x := 2; } }")
		c := sl.BigBlocks[0].Ec.(*decl.IfCmd)
		assert.Equal(t, "a", c.Guard.String())
		assert.Nil(t, c.Else)
		require.NotNil(t, c.ElseIf)
		assert.Equal(t, "b", c.ElseIf.Guard.String())
		require.NotNil(t, c.ElseIf.Else)
		assert.Len(t, c.ElseIf.Else.BigBlocks[0].Cmds, 1)
	})

	t.Run("if without else", func(t *testing.T) {
		sl := parseValidStmts(t, "if (a) { } x := 1; }")
		require.Len(t, sl.BigBlocks, 2)
		c := sl.BigBlocks[0].Ec.(*decl.IfCmd)
		assert.Nil(t, c.Else)
		assert.Nil(t, c.ElseIf)
	})
}

func TestStatementErrors(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		errorContains string
	}{
		{"unexpected token", "x := 1; 42; y := 2; }", "invalid statement"},
		{"bad guard", "if (;) { } }", "invalid Guard"},
		{"bad else", "if (a) { } else x := 1; }", "invalid IfCmd"},
		{"identifier without assignment", "x + 1; }", "invalid LabelOrAssign"},
		{"call without arguments", "call P; }", "invalid CallCmd"},
		{"call keyword only", "call ; }", "invalid CallCmd"},
		{"bad call output", "call r, 3 := P(); }", "invalid CallOutIdent"},
		{"missing semicolon", "x := 1 }", `";" expected`},
		{"missing invariant", "while (*) free x; { } }", `"invariant" expected`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := parseStmts(t, tt.input)
			assertErrorContains(t, tt.input, errs, tt.errorContains)
		})
	}
}

func TestStatementRecovery(t *testing.T) {
	sl, errs := parseStmts(t, "x := 1; 42; y := 2; }")
	assert.Equal(t, 1, errs.Count)
	require.Len(t, sl.BigBlocks, 1)
	assert.Len(t, sl.BigBlocks[0].Cmds, 2)
}

func TestMalformedGuardIsNotNondeterministic(t *testing.T) {
	sl, errs := parseStmts(t, "if (;) { } }")
	assert.Equal(t, 1, errs.Count)
	c := sl.BigBlocks[0].Ec.(*decl.IfCmd)
	assert.NotNil(t, c.Guard)
}
