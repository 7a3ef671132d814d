package parser

import (
	"testing"

	"github.com/panyam/bpl/decl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConsts(t *testing.T) {
	t.Run("shared clauses", func(t *testing.T) {
		prog := parseValid(t, "const {:tag} unique a, b: int extends p, unique q complete;")
		require.Len(t, prog.TopLevelDeclarations, 2)
		a := prog.TopLevelDeclarations[0].(*decl.ConstDecl)
		b := prog.TopLevelDeclarations[1].(*decl.ConstDecl)
		assert.Equal(t, "const {:tag} unique a: int extends p, unique q complete;", a.String())
		assert.Equal(t, "const {:tag} unique b: int extends p, unique q complete;", b.String())
		assert.True(t, b.Unique)
		assert.True(t, b.ChildrenComplete)
		require.Len(t, b.Parents, 2)
		assert.True(t, b.Parents[1].Unique)
		// each constant owns its parent list
		assert.NotSame(t, a.Parents[0], b.Parents[0])
		assert.NotSame(t, a.Parents[0].Parent, b.Parents[0].Parent)
	})

	t.Run("empty extends", func(t *testing.T) {
		prog := parseValid(t, "const c: int extends;")
		c := prog.TopLevelDeclarations[0].(*decl.ConstDecl)
		assert.NotNil(t, c.Parents)
		assert.Empty(t, c.Parents)
		assert.Equal(t, "const c: int extends;", c.String())
	})

	t.Run("no extends", func(t *testing.T) {
		prog := parseValid(t, "const c: int;")
		assert.Nil(t, prog.TopLevelDeclarations[0].(*decl.ConstDecl).Parents)
	})

	t.Run("complete only", func(t *testing.T) {
		prog := parseValid(t, "const c: int extends complete;")
		c := prog.TopLevelDeclarations[0].(*decl.ConstDecl)
		assert.Empty(t, c.Parents)
		assert.True(t, c.ChildrenComplete)
	})
}

func TestParseFunctions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"signature only", "function f(x: int): int;",
			[]string{"function f(x: int) returns (int);"}},
		{"returns clause", "function f(x: int) returns (r: bool);",
			[]string{"function f(x: int) returns (r: bool);"}},
		{"unnamed formals", "function f(int, [int]bool): int;",
			[]string{"function f(int, [int]bool) returns (int);"}},
		{"inferred formals", "function f(x, y: int, b: bool) returns (int);",
			[]string{"function f(x: int, y: int, b: bool) returns (int);"}},
		{"definition axiom", "function f(x: int): int { x + 1 }",
			[]string{
				"function f(x: int) returns (int);",
				"axiom (forall x: int :: { f(x): int } (f(x): int) == (x + 1));",
			}},
		{"constant function", "function c(): int { 3 }",
			[]string{"function c() returns (int);", "axiom (c(): int) == 3;"}},
		{"unnamed formals get dummy names", "function g(int, bool): int { 0 }",
			[]string{
				"function g(int, bool) returns (int);",
				"axiom (forall _0: int, _1: bool :: { g(_0, _1): int } (g(_0, _1): int) == 0);",
			}},
		{"type parameters", "function id<T>(t: T) returns (T) { t }",
			[]string{
				"function id<T>(t: T) returns (T);",
				"axiom (forall <T> t: T :: { id(t): T } (id(t): T) == t);",
			}},
		{"attributes carry over to the axiom", "function {:weight 2} f(x: int): int { x }",
			[]string{
				"function {:weight 2} f(x: int) returns (int);",
				"axiom (forall x: int :: {:weight 2} { f(x): int } (f(x): int) == x);",
			}},
		{"inline keeps the body", "function {:inline} f(x: int): int { x }",
			[]string{"function {:inline} f(x: int) returns (int) { x }"}},
		{"inline true keeps the body", "function {:inline true} f(x: int): int { x }",
			[]string{"function {:inline true} f(x: int) returns (int) { x }"}},
		{"inline false gets an axiom", "function {:inline false} c(): int { 1 }",
			[]string{"function {:inline false} c() returns (int);", "axiom (c(): int) == 1;"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parseValid(t, tt.input)
			var actual []string
			for _, d := range prog.TopLevelDeclarations {
				actual = append(actual, d.String())
			}
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestDefinitionAxiom(t *testing.T) {
	prog := parseValid(t, "function f(x: int): int { x }")
	require.Len(t, prog.TopLevelDeclarations, 2)
	fn := prog.TopLevelDeclarations[0].(*decl.FunctionDecl)
	assert.Nil(t, fn.Body)
	ax := prog.TopLevelDeclarations[1].(*decl.AxiomDecl)
	assert.Equal(t, "autogenerated definition axiom", ax.Comment)
	assert.Equal(t, fn.Pos(), ax.Pos())

	q := ax.Expr.(*decl.QuantifierExpr)
	require.Len(t, q.Triggers, 1)
	assert.True(t, q.Triggers[0].Positive)
	// the coerced result type is a copy of the declared one
	coerce := q.Triggers[0].Exprs[0].(*decl.CoerceExpr)
	assert.NotSame(t, fn.Result.Type, coerce.Type)
}

func TestFunctionErrors(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		errorContains string
	}{
		{"unspecified last type", "function f(x: int, y) returns (int);", "the type of the last parameter is unspecified"},
		{"non identifier formal", "function f(int, y: int) returns (int);", "expecting an identifier as parameter name"},
		{"compound name", "function f(C a: int) returns (int);", "expected identifier before ':'"},
		{"missing result", "function f(x: int);", "invalid Function"},
		{"missing body", "function f(x: int): int x", "invalid Function"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := parseProgram(t, tt.input)
			assertErrorContains(t, tt.input, errs, tt.errorContains)
		})
	}
}

func TestMissingFunctionResultDefaultsToInt(t *testing.T) {
	prog, errs := parseProgram(t, "function f(x: int);")
	assert.Equal(t, 1, errs.Count)
	require.Len(t, prog.TopLevelDeclarations, 1)
	fn := prog.TopLevelDeclarations[0].(*decl.FunctionDecl)
	require.NotNil(t, fn.Result)
	assert.Equal(t, "int", fn.Result.Type.String())
}

func TestFormalInferenceReportsEveryError(t *testing.T) {
	// parameter errors are reported without debouncing
	_, errs := parseProgram(t, "function f(int, bool, y: int) returns (int);")
	assert.Equal(t, 2, errs.Count)
}

func TestFormalInferenceStopsAtUnspecifiedType(t *testing.T) {
	// nothing to the right of b, so a is never resolved
	_, errs := parseProgram(t, "function f(a, x: int, b) returns (int);")
	assert.Equal(t, []string{"-- line 1 col 23: the type of the last parameter is unspecified"}, errs.Messages())
}

func TestParseTypeDeclarations(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"abstract", "type T;", []string{"type T;"}},
		{"constructor", "type {:datatype} C a b, D;", []string{"type {:datatype} C _0 _1;", "type {:datatype} D;"}},
		{"synonym", "type S a = [a]int;", []string{"type S a = [a]int;"}},
		{"synonym of constructor", "type L = C int bool;", []string{"type L = C int bool;"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parseValid(t, tt.input)
			var actual []string
			for _, d := range prog.TopLevelDeclarations {
				actual = append(actual, d.String())
			}
			assert.Equal(t, tt.expected, actual)
		})
	}

	prog := parseValid(t, "type C a b;")
	assert.Equal(t, 2, prog.TopLevelDeclarations[0].(*decl.TypeCtorDecl).Arity)
	prog = parseValid(t, "type S a b = int;")
	syn := prog.TopLevelDeclarations[0].(*decl.TypeSynonymDecl)
	require.Len(t, syn.TypeParams, 2)
	assert.Equal(t, "b", syn.TypeParams[1].Name)
}

func TestParseGlobalVars(t *testing.T) {
	prog := parseValid(t, "var {:shared} x, y: int where x > 0, z: bool;")
	require.Len(t, prog.TopLevelDeclarations, 3)
	assert.Equal(t, "var {:shared} x: int where x > 0;", prog.TopLevelDeclarations[0].String())
	assert.Equal(t, "var {:shared} y: int where x > 0;", prog.TopLevelDeclarations[1].String())
	assert.Equal(t, "var {:shared} z: bool;", prog.TopLevelDeclarations[2].String())
}

func TestParseAxioms(t *testing.T) {
	prog := parseValid(t, "axiom {:id 1} (forall x: int :: x == x);")
	require.Len(t, prog.TopLevelDeclarations, 1)
	assert.Equal(t, "axiom {:id 1} (forall x: int :: x == x);", prog.TopLevelDeclarations[0].String())

	_, errs := parseProgram(t, "axiom {x} true;")
	assertErrorContains(t, "axiom {x} true;", errs, "only attributes, not triggers, allowed here")
}

func TestParseProcedures(t *testing.T) {
	t.Run("declaration with specs", func(t *testing.T) {
		prog := parseValid(t, "procedure {:entry} P<T>(x: T) returns (r: int); free requires true; modifies g, h; ensures r > 0;")
		require.Len(t, prog.TopLevelDeclarations, 1)
		proc := prog.TopLevelDeclarations[0].(*decl.ProcedureDecl)
		assert.Equal(t, "procedure {:entry} P<T>(x: T) returns (r: int);", proc.String())
		require.Len(t, proc.Requires, 1)
		assert.True(t, proc.Requires[0].Free)
		require.Len(t, proc.Ensures, 1)
		assert.False(t, proc.Ensures[0].Free)
		assert.Len(t, proc.Modifies, 2)
	})

	t.Run("empty modifies", func(t *testing.T) {
		prog := parseValid(t, "procedure P(); modifies;")
		assert.Empty(t, prog.TopLevelDeclarations[0].(*decl.ProcedureDecl).Modifies)
	})

	t.Run("body yields an implementation", func(t *testing.T) {
		prog := parseValid(t, "procedure {:entry} P(x: int where x > 0) returns (r: int) requires x > 0; { r := x; }")
		require.Len(t, prog.TopLevelDeclarations, 2)
		proc := prog.TopLevelDeclarations[0].(*decl.ProcedureDecl)
		impl := prog.TopLevelDeclarations[1].(*decl.ImplementationDecl)
		assert.Equal(t, "P", impl.Name)
		assert.NotNil(t, proc.InParams[0].Where)
		assert.Nil(t, impl.InParams[0].Where)
		assert.Equal(t, "x: int", impl.InParams[0].String())
		assert.Empty(t, impl.Attributes)
		assert.Len(t, proc.Requires, 1)
		require.Len(t, impl.Body.BigBlocks, 1)
		assert.Len(t, impl.Body.BigBlocks[0].Cmds, 1)
	})

	t.Run("locals and holes", func(t *testing.T) {
		prog := parseValid(t, "implementation P() { var a: int; var b: int; hole c, d: bool; return; }")
		impl := prog.TopLevelDeclarations[0].(*decl.ImplementationDecl)
		require.Len(t, impl.Locals, 4)
		assert.False(t, impl.Locals[1].Hole)
		assert.True(t, impl.Locals[2].Hole)
		assert.Equal(t, "hole d: bool;", impl.Locals[3].String())
	})

	t.Run("spec body", func(t *testing.T) {
		prog := parseValid(t, "procedure P(); ensures {{ var t: int; A: t := 1; goto B; B: return t > 0; }};")
		proc := prog.TopLevelDeclarations[0].(*decl.ProcedureDecl)
		require.Len(t, proc.Ensures, 1)
		be, ok := proc.Ensures[0].Condition.(*decl.BlockExpr)
		require.True(t, ok)
		assert.Len(t, be.Locals, 1)
		require.Len(t, be.Blocks, 2)
		assert.Equal(t, "A", be.Blocks[0].Label)
		assert.Len(t, be.Blocks[0].Cmds, 1)
		_, ok = be.Blocks[0].Transfer.(*decl.GotoCmd)
		assert.True(t, ok)
		ret, ok := be.Blocks[1].Transfer.(*decl.ReturnExprCmd)
		require.True(t, ok)
		assert.Equal(t, "t > 0", ret.Expr.String())
	})
}

func TestProcedureErrors(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		errorContains string
	}{
		{"where in implementation", "implementation P(x: int where x > 0) { }", "where clause not allowed here"},
		{"spec block with two labels", "procedure P(); requires {{ A: B: return true; }};", "SpecBlock's can only have one label"},
		{"spec block without transfer", "procedure P(); requires {{ A: assume true; }};", "invalid SpecBlock"},
		{"missing body or semicolon", "procedure P() x;", "invalid Procedure"},
		{"empty requires", "procedure P(); requires ;", "invalid SpecPrePost"},
		{"missing formals", "procedure P;", `"(" expected`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := parseProgram(t, tt.input)
			assertErrorContains(t, tt.input, errs, tt.errorContains)
		})
	}
}
