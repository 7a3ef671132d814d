package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panyam/bpl/decl"
	"github.com/panyam/bpl/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func TestParseFileFromDisk(t *testing.T) {
	dir := fs.NewDir(t, "bpl-loader",
		fs.WithFile("prog.bpl", "var g: int;\nprocedure P() { g := 1; }\n"))
	defer dir.Remove()

	l := NewLoader(&DefaultFileResolver{BaseDir: dir.Path()}, DefaultOptions())
	res, err := l.ParseFile("prog.bpl")
	require.NoError(t, err)
	assert.Equal(t, dir.Join("prog.bpl"), res.Path)
	assert.Equal(t, 0, res.Errors.Count)
	require.Len(t, res.Program.TopLevelDeclarations, 3)
	_, ok := res.Program.TopLevelDeclarations[2].(*decl.ImplementationDecl)
	assert.True(t, ok)
}

func TestParseFileMissing(t *testing.T) {
	dir := fs.NewDir(t, "bpl-loader")
	defer dir.Remove()

	l := NewLoader(&DefaultFileResolver{BaseDir: dir.Path()}, DefaultOptions())
	_, err := l.ParseFile("absent.bpl")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), filepath.Join(dir.Path(), "absent.bpl"))
}

func TestParseFileReportsSyntaxErrors(t *testing.T) {
	r := NewMemoryResolver()
	r.WriteFile("bad.bpl", "var x int;\naxiom true;\n")
	res, err := NewLoader(r, DefaultOptions()).ParseFile("bad.bpl")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errors.Count)
	assert.Equal(t, []string{`-- line 1 col 7: ":" expected`}, res.Errors.Messages())
}

func TestParseFileAppliesDefines(t *testing.T) {
	src := "#if WITH_AXIOM\naxiom x > 0;\n#else\nvar x: int;\n#endif\nconst c: int;\n"
	r := NewMemoryResolver()
	r.WriteFile("p.bpl", src)

	res, err := NewLoader(r, DefaultOptions()).ParseFile("p.bpl")
	require.NoError(t, err)
	require.Len(t, res.Program.TopLevelDeclarations, 2)
	assert.Equal(t, "var x: int;", res.Program.TopLevelDeclarations[0].String())
	assert.Equal(t, decl.Location{Line: 6, Col: 7}, res.Program.TopLevelDeclarations[1].Pos())

	opts := DefaultOptions()
	opts.Defines = []string{"WITH_AXIOM"}
	res, err = NewLoader(r, opts).ParseFile("p.bpl")
	require.NoError(t, err)
	require.Len(t, res.Program.TopLevelDeclarations, 2)
	_, ok := res.Program.TopLevelDeclarations[0].(*decl.AxiomDecl)
	assert.True(t, ok)
}

func TestParseFilePreprocessError(t *testing.T) {
	r := NewMemoryResolver()
	r.WriteFile("p.bpl", "#if A\nvar x: int;\n")
	_, err := NewLoader(r, DefaultOptions()).ParseFile("p.bpl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preprocessing 'p.bpl'")
	assert.Contains(t, err.Error(), "#if without #endif")
}

func TestParseFileNormalizesUnicode(t *testing.T) {
	r := NewMemoryResolver()
	r.WriteFile("u.bpl", "var {:msg \"cafe\u0301\"} g: int;")
	res, err := NewLoader(r, DefaultOptions()).ParseFile("u.bpl")
	require.NoError(t, err)
	require.Equal(t, 0, res.Errors.Count)
	v := res.Program.TopLevelDeclarations[0].(*decl.GlobalVarDecl)
	require.Len(t, v.Attributes, 1)
	assert.Equal(t, "caf\u00e9", v.Attributes[0].Params[0].Str)
}

func TestParseFileOptions(t *testing.T) {
	r := NewMemoryResolver()
	r.PreloadFiles(map[string]string{
		"deep.bpl":     "axiom " + strings.Repeat("(", 20) + "true" + strings.Repeat(")", 20) + ";",
		"comments.bpl": "/* header */ const c: int; // trailing\n",
	})

	opts := DefaultOptions()
	opts.MaxDepth = 5
	opts.KeepComments = true
	l := NewLoader(r, opts)

	res, err := l.ParseFile("deep.bpl")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errors.Count)
	assert.Contains(t, res.Errors.Messages()[0], "maximum nesting depth exceeded")

	res, err = l.ParseFile("comments.bpl")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Errors.Count)
	assert.Len(t, res.Program.TopLevelDeclarations, 1)
}

func TestParseFilesMergesInOrder(t *testing.T) {
	r := NewMemoryResolver()
	r.PreloadFiles(map[string]string{
		"a.bpl": "type A;\nvar x int;\n",
		"b.bpl": "type B;\n",
	})
	l := NewLoader(r, DefaultOptions())
	results, err := l.ParseFiles("b.bpl", "a.bpl", "b.bpl")
	require.NoError(t, err)
	require.Len(t, results.Files, 2)
	assert.Equal(t, "b.bpl", results.Files[0].Path)
	assert.Equal(t, "a.bpl", results.Files[1].Path)
	assert.Equal(t, 1, results.ErrorCount())

	var names []string
	for _, d := range results.Program.TopLevelDeclarations {
		names = append(names, d.DeclName())
	}
	assert.Equal(t, []string{"B", "A", "x"}, names)
}

func TestParseFilesCollectsIOErrors(t *testing.T) {
	r := NewMemoryResolver()
	r.WriteFile("ok.bpl", "type T;")
	results, err := NewLoader(r, DefaultOptions()).ParseFiles("missing1.bpl", "ok.bpl", "missing2.bpl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing1.bpl")
	assert.Contains(t, err.Error(), "missing2.bpl")
	require.Len(t, results.Files, 1)
	assert.Len(t, results.Program.TopLevelDeclarations, 1)

	opts := DefaultOptions()
	opts.MaxErrors = 1
	_, err = NewLoader(r, opts).ParseFiles("missing1.bpl", "missing2.bpl")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "missing2.bpl")
}

func TestScanFile(t *testing.T) {
	r := NewMemoryResolver()
	r.WriteFile("t.bpl", "#if A\naxiom true;\n#endif\nvar x: int; // c\n")
	opts := DefaultOptions()
	opts.KeepComments = true
	tokens, path, err := NewLoader(r, opts).ScanFile("t.bpl")
	require.NoError(t, err)
	assert.Equal(t, "t.bpl", path)
	kinds := make([]int, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []int{parser.VAR, parser.IDENT, parser.COLON, parser.INT, parser.SEMICOLON, parser.COMMENT, parser.EOF}, kinds)
	assert.Equal(t, 4, tokens[0].Line)
}

func TestErrorCollector(t *testing.T) {
	c := &ErrorCollector{MaxErrors: 2}
	assert.NoError(t, c.Err())
	assert.True(t, c.AddErrors(nil, errors.New("one")))
	assert.False(t, c.AddErrors(errors.New("two")))
	assert.False(t, c.AddErrors(errors.New("three")))
	assert.Len(t, c.Errors, 2)
	assert.Equal(t, "one\ntwo", c.Err().Error())
}
