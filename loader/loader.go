package loader

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/panyam/bpl/decl"
	"github.com/panyam/bpl/parser"
	"golang.org/x/text/unicode/norm"
)

// Options control how each file is preprocessed and parsed.
type Options struct {
	Defines      []string // names considered defined by #if
	MaxDepth     int      // parser nesting limit, 0 => parser.DefaultMaxDepth
	MinErrDist   int      // tokens between reported syntax errors, 0 => parser.DefaultMinErrDist
	KeepComments bool     // scan comments as tokens; the parser skips them
	MaxErrors    int      // limit on collected I/O and preprocessing errors, 0 => no limit
}

func DefaultOptions() Options {
	return Options{
		MaxDepth:   parser.DefaultMaxDepth,
		MinErrDist: parser.DefaultMinErrDist,
	}
}

// Result is the outcome of parsing one file.
type Result struct {
	Path    string        // canonical path
	Program *decl.Program // best effort tree when Errors.Count > 0
	Errors  *parser.Errors
}

// Results holds every file of a multi-file run and their merged program.
type Results struct {
	Files   []*Result
	Program *decl.Program
}

// ErrorCount is the total number of syntax and semantic errors over all files.
func (r *Results) ErrorCount() (n int) {
	for _, f := range r.Files {
		n += f.Errors.Count
	}
	return
}

// Loader reads, preprocesses and parses source files.
type Loader struct {
	resolver FileResolver
	opts     Options

	mutex  sync.Mutex
	parsed map[string]*Result
}

func NewLoader(resolver FileResolver, opts Options) *Loader {
	if resolver == nil {
		resolver = NewDefaultFileResolver()
	}
	return &Loader{
		resolver: resolver,
		opts:     opts,
		parsed:   make(map[string]*Result),
	}
}

// ParseFile parses a single file. The returned error covers failures to read
// or preprocess the file; syntax problems are reported in Result.Errors.
func (l *Loader) ParseFile(path string) (*Result, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.parseFile(path)
}

// readSource resolves path and returns its preprocessed text.
func (l *Loader) readSource(path string) (src string, canonicalPath string, err error) {
	content, canonicalPath, err := l.resolver.Resolve(path)
	if err != nil {
		return "", "", fmt.Errorf("cannot resolve '%s': %w", path, err)
	}
	defer content.Close()

	data, err := io.ReadAll(content)
	if err != nil {
		return "", "", fmt.Errorf("could not read '%s': %w", canonicalPath, err)
	}
	src, err = Preprocess(string(data), l.opts.Defines)
	if err != nil {
		return "", "", fmt.Errorf("preprocessing '%s': %w", canonicalPath, err)
	}
	return src, canonicalPath, nil
}

// newLexer scans src after NFC normalisation.
func (l *Loader) newLexer(src string) *parser.Lexer {
	lexer := parser.NewLexer(norm.NFC.Reader(strings.NewReader(src)))
	lexer.KeepComments = l.opts.KeepComments
	return lexer
}

// ScanFile returns the token stream of a file, up to and including EOF.
func (l *Loader) ScanFile(path string) ([]parser.Token, string, error) {
	src, canonicalPath, err := l.readSource(path)
	if err != nil {
		return nil, "", err
	}
	lexer := l.newLexer(src)
	tokens := parser.ScanAll(lexer)
	if lexErr := lexer.Err(); lexErr != nil {
		slog.Debug("Lexical problem", "path", canonicalPath, "error", lexErr)
	}
	return tokens, canonicalPath, nil
}

func (l *Loader) parseFile(path string) (*Result, error) {
	src, canonicalPath, err := l.readSource(path)
	if err != nil {
		return nil, err
	}
	if res, found := l.parsed[canonicalPath]; found {
		slog.Debug("File already parsed", "path", canonicalPath)
		return res, nil
	}
	slog.Debug("Parsing file", "path", canonicalPath, "bytes", len(src), "defines", l.opts.Defines)

	lexer := l.newLexer(src)
	errs := parser.NewErrors(nil)
	p := parser.NewParser(lexer, errs)
	if l.opts.MaxDepth > 0 {
		p.MaxDepth = l.opts.MaxDepth
	}
	if l.opts.MinErrDist > 0 {
		p.MinErrDist = l.opts.MinErrDist
	}
	prog := p.Parse()
	if lexErr := lexer.Err(); lexErr != nil {
		slog.Debug("Lexical problem", "path", canonicalPath, "error", lexErr)
	}
	slog.Debug("Parsed file", "path", canonicalPath,
		"declarations", len(prog.TopLevelDeclarations), "errors", errs.Count)

	res := &Result{Path: canonicalPath, Program: prog, Errors: errs}
	l.parsed[canonicalPath] = res
	return res, nil
}

// ParseFiles parses every path and merges the declarations into one program
// in argument order. A file named twice contributes its declarations once.
// Files that could not be read are skipped and their errors joined into the
// returned error; the Results still cover every file that was parsed.
func (l *Loader) ParseFiles(paths ...string) (*Results, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	collector := &ErrorCollector{MaxErrors: l.opts.MaxErrors}
	results := &Results{Program: decl.NewProgram()}
	seen := make(map[string]bool)
	for _, path := range paths {
		res, err := l.parseFile(path)
		if err != nil {
			if !collector.AddErrors(err) {
				break
			}
			continue
		}
		if seen[res.Path] {
			continue
		}
		seen[res.Path] = true
		results.Files = append(results.Files, res)
		results.Program.Merge(res.Program)
	}
	return results, collector.Err()
}
