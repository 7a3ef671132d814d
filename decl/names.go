package decl

// reservedWords are the keywords of the language. A name spelled like one of
// them was written with a leading `\` and must be printed that way.
var reservedWords = map[string]bool{
	"var": true, "hole": true, "where": true, "int": true, "bool": true,
	"const": true, "unique": true, "extends": true, "complete": true,
	"function": true, "returns": true, "axiom": true, "type": true,
	"procedure": true, "implementation": true, "modifies": true,
	"free": true, "requires": true, "ensures": true, "goto": true, "return": true,
	"if": true, "else": true, "while": true, "invariant": true, "break": true,
	"assert": true, "assume": true, "havoc": true, "call": true, "forall": true,
	"false": true, "true": true, "old": true, "then": true, "exists": true, "lambda": true,
}

// IsReserved reports whether name is a keyword.
func IsReserved(name string) bool { return reservedWords[name] }

// QuoteIdent returns name as it must be written in source text.
func QuoteIdent(name string) string {
	if reservedWords[name] {
		return `\` + name
	}
	return name
}

func quoteIdents(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = QuoteIdent(n)
	}
	return out
}
