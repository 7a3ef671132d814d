package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		defines  []string
		expected string
	}{
		{"no directives", "var x: int;\naxiom true;\n", nil, "var x: int;\naxiom true;\n"},
		{"defined", "#if A\nvar x: int;\n#endif\n", []string{"A"}, "\nvar x: int;\n\n"},
		{"undefined", "#if A\nvar x: int;\n#endif\n", nil, "\n\n\n"},
		{"else branch", "#if A\na;\n#else\nb;\n#endif", nil, "\n\n\nb;\n"},
		{"negated", "#if !A\na;\n#else\nb;\n#endif", []string{"A"}, "\n\n\nb;\n"},
		{"nested inactive", "#if A\n#if B\nx;\n#else\ny;\n#endif\n#endif\nz;", []string{"B"}, "\n\n\n\n\n\n\nz;"},
		{"nested active", "#if A\n#if B\nx;\n#else\ny;\n#endif\n#endif", []string{"A"}, "\n\n\n\ny;\n\n"},
		{"indented directive", "  #if A\nx;\n  #endif\n", []string{" A "}, "\nx;\n\n"},
		{"crlf", "#if A\r\nx;\r\n#endif\r\n", nil, "\r\n\r\n\r\n"},
		{"identifier starting with hash", "var #ifx: int;\n", nil, "var #ifx: int;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Preprocess(tt.input, tt.defines)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestPreprocessErrors(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		errorContains string
	}{
		{"else without if", "x;\n#else\n", "line 2: #else without #if"},
		{"endif without if", "#endif\n", "line 1: #endif without #if"},
		{"duplicate else", "#if A\n#else\n#else\n#endif\n", "line 3: duplicate #else for #if on line 1"},
		{"unterminated", "x;\n#if A\ny;\n", "line 2: #if without #endif"},
		{"missing name", "#if\n#endif\n", "line 1: #if takes exactly one name"},
		{"two names", "#if A B\n#endif\n", "line 1: #if takes exactly one name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Preprocess(tt.input, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}
