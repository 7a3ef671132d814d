package loader

import (
	"fmt"
	"strings"
)

type condFrame struct {
	line     int
	outer    bool // enclosing region active
	cond     bool
	seenElse bool
}

func (c *condFrame) active() bool {
	if c.seenElse {
		return c.outer && !c.cond
	}
	return c.outer && c.cond
}

// Preprocess evaluates `#if NAME`, `#if !NAME`, `#else` and `#endif` lines
// against defines. Directive lines and lines in inactive regions are replaced
// by empty lines so positions reported by the parser still match the input.
func Preprocess(src string, defines []string) (string, error) {
	defined := make(map[string]bool, len(defines))
	for _, d := range defines {
		defined[strings.TrimSpace(d)] = true
	}

	lines := strings.SplitAfter(src, "\n")
	var stack []*condFrame
	active := true
	var out strings.Builder
	out.Grow(len(src))

	for i, line := range lines {
		lineNo := i + 1
		body := strings.TrimRight(line, "\r\n")
		newline := line[len(body):]

		fields := strings.Fields(body)
		directive := ""
		if len(fields) > 0 {
			switch fields[0] {
			case "#if", "#else", "#endif":
				directive = fields[0]
			}
		}

		switch directive {
		case "#if":
			if len(fields) != 2 || fields[1] == "!" {
				return "", fmt.Errorf("line %d: #if takes exactly one name", lineNo)
			}
			name, negate := strings.CutPrefix(fields[1], "!")
			stack = append(stack, &condFrame{line: lineNo, outer: active, cond: defined[name] != negate})
		case "#else":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #else without #if", lineNo)
			}
			top := stack[len(stack)-1]
			if top.seenElse {
				return "", fmt.Errorf("line %d: duplicate #else for #if on line %d", lineNo, top.line)
			}
			top.seenElse = true
		case "#endif":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #endif without #if", lineNo)
			}
			stack = stack[:len(stack)-1]
		}

		if len(stack) > 0 {
			active = stack[len(stack)-1].active()
		} else {
			active = true
		}

		if directive == "" && active {
			out.WriteString(line)
		} else {
			out.WriteString(newline)
		}
	}

	if len(stack) > 0 {
		return "", fmt.Errorf("line %d: #if without #endif", stack[len(stack)-1].line)
	}
	return out.String(), nil
}
