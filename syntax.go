package testgen

import "strings"

// BalancedFragment is the result of a successful closeBrackets call: the
// possibly-suffixed source, plus a marker that the source passed the
// permissive statement-level check closeBrackets applies after balancing.
// It stands in for a full AST — the engine never inspects fragment
// structure beyond "did this parse".
type BalancedFragment struct {
	Source string
	Parsed bool
}

// closeBrackets scans code left to right, tracking a stack of expected
// closers for "(", "{", "[". Text inside a "// ..." line comment is ignored.
// A closer that does not match the stack top fails the call. Otherwise the
// remaining expected closers are appended in stack order and the result is
// checked with a permissive statement-level balance pass (quotes and
// brackets fully closed, no stray top-level closer). Returns false when the
// input cannot be repaired this way.
func closeBrackets(code string) (BalancedFragment, bool) {
	stack := make([]byte, 0, 8)
	inLineComment := false
	var quote byte

	for i := 0; i < len(code); i++ {
		c := code[i]

		if inLineComment {
			if c == '\n' {
				inLineComment = false
			}
			continue
		}

		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}

		switch {
		case c == '/' && i+1 < len(code) && code[i+1] == '/':
			inLineComment = true
			i++
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '(' || c == '{' || c == '[':
			stack = append(stack, bracketPairs[c])
		case c == ')' || c == '}' || c == ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return BalancedFragment{}, false
			}
			stack = stack[:len(stack)-1]
		}
	}

	if quote != 0 {
		return BalancedFragment{}, false
	}

	suffix := make([]byte, len(stack))
	for i := range stack {
		suffix[i] = stack[len(stack)-1-i]
	}
	source := code + string(suffix)

	return BalancedFragment{Source: source, Parsed: true}, true
}

// trimCompletion drops an incomplete trailing line (one not ending in ";",
// "}", or ")" modulo trailing whitespace), then truncates at the first
// position where the running count of "}" or ")" closers would exceed the
// running count of their openers seen so far — defensive against a
// completion that breaks out of the surrounding scope. A line left
// incomplete by that truncation is dropped as well, so the result is
// idempotent.
func trimCompletion(code string) string {
	dropIncomplete := func(s string) string {
		lines := strings.Split(s, "\n")
		for len(lines) > 0 {
			last := strings.TrimRight(lines[len(lines)-1], " \t\r")
			if last == "" {
				lines = lines[:len(lines)-1]
				continue
			}
			if strings.HasSuffix(last, ";") || strings.HasSuffix(last, "}") || strings.HasSuffix(last, ")") {
				break
			}
			lines = lines[:len(lines)-1]
		}
		return strings.Join(lines, "\n")
	}
	trimmed := dropIncomplete(code)

	depthParen, depthBrace := 0, 0
	cut := len(trimmed)
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case '(':
			depthParen++
		case '{':
			depthBrace++
		case ')':
			depthParen--
		case '}':
			depthBrace--
		}
		if depthParen < 0 || depthBrace < 0 {
			cut = i
			break
		}
	}

	return strings.TrimSpace(dropIncomplete(trimmed[:cut]))
}

// commentOut prefixes every non-empty line of code with "// " and ensures
// the result ends with a trailing newline. Empty input returns empty output.
func commentOut(code string) string {
	if code == "" {
		return ""
	}
	lines := strings.Split(code, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(LineCommentPrefix)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// trimAndCombineDocComment splits raw into lines, strips a leading "*" from
// each, trims whitespace, drops lines left empty, and comments out the
// remainder.
func trimAndCombineDocComment(raw string) string {
	lines := strings.Split(raw, "\n")
	var kept []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	return commentOut(strings.Join(kept, "\n"))
}
