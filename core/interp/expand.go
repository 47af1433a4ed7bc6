package interp

import (
	"strconv"
	"strings"
)

// ExpandVariables performs one pass of variable expansion over a raw
// line: $NAME, ${NAME}, and $?. Single-quoted and escaped dollars are
// left alone; expansion applies in double quotes and bare text. Unset
// variables expand to the empty string, and inserted values are not
// rescanned for further expansion.
func ExpandVariables(line string, lookup func(string) (string, bool), lastExit int) string {
	var out strings.Builder
	var sc scanner

	for i := 0; i < len(line); i++ {
		ch := line[i]
		if ch == '$' && (sc.state == stateNormal || sc.state == stateDouble) {
			if name, width, ok := parseVarRef(line[i:]); ok {
				if name == "?" {
					out.WriteString(strconv.Itoa(lastExit))
				} else if v, found := lookup(name); found {
					out.WriteString(v)
				}
				i += width - 1
				continue
			}
		}
		sc.step(ch)
		out.WriteByte(ch)
	}
	return out.String()
}

// parseVarRef matches a variable reference at the start of s, which
// begins with '$'. It returns the name and the width of the whole
// reference. A dollar not followed by a valid reference stays literal.
func parseVarRef(s string) (string, int, bool) {
	if len(s) < 2 {
		return "", 0, false
	}
	switch {
	case s[1] == '?':
		return "?", 2, true

	case s[1] == '{':
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return "", 0, false
		}
		name := s[2:end]
		if !validName(name) {
			return "", 0, false
		}
		return name, end + 1, true

	default:
		n := 1
		for n < len(s) && isNameByte(s[n], n > 1) {
			n++
		}
		if n == 1 {
			return "", 0, false
		}
		return s[1:n], n, true
	}
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i], i > 0) {
			return false
		}
	}
	return true
}

func isNameByte(ch byte, tail bool) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '_':
		return true
	case ch >= '0' && ch <= '9':
		return tail
	}
	return false
}

// Substitute replaces $(...) and `...` spans in a segment with the
// stdout of run, stripping one trailing newline from each capture.
// Dollar-paren nests by balanced parentheses; backticks do not nest.
// An unterminated substitution consumes the rest of the segment. The
// only error surfaced from run is the recursion guard.
func Substitute(segment string, run func(string) (string, error)) (string, error) {
	var out strings.Builder
	var sc scanner

	for i := 0; i < len(segment); i++ {
		ch := segment[i]
		if sc.state == stateNormal || sc.state == stateDouble {
			var body string
			width := 0
			switch {
			case ch == '$' && i+1 < len(segment) && segment[i+1] == '(':
				body, width = scanParens(segment[i:])
			case ch == '`':
				body, width = scanBackticks(segment[i:])
			}
			if width > 0 {
				stdout, err := run(body)
				if err != nil {
					return "", err
				}
				out.WriteString(strings.TrimSuffix(stdout, "\n"))
				i += width - 1
				continue
			}
		}
		sc.step(ch)
		out.WriteByte(ch)
	}
	return out.String(), nil
}

// scanParens consumes a $(...) span, s starting at the dollar.
func scanParens(s string) (string, int) {
	depth := 0
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[2:i], i + 1
			}
		}
	}
	return s[2:], len(s)
}

// scanBackticks consumes a `...` span, s starting at the opening
// backtick. A backslash-escaped backtick is part of the body.
func scanBackticks(s string) (string, int) {
	var body strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) && s[i+1] == '`' {
				body.WriteByte('`')
				i++
				continue
			}
			body.WriteByte('\\')
		case '`':
			return body.String(), i + 1
		default:
			body.WriteByte(s[i])
		}
	}
	return body.String(), len(s)
}
