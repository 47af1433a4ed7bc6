package interp

import (
	"strings"
)

// RedirKind identifies a redirect operator.
type RedirKind int

const (
	RedirOut    RedirKind = iota // >
	RedirAppend                  // >>
	RedirErr                     // 2>
	RedirIn                      // <
)

// Redirect is one parsed redirect. Target has quoting removed; it is
// empty when the operator had no target word.
type Redirect struct {
	Kind   RedirKind
	Target string
}

// ParseRedirects extracts redirect operators and their target words
// from a pipeline segment, returning the residual command text and the
// redirects in encounter order. "2>" is recognized only when the digit
// starts a word, so "echo file2>out" redirects stdout of "echo file2".
func ParseRedirects(segment string) (string, []Redirect) {
	var (
		redirs []Redirect
		keep   strings.Builder
		sc     scanner
	)

	i := 0
	for i < len(segment) {
		ch := segment[i]
		if !sc.step(ch) {
			keep.WriteByte(ch)
			i++
			continue
		}

		var kind RedirKind
		width := 0
		switch {
		case ch == '>' && i+1 < len(segment) && segment[i+1] == '>':
			kind, width = RedirAppend, 2
		case ch == '>':
			kind, width = RedirOut, 1
		case ch == '<':
			kind, width = RedirIn, 1
		case ch == '2' && i+1 < len(segment) && segment[i+1] == '>' && atWordStart(segment, i):
			kind, width = RedirErr, 2
		}
		if width == 0 {
			keep.WriteByte(ch)
			i++
			continue
		}

		i += width
		for i < len(segment) && (segment[i] == ' ' || segment[i] == '\t') {
			i++
		}
		raw, n := scanWord(segment[i:])
		i += n

		target := ""
		if f := Fields(raw); len(f) > 0 {
			target = f[0]
		}
		redirs = append(redirs, Redirect{Kind: kind, Target: target})
	}
	return keep.String(), redirs
}

// scanWord reads one word honoring quotes, stopping at an unquoted
// blank or redirect operator.
func scanWord(s string) (string, int) {
	var sc scanner
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if peekBare(&sc, ch) && (ch == ' ' || ch == '\t' || ch == '>' || ch == '<') {
			return s[:i], i
		}
		sc.step(ch)
	}
	return s, len(s)
}

// peekBare reports what step would return without advancing the state.
func peekBare(sc *scanner, ch byte) bool {
	if sc.state != stateNormal {
		return false
	}
	return ch != '\\' && ch != '\'' && ch != '"'
}

func atWordStart(s string, i int) bool {
	return i == 0 || s[i-1] == ' ' || s[i-1] == '\t'
}
