// Package interp implements the command interpreter: a quote-aware
// tokenizer, variable and command substitution, and an executor that
// sequences statements, logic chains, and buffered pipelines over a
// fixed command registry.
package interp

import (
	"strings"
)

// lexState enumerates the scanner states. Delimiters and operators are
// recognized only in stateNormal.
type lexState int

const (
	stateNormal lexState = iota
	stateSingle
	stateDouble
	stateEscaped
)

// scanner is the quoting state machine shared by every splitter.
type scanner struct {
	state lexState
	ret   lexState // state restored after an escape
}

// step consumes one character and reports whether it was bare: seen in
// stateNormal and eligible to act as a delimiter or operator. A
// backslash escapes the next character everywhere except inside single
// quotes, where it is literal.
func (s *scanner) step(ch byte) bool {
	switch s.state {
	case stateEscaped:
		s.state = s.ret
		return false

	case stateSingle:
		if ch == '\'' {
			s.state = stateNormal
		}
		return false

	case stateDouble:
		switch ch {
		case '"':
			s.state = stateNormal
		case '\\':
			s.ret = stateDouble
			s.state = stateEscaped
		}
		return false

	default:
		switch ch {
		case '\\':
			s.ret = stateNormal
			s.state = stateEscaped
		case '\'':
			s.state = stateSingle
		case '"':
			s.state = stateDouble
		default:
			return true
		}
		return false
	}
}

// SplitStatements splits a line on unquoted semicolons. Empty
// statements are dropped; an unterminated quote consumes to the end of
// the line without error.
func SplitStatements(line string) []string {
	var out []string
	var sc scanner

	start := 0
	for i := 0; i < len(line); i++ {
		if sc.step(line[i]) && line[i] == ';' {
			if stmt := strings.TrimSpace(line[start:i]); stmt != "" {
				out = append(out, stmt)
			}
			start = i + 1
		}
	}
	if stmt := strings.TrimSpace(line[start:]); stmt != "" {
		out = append(out, stmt)
	}
	return out
}

// LogicPart is one pipeline-part of a logic chain. Op is the operator
// joining the part to its predecessor: "&&", "||", or "" for the first
// part. Empty parts vanish along with their operator.
type LogicPart struct {
	Op   string
	Text string
}

// SplitLogic splits a statement into its && and || joined parts. The
// two-character operators are recognized only outside quotes.
func SplitLogic(stmt string) []LogicPart {
	var out []LogicPart
	var sc scanner

	op := ""
	start := 0
	flush := func(end int, nextOp string) {
		if text := strings.TrimSpace(stmt[start:end]); text != "" {
			out = append(out, LogicPart{Op: op, Text: text})
		}
		op = nextOp
	}

	for i := 0; i < len(stmt); i++ {
		ch := stmt[i]
		if !sc.step(ch) {
			continue
		}
		if (ch == '&' || ch == '|') && i+1 < len(stmt) && stmt[i+1] == ch {
			flush(i, stmt[i:i+2])
			i++ // the second operator char never reaches the scanner
			start = i + 1
		}
	}
	flush(len(stmt), "")
	return out
}

// SplitPipeline splits a logic part on unquoted single pipes. Empty
// segments are dropped.
func SplitPipeline(part string) []string {
	var out []string
	var sc scanner

	start := 0
	flush := func(end int) {
		if seg := strings.TrimSpace(part[start:end]); seg != "" {
			out = append(out, seg)
		}
	}

	for i := 0; i < len(part); i++ {
		ch := part[i]
		if !sc.step(ch) {
			continue
		}
		if ch == '|' {
			if i+1 < len(part) && part[i+1] == '|' {
				i++
				continue
			}
			flush(i)
			start = i + 1
		}
	}
	flush(len(part))
	return out
}

// Fields tokenizes command text into argv: splitting on unquoted
// blanks, removing quote delimiters, and resolving backslash escapes.
// Adjacent quoted and unquoted runs join into one word, and a quoted
// empty string produces an empty argument.
func Fields(text string) []string {
	var (
		out     []string
		cur     strings.Builder
		started bool
	)
	state, ret := stateNormal, stateNormal

	flush := func() {
		if started {
			out = append(out, cur.String())
			cur.Reset()
			started = false
		}
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch state {
		case stateEscaped:
			cur.WriteByte(ch)
			started = true
			state = ret

		case stateSingle:
			if ch == '\'' {
				state = stateNormal
			} else {
				cur.WriteByte(ch)
			}

		case stateDouble:
			switch ch {
			case '"':
				state = stateNormal
			case '\\':
				ret, state = stateDouble, stateEscaped
			default:
				cur.WriteByte(ch)
			}

		default:
			switch ch {
			case ' ', '\t':
				flush()
			case '\\':
				ret, state = stateNormal, stateEscaped
			case '\'':
				state = stateSingle
				started = true
			case '"':
				state = stateDouble
				started = true
			default:
				cur.WriteByte(ch)
				started = true
			}
		}
	}
	flush()
	return out
}
