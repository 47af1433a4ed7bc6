package interp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandVariables(t *testing.T) {
	vars := map[string]string{
		"HOME":  "/root",
		"USER":  "jade",
		"EMPTY": "",
	}
	lookup := func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}

	cases := map[string]struct {
		line string
		want string
	}{
		"simple":              {"$HOME", "/root"},
		"braced":              {"${HOME}/notes", "/root/notes"},
		"embedded":            {"a${USER}b", "ajadeb"},
		"unset":               {"x $NOPE y", "x  y"},
		"empty value":         {"[$EMPTY]", "[]"},
		"exit code":           {"$?", "3"},
		"single quoted":       {"'$HOME'", "'$HOME'"},
		"double quoted":       {`"$HOME"`, `"/root"`},
		"escaped":             {`\$HOME`, `\$HOME`},
		"escaped in double":   {`"\$HOME"`, `"\$HOME"`},
		"bare dollar":         {"a$ b", "a$ b"},
		"dollar at end":       {"a$", "a$"},
		"name boundary":       {"$HOME2", ""},
		"digit start literal": {"$2x", "$2x"},
		"unterminated brace":  {"${HOME", "${HOME"},
		"invalid brace name":  {"${1X}", "${1X}"},
		"two refs":            {"$USER@$HOME", "jade@/root"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExpandVariables(tc.line, lookup, 3))
		})
	}
}

func TestExpandVariables_noRescan(t *testing.T) {
	lookup := func(name string) (string, bool) {
		if name == "A" {
			return "$B", true
		}
		return "bee", true
	}

	assert.Equal(t, "$B", ExpandVariables("$A", lookup, 0))
}

func TestSubstitute(t *testing.T) {
	bracket := func(body string) (string, error) {
		return "[" + body + "]\n", nil
	}

	cases := map[string]struct {
		segment string
		want    string
	}{
		"none":            {"echo hi", "echo hi"},
		"dollar paren":    {"echo $(inner)", "echo [inner]"},
		"nested parens":   {"echo $(a (b) c)", "echo [a (b) c]"},
		"backticks":       {"echo `inner`", "echo [inner]"},
		"escaped tick":    {"echo `a \\` b`", "echo [a ` b]"},
		"single quoted":   {"echo '$(x)'", "echo '$(x)'"},
		"double quoted":   {`echo "$(x)"`, `echo "[x]"`},
		"unterminated":    {"echo $(abc", "echo [abc]"},
		"two spans":       {"$(a) $(b)", "[a] [b]"},
		"plain parens":    {"echo (x)", "echo (x)"},
		"escaped dollar":  {`echo \$(x)`, `echo \$(x)`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Substitute(tc.segment, bracket)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSubstitute_trailingNewline(t *testing.T) {
	run := func(string) (string, error) { return "out\n\n", nil }

	got, err := Substitute("$(x)", run)
	require.NoError(t, err)
	// Only a single trailing newline is stripped.
	assert.Equal(t, "out\n", got)
}

func TestSubstitute_error(t *testing.T) {
	boom := errors.New("boom")
	run := func(string) (string, error) { return "", boom }

	_, err := Substitute("echo $(x)", run)
	assert.ErrorIs(t, err, boom)
}
