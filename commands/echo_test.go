package commands

import (
	"testing"
)

func TestEcho(t *testing.T) {
	cases := goldenTestSuite{
		"no-arg":     {Args: []string{"echo"}},
		"hello":      {Args: []string{"echo", "Hello,", "world!"}},
		"no-newline": {Args: []string{"echo", "-n", "hi"}},
		"escapes":    {Args: []string{"echo", "-e", `one\ttwo\nthree`}},
		"octal":      {Args: []string{"echo", "-e", `\0101BC`}},
		"hex":        {Args: []string{"echo", "-e", `\x41BC`}},
		"literal":    {Args: []string{"echo", `a\tb`}},
	}

	cases.Run(t, Echo)
}
