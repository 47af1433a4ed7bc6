package commands

import (
	"testing"
)

func TestUniq(t *testing.T) {
	cases := goldenTestSuite{
		"adjacent": {Args: []string{"uniq"}, Stdin: "a\na\nb\nb\nb\nc\na\n"},
		"count":    {Args: []string{"uniq", "-c"}, Stdin: "a\na\nb\nb\nb\nc\na\n"},
	}

	cases.Run(t, Uniq)
}
