package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/vsh-project/vsh/core/interp"
	"github.com/vsh-project/vsh/core/interp/interptest"
)

func ExampleBytesToHuman() {

	// < 1k is presented directly
	fmt.Println(BytesToHuman(512))

	// Multiples > 10 are shown without decimal.
	fmt.Println(BytesToHuman(23 * 10e8))

	// Multiples < 10 are shown with decimal.
	fmt.Println(BytesToHuman(5 * 1024))

	// Output: 512
	// 23G
	// 5.1K
}

func TestRegistry(t *testing.T) {
	handlers := Registry()
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			if handlers[name] == nil {
				t.Fatal("nil command", name)
			}
		})
	}
}

func TestSimpleCommandHelp(t *testing.T) {
	cmd := interptest.Command(Whoami, "whoami", "--help")
	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.Contains(t, string(out), "usage: whoami")
	assert.Contains(t, string(out), "Flags:")
}

func TestSimpleCommandBadFlag(t *testing.T) {
	cmd := interptest.Command(Date, "date", "--bogus")
	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 1, cmd.ExitStatus, "exit code")
	assert.Contains(t, string(out), "error:")
	assert.Contains(t, string(out), "usage: date")
}

type goldenTestSuite map[string]goldenTest

type goldenTest struct {
	Args []string
	// Stdin feeds the process's standard input.
	Stdin string
	// Commands registers extra handlers for tests that re-enter the
	// interpreter.
	Commands map[string]interp.ProcessFunc
	// Setup prepares the filesystem before the process runs.
	Setup func(c *interptest.Cmd) error
}

func (gts goldenTestSuite) Run(t *testing.T, cmd interp.ProcessFunc) {
	t.Helper()

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	for tn, tc := range gts {
		t.Run(tn, func(t *testing.T) {
			cmd := interptest.Command(cmd, tc.Args[0], tc.Args[1:]...)
			if tc.Stdin != "" {
				cmd.Stdin = strings.NewReader(tc.Stdin)
			}
			cmd.Commands = tc.Commands
			cmd.Setup = tc.Setup
			out, err := cmd.CombinedOutput()
			if err != nil {
				t.Fatal(err)
			}

			g.Assert(t, tn, out)
		})
	}
}
