package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsh-project/vsh/core/interp"
	"github.com/vsh-project/vsh/core/interp/interptest"
)

var shellCommands = map[string]interp.ProcessFunc{
	"echo":  Echo,
	"cat":   Cat,
	"wc":    Wc,
	"true":  True,
	"false": False,
}

func TestRunShell(t *testing.T) {
	cases := goldenTestSuite{
		"echo":      {Args: []string{"sh", "-c", `/bin/echo "hello"`}, Commands: shellCommands},
		"echo-cat":  {Args: []string{"sh", "-c", `/bin/echo "hello" > foo; /bin/cat foo`}, Commands: shellCommands},
		"pipe":      {Args: []string{"sh", "-c", `/bin/echo one | /bin/wc -l`}, Commands: shellCommands},
		"logic-and": {Args: []string{"sh", "-c", `/bin/true && /bin/echo yes`}, Commands: shellCommands},
		"logic-or":  {Args: []string{"sh", "-c", `/bin/false || /bin/echo fallback`}, Commands: shellCommands},
		"subst":     {Args: []string{"sh", "-c", `/bin/echo $(/bin/echo inner)`}, Commands: shellCommands},
		"not-found": {Args: []string{"sh", "-c", `/bin/missing`}, Commands: shellCommands},
	}

	cases.Run(t, RunShell)
}

func TestRunShell_exitCode(t *testing.T) {
	cmd := interptest.Command(RunShell, "sh", "-c", "/bin/false")
	cmd.Commands = shellCommands

	assert.Nil(t, cmd.Run())
	assert.Equal(t, 1, cmd.ExitStatus, "exit code")
}

func TestRunShell_script(t *testing.T) {
	cmd := interptest.Command(RunShell, "sh", "setup.sh")
	cmd.Commands = shellCommands
	script := "# provisioning notes\nGREETING=hi\n/bin/echo $GREETING\nexit 3\n"
	assert.Nil(t, cmd.FS.WriteFile("/root/setup.sh", []byte(script), false))

	out, err := cmd.Output()

	assert.Nil(t, err)
	assert.Equal(t, 3, cmd.ExitStatus, "exit code")
	assert.Equal(t, "hi\n", string(out))
}

func TestRunShell_missingScript(t *testing.T) {
	cmd := interptest.Command(RunShell, "sh", "ghost.sh")
	cmd.Commands = shellCommands

	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 1, cmd.ExitStatus, "exit code")
	assert.Equal(t, "sh: ghost.sh: file does not exist\n", string(out))
}
