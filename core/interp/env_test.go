package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnviron(t *testing.T) {
	env := NewEnviron()

	_, ok := env.LookupEnv("HOME")
	assert.False(t, ok, "unset lookup")
	assert.Equal(t, "", env.Getenv("HOME"))

	env.Setenv("HOME", "/root")
	env.Setenv("USER", "jade")

	got, ok := env.LookupEnv("HOME")
	assert.True(t, ok)
	assert.Equal(t, "/root", got)

	assert.Equal(t, []string{"HOME=/root", "USER=jade"}, env.Environ())

	env.Setenv("HOME", "/home/jade")
	assert.Equal(t, "/home/jade", env.Getenv("HOME"))

	env.Unsetenv("HOME")
	_, ok = env.LookupEnv("HOME")
	assert.False(t, ok, "lookup after unset")
}

func TestNewEnvironFromList(t *testing.T) {
	env := NewEnvironFromList([]string{
		"USER=jade",
		"GREETING=a=b",
		"BARE",
	})

	assert.Equal(t, "jade", env.Getenv("USER"))
	// Only the first = splits the pair.
	assert.Equal(t, "a=b", env.Getenv("GREETING"))
	assert.Equal(t, "", env.Getenv("BARE"))

	_, ok := env.LookupEnv("BARE")
	assert.True(t, ok, "bare names are present but empty")
}

func TestEnvironCopy(t *testing.T) {
	env := NewEnvironFromList([]string{"A=1"})
	dup := env.Copy()

	dup.Setenv("A", "2")
	dup.Setenv("B", "3")

	assert.Equal(t, "1", env.Getenv("A"), "copy does not alias")
	_, ok := env.LookupEnv("B")
	assert.False(t, ok)
}

func TestEnvironClearenv(t *testing.T) {
	env := NewEnvironFromList([]string{"A=1", "B=2"})
	env.Clearenv()
	assert.Empty(t, env.Environ())
}
