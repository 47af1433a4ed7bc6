package interp

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Environ is a string keyed environment backed by a map. Safe for
// concurrent use.
type Environ struct {
	rw   sync.RWMutex
	vars map[string]string
}

// NewEnviron creates an empty environment.
func NewEnviron() *Environ {
	return &Environ{}
}

// NewEnvironFromList creates an environment from KEY=value pairs.
func NewEnvironFromList(environ []string) *Environ {
	out := NewEnviron()
	for _, e := range environ {
		split := strings.SplitN(e, "=", 2)
		key, value := split[0], ""
		if len(split) > 1 {
			value = split[1]
		}
		out.Setenv(key, value)
	}
	return out
}

// Setenv sets the value of the variable named by key.
func (m *Environ) Setenv(key, value string) {
	m.rw.Lock()
	defer m.rw.Unlock()

	if m.vars == nil {
		m.vars = make(map[string]string)
	}
	m.vars[key] = value
}

// Unsetenv removes the variable named by key.
func (m *Environ) Unsetenv(key string) {
	m.rw.Lock()
	defer m.rw.Unlock()
	if m.vars != nil {
		delete(m.vars, key)
	}
}

// LookupEnv returns the value of the variable and whether it is set.
func (m *Environ) LookupEnv(key string) (string, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	val, ok := m.vars[key]
	return val, ok
}

// Getenv returns the value of the variable, or "" if unset.
func (m *Environ) Getenv(key string) string {
	val, _ := m.LookupEnv(key)
	return val
}

// Environ returns the variables as sorted KEY=value pairs.
func (m *Environ) Environ() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	env := make([]string, 0, len(m.vars))
	for k, v := range m.vars {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)
	return env
}

// Clearenv removes every variable.
func (m *Environ) Clearenv() {
	m.rw.Lock()
	defer m.rw.Unlock()
	m.vars = make(map[string]string)
}

// Copy returns an independent copy of the environment.
func (m *Environ) Copy() *Environ {
	return NewEnvironFromList(m.Environ())
}
