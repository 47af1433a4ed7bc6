package interp

import (
	"path"
	"sort"
	"strings"
)

// ProcessFunc is the entry point of a registered command. It reads and
// writes only through the Proc and returns the command's exit code.
type ProcessFunc func(p *Proc) int

// Registry maps command names to handlers. The set is fixed once the
// registry is built; sessions never mutate it.
type Registry struct {
	cmds map[string]ProcessFunc
}

// NewRegistry copies cmds into a frozen registry.
func NewRegistry(cmds map[string]ProcessFunc) *Registry {
	dup := make(map[string]ProcessFunc, len(cmds))
	for name, fn := range cmds {
		dup[name] = fn
	}
	return &Registry{cmds: dup}
}

// Lookup resolves a command name. Invocations through a path, like
// /bin/ls or ./ls, resolve by their final element.
func (r *Registry) Lookup(name string) (ProcessFunc, bool) {
	if strings.Contains(name, "/") {
		name = path.Base(name)
	}
	fn, ok := r.cmds[name]
	return fn, ok
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
