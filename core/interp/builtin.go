package interp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// BuiltinNames lists the shell builtins in sorted order.
func BuiltinNames() []string {
	handlers := builtins()
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builtins returns the handlers resolved ahead of the registry. These
// need to mutate session state directly, which is why they are not
// ordinary registered commands.
func builtins() map[string]ProcessFunc {
	return map[string]ProcessFunc{
		"cd":      builtinCd,
		"exit":    builtinExit,
		"logout":  builtinExit,
		"export":  builtinExport,
		"unset":   builtinUnset,
		"alias":   builtinAlias,
		"unalias": builtinUnalias,
		"history": builtinHistory,
		"source":  builtinSource,
		".":       builtinSource,
		"jobs":    builtinJobs,
		"help":    builtinHelp,
	}
}

func builtinCd(p *Proc) int {
	args := p.Args()[1:]

	var target string
	switch {
	case len(args) == 0:
		target = p.Getenv("HOME")
		if target == "" {
			target = "/"
		}
	case args[0] == "-":
		target = p.Getenv("OLDPWD")
		if target == "" {
			fmt.Fprintln(p.Stderr(), "cd: OLDPWD not set")
			return 1
		}
		fmt.Fprintln(p.Stdout(), target)
	default:
		target = args[0]
	}

	if err := p.Chdir(target); err != nil {
		fmt.Fprintf(p.Stderr(), "cd: %s: %v\n", target, pathless(err))
		return 1
	}
	return 0
}

func builtinExit(p *Proc) int {
	code := p.Session().LastExit
	if args := p.Args()[1:]; len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(p.Stderr(), "exit: %s: numeric argument required\n", args[0])
			n = 2
		}
		code = n
	}
	p.Session().RequestQuit()
	return code
}

func builtinExport(p *Proc) int {
	args := p.Args()[1:]
	if len(args) == 0 {
		for _, kv := range p.Environ.Environ() {
			name, value, _ := strings.Cut(kv, "=")
			fmt.Fprintf(p.Stdout(), "export %s=%q\n", name, value)
		}
		return 0
	}

	code := 0
	for _, arg := range args {
		name, value, assigned := strings.Cut(arg, "=")
		if !validName(name) {
			fmt.Fprintf(p.Stderr(), "export: `%s': not a valid identifier\n", arg)
			code = 1
			continue
		}
		if assigned {
			p.Setenv(name, value)
		} else if _, ok := p.LookupEnv(name); !ok {
			p.Setenv(name, "")
		}
	}
	return code
}

func builtinUnset(p *Proc) int {
	for _, name := range p.Args()[1:] {
		p.Unsetenv(name)
	}
	return 0
}

func builtinAlias(p *Proc) int {
	sess := p.Session()
	args := p.Args()[1:]
	if len(args) == 0 {
		names := make([]string, 0, len(sess.Aliases))
		for name := range sess.Aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(p.Stdout(), "alias %s='%s'\n", name, sess.Aliases[name])
		}
		return 0
	}

	code := 0
	for _, arg := range args {
		name, value, assigned := strings.Cut(arg, "=")
		if assigned {
			sess.Aliases[name] = value
			continue
		}
		if value, ok := sess.Aliases[name]; ok {
			fmt.Fprintf(p.Stdout(), "alias %s='%s'\n", name, value)
		} else {
			fmt.Fprintf(p.Stderr(), "alias: %s: not found\n", name)
			code = 1
		}
	}
	return code
}

func builtinUnalias(p *Proc) int {
	sess := p.Session()
	args := p.Args()[1:]
	if len(args) > 0 && args[0] == "-a" {
		sess.Aliases = make(map[string]string)
		return 0
	}

	code := 0
	for _, name := range args {
		if _, ok := sess.Aliases[name]; !ok {
			fmt.Fprintf(p.Stderr(), "unalias: %s: not found\n", name)
			code = 1
			continue
		}
		delete(sess.Aliases, name)
	}
	return code
}

func builtinHistory(p *Proc) int {
	sess := p.Session()
	if args := p.Args()[1:]; len(args) > 0 && args[0] == "-c" {
		sess.History = nil
		return 0
	}
	for i, line := range sess.History {
		fmt.Fprintf(p.Stdout(), "%5d  %s\n", i+1, line)
	}
	return 0
}

func builtinSource(p *Proc) int {
	args := p.Args()[1:]
	if len(args) == 0 {
		fmt.Fprintln(p.Stderr(), "source: filename argument required")
		return 2
	}

	content, err := p.FS().ReadFile(p.Resolve(args[0]))
	if err != nil {
		fmt.Fprintf(p.Stderr(), "source: %s: %v\n", args[0], pathless(err))
		return 1
	}

	code := 0
	for _, line := range strings.Split(string(content), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		code, err = p.ExecIO(line, p.Stdin(), p.Stdout(), p.Stderr())
		if err != nil {
			fmt.Fprintf(p.Stderr(), "source: %v\n", err)
			return 2
		}
		if p.Session().Quitting() {
			break
		}
	}
	return code
}

func builtinJobs(p *Proc) int {
	for _, job := range p.Session().Jobs {
		fmt.Fprintf(p.Stdout(), "[%d]  %s\t\t%s\n", job.ID, job.Status, job.Line)
	}
	return 0
}

func builtinHelp(p *Proc) int {
	names := make([]string, 0, len(p.interp.builtins))
	for name := range p.interp.builtins {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(p.Stdout(), "Shell builtins:")
	fmt.Fprintf(p.Stdout(), "  %s\n", strings.Join(names, "  "))
	fmt.Fprintln(p.Stdout(), "Other commands live on the PATH; try 'ls /bin'.")
	return 0
}
