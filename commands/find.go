package commands

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/vsh-project/vsh/core/interp"
	"github.com/vsh-project/vsh/core/vfs"
)

// Find implements a subset of the UNIX find command: paths first, then
// the -name, -type and -maxdepth predicates. The predicate grammar
// doesn't fit getopt so the argv is parsed directly.
func Find(p *interp.Proc) int {
	args := p.Args()[1:]

	var roots []string
	i := 0
	for ; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			break
		}
		roots = append(roots, args[i])
	}
	if len(roots) == 0 {
		roots = []string{"."}
	}

	namePattern := ""
	typeFilter := ""
	maxDepth := -1

	for ; i < len(args); i++ {
		needsValue := func() (string, bool) {
			if i+1 >= len(args) {
				fmt.Fprintf(p.Stderr(), "find: missing argument to %q\n", args[i])
				return "", false
			}
			i++
			return args[i], true
		}

		switch args[i] {
		case "-name":
			value, ok := needsValue()
			if !ok {
				return 1
			}
			namePattern = value
		case "-type":
			value, ok := needsValue()
			if !ok {
				return 1
			}
			if value != "f" && value != "d" && value != "l" {
				fmt.Fprintf(p.Stderr(), "find: unknown argument to -type: %s\n", value)
				return 1
			}
			typeFilter = value
		case "-maxdepth":
			value, ok := needsValue()
			if !ok {
				return 1
			}
			depth, err := strconv.Atoi(value)
			if err != nil || depth < 0 {
				fmt.Fprintf(p.Stderr(), "find: invalid argument to -maxdepth: %s\n", value)
				return 1
			}
			maxDepth = depth
		default:
			fmt.Fprintf(p.Stderr(), "find: unknown predicate %q\n", args[i])
			return 1
		}
	}

	var nameRe = func(string) bool { return true }
	if namePattern != "" {
		re, err := vfs.CompileGlob(namePattern)
		if err != nil {
			fmt.Fprintf(p.Stderr(), "find: invalid pattern %q\n", namePattern)
			return 1
		}
		nameRe = re.MatchString
	}

	matchesType := func(n *vfs.Inode) bool {
		switch typeFilter {
		case "f":
			return n.IsFile()
		case "d":
			return n.IsDir()
		case "l":
			return n.IsSymlink()
		default:
			return true
		}
	}

	exitCode := 0
	for _, root := range roots {
		resolved := p.Resolve(root)

		display := func(nodePath string) string {
			if nodePath == resolved {
				return root
			}
			rel := strings.TrimPrefix(strings.TrimPrefix(nodePath, resolved), "/")
			return strings.TrimSuffix(root, "/") + "/" + rel
		}
		depth := func(nodePath string) int {
			if nodePath == resolved {
				return 0
			}
			rel := strings.TrimPrefix(strings.TrimPrefix(nodePath, resolved), "/")
			return strings.Count(rel, "/") + 1
		}

		err := p.FS().Walk(resolved, func(n *vfs.Inode) error {
			var ret error
			d := depth(n.Path)
			if maxDepth >= 0 {
				if d > maxDepth {
					if n.IsDir() {
						return fs.SkipDir
					}
					return nil
				}
				if n.IsDir() && d == maxDepth {
					ret = fs.SkipDir
				}
			}

			if matchesType(n) && nameRe(n.Name()) {
				fmt.Fprintln(p.Stdout(), display(n.Path))
			}
			return ret
		})
		if err != nil {
			fmt.Fprintf(p.Stderr(), "find: %q: %v\n", root, pathErrMessage(err))
			exitCode = 1
		}
	}

	return exitCode
}

var _ CommandFunc = Find

func init() {
	registerCommand(Find, "find")
}
