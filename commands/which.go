package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path"
	"strings"

	"github.com/vsh-project/vsh/core/interp"
	"github.com/vsh-project/vsh/core/vfs"
)

func findExecutable(p *interp.Proc, file string) error {
	node, err := p.FS().StatFollow(p.Resolve(file))
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return exec.ErrNotFound
	case err != nil:
		return err
	}
	if m := node.FileInfo().Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// LookPath searches for an executable named file in the directories named by
// the PATH environment variable. If file contains a slash, it is tried directly
// and the PATH is not consulted.
func LookPath(p *interp.Proc, file string) (string, error) {
	if strings.Contains(file, "/") {
		if err := findExecutable(p, file); err != nil {
			return "", err
		}
		return file, nil
	}
	for _, dir := range strings.Split(p.Getenv("PATH"), ":") {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := path.Join(dir, file)
		if err := findExecutable(p, candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

// Which implements the UNIX which command.
func Which(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "which [COMMAND...]",
		Short: "Locate a command.",
		// Never bail, even if args are bad.
		NeverBail: true,
	}

	showAll := cmd.Flags().Bool('a', "print all matching pathnames of each argument")

	return cmd.RunEachArg(p, func(arg string) error {
		if !*showAll {
			res, err := LookPath(p, arg)
			if err != nil {
				return err
			}
			fmt.Fprintln(p.Stdout(), res)
			return nil
		}

		found := false
		for _, dir := range strings.Split(p.Getenv("PATH"), ":") {
			if dir == "" {
				dir = "."
			}
			candidate := path.Join(dir, arg)
			if err := findExecutable(p, candidate); err == nil {
				fmt.Fprintln(p.Stdout(), candidate)
				found = true
			}
		}
		if !found {
			return exec.ErrNotFound
		}
		return nil
	})
}

var _ CommandFunc = Which

func init() {
	registerCommand(Which, "which")
}
