package vfs

import (
	"errors"
	"io/fs"
)

// Typed filesystem failures. Callers check these with errors.Is; every
// operation wraps them in a *fs.PathError so diagnostics carry the op
// and offending path.
var (
	// ErrNotFound is returned when a path has no inode. Aliased to
	// fs.ErrNotExist so stdlib-aware callers behave.
	ErrNotFound = fs.ErrNotExist

	// ErrExists is returned when a path already has an inode. Aliased to
	// fs.ErrExist.
	ErrExists = fs.ErrExist

	// ErrIsDirectory is returned by file operations applied to a directory.
	ErrIsDirectory = errors.New("is a directory")

	// ErrNotADirectory is returned by directory operations applied to a
	// non-directory, including lookups that traverse a file.
	ErrNotADirectory = errors.New("not a directory")

	// ErrNotEmpty is returned by a non-recursive rmdir on a directory with
	// children.
	ErrNotEmpty = errors.New("directory not empty")

	// ErrLinkLoop is returned when symlink resolution exceeds the hop limit.
	ErrLinkLoop = errors.New("too many levels of symbolic links")
)

func pathErr(op, path string, err error) error {
	return &fs.PathError{Op: op, Path: path, Err: err}
}
