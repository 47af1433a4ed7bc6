package vfs

import (
	"path"
	"strings"
)

// Canonicalize normalizes p into the canonical absolute form used as an
// inode key: rooted at "/", no ".", "..", duplicate separators, or
// trailing slash. Relative input is treated as relative to the root.
// Canonicalize is idempotent.
func Canonicalize(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// Resolve turns a raw user-supplied path into a canonical absolute path.
// A leading "~" expands to home, relative paths resolve against base.
// Base must itself be absolute; if it is not it is rooted at "/".
// Resolve is idempotent for any fixed base and home.
func Resolve(raw, base, home string) string {
	if home == "" {
		home = "/"
	}
	switch {
	case raw == "~":
		raw = home
	case strings.HasPrefix(raw, "~/"):
		raw = path.Join(home, raw[2:])
	}
	if raw == "" {
		return Canonicalize(base)
	}
	if !path.IsAbs(raw) {
		raw = path.Join(Canonicalize(base), raw)
	}
	return Canonicalize(raw)
}

// Dir returns the canonical parent of p. The parent of the root is the
// root itself.
func Dir(p string) string {
	return Canonicalize(path.Dir(Canonicalize(p)))
}

// Base returns the final element of p, or "/" for the root.
func Base(p string) string {
	return path.Base(Canonicalize(p))
}

// Ancestors returns every proper ancestor of p from the root down,
// excluding p itself. Ancestors("/a/b/c") is ["/", "/a", "/a/b"].
func Ancestors(p string) []string {
	p = Canonicalize(p)
	if p == "/" {
		return nil
	}
	out := []string{"/"}
	var sb strings.Builder
	parts := strings.Split(p, "/")[1:]
	for _, part := range parts[:len(parts)-1] {
		sb.WriteByte('/')
		sb.WriteString(part)
		out = append(out, sb.String())
	}
	return out
}

// isDescendant reports whether p lies strictly under dir. Both arguments
// must already be canonical.
func isDescendant(dir, p string) bool {
	if dir == "/" {
		return p != "/"
	}
	return strings.HasPrefix(p, dir+"/")
}

// rebase re-keys a descendant path p from oldDir to newDir, preserving
// the relative suffix. All arguments must already be canonical.
func rebase(p, oldDir, newDir string) string {
	if p == oldDir {
		return newDir
	}
	suffix := strings.TrimPrefix(p, strings.TrimSuffix(oldDir, "/"))
	return Canonicalize(path.Join(newDir, suffix))
}
