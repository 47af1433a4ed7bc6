package vfs

import (
	"regexp"
	"sort"
	"strings"
)

// Glob returns the paths under base matching pattern, relative to base
// and sorted lexicographically. `*` matches within one path segment,
// `**` matches across segments including zero, `?` matches exactly one
// character. Matches include every inode type; callers filter.
func (fsys *FS) Glob(pattern, base string) ([]string, error) {
	re, err := CompileGlob(pattern)
	if err != nil {
		return nil, err
	}

	fsys.mu.RLock()
	resolved, rerr := fsys.resolveLinks("glob", base)
	if rerr != nil {
		fsys.mu.RUnlock()
		return nil, rerr
	}
	candidates := fsys.descendants(resolved)
	fsys.mu.RUnlock()

	prefix := resolved
	if prefix != "/" {
		prefix += "/"
	}

	var out []string
	for _, p := range candidates {
		rel := strings.TrimPrefix(p, prefix)
		if re.MatchString(rel) {
			out = append(out, rel)
		}
	}
	sort.Strings(out)
	return out, nil
}

// CompileGlob converts a glob pattern into an anchored regexp.
func CompileGlob(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString(`^`)

	for i := 0; i < len(pattern); i++ {
		switch {
		case strings.HasPrefix(pattern[i:], "**/"):
			// May match zero segments so "**/f" also finds "./f".
			sb.WriteString(`(?:.*/)?`)
			i += 2
		case strings.HasPrefix(pattern[i:], "**"):
			sb.WriteString(`.*`)
			i++
		case pattern[i] == '*':
			sb.WriteString(`[^/]*`)
		case pattern[i] == '?':
			sb.WriteString(`[^/]`)
		default:
			sb.WriteString(regexp.QuoteMeta(string(pattern[i])))
		}
	}

	sb.WriteString(`$`)
	return regexp.Compile(sb.String())
}
