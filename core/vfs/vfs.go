// Package vfs implements a persistent hierarchical virtual filesystem
// keyed by canonical absolute paths. Records live in memory and write
// through a Store; one logical operation, including a whole subtree
// rename or delete, reaches the store as a single batch.
package vfs

import (
	"errors"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	defaultFileMode fs.FileMode = 0644
	defaultDirMode  fs.FileMode = 0755
	defaultLinkMode fs.FileMode = 0777

	// maxLinkHops bounds symlink resolution, mirroring Linux's limit.
	maxLinkHops = 40
)

var errNotSymlink = errors.New("not a symbolic link")

// FS is the in-memory filesystem. Safe for concurrent use by multiple
// sessions; every mutation is validated, persisted, then committed under
// one exclusive lock so no partially applied subtree is ever visible.
type FS struct {
	mu    sync.RWMutex
	nodes map[string]*Inode
	store Store
	now   func() time.Time
}

// Option configures an FS.
type Option func(*FS)

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(fsys *FS) { fsys.now = now }
}

// New loads the store's contents and returns a filesystem rooted at "/".
// A fresh store gets a root directory record.
func New(store Store, opts ...Option) (*FS, error) {
	fsys := &FS{
		nodes: make(map[string]*Inode),
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(fsys)
	}

	nodes, err := store.Load()
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		fsys.nodes[Canonicalize(n.Path)] = n
	}

	if _, ok := fsys.nodes["/"]; !ok {
		now := fsys.now()
		root := &Inode{Path: "/", Type: TypeDir, Mode: defaultDirMode, Ctime: now, Mtime: now, Atime: now}
		if err := fsys.commit(nil, []*Inode{root}); err != nil {
			return nil, err
		}
	}
	return fsys, nil
}

// Now reports the filesystem's time source, so commands that print or
// stamp times agree with the timestamps the store records.
func (fsys *FS) Now() time.Time {
	return fsys.now()
}

// Len reports the number of inode records, including the root.
func (fsys *FS) Len() int {
	fsys.mu.RLock()
	defer fsys.mu.RUnlock()
	return len(fsys.nodes)
}

// Empty reports whether the filesystem holds only the root directory.
func (fsys *FS) Empty() bool {
	return fsys.Len() <= 1
}

// Flush forces the store to stable storage.
func (fsys *FS) Flush() error {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	return fsys.store.Flush()
}

// Close flushes and closes the store.
func (fsys *FS) Close() error {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	return fsys.store.Close()
}

// commit persists the batch, then applies it to memory. Memory changes
// only after the store confirms the flush.
func (fsys *FS) commit(deletes []string, puts []*Inode) error {
	if err := fsys.store.Apply(puts, deletes); err != nil {
		return err
	}
	for _, p := range deletes {
		delete(fsys.nodes, p)
	}
	for _, n := range puts {
		fsys.nodes[n.Path] = n
	}
	return nil
}

// resolveLinks canonicalizes p and resolves symlinks occurring in
// directory components. The final component is left unresolved so
// operations on the link record itself (unlink, rename, stat) see the
// link, not its target. Missing intermediate components are not an
// error here; the caller's lookup reports them.
func (fsys *FS) resolveLinks(op, p string) (string, error) {
	p = Canonicalize(p)

	hops := maxLinkHops
	for {
		if p == "/" {
			return p, nil
		}
		parts := strings.Split(p[1:], "/")
		prefix := ""
		restart := false
		for i, part := range parts[:len(parts)-1] {
			prefix += "/" + part
			node, ok := fsys.nodes[prefix]
			if !ok {
				continue
			}
			switch node.Type {
			case TypeDir:
				continue
			case TypeSymlink:
				hops--
				if hops <= 0 {
					return "", pathErr(op, p, ErrLinkLoop)
				}
				rest := strings.Join(parts[i+1:], "/")
				p = Canonicalize(joinTarget(Dir(prefix), node.Target()) + "/" + rest)
				restart = true
			default:
				return "", pathErr(op, p, ErrNotADirectory)
			}
			break
		}
		if !restart {
			return p, nil
		}
	}
}

// followLeaf resolves a trailing symlink chain. The input must already
// be directory-resolved.
func (fsys *FS) followLeaf(op, p string) (string, error) {
	for hops := maxLinkHops; hops > 0; hops-- {
		node, ok := fsys.nodes[p]
		if !ok || !node.IsSymlink() {
			return p, nil
		}
		next, err := fsys.resolveLinks(op, joinTarget(Dir(p), node.Target()))
		if err != nil {
			return "", err
		}
		p = next
	}
	return "", pathErr(op, p, ErrLinkLoop)
}

// joinTarget resolves a symlink target against the directory holding
// the link.
func joinTarget(dir, target string) string {
	if strings.HasPrefix(target, "/") {
		return Canonicalize(target)
	}
	return Resolve(target, dir, "/")
}

// requireParent checks the parent of p exists and is a directory.
func (fsys *FS) requireParent(op, p string) error {
	parent, ok := fsys.nodes[Dir(p)]
	if !ok {
		return pathErr(op, p, ErrNotFound)
	}
	if !parent.IsDir() {
		return pathErr(op, p, ErrNotADirectory)
	}
	return nil
}

// resolveFull resolves directory components and the leaf, then looks up
// the record. Callers must hold the lock.
func (fsys *FS) resolveFull(op, p string) (*Inode, error) {
	resolved, err := fsys.resolveLinks(op, p)
	if err != nil {
		return nil, err
	}
	resolved, err = fsys.followLeaf(op, resolved)
	if err != nil {
		return nil, err
	}
	node, ok := fsys.nodes[resolved]
	if !ok {
		return nil, pathErr(op, p, ErrNotFound)
	}
	return node, nil
}

// Stat returns the inode record at p without following a trailing
// symlink. Symlinks in directory components are always followed.
func (fsys *FS) Stat(p string) (*Inode, error) {
	fsys.mu.RLock()
	defer fsys.mu.RUnlock()

	resolved, err := fsys.resolveLinks("stat", p)
	if err != nil {
		return nil, err
	}
	node, ok := fsys.nodes[resolved]
	if !ok {
		return nil, pathErr("stat", p, ErrNotFound)
	}
	return node.Clone(), nil
}

// StatFollow is Stat after resolving a trailing symlink chain.
func (fsys *FS) StatFollow(p string) (*Inode, error) {
	fsys.mu.RLock()
	defer fsys.mu.RUnlock()

	node, err := fsys.resolveFull("stat", p)
	if err != nil {
		return nil, err
	}
	return node.Clone(), nil
}

// Exists reports whether p names an inode.
func (fsys *FS) Exists(p string) bool {
	_, err := fsys.Stat(p)
	return err == nil
}

// ReadFile returns a copy of the file's content, following symlinks.
func (fsys *FS) ReadFile(p string) ([]byte, error) {
	fsys.mu.RLock()
	defer fsys.mu.RUnlock()

	node, err := fsys.resolveFull("read", p)
	if err != nil {
		return nil, err
	}
	if node.IsDir() {
		return nil, pathErr("read", p, ErrIsDirectory)
	}
	return append([]byte(nil), node.Content...), nil
}

// WriteFile writes content to the file at p, creating it when missing.
// The parent directory must already exist; WriteFile never creates
// ancestors. Append extends existing content instead of truncating.
func (fsys *FS) WriteFile(p string, content []byte, appendTo bool) error {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()

	resolved, err := fsys.resolveLinks("write", p)
	if err != nil {
		return err
	}
	resolved, err = fsys.followLeaf("write", resolved)
	if err != nil {
		return err
	}

	now := fsys.now()
	if node, ok := fsys.nodes[resolved]; ok {
		if node.IsDir() {
			return pathErr("write", p, ErrIsDirectory)
		}
		next := node.Clone()
		next.Type = TypeFile
		if appendTo {
			next.Content = append(next.Content, content...)
		} else {
			next.Content = append([]byte(nil), content...)
		}
		next.Size = int64(len(next.Content))
		next.Mtime = now
		next.Atime = now
		return fsys.commit(nil, []*Inode{next})
	}

	if err := fsys.requireParent("write", resolved); err != nil {
		return err
	}
	node := &Inode{
		Path:    resolved,
		Type:    TypeFile,
		Mode:    defaultFileMode,
		Size:    int64(len(content)),
		Ctime:   now,
		Mtime:   now,
		Atime:   now,
		Content: append([]byte(nil), content...),
	}
	return fsys.commit(nil, []*Inode{node})
}

// ReadDir lists the direct children of the directory at p, following a
// trailing symlink, sorted by name.
func (fsys *FS) ReadDir(p string) ([]*Inode, error) {
	fsys.mu.RLock()
	defer fsys.mu.RUnlock()

	resolved, err := fsys.resolveLinks("readdir", p)
	if err != nil {
		return nil, err
	}
	resolved, err = fsys.followLeaf("readdir", resolved)
	if err != nil {
		return nil, err
	}
	node, ok := fsys.nodes[resolved]
	if !ok {
		return nil, pathErr("readdir", p, ErrNotFound)
	}
	if !node.IsDir() {
		return nil, pathErr("readdir", p, ErrNotADirectory)
	}

	var out []*Inode
	for path, child := range fsys.nodes {
		if path != resolved && Dir(path) == resolved {
			out = append(out, child.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Mkdir creates the directory at p. With recursive set it also creates
// missing ancestors and succeeds when the directory already exists.
func (fsys *FS) Mkdir(p string, recursive bool) error {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()

	resolved, err := fsys.resolveLinks("mkdir", p)
	if err != nil {
		return err
	}

	if node, ok := fsys.nodes[resolved]; ok {
		if recursive && node.IsDir() {
			return nil
		}
		return pathErr("mkdir", p, ErrExists)
	}

	now := fsys.now()
	newDir := func(path string) *Inode {
		return &Inode{Path: path, Type: TypeDir, Mode: defaultDirMode, Ctime: now, Mtime: now, Atime: now}
	}

	if !recursive {
		if err := fsys.requireParent("mkdir", resolved); err != nil {
			return err
		}
		return fsys.commit(nil, []*Inode{newDir(resolved)})
	}

	var puts []*Inode
	for _, ancestor := range append(Ancestors(resolved), resolved) {
		if node, ok := fsys.nodes[ancestor]; ok {
			if !node.IsDir() {
				return pathErr("mkdir", ancestor, ErrNotADirectory)
			}
			continue
		}
		puts = append(puts, newDir(ancestor))
	}
	return fsys.commit(nil, puts)
}

// Unlink removes the file or symlink at p. The link itself is removed,
// never its target.
func (fsys *FS) Unlink(p string) error {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()

	resolved, err := fsys.resolveLinks("unlink", p)
	if err != nil {
		return err
	}
	node, ok := fsys.nodes[resolved]
	if !ok {
		return pathErr("unlink", p, ErrNotFound)
	}
	if node.IsDir() {
		return pathErr("unlink", p, ErrIsDirectory)
	}
	return fsys.commit([]string{resolved}, nil)
}

// Rmdir removes the directory at p. A non-recursive call fails on a
// directory with children; a recursive call deletes the subtree
// depth-first as one batch.
func (fsys *FS) Rmdir(p string, recursive bool) error {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()

	resolved, err := fsys.resolveLinks("rmdir", p)
	if err != nil {
		return err
	}
	if resolved == "/" {
		return pathErr("rmdir", p, errors.New("cannot remove the root directory"))
	}
	node, ok := fsys.nodes[resolved]
	if !ok {
		return pathErr("rmdir", p, ErrNotFound)
	}
	if !node.IsDir() {
		return pathErr("rmdir", p, ErrNotADirectory)
	}

	descendants := fsys.descendants(resolved)
	if len(descendants) > 0 && !recursive {
		return pathErr("rmdir", p, ErrNotEmpty)
	}

	// Deepest first so a replayed journal never holds a child without
	// its parent.
	deletes := append(descendants, resolved)
	sort.Slice(deletes, func(i, j int) bool { return len(deletes[i]) > len(deletes[j]) })
	return fsys.commit(deletes, nil)
}

// descendants returns every path strictly under dir, sorted. Callers
// must hold the lock.
func (fsys *FS) descendants(dir string) []string {
	var out []string
	for path := range fsys.nodes {
		if isDescendant(dir, path) {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// Rename moves the record at oldPath to newPath, re-keying every
// descendant of a directory while preserving the relative suffix. An
// existing file or symlink at newPath is replaced; an existing
// directory is refused.
func (fsys *FS) Rename(oldPath, newPath string) error {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()

	src, err := fsys.resolveLinks("rename", oldPath)
	if err != nil {
		return err
	}
	dst, err := fsys.resolveLinks("rename", newPath)
	if err != nil {
		return err
	}

	node, ok := fsys.nodes[src]
	if !ok {
		return pathErr("rename", oldPath, ErrNotFound)
	}
	if src == "/" {
		return pathErr("rename", oldPath, errors.New("cannot move the root directory"))
	}
	if src == dst {
		return nil
	}
	if node.IsDir() && isDescendant(src, dst) {
		return pathErr("rename", newPath, errors.New("cannot move a directory into itself"))
	}

	deletes := []string{src}
	if existing, ok := fsys.nodes[dst]; ok {
		if existing.IsDir() {
			return pathErr("rename", newPath, ErrIsDirectory)
		}
		deletes = append(deletes, dst)
	}
	if err := fsys.requireParent("rename", dst); err != nil {
		return err
	}

	moved := node.Clone()
	moved.Path = dst
	moved.Mtime = fsys.now()
	puts := []*Inode{moved}

	for _, desc := range fsys.descendants(src) {
		deletes = append(deletes, desc)
		dup := fsys.nodes[desc].Clone()
		dup.Path = rebase(desc, src, dst)
		puts = append(puts, dup)
	}
	return fsys.commit(deletes, puts)
}

// Copy duplicates src at dest. Directories require recursive and are
// recreated wholesale; copies get fresh timestamps. An existing file or
// symlink at dest is replaced; an existing directory is refused.
func (fsys *FS) Copy(src, dest string, recursive bool) error {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()

	from, err := fsys.resolveLinks("copy", src)
	if err != nil {
		return err
	}
	to, err := fsys.resolveLinks("copy", dest)
	if err != nil {
		return err
	}

	node, ok := fsys.nodes[from]
	if !ok {
		return pathErr("copy", src, ErrNotFound)
	}
	if node.IsDir() && !recursive {
		return pathErr("copy", src, ErrIsDirectory)
	}
	if from == to {
		return nil
	}
	if node.IsDir() && isDescendant(from, to) {
		return pathErr("copy", dest, errors.New("cannot copy a directory into itself"))
	}

	var deletes []string
	if existing, ok := fsys.nodes[to]; ok {
		if existing.IsDir() {
			return pathErr("copy", dest, ErrIsDirectory)
		}
		deletes = append(deletes, to)
	}
	if err := fsys.requireParent("copy", to); err != nil {
		return err
	}

	now := fsys.now()
	stamp := func(n *Inode) *Inode {
		n.Ctime = now
		n.Mtime = now
		n.Atime = now
		return n
	}

	top := stamp(node.Clone())
	top.Path = to
	puts := []*Inode{top}

	if node.IsDir() {
		for _, desc := range fsys.descendants(from) {
			dup := stamp(fsys.nodes[desc].Clone())
			dup.Path = rebase(desc, from, to)
			puts = append(puts, dup)
		}
	}
	return fsys.commit(deletes, puts)
}

// Chmod sets the permission bits of the record at p, following a
// trailing symlink.
func (fsys *FS) Chmod(p string, mode fs.FileMode) error {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()

	node, err := fsys.resolveFull("chmod", p)
	if err != nil {
		return err
	}
	next := node.Clone()
	next.Mode = mode & fs.ModePerm
	return fsys.commit(nil, []*Inode{next})
}

// Chtimes sets access and modification times of the record at p,
// following a trailing symlink.
func (fsys *FS) Chtimes(p string, atime, mtime time.Time) error {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()

	node, err := fsys.resolveFull("utimes", p)
	if err != nil {
		return err
	}
	next := node.Clone()
	next.Atime = atime
	next.Mtime = mtime
	return fsys.commit(nil, []*Inode{next})
}

// Chown sets the owner of the record at p, following a trailing symlink.
func (fsys *FS) Chown(p string, uid, gid int) error {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()

	node, err := fsys.resolveFull("chown", p)
	if err != nil {
		return err
	}
	next := node.Clone()
	next.UID = uid
	next.GID = gid
	return fsys.commit(nil, []*Inode{next})
}

// Symlink creates a symlink at linkPath pointing at target. The target
// is stored verbatim and need not exist.
func (fsys *FS) Symlink(target, linkPath string) error {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()

	resolved, err := fsys.resolveLinks("symlink", linkPath)
	if err != nil {
		return err
	}
	if _, ok := fsys.nodes[resolved]; ok {
		return pathErr("symlink", linkPath, ErrExists)
	}
	if err := fsys.requireParent("symlink", resolved); err != nil {
		return err
	}

	now := fsys.now()
	node := &Inode{
		Path:    resolved,
		Type:    TypeSymlink,
		Mode:    defaultLinkMode,
		Size:    int64(len(target)),
		Ctime:   now,
		Mtime:   now,
		Atime:   now,
		Content: []byte(target),
	}
	return fsys.commit(nil, []*Inode{node})
}

// Readlink returns the target of the symlink at p.
func (fsys *FS) Readlink(p string) (string, error) {
	fsys.mu.RLock()
	defer fsys.mu.RUnlock()

	resolved, err := fsys.resolveLinks("readlink", p)
	if err != nil {
		return "", err
	}
	node, ok := fsys.nodes[resolved]
	if !ok {
		return "", pathErr("readlink", p, ErrNotFound)
	}
	if !node.IsSymlink() {
		return "", pathErr("readlink", p, errNotSymlink)
	}
	return node.Target(), nil
}

// Walk visits root and every record under it in lexical path order.
// Returning fs.SkipDir from fn skips a directory's subtree.
func (fsys *FS) Walk(root string, fn func(n *Inode) error) error {
	fsys.mu.RLock()
	resolved, err := fsys.resolveLinks("walk", root)
	if err != nil {
		fsys.mu.RUnlock()
		return err
	}
	if _, ok := fsys.nodes[resolved]; !ok {
		fsys.mu.RUnlock()
		return pathErr("walk", root, ErrNotFound)
	}

	paths := append([]string{resolved}, fsys.descendants(resolved)...)
	snapshot := make([]*Inode, 0, len(paths))
	for _, p := range paths {
		snapshot = append(snapshot, fsys.nodes[p].Clone())
	}
	fsys.mu.RUnlock()

	var skip string
	for _, n := range snapshot {
		if skip != "" && isDescendant(skip, n.Path) {
			continue
		}
		if err := fn(n); err != nil {
			if errors.Is(err, fs.SkipDir) && n.IsDir() {
				skip = n.Path
				continue
			}
			return err
		}
	}
	return nil
}
