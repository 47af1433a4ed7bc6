package vfs

import (
	"io/fs"
	"time"
)

// NodeType discriminates the three kinds of inode record.
type NodeType string

const (
	TypeFile    NodeType = "file"
	TypeDir     NodeType = "dir"
	TypeSymlink NodeType = "symlink"
)

// Inode is one filesystem record, keyed by its canonical absolute path.
// Directories carry no content; symlinks store their target string as
// content. Size tracks len(Content) for files and symlinks and is zero
// for directories.
type Inode struct {
	Path    string      `json:"path"`
	Type    NodeType    `json:"type"`
	Mode    fs.FileMode `json:"mode"`
	UID     int         `json:"uid"`
	GID     int         `json:"gid"`
	Size    int64       `json:"size"`
	Ctime   time.Time   `json:"ctime"`
	Mtime   time.Time   `json:"mtime"`
	Atime   time.Time   `json:"atime"`
	Content []byte      `json:"content,omitempty"`
}

func (n *Inode) IsDir() bool     { return n.Type == TypeDir }
func (n *Inode) IsFile() bool    { return n.Type == TypeFile }
func (n *Inode) IsSymlink() bool { return n.Type == TypeSymlink }

// Name returns the final path element.
func (n *Inode) Name() string {
	return Base(n.Path)
}

// Target returns the symlink destination, or "" for non-symlinks.
func (n *Inode) Target() string {
	if !n.IsSymlink() {
		return ""
	}
	return string(n.Content)
}

// Clone returns a deep copy of the record.
func (n *Inode) Clone() *Inode {
	dup := *n
	if n.Content != nil {
		dup.Content = append([]byte(nil), n.Content...)
	}
	return &dup
}

// FileInfo adapts the record to fs.FileInfo. Sys returns the *Inode.
func (n *Inode) FileInfo() fs.FileInfo {
	return fileInfo{n}
}

type fileInfo struct {
	node *Inode
}

func (fi fileInfo) Name() string       { return fi.node.Name() }
func (fi fileInfo) Size() int64        { return fi.node.Size }
func (fi fileInfo) ModTime() time.Time { return fi.node.Mtime }
func (fi fileInfo) IsDir() bool        { return fi.node.IsDir() }
func (fi fileInfo) Sys() interface{}   { return fi.node }

func (fi fileInfo) Mode() fs.FileMode {
	mode := fi.node.Mode & fs.ModePerm
	switch fi.node.Type {
	case TypeDir:
		mode |= fs.ModeDir
	case TypeSymlink:
		mode |= fs.ModeSymlink
	}
	return mode
}

var _ fs.FileInfo = fileInfo{}
