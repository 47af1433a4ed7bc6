package vfs

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
)

// Store is the persistence boundary the filesystem writes through. Each
// logical mutation (including a whole subtree rename or delete) arrives
// as a single Apply call; an implementation must persist the batch
// completely or report an error, never a prefix.
type Store interface {
	// Load returns every persisted inode.
	Load() ([]*Inode, error)
	// Apply persists one batch: puts upsert records, deletes remove
	// records by canonical path. Deletes are applied before puts so a
	// rename can reuse a deleted key within one batch.
	Apply(puts []*Inode, deletes []string) error
	// Flush forces buffered state to stable storage.
	Flush() error
	Close() error
}

// MemStore is an in-memory Store for tests and ephemeral sessions.
type MemStore struct {
	mu    sync.Mutex
	nodes map[string]*Inode
}

func NewMemStore() *MemStore {
	return &MemStore{nodes: make(map[string]*Inode)}
}

func (s *MemStore) Load() ([]*Inode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Inode, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *MemStore) Apply(puts []*Inode, deletes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range deletes {
		delete(s.nodes, p)
	}
	for _, n := range puts {
		s.nodes[n.Path] = n.Clone()
	}
	return nil
}

func (s *MemStore) Flush() error { return nil }
func (s *MemStore) Close() error { return nil }

// Len reports the number of stored records.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

const (
	snapshotName = "fs.snapshot"
	journalName  = "fs.journal"

	// compactSlack is how far the journal may outgrow the live set
	// before opening triggers a compaction into the snapshot.
	compactSlack = 64
)

// journalEntry is one line of the JSONL journal.
type journalEntry struct {
	Op    string `json:"op"` // "put" or "del"
	Inode *Inode `json:"inode,omitempty"`
	Path  string `json:"path,omitempty"`
}

// JournalStore persists inodes as a JSONL snapshot plus an append-only
// JSONL journal under dir. Mutations append to the journal and are
// synced before Apply returns; the journal is folded back into the
// snapshot on open once it outgrows the live set.
type JournalStore struct {
	mu      sync.Mutex
	fs      afero.Fs
	dir     string
	journal afero.File
	pending int // journal entries since last compaction
	live    int // records at last load
}

// OpenJournalStore opens (creating if needed) the store under dir.
func OpenJournalStore(fsys afero.Fs, dir string) (*JournalStore, error) {
	if err := fsys.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("couldn't create store dir: %w", err)
	}

	s := &JournalStore{fs: fsys, dir: dir}

	nodes, entries, err := s.replay()
	if err != nil {
		return nil, err
	}
	s.live = len(nodes)
	s.pending = entries

	if entries > len(nodes)+compactSlack {
		if err := s.compact(nodes); err != nil {
			return nil, err
		}
	}

	journal, err := fsys.OpenFile(filepath.Join(dir, journalName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("couldn't open journal: %w", err)
	}
	s.journal = journal
	return s, nil
}

// replay folds the snapshot and journal into the live record set.
func (s *JournalStore) replay() (map[string]*Inode, int, error) {
	nodes := make(map[string]*Inode)

	if err := s.readLines(snapshotName, func(line []byte) error {
		var n Inode
		if err := json.Unmarshal(line, &n); err != nil {
			return err
		}
		nodes[n.Path] = &n
		return nil
	}); err != nil {
		return nil, 0, fmt.Errorf("corrupt snapshot: %w", err)
	}

	entries := 0
	if err := s.readLines(journalName, func(line []byte) error {
		entries++
		var e journalEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		switch e.Op {
		case "put":
			if e.Inode != nil {
				nodes[e.Inode.Path] = e.Inode
			}
		case "del":
			delete(nodes, e.Path)
		}
		return nil
	}); err != nil {
		return nil, 0, fmt.Errorf("corrupt journal: %w", err)
	}

	return nodes, entries, nil
}

func (s *JournalStore) readLines(name string, handle func([]byte) error) error {
	fd, err := s.fs.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer fd.Close()

	scanner := bufio.NewScanner(fd)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := handle(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// compact writes the live set to a fresh snapshot and truncates the
// journal. The snapshot is written to a temp file first so a crash
// mid-compaction leaves the old state readable.
func (s *JournalStore) compact(nodes map[string]*Inode) error {
	paths := make([]string, 0, len(nodes))
	for p := range nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	tmpName := filepath.Join(s.dir, snapshotName+".tmp")
	tmp, err := s.fs.OpenFile(tmpName, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("couldn't write snapshot: %w", err)
	}

	w := bufio.NewWriter(tmp)
	for _, p := range paths {
		line, err := json.Marshal(nodes[p])
		if err != nil {
			tmp.Close()
			return err
		}
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := s.fs.Rename(tmpName, filepath.Join(s.dir, snapshotName)); err != nil {
		return fmt.Errorf("couldn't swap snapshot: %w", err)
	}
	if err := s.fs.RemoveAll(filepath.Join(s.dir, journalName)); err != nil {
		return fmt.Errorf("couldn't truncate journal: %w", err)
	}
	s.pending = 0
	return nil
}

func (s *JournalStore) Load() ([]*Inode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, _, err := s.replay()
	if err != nil {
		return nil, err
	}
	s.live = len(nodes)

	out := make([]*Inode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *JournalStore) Apply(puts []*Inode, deletes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	for _, p := range deletes {
		line, err := json.Marshal(journalEntry{Op: "del", Path: p})
		if err != nil {
			return err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	for _, n := range puts {
		line, err := json.Marshal(journalEntry{Op: "put", Inode: n})
		if err != nil {
			return err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	// One write per batch so the journal never holds a torn batch
	// prefix from an interleaved writer.
	if _, err := s.journal.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("couldn't append journal: %w", err)
	}
	if err := s.journal.Sync(); err != nil {
		return fmt.Errorf("couldn't sync journal: %w", err)
	}
	s.pending += len(puts) + len(deletes)
	return nil
}

func (s *JournalStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.Sync()
}

func (s *JournalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.Close()
}

var (
	_ Store = (*MemStore)(nil)
	_ Store = (*JournalStore)(nil)
)
