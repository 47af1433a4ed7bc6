package vfs

import (
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClock = func() time.Time {
	return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
}

func newTestFS(t *testing.T) *FS {
	t.Helper()
	fsys, err := New(NewMemStore(), WithClock(testClock))
	require.NoError(t, err)
	return fsys
}

func TestNewCreatesRoot(t *testing.T) {
	fsys := newTestFS(t)

	root, err := fsys.Stat("/")
	require.NoError(t, err)
	assert.True(t, root.IsDir())
	assert.True(t, fsys.Empty())
}

func TestWriteReadRoundTrip(t *testing.T) {
	fsys := newTestFS(t)

	content := []byte("hello world\n")
	require.NoError(t, fsys.WriteFile("/note.txt", content, false))

	got, err := fsys.ReadFile("/note.txt")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	node, err := fsys.Stat("/note.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), node.Size)
	assert.Equal(t, TypeFile, node.Type)
}

func TestWriteFile(t *testing.T) {
	t.Run("missing parent", func(t *testing.T) {
		fsys := newTestFS(t)
		err := fsys.WriteFile("/no/such/dir/f.txt", []byte("x"), false)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("parent is a file", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.WriteFile("/f", nil, false))
		err := fsys.WriteFile("/f/child", []byte("x"), false)
		assert.ErrorIs(t, err, ErrNotADirectory)
	})

	t.Run("target is a directory", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d", false))
		err := fsys.WriteFile("/d", []byte("x"), false)
		assert.ErrorIs(t, err, ErrIsDirectory)
	})

	t.Run("append", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.WriteFile("/f", []byte("a"), false))
		require.NoError(t, fsys.WriteFile("/f", []byte("b"), true))
		got, err := fsys.ReadFile("/f")
		require.NoError(t, err)
		assert.Equal(t, "ab", string(got))
	})

	t.Run("truncate", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.WriteFile("/f", []byte("long content"), false))
		require.NoError(t, fsys.WriteFile("/f", []byte("x"), false))
		got, err := fsys.ReadFile("/f")
		require.NoError(t, err)
		assert.Equal(t, "x", string(got))
	})
}

func TestReadFile(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		fsys := newTestFS(t)
		_, err := fsys.ReadFile("/nope")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d", false))
		_, err := fsys.ReadFile("/d")
		assert.ErrorIs(t, err, ErrIsDirectory)
	})
}

func TestMkdir(t *testing.T) {
	t.Run("nominal", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d", false))
		assert.True(t, fsys.Exists("/d"))
	})

	t.Run("exists", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d", false))
		err := fsys.Mkdir("/d", false)
		assert.ErrorIs(t, err, ErrExists)
	})

	t.Run("exists recursive", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d", false))
		assert.NoError(t, fsys.Mkdir("/d", true))
	})

	t.Run("missing parent", func(t *testing.T) {
		fsys := newTestFS(t)
		err := fsys.Mkdir("/a/b/c", false)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("recursive creates ancestors", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/a/b/c", true))
		for _, p := range []string{"/a", "/a/b", "/a/b/c"} {
			node, err := fsys.Stat(p)
			require.NoError(t, err)
			assert.True(t, node.IsDir(), p)
		}
	})

	t.Run("recursive over file", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.WriteFile("/f", nil, false))
		err := fsys.Mkdir("/f/sub", true)
		assert.ErrorIs(t, err, ErrNotADirectory)
	})
}

func TestReadDir(t *testing.T) {
	t.Run("sorted entries", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d", false))
		require.NoError(t, fsys.WriteFile("/d/b.txt", nil, false))
		require.NoError(t, fsys.WriteFile("/d/a.txt", nil, false))
		require.NoError(t, fsys.Mkdir("/d/sub", false))

		entries, err := fsys.ReadDir("/d")
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "a.txt", entries[0].Name())
		assert.Equal(t, "b.txt", entries[1].Name())
		assert.Equal(t, "sub", entries[2].Name())
	})

	t.Run("excludes grandchildren", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d/sub", true))
		require.NoError(t, fsys.WriteFile("/d/sub/f", nil, false))

		entries, err := fsys.ReadDir("/d")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "sub", entries[0].Name())
	})

	t.Run("not a directory", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.WriteFile("/f", nil, false))
		_, err := fsys.ReadDir("/f")
		assert.ErrorIs(t, err, ErrNotADirectory)
	})

	t.Run("missing", func(t *testing.T) {
		fsys := newTestFS(t)
		_, err := fsys.ReadDir("/nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUnlink(t *testing.T) {
	t.Run("nominal", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.WriteFile("/f", nil, false))
		require.NoError(t, fsys.Unlink("/f"))
		assert.False(t, fsys.Exists("/f"))
	})

	t.Run("directory", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d", false))
		assert.ErrorIs(t, fsys.Unlink("/d"), ErrIsDirectory)
	})

	t.Run("removes link not target", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.WriteFile("/f", []byte("data"), false))
		require.NoError(t, fsys.Symlink("/f", "/ln"))
		require.NoError(t, fsys.Unlink("/ln"))
		assert.False(t, fsys.Exists("/ln"))
		assert.True(t, fsys.Exists("/f"))
	})
}

func TestRmdir(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d", false))
		require.NoError(t, fsys.Rmdir("/d", false))
		assert.False(t, fsys.Exists("/d"))
	})

	t.Run("not empty", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d", false))
		require.NoError(t, fsys.WriteFile("/d/f", nil, false))
		assert.ErrorIs(t, fsys.Rmdir("/d", false), ErrNotEmpty)
	})

	t.Run("recursive", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d/sub/deep", true))
		require.NoError(t, fsys.WriteFile("/d/sub/deep/f", nil, false))
		require.NoError(t, fsys.Rmdir("/d", true))
		assert.False(t, fsys.Exists("/d"))
		assert.False(t, fsys.Exists("/d/sub/deep/f"))
	})

	t.Run("root", func(t *testing.T) {
		fsys := newTestFS(t)
		assert.Error(t, fsys.Rmdir("/", true))
	})
}

func TestRename(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.WriteFile("/a", []byte("payload"), false))
		require.NoError(t, fsys.Rename("/a", "/b"))

		assert.False(t, fsys.Exists("/a"))
		got, err := fsys.ReadFile("/b")
		require.NoError(t, err)
		assert.Equal(t, "payload", string(got))
	})

	t.Run("directory remaps descendants", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/old/nested", true))
		require.NoError(t, fsys.WriteFile("/old/nested/f.txt", []byte("x"), false))
		require.NoError(t, fsys.Mkdir("/dest", false))

		require.NoError(t, fsys.Rename("/old", "/dest/new"))

		assert.False(t, fsys.Exists("/old"))
		assert.False(t, fsys.Exists("/old/nested/f.txt"))
		assert.True(t, fsys.Exists("/dest/new/nested"))
		got, err := fsys.ReadFile("/dest/new/nested/f.txt")
		require.NoError(t, err)
		assert.Equal(t, "x", string(got))
	})

	t.Run("replaces file target", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.WriteFile("/a", []byte("new"), false))
		require.NoError(t, fsys.WriteFile("/b", []byte("old"), false))
		require.NoError(t, fsys.Rename("/a", "/b"))
		got, err := fsys.ReadFile("/b")
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))
	})

	t.Run("refuses dir target", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.WriteFile("/a", nil, false))
		require.NoError(t, fsys.Mkdir("/d", false))
		assert.ErrorIs(t, fsys.Rename("/a", "/d"), ErrIsDirectory)
	})

	t.Run("into own subtree", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d/sub", true))
		assert.Error(t, fsys.Rename("/d", "/d/sub/x"))
	})

	t.Run("missing source", func(t *testing.T) {
		fsys := newTestFS(t)
		assert.ErrorIs(t, fsys.Rename("/nope", "/b"), ErrNotFound)
	})
}

func TestCopy(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.WriteFile("/a", []byte("data"), false))
		require.NoError(t, fsys.Copy("/a", "/b", false))

		got, err := fsys.ReadFile("/b")
		require.NoError(t, err)
		assert.Equal(t, "data", string(got))
		assert.True(t, fsys.Exists("/a"))
	})

	t.Run("directory requires recursive", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d", false))
		assert.ErrorIs(t, fsys.Copy("/d", "/e", false), ErrIsDirectory)
	})

	t.Run("directory recursive", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d/sub", true))
		require.NoError(t, fsys.WriteFile("/d/sub/f", []byte("x"), false))
		require.NoError(t, fsys.Copy("/d", "/e", true))

		assert.True(t, fsys.Exists("/d/sub/f"))
		got, err := fsys.ReadFile("/e/sub/f")
		require.NoError(t, err)
		assert.Equal(t, "x", string(got))
	})
}

func TestSymlink(t *testing.T) {
	t.Run("read through link", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.WriteFile("/f", []byte("data"), false))
		require.NoError(t, fsys.Symlink("/f", "/ln"))

		got, err := fsys.ReadFile("/ln")
		require.NoError(t, err)
		assert.Equal(t, "data", string(got))
	})

	t.Run("stat does not follow", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.WriteFile("/f", []byte("data"), false))
		require.NoError(t, fsys.Symlink("/f", "/ln"))

		node, err := fsys.Stat("/ln")
		require.NoError(t, err)
		assert.True(t, node.IsSymlink())
		assert.Equal(t, "/f", node.Target())

		followed, err := fsys.StatFollow("/ln")
		require.NoError(t, err)
		assert.True(t, followed.IsFile())
	})

	t.Run("directory component", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/real", false))
		require.NoError(t, fsys.WriteFile("/real/f", []byte("x"), false))
		require.NoError(t, fsys.Symlink("/real", "/alias"))

		got, err := fsys.ReadFile("/alias/f")
		require.NoError(t, err)
		assert.Equal(t, "x", string(got))
	})

	t.Run("relative target", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Mkdir("/d", false))
		require.NoError(t, fsys.WriteFile("/d/f", []byte("rel"), false))
		require.NoError(t, fsys.Symlink("f", "/d/ln"))

		got, err := fsys.ReadFile("/d/ln")
		require.NoError(t, err)
		assert.Equal(t, "rel", string(got))
	})

	t.Run("loop", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Symlink("/b", "/a"))
		require.NoError(t, fsys.Symlink("/a", "/b"))
		_, err := fsys.ReadFile("/a")
		assert.ErrorIs(t, err, ErrLinkLoop)
	})

	t.Run("readlink", func(t *testing.T) {
		fsys := newTestFS(t)
		require.NoError(t, fsys.Symlink("/target", "/ln"))
		target, err := fsys.Readlink("/ln")
		require.NoError(t, err)
		assert.Equal(t, "/target", target)

		require.NoError(t, fsys.WriteFile("/f", nil, false))
		_, err = fsys.Readlink("/f")
		assert.Error(t, err)
	})
}

func TestChmod(t *testing.T) {
	fsys := newTestFS(t)
	require.NoError(t, fsys.WriteFile("/f", nil, false))
	require.NoError(t, fsys.Chmod("/f", 0755))

	node, err := fsys.Stat("/f")
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0755), node.Mode)
}

func TestChtimes(t *testing.T) {
	fsys := newTestFS(t)
	require.NoError(t, fsys.WriteFile("/f", nil, false))

	stamp := time.Date(2020, 6, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, fsys.Chtimes("/f", stamp, stamp))

	node, err := fsys.Stat("/f")
	require.NoError(t, err)
	assert.Equal(t, stamp, node.Mtime)
	assert.Equal(t, stamp, node.Atime)
}

func TestWalk(t *testing.T) {
	fsys := newTestFS(t)
	require.NoError(t, fsys.Mkdir("/a/b", true))
	require.NoError(t, fsys.WriteFile("/a/b/f", nil, false))
	require.NoError(t, fsys.WriteFile("/a/z", nil, false))

	var visited []string
	require.NoError(t, fsys.Walk("/a", func(n *Inode) error {
		visited = append(visited, n.Path)
		return nil
	}))
	assert.Equal(t, []string{"/a", "/a/b", "/a/b/f", "/a/z"}, visited)

	// SkipDir prunes the subtree.
	visited = nil
	require.NoError(t, fsys.Walk("/a", func(n *Inode) error {
		visited = append(visited, n.Path)
		if n.Path == "/a/b" {
			return fs.SkipDir
		}
		return nil
	}))
	assert.Equal(t, []string{"/a", "/a/b", "/a/z"}, visited)
}

// Covers the end to end directory scenario: nested mkdir, write, list.
func TestDirectoryScenario(t *testing.T) {
	fsys := newTestFS(t)
	require.NoError(t, fsys.Mkdir("/a/b/c", true))
	require.NoError(t, fsys.WriteFile("/a/b/c/f.txt", []byte("hello"), false))

	entries, err := fsys.ReadDir("/a/b/c")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "f.txt", entries[0].Name())
	assert.Equal(t, TypeFile, entries[0].Type)
	assert.Equal(t, int64(5), entries[0].Size)
}
