package vfs

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"strings"
)

// whiteoutPrefix marks deleted entries in OCI layer tars. Seed archives
// are already flattened, so whiteouts found here are simply skipped.
const whiteoutPrefix = ".wh."

// Seed populates an empty filesystem with a minimal default tree.
func Seed(fsys *FS, hostname, user, motd string) error {
	home := "/root"
	if user != "root" {
		home = "/home/" + user
	}

	dirs := []string{
		"/bin",
		"/etc",
		"/home",
		"/root",
		"/tmp",
		"/usr/bin",
		"/var/log",
		home,
	}
	for _, dir := range dirs {
		if err := fsys.Mkdir(dir, true); err != nil {
			return fmt.Errorf("couldn't seed %s: %w", dir, err)
		}
	}

	passwd := "root:x:0:0:root:/root:/bin/sh\n"
	if user != "root" {
		passwd += fmt.Sprintf("%s:x:1000:1000:%s:%s:/bin/sh\n", user, user, home)
	}

	files := map[string]string{
		"/etc/passwd":   passwd,
		"/etc/hostname": hostname + "\n",
		"/etc/motd":     motd + "\n",
	}
	for p, content := range files {
		if err := fsys.WriteFile(p, []byte(content), false); err != nil {
			return fmt.Errorf("couldn't seed %s: %w", p, err)
		}
	}
	return nil
}

// SeedBinaries records an executable stub under /bin for each command
// name, so PATH walks and directory listings see the command set.
// Existing entries are left alone so a real seed archive wins.
func SeedBinaries(fsys *FS, names []string) error {
	if err := fsys.Mkdir("/bin", true); err != nil {
		return err
	}
	stub := []byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0}
	for _, name := range names {
		if strings.ContainsAny(name, "/:") {
			continue
		}
		p := "/bin/" + name
		if fsys.Exists(p) {
			continue
		}
		if err := fsys.WriteFile(p, stub, false); err != nil {
			return fmt.Errorf("couldn't seed %s: %w", p, err)
		}
		if err := fsys.Chmod(p, 0755); err != nil {
			return err
		}
	}
	return nil
}

// ExtractTarGz unpacks a gzipped tar stream into the filesystem.
func ExtractTarGz(fsys *FS, r io.Reader) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("couldn't open gzip stream: %w", err)
	}
	defer gz.Close()
	return ExtractTar(fsys, tar.NewReader(gz))
}

// ExtractTar unpacks a tar stream into the filesystem. Ancestors are
// created as needed, existing entries are overwritten, hard links are
// materialized as copies, and whiteout markers are skipped.
func ExtractTar(fsys *FS, tr *tar.Reader) error {
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("couldn't read tar: %w", err)
		}

		name := Canonicalize(header.Name)
		if name == "/" || strings.HasPrefix(path.Base(name), whiteoutPrefix) {
			continue
		}

		if err := fsys.Mkdir(Dir(name), true); err != nil {
			return fmt.Errorf("couldn't create %s: %w", Dir(name), err)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := fsys.Mkdir(name, true); err != nil {
				return fmt.Errorf("couldn't create %s: %w", name, err)
			}

		case tar.TypeReg:
			content, err := io.ReadAll(io.LimitReader(tr, header.Size))
			if err != nil {
				return fmt.Errorf("couldn't read %s: %w", name, err)
			}
			if err := fsys.WriteFile(name, content, false); err != nil {
				return fmt.Errorf("couldn't write %s: %w", name, err)
			}

		case tar.TypeSymlink:
			if fsys.Exists(name) {
				if err := fsys.Unlink(name); err != nil {
					return fmt.Errorf("couldn't replace %s: %w", name, err)
				}
			}
			if err := fsys.Symlink(header.Linkname, name); err != nil {
				return fmt.Errorf("couldn't link %s: %w", name, err)
			}

		case tar.TypeLink:
			content, err := fsys.ReadFile(Canonicalize(header.Linkname))
			if err != nil {
				// Target outside the archive; nothing to copy.
				continue
			}
			if err := fsys.WriteFile(name, content, false); err != nil {
				return fmt.Errorf("couldn't write %s: %w", name, err)
			}

		default:
			// Devices, FIFOs and the like have no representation here.
			continue
		}

		if header.Typeflag == tar.TypeReg || header.Typeflag == tar.TypeDir {
			if err := fsys.Chmod(name, header.FileInfo().Mode()); err != nil {
				return err
			}
			if err := fsys.Chown(name, header.Uid, header.Gid); err != nil {
				return err
			}
			if !header.ModTime.IsZero() {
				atime := header.AccessTime
				if atime.IsZero() {
					atime = header.ModTime
				}
				if err := fsys.Chtimes(name, atime, header.ModTime); err != nil {
					return err
				}
			}
		}
	}
}
