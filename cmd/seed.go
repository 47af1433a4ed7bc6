package cmd

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
	containerregistry "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/tarball"
	"github.com/spf13/cobra"

	"github.com/vsh-project/vsh/core/config"
)

// WhiteoutPrefix marks a file deleted by an upper image layer.
const WhiteoutPrefix = ".wh."

// opaqueWhiteout hides everything a directory held in lower layers.
const opaqueWhiteout = ".wh..wh..opq"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Build seed archives for the honeypot filesystem.",
	Long: `Build a ` + config.RootFSName + ` archive for the config directory.

When the archive is present the first boot unpacks it instead of the
built-in minimal tree.`,
}

// seedImageCmd squashes a Docker image into a seed archive.
var seedImageCmd = &cobra.Command{
	Use:   "image INPUT_TAR OUTPUT_TAR_GZ [TAG]",
	Short: "Convert a docker image to a seed archive.",
	Long: `Convert a docker image to a seed archive.

Prepare an image by running the following:

	docker pull some-image:latest
	docker save some-image:latest > some-image.tar
	vsh seed image some-image.tar ` + config.RootFSName + `
`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		inputPath := args[0]
		outputPath := args[1]

		// Find the tag associated with the image.
		var tag name.Tag
		if len(args) == 3 {
			var err error
			tag, err = name.NewTag(args[2])
			if err != nil {
				return err
			}
		} else {
			manifest, err := tarball.LoadManifest(func() (io.ReadCloser, error) {
				return os.Open(inputPath)
			})
			if err != nil {
				return err
			}

			if len(manifest) != 1 {
				var tags []string
				for _, m := range manifest {
					tags = append(tags, m.RepoTags...)
				}

				return fmt.Errorf("multiple tags found in the input, specify one of: %q", tags)
			}
			tag, err = name.NewTag(manifest[0].RepoTags[0])
			if err != nil {
				return err
			}
		}

		image, err := tarball.ImageFromPath(inputPath, &tag)
		if err != nil {
			return err
		}

		layers, err := image.Layers()
		if err != nil {
			return err
		}

		out, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer out.Close()

		gz := gzip.NewWriter(out)
		if err := flattenLayers(layers, gz); err != nil {
			return err
		}
		return gz.Close()
	},
}

// seedDirCmd bundles a host directory into a seed archive.
var seedDirCmd = &cobra.Command{
	Use:   "dir DIRECTORY OUTPUT_TAR_GZ",
	Short: "Bundle a host directory into a seed archive.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		out, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer out.Close()

		gz := gzip.NewWriter(out)
		if err := tarDirectory(args[0], gz); err != nil {
			return err
		}
		return gz.Close()
	},
}

type seedEntry struct {
	header  *tar.Header
	content []byte
}

// flattenLayers squashes image layers into a single archive, applying
// whiteouts so files deleted by upper layers never reach the seed.
// Hard links are resolved to copies where the target is known.
func flattenLayers(layers []containerregistry.Layer, w io.Writer) error {
	entries := make(map[string]*seedEntry)

	for layerIdx, layer := range layers {
		ul, err := layer.Uncompressed()
		if err != nil {
			return fmt.Errorf("couldn't decompress layer[%d]: %v", layerIdx, err)
		}

		tarReader := tar.NewReader(ul)
		for {
			hdr, err := tarReader.Next()
			if err == io.EOF {
				break // End of archive
			}
			if err != nil {
				ul.Close()
				return fmt.Errorf("couldn't read next file in layer[%d]: %v", layerIdx, err)
			}

			entryPath := cleanLayerPath(hdr.Name)
			if entryPath == "" {
				continue
			}
			base := path.Base(entryPath)

			switch {
			case base == opaqueWhiteout:
				deleteChildren(entries, path.Dir(entryPath))

			case strings.HasPrefix(base, WhiteoutPrefix):
				target := path.Join(path.Dir(entryPath), strings.TrimPrefix(base, WhiteoutPrefix))
				delete(entries, target)
				deleteChildren(entries, target)

			default:
				entry := &seedEntry{header: hdr}
				switch hdr.Typeflag {
				case tar.TypeReg:
					content, err := io.ReadAll(tarReader)
					if err != nil {
						ul.Close()
						return fmt.Errorf("couldn't read %s in layer[%d]: %v", hdr.Name, layerIdx, err)
					}
					entry.content = content

				case tar.TypeLink:
					// Materialize the link now while the target's bytes
					// are at hand.
					if target, ok := entries[cleanLayerPath(hdr.Linkname)]; ok {
						entry.header.Typeflag = tar.TypeReg
						entry.content = target.content
					}
				}

				if hdr.Typeflag != tar.TypeDir {
					// A file shadowing a lower-layer directory hides the
					// directory's contents too.
					deleteChildren(entries, entryPath)
				}
				entries[entryPath] = entry
			}
		}
		ul.Close()
	}

	var names []string
	for entryPath := range entries {
		names = append(names, entryPath)
	}
	sort.Strings(names)

	tw := tar.NewWriter(w)
	defer tw.Close()

	for _, entryPath := range names {
		entry := entries[entryPath]
		hdr := entry.header
		hdr.Name = entryPath
		if hdr.Typeflag == tar.TypeDir {
			hdr.Name += "/"
		}
		if hdr.Typeflag == tar.TypeReg {
			hdr.Size = int64(len(entry.content))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if len(entry.content) > 0 {
			if _, err := tw.Write(entry.content); err != nil {
				return err
			}
		}
	}

	return nil
}

// cleanLayerPath normalizes a layer member name to a rooted slash path
// without the leading slash. Returns "" for the root itself.
func cleanLayerPath(p string) string {
	p = path.Clean("/" + p)
	if p == "/" {
		return ""
	}
	return strings.TrimPrefix(p, "/")
}

func deleteChildren(entries map[string]*seedEntry, dir string) {
	prefix := dir + "/"
	for entryPath := range entries {
		if strings.HasPrefix(entryPath, prefix) {
			delete(entries, entryPath)
		}
	}
}

// tarDirectory archives dir's contents with paths relative to dir.
func tarDirectory(dir string, w io.Writer) error {
	tw := tar.NewWriter(w)
	defer tw.Close()

	return filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(p); err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		if info.Mode().IsRegular() {
			fd, err := os.Open(p)
			if err != nil {
				return err
			}
			_, err = io.Copy(tw, fd)
			fd.Close()
			return err
		}
		return nil
	})
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.AddCommand(seedImageCmd)
	seedCmd.AddCommand(seedDirCmd)
}
