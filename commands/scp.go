package commands

import (
	"archive/tar"
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	goscp "github.com/bramvdbogaerde/go-scp"

	"github.com/vsh-project/vsh/core/interp"
	"github.com/vsh-project/vsh/core/vfs"
)

// readDirective reads one scp protocol message. Directives and file
// bytes interleave on the same stream, so all reads must go through the
// one buffered reader.
func readDirective(reader *bufio.Reader) (goscp.Response, error) {
	kind, err := reader.ReadByte()
	if err != nil {
		return goscp.Response{}, err
	}
	resp := goscp.Response{Type: kind}
	if kind > 0 {
		message, err := reader.ReadString('\n')
		if err != nil {
			return goscp.Response{}, err
		}
		resp.Message = message
	}
	return resp, nil
}

// scpSink speaks the receiving half of the scp protocol: ack the
// opening, then apply C (file), T (times), D/E (directory push/pop)
// directives until the stream ends. Files land in the filesystem and
// an archive copy is kept.
func scpSink(p *interp.Proc, destPath string) (err error) {
	archiveFd, err := p.DownloadSink(fmt.Sprintf("scp://%s", destPath))
	if err != nil {
		fmt.Fprintln(p.Stderr(), "Error", err)
		return err
	}
	defer archiveFd.Close()
	tarWriter := tar.NewWriter(archiveFd)
	defer tarWriter.Close()

	dest := p.Resolve(destPath)
	destIsDir := false
	if node, statErr := p.FS().StatFollow(dest); statErr == nil && node.IsDir() {
		destIsDir = true
	}

	reader := bufio.NewReader(p.Stdin())

	// Start the session by sending an ACK
	goscp.Ack(p.Stdout())

	for {
		resp, err := readDirective(reader)
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		switch resp.Type {
		// OK or non-fatal error:
		case 0x00, 0x01:
			goscp.Ack(p.Stdout())
			continue

		case 0x02:
			return fmt.Errorf("fatal error")
		case 'E': // exit
			goscp.Ack(p.Stdout())
			return nil

		case 'C': // File transfer
			fileInfo, err := resp.ParseFileInfos()
			if err != nil {
				return err
			}
			mode, err := strconv.ParseInt(fileInfo.Permissions, 8, 64)
			if err != nil {
				return fmt.Errorf("bad mode %q", fileInfo.Permissions)
			}
			goscp.Ack(p.Stdout())

			content := make([]byte, fileInfo.Size)
			if _, err := io.ReadFull(reader, content); err != nil {
				return err
			}
			// Absorb the source's end-of-file status byte.
			if b, err := reader.ReadByte(); err == nil && b != 0x00 {
				_ = reader.UnreadByte()
			}

			target := dest
			if destIsDir {
				target = vfs.Canonicalize(dest + "/" + vfs.Base(fileInfo.Filename))
			}
			if err := p.FS().WriteFile(target, content, false); err != nil {
				return err
			}
			if err := p.FS().Chmod(target, fs.FileMode(mode)); err != nil {
				return err
			}
			p.LogUpload(target, fileInfo.Size)

			if err := tarWriter.WriteHeader(&tar.Header{
				Name: fileInfo.Filename,
				Mode: mode,
				Size: fileInfo.Size,
			}); err != nil {
				return err
			}
			if _, err := tarWriter.Write(content); err != nil {
				return err
			}
			goscp.Ack(p.Stdout())

		case 'T', 'D': // Set timestamps for next file; directory
			goscp.Ack(p.Stdout())
		default:
			return errors.New("unknown directive")
		}
	}
}

// Scp implements an SCP command that only receives uploads.
func Scp(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "scp -t TOFILE",
		Short: "Secure copy.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}

	to := cmd.Flags().String('t', "", "Start scp in upload mode")
	_ = cmd.Flags().Bool('v', "Start scp in verbose mode")
	_ = cmd.Flags().Bool('r', "Start scp in recursive mode")

	return cmd.RunE(p, func() error {
		switch {
		case *to != "":
			err := scpSink(p, *to)
			if err != nil {
				fmt.Fprintln(p.Stderr(), err.Error())
				return err
			}
			return nil
		default:
			return errors.New("couldn't connect")
		}
	})
}

func init() {
	registerCommand(Scp, "scp")
}
