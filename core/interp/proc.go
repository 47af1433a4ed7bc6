package interp

import (
	"bytes"
	"io"

	"github.com/vsh-project/vsh/core/vfs"
)

// Proc is the execution context handed to one command invocation. The
// session environment is embedded, so handlers call p.Getenv and
// p.Setenv directly; standard streams are plain readers and writers
// wired by the executor.
type Proc struct {
	*Environ

	interp *Interp
	sess   *Session
	argv   []string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Args returns argv, with the invoked name at index zero.
func (p *Proc) Args() []string { return p.argv }

// Stdin is the command's input stream, fed from the previous pipeline
// stage or a < redirect, and empty otherwise.
func (p *Proc) Stdin() io.Reader { return p.stdin }

// Stdout is the command's output stream.
func (p *Proc) Stdout() io.Writer { return p.stdout }

// Stderr is the command's diagnostic stream.
func (p *Proc) Stderr() io.Writer { return p.stderr }

// FS is the virtual filesystem the command operates on.
func (p *Proc) FS() *vfs.FS { return p.interp.fs }

// Session returns the owning session.
func (p *Proc) Session() *Session { return p.sess }

// PTY reports the session's terminal geometry.
func (p *Proc) PTY() PTY { return p.sess.Terminal() }

// Cwd returns the session's working directory.
func (p *Proc) Cwd() string { return p.sess.Cwd }

// Chdir moves the session's working directory.
func (p *Proc) Chdir(raw string) error { return p.sess.Chdir(p.interp.fs, raw) }

// Resolve canonicalizes raw against the working directory and HOME.
func (p *Proc) Resolve(raw string) string { return p.sess.Resolve(raw) }

// Result holds the captured output of a nested Exec.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Exec runs a full command line in the current session with captured
// output. The recursion guard is the only error.
func (p *Proc) Exec(line string) (Result, error) {
	var stdout, stderr bytes.Buffer
	code, err := p.interp.runNested(p.sess, line, nil, &stdout, &stderr)
	if err != nil {
		return Result{ExitCode: code}, err
	}
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}, nil
}

// ExecIO runs a full command line against explicit streams, for
// commands like source and xargs that replay input through the
// interpreter.
func (p *Proc) ExecIO(line string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	return p.interp.runNested(p.sess, line, stdin, stdout, stderr)
}

// LogInvalidInvocation records an argv that failed flag parsing.
func (p *Proc) LogInvalidInvocation(err error) {
	p.interp.events.RecordInvalidInvocation(p.argv, err)
}

// DownloadSink opens an archive writer for a payload fetched from
// source. The caller owns the writer and must close it.
func (p *Proc) DownloadSink(source string) (io.WriteCloser, error) {
	if p.interp.downloadSink == nil {
		return nopWriteCloser{io.Discard}, nil
	}
	return p.interp.downloadSink(source)
}

// LogDownload records a completed fetch in the event log.
func (p *Proc) LogDownload(source, dest string, size int64) {
	p.interp.events.RecordDownload(source, dest, size)
}

// LogUpload records a file pushed into the filesystem in the event log.
func (p *Proc) LogUpload(dest string, size int64) {
	p.interp.events.RecordUpload(dest, size)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
