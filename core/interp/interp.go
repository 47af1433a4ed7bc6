package interp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/vsh-project/vsh/core/logger"
	"github.com/vsh-project/vsh/core/vfs"
)

// MaxRecursionDepth bounds nested interpreter entry through command
// substitution, source, and Proc.Exec.
const MaxRecursionDepth = 16

// errTooDeep aborts a statement with exit code 2.
var errTooDeep = errors.New("too many levels of recursion")

// Interp evaluates command lines for one or more sessions against a
// shared filesystem and a frozen command registry.
type Interp struct {
	fs           *vfs.FS
	registry     *Registry
	builtins     map[string]ProcessFunc
	events       *logger.SessionLogger
	downloadSink func(source string) (io.WriteCloser, error)
}

// Option configures an Interp.
type Option func(*Interp)

// WithEvents wires a session event logger. A nil logger is fine; every
// record call is then a no-op.
func WithEvents(events *logger.SessionLogger) Option {
	return func(in *Interp) { in.events = events }
}

// WithDownloadSink wires a factory for archive copies of fetched
// payloads, keyed by source URL. Without one, archive writes are
// discarded.
func WithDownloadSink(sink func(source string) (io.WriteCloser, error)) Option {
	return func(in *Interp) { in.downloadSink = sink }
}

// New builds an interpreter over fsys and registry.
func New(fsys *vfs.FS, registry *Registry, opts ...Option) *Interp {
	in := &Interp{
		fs:       fsys,
		registry: registry,
		builtins: builtins(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// FS returns the filesystem the interpreter operates on.
func (in *Interp) FS() *vfs.FS { return in.fs }

// Registry returns the command registry.
func (in *Interp) Registry() *Registry { return in.registry }

// Run evaluates one raw line: variable expansion over the whole line,
// then statements, logic chains, and pipelines. It returns the exit
// code of the last statement run and leaves it in sess.LastExit. A
// line with no statements returns the previous exit code unchanged.
func (in *Interp) Run(sess *Session, line string, stdin io.Reader, stdout, stderr io.Writer) int {
	if stdin == nil {
		stdin = eofReader{}
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	expanded := ExpandVariables(line, sess.Env.LookupEnv, sess.LastExit)
	for _, stmt := range SplitStatements(expanded) {
		if sess.Quitting() {
			break
		}
		sess.LastExit = in.runStatement(sess, stmt, stdin, stdout, stderr)
	}
	return sess.LastExit
}

// runNested is Run behind the recursion guard, for re-entry from
// substitution, source, and Proc.Exec.
func (in *Interp) runNested(sess *Session, line string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	if sess.depth >= MaxRecursionDepth {
		return 2, errTooDeep
	}
	sess.depth++
	defer func() { sess.depth-- }()
	return in.Run(sess, line, stdin, stdout, stderr), nil
}

// runStatement walks a logic chain, skipping a part when its operator
// disagrees with the previous exit code. Skipped parts leave the code
// untouched, so a && b || c behaves like the usual left-to-right
// chain.
func (in *Interp) runStatement(sess *Session, stmt string, stdin io.Reader, stdout, stderr io.Writer) int {
	parts := SplitLogic(stmt)
	if len(parts) == 0 {
		return sess.LastExit
	}

	code := 0
	for i, part := range parts {
		if sess.Quitting() {
			break
		}
		if i > 0 {
			if part.Op == "&&" && code != 0 {
				continue
			}
			if part.Op == "||" && code == 0 {
				continue
			}
		}
		code = in.runPipeline(sess, part.Text, stdin, stdout, stderr)
	}
	return code
}

// runPipeline runs the segments of one pipeline left to right. Each
// intermediate stage writes into a buffer that becomes the next
// stage's stdin; only the last stage reaches the caller's streams.
// The pipeline's exit code is the last stage's.
func (in *Interp) runPipeline(sess *Session, part string, stdin io.Reader, stdout, stderr io.Writer) int {
	segs := SplitPipeline(part)
	if len(segs) == 0 {
		return 0
	}

	code := 0
	stageIn := stdin
	for i, seg := range segs {
		if i == len(segs)-1 {
			code = in.runSegment(sess, seg, stageIn, stdout, stderr)
			break
		}
		var buf bytes.Buffer
		code = in.runSegment(sess, seg, stageIn, &buf, io.Discard)
		stageIn = &buf
	}
	return code
}

// runSegment executes one pipeline segment: command substitution,
// redirect extraction, tokenization, alias and assignment handling,
// then dispatch to a builtin or registered command. Redirect buffers
// flush to the filesystem after the command returns.
func (in *Interp) runSegment(sess *Session, seg string, stdin io.Reader, stdout, stderr io.Writer) int {
	expanded, err := Substitute(seg, func(inner string) (string, error) {
		var out bytes.Buffer
		_, err := in.runNested(sess, inner, eofReader{}, &out, stderr)
		return out.String(), err
	})
	if err != nil {
		fmt.Fprintf(stderr, "sh: %v\n", err)
		return 2
	}

	cmdText, redirs := ParseRedirects(expanded)
	argv := Fields(cmdText)

	background := false
	if n := len(argv); n > 0 && argv[n-1] == "&" {
		background = true
		argv = argv[:n-1]
	}

	if len(argv) > 0 {
		if alias, ok := sess.Aliases[argv[0]]; ok {
			argv = append(Fields(alias), argv[1:]...)
		}
	}

	for len(argv) > 0 {
		name, value, ok := splitAssignment(argv[0])
		if !ok {
			break
		}
		sess.Env.Setenv(name, value)
		argv = argv[1:]
	}

	stdinSrc := stdin
	stdoutSink := stdout
	stderrSink := stderr
	var outBuf, errBuf *bytes.Buffer
	for _, r := range redirs {
		if r.Target == "" {
			fmt.Fprintln(stderr, "sh: missing redirect target")
			return 2
		}
		switch r.Kind {
		case RedirIn:
			content, err := in.fs.ReadFile(sess.Resolve(r.Target))
			if err != nil {
				fmt.Fprintf(stderr, "sh: %s: %v\n", r.Target, pathless(err))
				return 1
			}
			stdinSrc = bytes.NewReader(content)
		case RedirOut, RedirAppend:
			if outBuf == nil {
				outBuf = &bytes.Buffer{}
				stdoutSink = outBuf
			}
		case RedirErr:
			if errBuf == nil {
				errBuf = &bytes.Buffer{}
				stderrSink = errBuf
			}
		}
	}

	code := 0
	switch {
	case len(argv) == 0:
		// Assignment-only segment, or bare redirects creating files.

	default:
		name := argv[0]
		handler, ok := in.builtins[name]
		if !ok {
			handler, ok = in.registry.Lookup(name)
		}
		if !ok {
			fmt.Fprintf(stderrSink, "%s: command not found\n", name)
			in.events.RecordUnknownCommand(argv)
			code = 127
		} else {
			proc := &Proc{
				Environ: sess.Env,
				interp:  in,
				sess:    sess,
				argv:    argv,
				stdin:   stdinSrc,
				stdout:  stdoutSink,
				stderr:  stderrSink,
			}
			code = in.invoke(name, handler, proc, stderrSink)
			in.events.RecordCommand(argv, code)
		}
	}

	if background {
		sess.Jobs = append(sess.Jobs, Job{
			ID:     len(sess.Jobs) + 1,
			Line:   strings.TrimSpace(seg),
			Status: "Done",
		})
	}

	return in.flushRedirects(sess, redirs, outBuf, errBuf, stderr, code)
}

// Spawn runs a single handler with explicit argv and streams, outside
// line parsing. The SCP entry point and test harnesses use it to avoid
// re-tokenizing already split arguments.
func (in *Interp) Spawn(sess *Session, handler ProcessFunc, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if stdin == nil {
		stdin = eofReader{}
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	proc := &Proc{
		Environ: sess.Env,
		interp:  in,
		sess:    sess,
		argv:    argv,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}
	code := in.invoke(argv[0], handler, proc, stderr)
	in.events.RecordCommand(argv, code)
	sess.LastExit = code
	return code
}

// invoke runs a handler with panic containment. A panicking command
// reports on stderr and fails with exit code 1 instead of taking the
// session down.
func (in *Interp) invoke(name string, handler ProcessFunc, p *Proc, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			in.events.RecordPanic(name, r)
			fmt.Fprintf(stderr, "%s: internal error: %v\n", name, r)
			code = 1
		}
	}()
	return handler(p)
}

// flushRedirects writes the captured buffers to their targets in
// encounter order. Every > target is written even when several name
// different files, so each one ends up created. A write failure turns
// the segment's exit code into 1.
func (in *Interp) flushRedirects(sess *Session, redirs []Redirect, outBuf, errBuf *bytes.Buffer, stderr io.Writer, code int) int {
	for _, r := range redirs {
		var buf *bytes.Buffer
		switch r.Kind {
		case RedirOut, RedirAppend:
			buf = outBuf
		case RedirErr:
			buf = errBuf
		default:
			continue
		}
		if buf == nil {
			continue
		}
		target := sess.Resolve(r.Target)
		if err := in.fs.WriteFile(target, buf.Bytes(), r.Kind == RedirAppend); err != nil {
			fmt.Fprintf(stderr, "sh: %s: %v\n", r.Target, pathless(err))
			code = 1
		}
	}
	return code
}

// splitAssignment matches a NAME=value word at the head of argv.
func splitAssignment(word string) (name, value string, ok bool) {
	eq := strings.IndexByte(word, '=')
	if eq <= 0 || !validName(word[:eq]) {
		return "", "", false
	}
	return word[:eq], word[eq+1:], true
}

// pathless strips the fs.PathError layer so shell diagnostics read
// "sh: notes.txt: file does not exist" instead of repeating the op and
// canonical path.
func pathless(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
