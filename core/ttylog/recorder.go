package ttylog

import (
	"io"
	"log"
	"sync"
	"time"
)

// Recorder forwards every read and write on wrapped streams to a
// LogSink, stamped with the wall time it happened. One Recorder
// serializes events from all three streams.
type Recorder struct {
	mu   sync.Mutex
	sink LogSink
	now  func() time.Time
}

// NewRecorder creates a recorder that forwards all events to sink. A
// nil now uses the wall clock.
func NewRecorder(sink LogSink, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{sink: sink, now: now}
}

func (r *Recorder) record(fd FD, data []byte) {
	if len(data) == 0 {
		return
	}
	// Callers reuse their buffers, so the event keeps its own copy.
	dup := make([]byte, len(data))
	copy(dup, data)

	r.mu.Lock()
	err := r.sink(&Event{
		TimestampMicros: r.now().UnixMicro(),
		FD:              fd,
		Data:            dup,
	})
	r.mu.Unlock()
	if err != nil {
		// A failed log write must not take the session down with it.
		log.Print(err)
	}
}

// Stdin returns rd with every successful read logged as input.
func (r *Recorder) Stdin(rd io.Reader) io.Reader {
	return &recordingReader{recorder: r, wrapped: rd}
}

// Stdout returns w with every write logged as output.
func (r *Recorder) Stdout(w io.Writer) io.Writer {
	return &recordingWriter{recorder: r, fd: FDStdout, wrapped: w}
}

// Stderr returns w with every write logged as error output.
func (r *Recorder) Stderr(w io.Writer) io.Writer {
	return &recordingWriter{recorder: r, fd: FDStderr, wrapped: w}
}

type recordingReader struct {
	recorder *Recorder
	wrapped  io.Reader
}

var _ io.Reader = (*recordingReader)(nil)

func (rc *recordingReader) Read(p []byte) (int, error) {
	n, err := rc.wrapped.Read(p)
	if n > 0 {
		rc.recorder.record(FDStdin, p[:n])
	}
	return n, err
}

type recordingWriter struct {
	recorder *Recorder
	fd       FD
	wrapped  io.Writer
}

var _ io.Writer = (*recordingWriter)(nil)

func (wc *recordingWriter) Write(p []byte) (int, error) {
	n, err := wc.wrapped.Write(p)
	if n > 0 {
		wc.recorder.record(wc.fd, p[:n])
	}
	return n, err
}
