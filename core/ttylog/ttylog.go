// Package ttylog records and replays terminal sessions. Live streams
// are wrapped by a Recorder that forwards timed I/O events to a
// LogSink; the asciicast codec stores them on disk.
package ttylog

import (
	"io"
	"sync"
	"time"
)

// FD identifies which stream an event belongs to.
type FD int

const (
	FDStdin FD = iota
	FDStdout
	FDStderr
)

// Event is one timed I/O record from a terminal session.
type Event struct {
	// TimestampMicros is the event time in microseconds since the Unix
	// epoch.
	TimestampMicros int64
	FD              FD
	Data            []byte
}

// LogSink receives log events.
type LogSink func(e *Event) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF if
	// the source has no more log entries.
	Next() (*Event, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(event *Event) error {
		once.Do(func() {
			prevTimeMicros = event.TimestampMicros
		})

		delta := event.TimestampMicros - prevTimeMicros
		prevTimeMicros = event.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(event)
	}
}

// NewTerminalOutput writes stdout and stderr events to the given
// writer, dropping input. This is the sink behind cat and play.
func NewTerminalOutput(w io.Writer) LogSink {
	return func(event *Event) error {
		if event.FD != FDStdin {
			if _, err := w.Write(event.Data); err != nil {
				return err
			}
		}
		return nil
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) error {
	for {
		event, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(event); err != nil {
			return err
		}
	}
}
