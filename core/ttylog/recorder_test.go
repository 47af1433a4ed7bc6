package ttylog

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderOrdersEvents(t *testing.T) {
	tick := time.Date(2022, 9, 2, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	var got []*Event
	recorder := NewRecorder(func(e *Event) error {
		got = append(got, e)
		return nil
	}, clock)

	var stdout, stderr bytes.Buffer
	out := recorder.Stdout(&stdout)
	errOut := recorder.Stderr(&stderr)
	in := recorder.Stdin(strings.NewReader("whoami\n"))

	buf := make([]byte, 64)
	n, err := in.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "whoami\n", string(buf[:n]))

	_, err = out.Write([]byte("root\n"))
	require.NoError(t, err)
	_, err = errOut.Write([]byte("oops\n"))
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, FDStdin, got[0].FD)
	assert.Equal(t, FDStdout, got[1].FD)
	assert.Equal(t, FDStderr, got[2].FD)

	assert.Equal(t, "whoami\n", string(got[0].Data))
	assert.Equal(t, "root\n", string(got[1].Data))
	assert.Equal(t, "oops\n", string(got[2].Data))

	// Wrapped streams still saw the data.
	assert.Equal(t, "root\n", stdout.String())
	assert.Equal(t, "oops\n", stderr.String())

	// Timestamps follow the clock.
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i].TimestampMicros, got[i-1].TimestampMicros)
	}
}

func TestRecorderCopiesBuffers(t *testing.T) {
	var got []*Event
	recorder := NewRecorder(func(e *Event) error {
		got = append(got, e)
		return nil
	}, nil)

	out := recorder.Stdout(io.Discard)

	buf := []byte("before")
	_, err := out.Write(buf)
	require.NoError(t, err)
	copy(buf, "after!")

	require.Len(t, got, 1)
	assert.Equal(t, "before", string(got[0].Data))
}

func TestRecorderSkipsEmptyReads(t *testing.T) {
	var got []*Event
	recorder := NewRecorder(func(e *Event) error {
		got = append(got, e)
		return nil
	}, nil)

	in := recorder.Stdin(strings.NewReader(""))
	_, err := in.Read(make([]byte, 8))
	assert.Equal(t, io.EOF, err)
	assert.Empty(t, got)
}
