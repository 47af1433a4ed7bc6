package ttylog

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUMLRoundTrip(t *testing.T) {
	base := int64(1136171045000000) // 2006-01-02T03:04:05Z
	events := []*Event{
		{TimestampMicros: base, FD: FDStdout, Data: []byte("login: ")},
		{TimestampMicros: base + 250, FD: FDStdin, Data: []byte("root\r")},
		{TimestampMicros: base + 100250, FD: FDStderr, Data: []byte("denied\r\n")},
	}

	buf := &bytes.Buffer{}
	sink := NewUMLLogSink(buf)
	for _, event := range events {
		require.Nil(t, sink(event))
	}

	source := NewUMLLogSource(buf)

	first, err := source.Next()
	require.Nil(t, err)
	assert.Equal(t, base, first.TimestampMicros)
	assert.Equal(t, FDStdout, first.FD)
	assert.Equal(t, []byte("login: "), first.Data)

	second, err := source.Next()
	require.Nil(t, err)
	assert.Equal(t, base+250, second.TimestampMicros)
	assert.Equal(t, FDStdin, second.FD)

	// The format has no stderr, writes collapse into stdout.
	third, err := source.Next()
	require.Nil(t, err)
	assert.Equal(t, FDStdout, third.FD)
	assert.Equal(t, []byte("denied\r\n"), third.Data)

	_, err = source.Next()
	assert.Equal(t, io.EOF, err)
}

func TestUMLLogSource_skipsNonIO(t *testing.T) {
	buf := &bytes.Buffer{}
	write := func(op umlOp, payload []byte) {
		require.Nil(t, binary.Write(buf, binary.LittleEndian, &umlRecord{
			Operation: int32(op),
			Size:      int32(len(payload)),
			Direction: int32(umlDirWrite),
			Seconds:   1136171045,
		}))
		buf.Write(payload)
	}

	write(umlOpOpen, nil)
	write(umlOpExec, []byte("/bin/sh"))
	write(umlOpWrite, []byte("hi"))
	write(umlOpClose, nil)
	write(umlOpWrite, []byte("after close"))

	source := NewUMLLogSource(buf)

	event, err := source.Next()
	require.Nil(t, err)
	assert.Equal(t, []byte("hi"), event.Data)

	// A close ends the stream even with trailing data.
	_, err = source.Next()
	assert.Equal(t, io.EOF, err)
}

func TestUMLLogSource_truncated(t *testing.T) {
	source := NewUMLLogSource(bytes.NewReader([]byte{0x03, 0x00, 0x00}))
	_, err := source.Next()
	assert.Equal(t, io.EOF, err)
}

func TestKippoQuirksAdapter(t *testing.T) {
	var got []byte
	sink := NewKippoQuirksAdapter(func(e *Event) error {
		got = e.Data
		return nil
	})

	require.Nil(t, sink(&Event{FD: FDStdout, Data: []byte("a\nb\r\nc\n")}))
	assert.Equal(t, []byte("a\r\nb\r\nc\r\n"), got)
}
