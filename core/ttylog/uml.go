package ttylog

import (
	"encoding/binary"
	"io"
	"regexp"
	"time"
)

// The user-mode-linux TTY log format, also written by Kippo and Cowrie.
// Each record is a little-endian header followed by Size payload bytes.

type umlOp int32

const (
	umlOpOpen  umlOp = 1
	umlOpClose umlOp = 2
	umlOpWrite umlOp = 3
	umlOpExec  umlOp = 4
)

type umlDir int32

const (
	umlDirRead  umlDir = 1
	umlDirWrite umlDir = 2
)

type umlRecord struct {
	Operation    int32  // Maps into umlOp.
	Tty          uint32 // Always 0.
	Size         int32  // Number of payload bytes following the header.
	Direction    int32  // Maps into umlDir.
	Seconds      uint32 // UNIX timestamp of the event.
	Microseconds uint32 // Microseconds after Seconds.
}

// NewUMLLogSink creates a LogSink that writes the user-mode-linux TTY
// format.
func NewUMLLogSink(w io.Writer) LogSink {
	return func(event *Event) error {
		timestamp := time.UnixMicro(event.TimestampMicros)

		direction := umlDirWrite
		if event.FD == FDStdin {
			direction = umlDirRead
		}

		record := umlRecord{
			Operation:    int32(umlOpWrite),
			Size:         int32(len(event.Data)),
			Direction:    int32(direction),
			Seconds:      uint32(timestamp.Unix()),
			Microseconds: uint32(timestamp.UnixMicro() % int64(time.Second/time.Microsecond)),
		}
		if err := binary.Write(w, binary.LittleEndian, &record); err != nil {
			return err
		}

		if len(event.Data) > 0 {
			if _, err := w.Write(event.Data); err != nil {
				return err
			}
		}
		return nil
	}
}

// UMLLogSource parses log events from a user-mode-linux/Kippo formatted
// file.
type UMLLogSource struct {
	r io.Reader
}

var _ LogSource = (*UMLLogSource)(nil)

// NewUMLLogSource reads log events from a user-mode-linux/Kippo
// formatted file.
func NewUMLLogSource(r io.Reader) *UMLLogSource {
	return &UMLLogSource{r: r}
}

// Next gets the next log entry, it returns io.EOF if there are no more.
func (log *UMLLogSource) Next() (*Event, error) {
	for {
		var record umlRecord
		if err := binary.Read(log.r, binary.LittleEndian, &record); err != nil {
			// Truncated recordings are common, a partial trailing
			// header ends the stream.
			return nil, io.EOF
		}

		data := make([]byte, record.Size)
		if _, err := io.ReadFull(log.r, data); err != nil {
			return nil, err
		}

		timestampMicros := int64(record.Seconds)*int64(time.Second/time.Microsecond) + int64(record.Microseconds)

		// UML doesn't distinguish between stdout and stderr so report
		// it all as stdout.
		fd := FDStdout
		if umlDir(record.Direction) == umlDirRead {
			fd = FDStdin
		}

		switch umlOp(record.Operation) {
		case umlOpWrite:
			return &Event{
				TimestampMicros: timestampMicros,
				FD:              fd,
				Data:            data,
			}, nil
		case umlOpClose:
			return nil, io.EOF
		default:
			// Skip open, exec, and unknown operations.
			continue
		}
	}
}

var crlf = regexp.MustCompile(`\r?\n`)

// NewKippoQuirksAdapter fixes quirks in log events that come from
// Kippo. Kippo sent \n rather than \r\n, so playback crept across the
// screen because the cursor column was never reset.
func NewKippoQuirksAdapter(next LogSink) LogSink {
	return func(event *Event) error {
		event.Data = crlf.ReplaceAll(event.Data, []byte("\r\n"))
		return next(event)
	}
}
