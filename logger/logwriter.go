package logger

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"sync"
)

// LogBufferWriter is an io.Writer that writes complete lines to a LogBuffer.
// Lines of the form "[LEVEL] [component] message" or "[component] message"
// are split into their parts; anything else is attributed to "system".
type LogBufferWriter struct {
	buffer *LogBuffer
	buf    bytes.Buffer
	mu     sync.Mutex
}

var lineRegex = regexp.MustCompile(`^(?:\[(INFO|WARN|ERROR)\]\s*)?(?:\[([^\]]+)\]\s*)?(.*)$`)

// NewLogBufferWriter creates a new writer that writes to the log buffer
func NewLogBufferWriter(buffer *LogBuffer) *LogBufferWriter {
	return &LogBufferWriter{
		buffer: buffer,
	}
}

// Write implements io.Writer
func (lw *LogBufferWriter) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	// Buffer until we get a newline
	lw.buf.Write(p)

	for {
		line, err := lw.buf.ReadString('\n')
		if err == io.EOF {
			// Keep the partial line for the next write
			lw.buf.WriteString(line)
			break
		}
		if err != nil {
			return len(p), err
		}

		line = strings.TrimSuffix(line, "\n")
		if len(line) == 0 {
			continue
		}
		lw.buffer.Add(splitLine(line))
	}

	return len(p), nil
}

func splitLine(line string) (Level, string, string) {
	m := lineRegex.FindStringSubmatch(line)
	if m == nil {
		return LevelNone, "system", line
	}
	component := m[2]
	if component == "" {
		component = "system"
	}
	return Level(m[1]), component, m[3]
}
