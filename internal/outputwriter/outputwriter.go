// Package outputwriter buffers task output so that it reaches the printer a
// whole line at a time.
package outputwriter

import (
	"bufio"
	"io"
	"sync"
)

// Writer is a line-buffered io.Writer.
type Writer struct {
	mu  sync.Mutex
	buf *bufio.Writer
}

// New creates a Writer that passes complete lines on to w.
func New(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(w)}
}

func (w *Writer) Write(bs []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, b := range bs {
		if err = w.buf.WriteByte(b); err != nil {
			return n, err
		}
		n++
		if b == '\n' {
			if err = w.buf.Flush(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// Flush passes on any incomplete final line.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Flush()
}
