package runner

import (
	"io"
	"sync"

	"github.com/amonks/wires/internal/outputwriter"
)

// A MultiWriter hands out one writer per task. [printer.Printer] is one.
type MultiWriter interface {
	Writer(id string) io.Writer
}

func wrapMultiWriter(mw MultiWriter) *bufferedMultiWriter {
	return &bufferedMultiWriter{
		base:    mw,
		writers: map[string]*outputwriter.Writer{},
	}
}

// bufferedMultiWriter line-buffers each of its base's writers.
type bufferedMultiWriter struct {
	base    MultiWriter
	mu      sync.Mutex
	writers map[string]*outputwriter.Writer
}

var _ MultiWriter = &bufferedMultiWriter{}

func (bmw *bufferedMultiWriter) Writer(id string) io.Writer {
	return bmw.writer(id)
}

func (bmw *bufferedMultiWriter) writer(id string) *outputwriter.Writer {
	bmw.mu.Lock()
	defer bmw.mu.Unlock()

	if w, has := bmw.writers[id]; has {
		return w
	}
	bmw.writers[id] = outputwriter.New(bmw.base.Writer(id))
	return bmw.writers[id]
}

func (bmw *bufferedMultiWriter) flush(id string) {
	bmw.writer(id).Flush()
}
