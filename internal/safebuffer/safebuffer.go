// Package safebuffer provides a bytes.Buffer that can be written from many
// goroutines, for capturing script and printer output in tests.
package safebuffer

import (
	"bytes"
	"sync"
)

type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func New() *Buffer { return &Buffer{} }

func (b *Buffer) Write(bs []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(bs)
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
