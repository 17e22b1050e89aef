// Package fixtures has fake task bodies and output collectors for tests.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/amonks/wires/tasks"
)

// Func returns a task body that prints "! id: execute".
func Func(id string) tasks.Func {
	return func(_ context.Context, w io.Writer) error {
		fmt.Fprintf(w, "! %s: execute\n", id)
		return nil
	}
}

// Failing returns a task body that prints "! id: fail" and fails.
func Failing(id string) tasks.Func {
	return func(_ context.Context, w io.Writer) error {
		fmt.Fprintf(w, "! %s: fail\n", id)
		return errors.New("fail")
	}
}

// Counter is a task body that counts its runs.
type Counter struct {
	mu   sync.Mutex
	runs int
	ran  chan struct{}
}

// NewCounter creates a Counter.
func NewCounter() *Counter {
	return &Counter{ran: make(chan struct{}, 16)}
}

// Func returns the Counter's task body.
func (c *Counter) Func(id string) tasks.Func {
	return func(_ context.Context, w io.Writer) error {
		c.mu.Lock()
		c.runs++
		n := c.runs
		c.mu.Unlock()
		fmt.Fprintf(w, "! %s: run %d\n", id, n)
		c.ran <- struct{}{}
		return nil
	}
}

// Runs returns how many times the task has run.
func (c *Counter) Runs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}

// Ran is sent a value every time the task runs.
func (c *Counter) Ran() <-chan struct{} { return c.ran }

// Writer collects the output of many tasks. Every line is recorded, in
// order, as "[id] line".
type Writer struct {
	mu    sync.Mutex
	lines []string
}

// NewWriter creates a Writer.
func NewWriter() *Writer { return &Writer{} }

// Writer returns an io.Writer recording under id.
func (w *Writer) Writer(id string) io.Writer {
	return writerFunc(func(bs []byte) (int, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		for _, l := range strings.Split(strings.TrimSuffix(string(bs), "\n"), "\n") {
			w.lines = append(w.lines, fmt.Sprintf("[%s] %s", id, l))
		}
		return len(bs), nil
	})
}

// Lines returns every recorded line.
func (w *Writer) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string{}, w.lines...)
}

// Filter returns the recorded lines containing s.
func (w *Writer) Filter(s string) []string {
	var out []string
	for _, l := range w.Lines() {
		if strings.Contains(l, s) {
			out = append(out, l)
		}
	}
	return out
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(bs []byte) (int, error) { return f(bs) }
