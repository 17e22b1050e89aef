// Package printer interleaves the output of several tasks on one stream,
// labeling each run of lines with the name of the task that wrote it.
package printer

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/amonks/wires/internal/color"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Printer writes keyed output to a single stream. It is safe for concurrent
// use.
type Printer struct {
	mu          sync.Mutex
	stdout      io.Writer
	renderer    *lipgloss.Renderer
	gutterWidth int
	lastKey     string
}

// New creates a Printer writing to stdout, with a gutter wide enough for the
// longest of keys. Colors are used if stdout is a terminal that supports
// them.
func New(stdout io.Writer, keys ...string) *Printer {
	width := 0
	for _, k := range keys {
		if len(k) > width {
			width = len(k)
		}
	}
	return &Printer{
		stdout:      stdout,
		renderer:    lipgloss.NewRenderer(stdout),
		gutterWidth: width,
	}
}

// NoColor turns off styling, regardless of the terminal.
func (p *Printer) NoColor() *Printer {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renderer.SetColorProfile(termenv.Ascii)
	return p
}

// Write prints message, one line at a time, under key. The key is printed
// only when it differs from the previous write's, preceded by a blank line.
func (p *Printer) Write(key, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(key) > p.gutterWidth {
		p.gutterWidth = len(key)
	}
	keyStyle := p.renderer.NewStyle().
		Height(1).
		Align(lipgloss.Right).
		Margin(0, 2).
		Width(p.gutterWidth).
		Foreground(color.Hash(key))

	for _, l := range strings.Split(message, "\n") {
		if l == "" {
			continue
		}
		k, space := "", ""
		if key != p.lastKey {
			if p.lastKey != "" {
				space = "\n"
			}
			k, p.lastKey = key, key
		}
		fmt.Fprintln(p.stdout, space+lipgloss.JoinHorizontal(
			lipgloss.Top,
			keyStyle.Render(k),
			l,
		))
	}
}

// Writer returns an io.Writer whose writes are printed under id.
func (p *Printer) Writer(id string) io.Writer {
	return printerWriter{p, id}
}

var _ io.Writer = printerWriter{}

type printerWriter struct {
	printer *Printer
	id      string
}

func (w printerWriter) Write(bs []byte) (int, error) {
	w.printer.Write(w.id, string(bs))
	return len(bs), nil
}
