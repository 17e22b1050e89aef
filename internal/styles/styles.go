package styles

import (
	"github.com/amonks/wires/internal/color"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Notice styles wires' own messages interleaved with task output.
	Notice = lipgloss.NewStyle().
		Foreground(color.Muted).
		Italic(true)

	Warning = lipgloss.NewStyle().Foreground(color.Yellow)
	Error   = lipgloss.NewStyle().Foreground(color.Red).Bold(true)

	Header = lipgloss.NewStyle().Bold(true).Underline(true)
	Italic = lipgloss.NewStyle().Italic(true)
)
