package color

import "github.com/charmbracelet/lipgloss"

// Fixed colors for wires' own output, from the solarized palette. Task names
// get hashed colors instead; see [Hash].
var (
	Yellow = lipgloss.Color("#B58900")
	Red    = lipgloss.Color("#DC322F")

	// Muted is the palette's highest-contrast base tone, for the current
	// background.
	Muted = lipgloss.AdaptiveColor{Dark: "#FDF6E3", Light: "#002B36"}
)
