package color

import (
	"hash/fnv"
	"math"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// RenderHash renders s in its hashed color.
func RenderHash(s string) string {
	return globalColorer.render(s)
}

// Hash returns a color derived from s. The same string always gets the same
// color, so a task name keeps its color across runs.
func Hash(s string) lipgloss.AdaptiveColor {
	return globalColorer.hash(s)
}

var globalColorer = &colorer{
	colorCache:  map[string]lipgloss.AdaptiveColor{},
	renderCache: map[string]string{},
}

type colorer struct {
	mu          sync.Mutex
	colorCache  map[string]lipgloss.AdaptiveColor
	renderCache map[string]string
}

func (c *colorer) render(s string) string {
	color := c.hash(s)

	c.mu.Lock()
	defer c.mu.Unlock()

	if out, ok := c.renderCache[s]; ok {
		return out
	}
	c.renderCache[s] = lipgloss.NewStyle().Foreground(color).Render(s)
	return c.renderCache[s]
}

func (c *colorer) hash(s string) lipgloss.AdaptiveColor {
	c.mu.Lock()
	defer c.mu.Unlock()

	if color, ok := c.colorCache[s]; ok {
		return color
	}
	c.colorCache[s] = hashColor(s)
	return c.colorCache[s]
}

// hashColor picks a hue from the hash of s. Light terminals get a dark shade
// and dark terminals get a light one.
func hashColor(s string) lipgloss.AdaptiveColor {
	hue := float64(hash(s)) / float64(math.MaxUint32) * 360
	return lipgloss.AdaptiveColor{
		Dark:  colorful.Hsl(hue, 1.0, 0.7).Clamped().Hex(),
		Light: colorful.Hsl(hue, 1.0, 0.3).Clamped().Hex(),
	}
}

func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
