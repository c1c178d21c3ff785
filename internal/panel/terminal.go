package panel

import (
	"strings"
	"sync"

	tm "github.com/buger/goterm"

	"github.com/mrcode/nightscout-panel/internal/models"
)

var terminalColors = map[string]int{
	"black":   tm.BLACK,
	"red":     tm.RED,
	"green":   tm.GREEN,
	"yellow":  tm.YELLOW,
	"orange":  tm.YELLOW,
	"blue":    tm.BLUE,
	"magenta": tm.MAGENTA,
	"purple":  tm.MAGENTA,
	"cyan":    tm.CYAN,
	"white":   tm.WHITE,
}

// Terminal redraws the current state on the controlling terminal
type Terminal struct {
	mu    sync.Mutex
	state state
}

// NewTerminal creates a terminal panel
func NewTerminal() *Terminal {
	return &Terminal{}
}

// SetLabel implements Panel
func (t *Terminal) SetLabel(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.label = label
}

// SetTooltip implements Panel
func (t *Terminal) SetTooltip(tooltip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.tooltip = tooltip
}

// SetStyle implements Panel
func (t *Terminal) SetStyle(category models.ColorCategory, color string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.category = category
	t.state.color = color
}

// Commit clears the screen and draws the latest frame
func (t *Terminal) Commit() {
	frame := t.frame()

	tm.Clear()
	tm.MoveCursor(1, 1)
	_, _ = tm.Print(frame)
	tm.Flush()
}

// frame renders the label line followed by the indented tooltip
func (t *Terminal) frame() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	label := tm.Bold(t.state.label)
	if code, ok := terminalColors[strings.ToLower(t.state.color)]; ok && t.state.category != models.CategoryNormal {
		label = tm.Color(label, code)
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteString("\n")
	for _, line := range strings.Split(t.state.tooltip, "\n") {
		if line == "" {
			continue
		}
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
