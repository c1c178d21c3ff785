// Package panel defines the render surface the refresh loop pushes to, and
// the surfaces that do not need a desktop session
package panel

import (
	"github.com/mrcode/nightscout-panel/internal/models"
)

//go:generate mockgen -destination=mock_panel.go -package=panel github.com/mrcode/nightscout-panel/internal/panel Panel,Committer

// Panel is anything that can show a label, a tooltip and a color style
type Panel interface {
	SetLabel(label string)
	SetTooltip(tooltip string)
	// SetStyle receives the threshold category and the configured color
	// for it (empty for Normal)
	SetStyle(category models.ColorCategory, color string)
}

// Committer is implemented by panels that publish one update per cycle
// instead of reacting to every setter
type Committer interface {
	Commit()
}

// Apply pushes a display state through p's setters in order and commits it
func Apply(p Panel, state *models.DisplayState) {
	p.SetLabel(state.Label)
	p.SetTooltip(state.Tooltip)
	p.SetStyle(state.Category, state.Color)
	if c, ok := p.(Committer); ok {
		c.Commit()
	}
}

// Multi fans every call out to several panels
type Multi []Panel

// SetLabel implements Panel
func (m Multi) SetLabel(label string) {
	for _, p := range m {
		p.SetLabel(label)
	}
}

// SetTooltip implements Panel
func (m Multi) SetTooltip(tooltip string) {
	for _, p := range m {
		p.SetTooltip(tooltip)
	}
}

// SetStyle implements Panel
func (m Multi) SetStyle(category models.ColorCategory, color string) {
	for _, p := range m {
		p.SetStyle(category, color)
	}
}

// Commit implements Committer for the members that support it
func (m Multi) Commit() {
	for _, p := range m {
		if c, ok := p.(Committer); ok {
			c.Commit()
		}
	}
}

// state accumulates setter calls for the batch-oriented surfaces
type state struct {
	label    string
	tooltip  string
	category models.ColorCategory
	color    string
}

func (s *state) snapshot() models.DisplayState {
	return models.DisplayState{
		Label:    s.label,
		Tooltip:  s.tooltip,
		Category: s.category,
		Color:    s.color,
	}
}
