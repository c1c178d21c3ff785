package tray

import (
	"sync"

	"github.com/wailsapp/wails/v3/pkg/application"
	"go.uber.org/zap"

	"github.com/mrcode/nightscout-panel/internal/models"
)

// Tray is a panel backed by a system tray item. Run must be called from the
// main goroutine.
type Tray struct {
	app    *application.App
	item   *application.SystemTray
	icons  *IconGenerator
	logger *zap.Logger

	mu       sync.Mutex
	label    string
	tooltip  string
	category models.ColorCategory
	color    string
}

// New creates the tray application. onRefresh is bound to the
// "Refresh now" menu entry.
func New(logger *zap.Logger, onRefresh func()) *Tray {
	t := &Tray{
		icons:  NewIconGenerator(),
		logger: logger.Named("tray"),
	}

	t.app = application.New(application.Options{
		Name:        "Nightscout Panel",
		Description: "Latest Nightscout glucose reading",
		Mac: application.MacOptions{
			ActivationPolicy: application.ActivationPolicyAccessory,
		},
	})

	menu := application.NewMenu()
	menu.Add("Refresh now").OnClick(func(*application.Context) {
		if onRefresh != nil {
			onRefresh()
		}
	})
	menu.AddSeparator()
	menu.Add("Quit").OnClick(func(*application.Context) {
		t.app.Quit()
	})

	t.item = t.app.SystemTray.New()
	t.item.SetMenu(menu)
	t.item.SetIcon(t.icons.Generate("", models.CategoryNormal, ""))

	return t
}

// Run blocks until the tray is quit
func (t *Tray) Run() error {
	return t.app.Run()
}

// Quit stops the tray application
func (t *Tray) Quit() {
	t.app.Quit()
}

// SetLabel implements panel.Panel
func (t *Tray) SetLabel(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.label = label
}

// SetTooltip implements panel.Panel
func (t *Tray) SetTooltip(tooltip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tooltip = tooltip
}

// SetStyle implements panel.Panel
func (t *Tray) SetStyle(category models.ColorCategory, color string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.category = category
	t.color = color
}

// Commit pushes label, tooltip and a freshly drawn icon to the tray item
func (t *Tray) Commit() {
	t.mu.Lock()
	label, tooltip, category, color := t.label, t.tooltip, t.category, t.color
	t.mu.Unlock()

	t.item.SetLabel(label)
	t.item.SetTooltip(tooltip)

	if icon := t.icons.Generate(label, category, color); icon != nil {
		t.item.SetIcon(icon)
	} else {
		t.logger.Warn("Failed to render tray icon", zap.String("label", label))
	}
}
