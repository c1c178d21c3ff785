// Package notifications raises desktop notifications when the displayed
// value crosses the High or Low threshold
package notifications

import (
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"github.com/mrcode/nightscout-panel/internal/models"
)

const appName = "Nightscout Panel"

// Manager is a panel that turns High and Low states into notifications.
// An alert fires on entering the category and again every
// RepeatAlertMinutes while it persists (never again when that is 0).
type Manager struct {
	settings *models.Settings
	logger   *zap.Logger
	notify   func(title, message string) error
	now      func() time.Time

	mu            sync.Mutex
	label         string
	category      models.ColorCategory
	lastAlertTime map[models.ColorCategory]time.Time
}

// NewManager creates a new notification manager
func NewManager(settings *models.Settings, logger *zap.Logger) *Manager {
	return &Manager{
		settings: settings,
		logger:   logger.Named("notifications"),
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		now:           time.Now,
		lastAlertTime: make(map[models.ColorCategory]time.Time),
	}
}

// SetLabel implements panel.Panel
func (m *Manager) SetLabel(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.label = label
}

// SetTooltip implements panel.Panel. Notifications only carry the label.
func (m *Manager) SetTooltip(string) {}

// SetStyle implements panel.Panel
func (m *Manager) SetStyle(category models.ColorCategory, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.category = category
}

// Commit checks the committed state and notifies if needed
func (m *Manager) Commit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.category == models.CategoryNormal {
		m.clearAlertState()
		return
	}

	if lastTime, ok := m.lastAlertTime[m.category]; ok {
		repeat := time.Duration(m.settings.Clone().RepeatAlertMinutes) * time.Minute
		if repeat <= 0 || m.now().Sub(lastTime) < repeat {
			return
		}
	}

	title := formatTitle(m.category)
	if err := m.notify(title, m.label); err != nil {
		m.logger.Warn("Failed to send notification", zap.String("title", title), zap.Error(err))
		return
	}

	// Leaving one extreme for the other re-arms the first
	m.clearAlertState()
	m.lastAlertTime[m.category] = m.now()
}

func (m *Manager) clearAlertState() {
	for category := range m.lastAlertTime {
		delete(m.lastAlertTime, category)
	}
}

func formatTitle(category models.ColorCategory) string {
	switch category {
	case models.CategoryHigh:
		return "⬆️ High Glucose"
	case models.CategoryLow:
		return "⬇️ Low Glucose"
	default:
		return appName
	}
}

// SendTestNotification sends a test notification
func (m *Manager) SendTestNotification() error {
	return m.notify(appName, "Test notification - alerts are working!")
}
