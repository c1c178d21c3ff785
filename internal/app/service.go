// Package app runs the fetch-and-render refresh loop
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrcode/nightscout-panel/internal/display"
	"github.com/mrcode/nightscout-panel/internal/models"
	"github.com/mrcode/nightscout-panel/internal/panel"
)

const (
	loadingLabel   = "Loading..."
	loadingTooltip = "Nightscout"
)

// ErrNotConfigured is returned by RunCycle when no host is set
var ErrNotConfigured = errors.New("nightscout host is not configured")

// Fetcher retrieves the two pieces of data a refresh cycle needs
type Fetcher interface {
	FetchCurrentReading(ctx context.Context, host, token string) (*models.Reading, error)
	FetchDeviceStatus(ctx context.Context, host, token string) (*models.DeviceStatus, error)
}

// State is the refresh state machine position
type State int

// Refresh states
const (
	StateIdle State = iota
	StateFetching
	StateRendered
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateRendered:
		return "rendered"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// RefreshService periodically fetches the latest reading and device status
// and pushes the composed display state to a panel
type RefreshService struct {
	settings *models.Settings
	fetcher  Fetcher
	panel    panel.Panel
	logger   *zap.Logger
	now      func() time.Time

	repeater *Repeater
	stopOnce sync.Once

	// Serializes cycles started by the timer and by direct RunCycle calls
	cycleMu sync.Mutex

	mu      sync.RWMutex
	state   State
	last    *models.Reading
	display *models.DisplayState
}

// NewRefreshService creates a service. settings is read, never written.
func NewRefreshService(settings *models.Settings, fetcher Fetcher, p panel.Panel, logger *zap.Logger) *RefreshService {
	s := &RefreshService{
		settings: settings,
		fetcher:  fetcher,
		panel:    p,
		logger:   logger.Named("refresh"),
		now:      time.Now,
	}
	s.repeater = NewRepeater(settings.RefreshDuration, s.tick)
	return s
}

// Start shows the loading placeholder and begins the refresh loop in the
// background. The first cycle runs immediately.
func (s *RefreshService) Start(ctx context.Context) {
	panel.Apply(s.panel, &models.DisplayState{
		Label:   loadingLabel,
		Tooltip: loadingTooltip,
	})

	go s.repeater.Run(ctx)
}

// Stop ends the refresh loop and releases the HTTP client. Use Wait to
// block until the loop has exited.
func (s *RefreshService) Stop() {
	s.stopOnce.Do(func() {
		s.repeater.Stop()

		if closer, ok := s.fetcher.(interface{ Close() }); ok {
			closer.Close()
		}
	})
}

// Wait blocks until the loop started by Start has exited. After Stop it
// returns even when Start was never called.
func (s *RefreshService) Wait() {
	<-s.repeater.Done()
}

// Refresh requests an immediate cycle. The timer is re-armed afterwards.
func (s *RefreshService) Refresh() {
	s.repeater.Trigger()
}

func (s *RefreshService) tick(ctx context.Context) {
	// Failures are logged by RunCycle and never stop the loop
	_ = s.RunCycle(ctx)
}

// RunCycle performs one fetch-and-render cycle. Both fetches run
// concurrently and the cycle waits for both. If either fails, the panel and
// the last known reading are left untouched and the joined error is
// returned.
func (s *RefreshService) RunCycle(ctx context.Context) error {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	settings := s.settings.Clone()
	logger := s.logger.With(zap.String("cycle_id", uuid.NewString()))

	if settings.Host == "" {
		logger.Warn("Skipping refresh, no Nightscout host configured")
		return ErrNotConfigured
	}

	s.setState(StateFetching)
	started := s.now()

	var (
		wg        sync.WaitGroup
		reading   *models.Reading
		status    *models.DeviceStatus
		readErr   error
		statusErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		reading, readErr = s.fetcher.FetchCurrentReading(ctx, settings.Host, settings.Token)
	}()
	go func() {
		defer wg.Done()
		status, statusErr = s.fetcher.FetchDeviceStatus(ctx, settings.Host, settings.Token)
	}()
	wg.Wait()

	if err := errors.Join(readErr, statusErr); err != nil {
		s.setState(StateFailed)
		logger.Error("Refresh failed, keeping previous display", zap.Error(err))
		return err
	}

	if status == nil {
		status = &models.DeviceStatus{}
	}

	// A nil reading renders the placeholder. Readings without an id are
	// shown but never become the last known reading.
	s.mu.Lock()
	if !reading.IsEmpty() && reading.ID != "" && (s.last == nil || s.last.ID != reading.ID) {
		s.last = reading
		logger.Debug("New reading",
			zap.String("id", reading.ID),
			zap.Int("sgv", reading.SGV),
			zap.String("trend", string(reading.Trend)),
		)
	}
	last := s.last
	s.mu.Unlock()

	state := display.Compose(reading, last, status, settings, s.now())
	panel.Apply(s.panel, state)

	s.mu.Lock()
	s.display = state
	s.state = StateRendered
	s.mu.Unlock()

	logger.Info("Display updated",
		zap.String("label", state.Label),
		zap.Stringer("category", state.Category),
		zap.Duration("took", s.now().Sub(started)),
	)

	return nil
}

func (s *RefreshService) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// State returns the current state
func (s *RefreshService) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastReading returns the last known reading, or nil before the first one
func (s *RefreshService) LastReading() *models.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Display returns the most recently rendered state, or nil
func (s *RefreshService) Display() *models.DisplayState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.display
}
