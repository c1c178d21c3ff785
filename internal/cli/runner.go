package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/mrcode/nightscout-panel/internal/app"
	"github.com/mrcode/nightscout-panel/internal/models"
	"github.com/mrcode/nightscout-panel/internal/nightscout"
	"github.com/mrcode/nightscout-panel/internal/notifications"
	"github.com/mrcode/nightscout-panel/internal/panel"
	"github.com/mrcode/nightscout-panel/internal/tray"
)

const shutdownTimeout = 5 * time.Second

var knownSurfaces = []string{
	models.SurfaceTerminal,
	models.SurfaceWeb,
	models.SurfaceMQTT,
	models.SurfaceTray,
	models.SurfaceNotifications,
}

// runner owns the refresh service and every surface it renders to
type runner struct {
	settings *models.Settings
	logger   *zap.Logger

	service *app.RefreshService
	web     *panel.Web
	mqtt    *panel.MQTT
	tray    *tray.Tray
}

// newRunner builds the surfaces listed in settings.Surfaces. The tray
// surface must be created on the main goroutine.
func newRunner(settings *models.Settings, logger *zap.Logger) (*runner, error) {
	snapshot := settings.Clone()
	r := &runner{
		settings: settings,
		logger:   logger,
	}

	for _, surface := range snapshot.Surfaces {
		if !slices.Contains(knownSurfaces, surface) {
			return nil, fmt.Errorf("unknown surface %q", surface)
		}
	}
	if len(snapshot.Surfaces) == 0 {
		return nil, errors.New("no surfaces enabled")
	}

	var panels panel.Multi

	if snapshot.HasSurface(models.SurfaceTerminal) {
		panels = append(panels, panel.NewTerminal())
	}
	if snapshot.HasSurface(models.SurfaceWeb) {
		r.web = panel.NewWeb(snapshot.WebAddr, logger)
		panels = append(panels, r.web)
	}
	if snapshot.HasSurface(models.SurfaceMQTT) {
		if snapshot.MQTTBroker == "" {
			return nil, errors.New("mqtt surface enabled but mqttBroker is empty")
		}
		m, err := panel.NewMQTT(snapshot.MQTTBroker, snapshot.MQTTTopic, logger)
		if err != nil {
			return nil, err
		}
		r.mqtt = m
		panels = append(panels, m)
	}
	if snapshot.HasSurface(models.SurfaceNotifications) {
		panels = append(panels, notifications.NewManager(settings, logger))
	}
	// Last, so a failure above never leaves a tray icon behind
	if snapshot.HasSurface(models.SurfaceTray) {
		r.tray = tray.New(logger, r.refresh)
		panels = append(panels, r.tray)
	}

	timeout := time.Duration(snapshot.RequestTimeout) * time.Second
	client := nightscout.NewClient(nightscout.NewRestyDoer(timeout))
	r.service = app.NewRefreshService(settings, client, panels, logger)

	if r.web != nil {
		r.web.OnRefresh(r.refresh)
	}

	return r, nil
}

func (r *runner) refresh() {
	if r.service != nil {
		r.service.Refresh()
	}
}

// Run starts the refresh loop and blocks until ctx is cancelled or the tray
// is quit
func (r *runner) Run(ctx context.Context) error {
	if !r.settings.IsConfigured() {
		r.logger.Warn("No Nightscout host configured, set host in the settings file or NIGHTSCOUT_HOST")
	}

	if r.web != nil {
		if err := r.web.Start(); err != nil {
			return err
		}
	}

	r.settings.Watch(func(err error) {
		if err != nil {
			r.logger.Warn("Ignoring invalid settings change", zap.Error(err))
			return
		}
		r.logger.Info("Settings reloaded")
		r.refresh()
	})

	r.service.Start(ctx)
	defer r.shutdown()

	if r.tray != nil {
		go func() {
			<-ctx.Done()
			r.tray.Quit()
		}()
		return r.tray.Run()
	}

	<-ctx.Done()
	return nil
}

func (r *runner) shutdown() {
	r.service.Stop()
	r.service.Wait()

	if r.web != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := r.web.Shutdown(ctx); err != nil {
			r.logger.Warn("Web panel shutdown failed", zap.Error(err))
		}
	}

	if r.mqtt != nil {
		r.mqtt.Close()
	}

	r.logger.Info("Stopped")
}
