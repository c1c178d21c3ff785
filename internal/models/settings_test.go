package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.RefreshInterval != 2 {
		t.Errorf("Default refresh interval = %d, want 2", settings.RefreshInterval)
	}
	if !settings.UseMmol {
		t.Error("Default unit should be mmol/L")
	}
	if !settings.ShowMissing || settings.ShowMissingInterval != 15 {
		t.Errorf("Default staleness = %v/%d, want true/15", settings.ShowMissing, settings.ShowMissingInterval)
	}
	if settings.HighThreshold != 10 || settings.HighColor != "red" {
		t.Errorf("Default high = %v/%s, want 10/red", settings.HighThreshold, settings.HighColor)
	}
	if settings.LowThreshold != 4 || settings.LowColor != "yellow" {
		t.Errorf("Default low = %v/%s, want 4/yellow", settings.LowThreshold, settings.LowColor)
	}
}

func TestSettings_Clone(t *testing.T) {
	original := DefaultSettings()
	original.Host = "https://test.example.com"

	clone := original.Clone()

	if clone.Host != original.Host {
		t.Error("Clone did not copy Host")
	}

	clone.Host = "https://modified.example.com"
	clone.Surfaces[0] = SurfaceWeb
	if original.Host == clone.Host {
		t.Error("Modifying clone affected original")
	}
	if original.Surfaces[0] != SurfaceTerminal {
		t.Error("Clone shares the surfaces slice with the original")
	}
}

func TestSettings_IsConfigured(t *testing.T) {
	settings := DefaultSettings()

	if settings.IsConfigured() {
		t.Error("Empty settings should not be configured")
	}

	settings.Host = "https://test.example.com"
	if !settings.IsConfigured() {
		t.Error("Settings with host should be configured")
	}
}

func TestSettings_StyleColor(t *testing.T) {
	settings := DefaultSettings()

	if got := settings.StyleColor(CategoryHigh); got != "red" {
		t.Errorf("StyleColor(high) = %s, want red", got)
	}
	if got := settings.StyleColor(CategoryLow); got != "yellow" {
		t.Errorf("StyleColor(low) = %s, want yellow", got)
	}
	if got := settings.StyleColor(CategoryNormal); got != "" {
		t.Errorf("StyleColor(normal) = %s, want empty", got)
	}
}

func TestSettings_LoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	settings := &Settings{}
	if err := settings.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if settings.RefreshInterval != 2 || !settings.UseMmol || settings.HighColor != "red" {
		t.Errorf("Load() without file did not apply defaults: %+v", settings.Clone())
	}
}

func TestSettings_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	original := DefaultSettings()
	original.Host = "https://ns.example.com"
	original.Token = "secret-token"
	original.UseMmol = false
	original.HighThreshold = 180
	original.LowThreshold = 70
	original.Surfaces = []string{SurfaceWeb, SurfaceMQTT}

	if err := original.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := &Settings{}
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Host != original.Host || loaded.Token != original.Token {
		t.Errorf("connection settings = %s/%s, want %s/%s", loaded.Host, loaded.Token, original.Host, original.Token)
	}
	if loaded.UseMmol {
		t.Error("usemmol should round-trip as false")
	}
	if loaded.HighThreshold != 180 || loaded.LowThreshold != 70 {
		t.Errorf("thresholds = %v/%v, want 70/180", loaded.LowThreshold, loaded.HighThreshold)
	}
	if !loaded.HasSurface(SurfaceMQTT) || loaded.HasSurface(SurfaceTerminal) {
		t.Errorf("surfaces = %v, want [web mqtt]", loaded.Surfaces)
	}
}

func TestSettings_LoadClampsRefreshInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"refreshInterval": 42}`), 0600); err != nil {
		t.Fatal(err)
	}

	settings := &Settings{}
	if err := settings.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if settings.RefreshInterval != MaxRefreshInterval {
		t.Errorf("RefreshInterval = %d, want %d", settings.RefreshInterval, MaxRefreshInterval)
	}
	if settings.RefreshDuration() != 10*time.Minute {
		t.Errorf("RefreshDuration() = %v, want 10m", settings.RefreshDuration())
	}
}

func TestSettings_LoadEnvOverride(t *testing.T) {
	t.Setenv("NIGHTSCOUT_HOST", "https://env.example.com")

	settings := &Settings{}
	if err := settings.Load(filepath.Join(t.TempDir(), "settings.json")); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if settings.Host != "https://env.example.com" {
		t.Errorf("Host = %s, want value from environment", settings.Host)
	}
}

func TestSettings_Update(t *testing.T) {
	settings := DefaultSettings()

	other := DefaultSettings()
	other.Host = "https://other.example.com"
	other.Surfaces = []string{SurfaceWeb}

	settings.Update(other)
	other.Surfaces[0] = SurfaceTray

	if settings.Host != "https://other.example.com" {
		t.Errorf("Host = %s, want value from other", settings.Host)
	}
	if !settings.HasSurface(SurfaceWeb) || settings.HasSurface(SurfaceTray) {
		t.Errorf("surfaces = %v, want an independent [web]", settings.Surfaces)
	}
}

func TestSettings_WatchReloadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"host": "a", "usemmol": true, "refreshInterval": 2}`), 0600); err != nil {
		t.Fatal(err)
	}

	settings := &Settings{}
	if err := settings.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	changes := make(chan error, 16)
	settings.Watch(func(err error) {
		changes <- err
	})

	if err := os.WriteFile(path, []byte(`{"host": "b", "usemmol": false, "refreshInterval": 99}`), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected a change notification")
	}

	// A single write can be seen as several events, settle on the final content
	reloaded := waitFor(t, 5*time.Second, func() bool {
		current := settings.Clone()
		return current.Host == "b" && !current.UseMmol && current.RefreshInterval == MaxRefreshInterval
	})
	if !reloaded {
		t.Fatalf("settings after reload = %+v, want host=b usemmol=false refreshInterval=%d", settings.Clone(), MaxRefreshInterval)
	}
	if settings.RefreshDuration() != 10*time.Minute {
		t.Errorf("RefreshDuration() = %v, want 10m", settings.RefreshDuration())
	}
}

func TestSettings_WatchWithoutLoad(t *testing.T) {
	settings := DefaultSettings()

	// No file was loaded, so there is nothing to watch
	settings.Watch(func(error) {
		t.Error("Unexpected change notification")
	})
}
