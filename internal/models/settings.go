// Package models contains data structures used throughout the application
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	appDirName = "nightscout-panel"
	envPrefix  = "NIGHTSCOUT"

	// Refresh interval bounds in minutes
	MinRefreshInterval = 1
	MaxRefreshInterval = 10
)

// Surface names accepted in Settings.Surfaces
const (
	SurfaceTerminal      = "terminal"
	SurfaceWeb           = "web"
	SurfaceMQTT          = "mqtt"
	SurfaceTray          = "tray"
	SurfaceNotifications = "notifications"
)

// Settings contains all application settings
type Settings struct {
	mu sync.RWMutex `json:"-" yaml:"-"`
	v  *viper.Viper

	// Connection settings
	Host  string `json:"host" yaml:"host" mapstructure:"host"`
	Token string `json:"token" yaml:"token" mapstructure:"token"` // Sent as api-secret header

	// Display settings
	RefreshInterval     int     `json:"refreshInterval" yaml:"refreshInterval" mapstructure:"refreshInterval"` // Minutes (1-10)
	UseMmol             bool    `json:"usemmol" yaml:"usemmol" mapstructure:"usemmol"`
	ShowMissing         bool    `json:"showMissing" yaml:"showMissing" mapstructure:"showMissing"`
	ShowMissingInterval int     `json:"showMissingInterval" yaml:"showMissingInterval" mapstructure:"showMissingInterval"` // Minutes
	HighThreshold       float64 `json:"highThreshold" yaml:"highThreshold" mapstructure:"highThreshold"`                   // In display units
	HighColor           string  `json:"highColor" yaml:"highColor" mapstructure:"highColor"`
	LowThreshold        float64 `json:"lowThreshold" yaml:"lowThreshold" mapstructure:"lowThreshold"` // In display units
	LowColor            string  `json:"lowColor" yaml:"lowColor" mapstructure:"lowColor"`

	// Runtime settings
	LogLevel           string   `json:"logLevel" yaml:"logLevel" mapstructure:"logLevel"`
	LogFormat          string   `json:"logFormat" yaml:"logFormat" mapstructure:"logFormat"`
	RequestTimeout     int      `json:"requestTimeout" yaml:"requestTimeout" mapstructure:"requestTimeout"` // Seconds, 0 = none
	Surfaces           []string `json:"surfaces" yaml:"surfaces" mapstructure:"surfaces"`
	WebAddr            string   `json:"webAddr" yaml:"webAddr" mapstructure:"webAddr"`
	MQTTBroker         string   `json:"mqttBroker" yaml:"mqttBroker" mapstructure:"mqttBroker"`
	MQTTTopic          string   `json:"mqttTopic" yaml:"mqttTopic" mapstructure:"mqttTopic"`
	RepeatAlertMinutes int      `json:"repeatAlertMinutes" yaml:"repeatAlertMinutes" mapstructure:"repeatAlertMinutes"` // 0 = alert once per transition
}

// DefaultSettings returns settings with default values
func DefaultSettings() *Settings {
	return &Settings{
		Host:                "",
		Token:               "",
		RefreshInterval:     2,
		UseMmol:             true,
		ShowMissing:         true,
		ShowMissingInterval: 15,
		HighThreshold:       10,
		HighColor:           "red",
		LowThreshold:        4,
		LowColor:            "yellow",

		LogLevel:           "info",
		LogFormat:          "console",
		RequestTimeout:     0,
		Surfaces:           []string{SurfaceTerminal},
		WebAddr:            "127.0.0.1:8787",
		MQTTBroker:         "",
		MQTTTopic:          "nightscout/display",
		RepeatAlertMinutes: 15,
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultSettings()
	v.SetDefault("host", d.Host)
	v.SetDefault("token", d.Token)
	v.SetDefault("refreshInterval", d.RefreshInterval)
	v.SetDefault("usemmol", d.UseMmol)
	v.SetDefault("showMissing", d.ShowMissing)
	v.SetDefault("showMissingInterval", d.ShowMissingInterval)
	v.SetDefault("highThreshold", d.HighThreshold)
	v.SetDefault("highColor", d.HighColor)
	v.SetDefault("lowThreshold", d.LowThreshold)
	v.SetDefault("lowColor", d.LowColor)
	v.SetDefault("logLevel", d.LogLevel)
	v.SetDefault("logFormat", d.LogFormat)
	v.SetDefault("requestTimeout", d.RequestTimeout)
	v.SetDefault("surfaces", d.Surfaces)
	v.SetDefault("webAddr", d.WebAddr)
	v.SetDefault("mqttBroker", d.MQTTBroker)
	v.SetDefault("mqttTopic", d.MQTTTopic)
	v.SetDefault("repeatAlertMinutes", d.RepeatAlertMinutes)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	appDir := filepath.Join(configDir, appDirName)
	if err := os.MkdirAll(appDir, 0750); err != nil {
		return "", err
	}

	return appDir, nil
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// Load reads settings from path, or the default config path when path is
// empty. Missing files fall back to defaults; NIGHTSCOUT_* environment
// variables override both.
func (s *Settings) Load(path string) error {
	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return err
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}

	loaded, err := decode(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.v = v
	s.copySettingsFields(loaded)
	return nil
}

func decode(v *viper.Viper) (*Settings, error) {
	loaded := &Settings{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	loaded.normalize()
	return loaded, nil
}

// Watch re-reads the settings file whenever it changes and calls onChange
// afterwards. Load must have been called first.
func (s *Settings) Watch(onChange func(err error)) {
	s.mu.RLock()
	v := s.v
	s.mu.RUnlock()

	if v == nil {
		return
	}

	v.OnConfigChange(func(fsnotify.Event) {
		loaded, err := decode(v)
		if err == nil {
			s.Update(loaded)
		}
		if onChange != nil {
			onChange(err)
		}
	})
	v.WatchConfig()
}

// Save writes the settings as JSON to path, or the default config path
func (s *Settings) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// normalize clamps values into their accepted ranges
func (s *Settings) normalize() {
	if s.RefreshInterval < MinRefreshInterval {
		s.RefreshInterval = MinRefreshInterval
	}
	if s.RefreshInterval > MaxRefreshInterval {
		s.RefreshInterval = MaxRefreshInterval
	}
	if s.ShowMissingInterval < 0 {
		s.ShowMissingInterval = 0
	}
	if s.RequestTimeout < 0 {
		s.RequestTimeout = 0
	}
}

// Clone creates a copy of the settings
func (s *Settings) Clone() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := &Settings{}
	clone.copySettingsFields(s)
	return clone
}

// Update updates settings from another Settings object
func (s *Settings) Update(other *Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	s.copySettingsFields(other)
}

// copySettingsFields copies all fields from other to s, excluding the mutex
// and the viper instance. The caller must hold the necessary locks.
func (s *Settings) copySettingsFields(other *Settings) {
	s.Host = other.Host
	s.Token = other.Token
	s.RefreshInterval = other.RefreshInterval
	s.UseMmol = other.UseMmol
	s.ShowMissing = other.ShowMissing
	s.ShowMissingInterval = other.ShowMissingInterval
	s.HighThreshold = other.HighThreshold
	s.HighColor = other.HighColor
	s.LowThreshold = other.LowThreshold
	s.LowColor = other.LowColor
	s.LogLevel = other.LogLevel
	s.LogFormat = other.LogFormat
	s.RequestTimeout = other.RequestTimeout
	s.Surfaces = append([]string(nil), other.Surfaces...)
	s.WebAddr = other.WebAddr
	s.MQTTBroker = other.MQTTBroker
	s.MQTTTopic = other.MQTTTopic
	s.RepeatAlertMinutes = other.RepeatAlertMinutes
}

// IsConfigured returns true if minimum required settings are set
func (s *Settings) IsConfigured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Host != ""
}

// RefreshDuration returns the refresh interval as a duration
func (s *Settings) RefreshDuration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	minutes := s.RefreshInterval
	if minutes < MinRefreshInterval {
		minutes = MinRefreshInterval
	}
	return time.Duration(minutes) * time.Minute
}

// HasSurface reports whether the named surface is enabled
func (s *Settings) HasSurface(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, surface := range s.Surfaces {
		if surface == name {
			return true
		}
	}
	return false
}

// StyleColor returns the configured color for a category, empty for Normal
func (s *Settings) StyleColor(category ColorCategory) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch category {
	case CategoryHigh:
		return s.HighColor
	case CategoryLow:
		return s.LowColor
	default:
		return ""
	}
}
