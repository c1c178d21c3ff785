// Package autostart registers the panel to start at login
package autostart

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	appName        = "nightscout-panel"
	appDisplayName = "Nightscout Panel"

	// OS constants
	osLinux   = "linux"
	osWindows = "windows"
	osDarwin  = "darwin"

	windowsRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`
)

// Entry describes the command started at login
type Entry struct {
	Executable string
	Args       []string
}

// NewEntry returns an entry running the current executable with args
func NewEntry(args ...string) (Entry, error) {
	execPath, err := os.Executable()
	if err != nil {
		return Entry{}, err
	}
	return Entry{Executable: execPath, Args: args}, nil
}

// commandLine quotes every part that contains a space
func (e Entry) commandLine() string {
	parts := make([]string, 0, len(e.Args)+1)
	for _, p := range append([]string{e.Executable}, e.Args...) {
		if strings.ContainsAny(p, " \t") {
			p = `"` + p + `"`
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}

// IsEnabled checks if auto-start is enabled
func IsEnabled() (bool, error) {
	switch runtime.GOOS {
	case osLinux:
		return fileExists(linuxAutostartPath)
	case osWindows:
		return isEnabledWindows()
	case osDarwin:
		return fileExists(macOSLaunchAgentPath)
	default:
		return false, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// Enable registers entry to run at login
func Enable(entry Entry) error {
	switch runtime.GOOS {
	case osLinux:
		return writeFile(linuxAutostartPath, desktopEntry(entry))
	case osWindows:
		return enableWindows(entry)
	case osDarwin:
		return writeFile(macOSLaunchAgentPath, launchAgent(entry))
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// Disable removes the login entry. Disabling twice is not an error.
func Disable() error {
	switch runtime.GOOS {
	case osLinux:
		return removeFile(linuxAutostartPath)
	case osWindows:
		return disableWindows()
	case osDarwin:
		path, err := macOSLaunchAgentPath()
		if err != nil {
			return err
		}
		// Unload the agent first (ignore errors as the file may not be loaded)
		//nolint:gosec // G204: path is derived from the home directory
		_ = exec.Command("launchctl", "unload", path).Run()
		return removeFile(macOSLaunchAgentPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

func fileExists(path func() (string, error)) (bool, error) {
	p, err := path()
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	return err == nil, nil
}

func writeFile(path func() (string, error), content string) error {
	p, err := path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(content), 0600)
}

func removeFile(path func() (string, error)) error {
	p, err := path()
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Linux uses an XDG autostart desktop entry
func linuxAutostartPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "autostart", appName+".desktop"), nil
}

func desktopEntry(entry Entry) string {
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Exec=%s
Comment=Latest Nightscout glucose reading
Categories=Utility;
Terminal=false
StartupNotify=false
X-GNOME-Autostart-enabled=true
`, appDisplayName, entry.commandLine())
}

// macOS uses a LaunchAgent
func macOSLaunchAgentPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "LaunchAgents", "com."+appName+".plist"), nil
}

func launchAgent(entry Entry) string {
	var args strings.Builder
	for _, a := range append([]string{entry.Executable}, entry.Args...) {
		fmt.Fprintf(&args, "        <string>%s</string>\n", a)
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>com.%s</string>
    <key>ProgramArguments</key>
    <array>
%s    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <false/>
</dict>
</plist>
`, appName, args.String())
}

// Windows uses the per-user Run registry key
func isEnabledWindows() (bool, error) {
	cmd := exec.Command("reg", "query", windowsRunKey, "/v", appName)
	return cmd.Run() == nil, nil
}

func enableWindows(entry Entry) error {
	//nolint:gosec // G204: the command line comes from os.Executable and fixed arguments
	cmd := exec.Command("reg", "add", windowsRunKey,
		"/v", appName,
		"/t", "REG_SZ",
		"/d", entry.commandLine(),
		"/f")
	return cmd.Run()
}

func disableWindows() error {
	cmd := exec.Command("reg", "delete", windowsRunKey, "/v", appName, "/f")
	err := cmd.Run()
	if err != nil && strings.Contains(err.Error(), "not exist") {
		return nil
	}
	return err
}
