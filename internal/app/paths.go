// Package app provides the application initialization and wiring.
package app

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultDataDir returns the default data directory path.
// Uses ~/.ferry for user installations, /var/lib/ferry as fallback.
func DefaultDataDir() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".ferry")
	}
	return "/var/lib/ferry"
}

// ConfigureViper sets up viper with standard config file search paths.
// Config file: ferry.yaml
// Search paths (in order): current directory, $XDG_CONFIG_HOME/ferry, /etc/ferry
func ConfigureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.SetConfigName("ferry")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		v.AddConfigPath(filepath.Join(xdg, "ferry"))
	} else {
		v.AddConfigPath("$HOME/.config/ferry")
	}
	v.AddConfigPath("/etc/ferry")
}
