// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "shipctl"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
)

type (
	// Config is shipctl's own configuration.
	Config struct {
		// Org names the active organization. Empty means none selected.
		Org string `mapstructure:"org"`
		// SSH holds remote shell client settings.
		SSH SSHConfig `mapstructure:"ssh"`
		// UI holds presentation preferences.
		UI UIConfig `mapstructure:"ui"`
	}

	// SSHConfig configures the SSH transport.
	SSHConfig struct {
		// KeyPath is the private key used to authenticate. Empty falls back
		// to ~/.ssh/id_ed25519.
		KeyPath string `mapstructure:"key_path"`
		// Port is the remote sshd port.
		Port int `mapstructure:"port"`
		// KnownHostsPath verifies host keys when set; empty disables
		// verification (operator's call, matches classic ssh -o settings).
		KnownHostsPath string `mapstructure:"known_hosts_path"`
	}

	// UIConfig configures CLI output.
	UIConfig struct {
		Verbose bool `mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		SSH: SSHConfig{Port: 22},
	}
}

// ConfigDir returns the shipctl configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

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
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// OrgsDir returns the directory holding organization registry files.
func OrgsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "orgs"), nil
}

// Load reads the config file if present, applying defaults for anything
// unset. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("org", defaults.Org)
	v.SetDefault("ssh.key_path", defaults.SSH.KeyPath)
	v.SetDefault("ssh.port", defaults.SSH.Port)
	v.SetDefault("ssh.known_hosts_path", defaults.SSH.KnownHostsPath)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	if configFileOverride != "" {
		v.SetConfigFile(configFileOverride)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
