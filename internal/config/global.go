// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride allows tests and the --config-dir flag to override the
// config directory. os.UserHomeDir() doesn't reliably respect the HOME
// environment variable on all platforms, so tests set this instead.
var configDirOverride string

// configFileOverride forces loading from a specific config file.
var configFileOverride string

// Reset clears overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
	configFileOverride = ""
}

// SetConfigDirOverride sets a custom config directory path.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// SetConfigFileOverride forces a specific config file path.
func SetConfigFileOverride(path string) {
	configFileOverride = path
}
