// Package config locates and loads vcfmerge configuration.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the configuration directory.
const appName = "vcfmerge"

// Dir returns the vcfmerge configuration directory.
//
// Resolution:
//   - $VCFMERGE_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/vcfmerge if set (respects XDG on any platform)
//   - %AppData%/vcfmerge on Windows
//   - ~/.config/vcfmerge on macOS and Linux
func Dir() string {
	if dir := os.Getenv("VCFMERGE_CONFIG_HOME"); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}
