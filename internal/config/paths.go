package config

import (
	"os"
	"path/filepath"
)

// AppName names the per-user config directory.
const AppName = "versiontracker"

// ProjectDirName is the project-level directory holding config and state.
const ProjectDirName = ".versiontracker"

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/versiontracker/config.yml
// - macOS: ~/Library/Application Support/versiontracker/config.yml
// - Windows: %APPDATA%\versiontracker\config.yml
//
// If XDG_CONFIG_HOME is set, it will be respected on Linux.
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName, "config.yml"), nil
}

// ProjectConfigPath returns the YAML project config path under root.
func ProjectConfigPath(root string) string {
	return filepath.Join(root, ProjectDirName, "config.yml")
}

// ProjectJSONConfigPath returns the JSON project config path under root.
// It is read only when the YAML file does not exist.
func ProjectJSONConfigPath(root string) string {
	return filepath.Join(root, ProjectDirName, "config.json")
}

// resolvePath joins a relative path onto root, leaving absolute and
// home-relative paths alone.
func resolvePath(root, path string) string {
	path = expandHomePath(path)
	if path == "" || filepath.IsAbs(path) || root == "" {
		return path
	}
	return filepath.Join(root, path)
}
