package installer

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigPaths holds paths to configuration files for different development environments
type ConfigPaths struct {
	VSCodeUserSettings string
	VSCodeWorkspace    string
	ClaudeDesktop      string
	ClaudeCode         string
	Cursor             string
	Windsurf           string
}

// GetConfigPaths returns the configuration file locations for this platform.
func GetConfigPaths() *ConfigPaths {
	return configPathsFor(runtime.GOOS, getHomeDir(), os.Getenv("APPDATA"))
}

func configPathsFor(goos, home, appData string) *ConfigPaths {
	paths := &ConfigPaths{
		ClaudeCode: filepath.Join(home, ".claude.json"),
		Windsurf:   filepath.Join(home, ".codeium", "windsurf", "mcp_config.json"),
		// Relative to the directory the installer runs in.
		VSCodeWorkspace: filepath.Join(".vscode", "mcp.json"),
	}

	switch goos {
	case "windows":
		paths.VSCodeUserSettings = filepath.Join(appData, "Code", "User", "settings.json")
		paths.ClaudeDesktop = filepath.Join(appData, "Claude", "claude_desktop_config.json")
		paths.Cursor = filepath.Join(appData, "Cursor", "mcp.json")
	case "darwin":
		support := filepath.Join(home, "Library", "Application Support")
		paths.VSCodeUserSettings = filepath.Join(support, "Code", "User", "settings.json")
		paths.ClaudeDesktop = filepath.Join(support, "Claude", "claude_desktop_config.json")
		paths.Cursor = filepath.Join(home, ".cursor", "mcp.json")
	default:
		paths.VSCodeUserSettings = filepath.Join(home, ".config", "Code", "User", "settings.json")
		paths.ClaudeDesktop = filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
		paths.Cursor = filepath.Join(home, ".cursor", "mcp.json")
	}
	return paths
}

// getHomeDir returns the user's home directory
func getHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("USERPROFILE")
}

// GetProjectRoot walks up from the working directory to the first directory
// holding go.mod. Without one the working directory is returned.
func GetProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findProjectRoot(wd), nil
}

func findProjectRoot(start string) string {
	for dir := start; ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}
