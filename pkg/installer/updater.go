package installer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// UpdateConfig writes the server entry into the configuration file of env.
// Other servers and unrelated settings in that file are preserved.
func UpdateConfig(env string, paths *ConfigPaths, config ServerConfig) error {
	switch env {
	case "VS Code":
		return updateVSCodeConfig(paths, config)
	case "Claude Desktop":
		return mergeServerEntry(paths.ClaudeDesktop, []string{"mcpServers"}, config)
	case "Claude Code":
		config.Type = "stdio"
		return mergeServerEntry(paths.ClaudeCode, []string{"mcpServers"}, config)
	case "Cursor":
		return mergeServerEntry(paths.Cursor, []string{"mcpServers"}, config)
	case "Windsurf":
		return mergeServerEntry(paths.Windsurf, []string{"mcpServers"}, config)
	default:
		return fmt.Errorf("unknown environment: %s", env)
	}
}

// updateVSCodeConfig prefers the workspace .vscode/mcp.json and falls back to
// the user settings.json.
func updateVSCodeConfig(paths *ConfigPaths, config ServerConfig) error {
	if err := os.MkdirAll(filepath.Dir(paths.VSCodeWorkspace), 0755); err == nil {
		if err := mergeServerEntry(paths.VSCodeWorkspace, []string{"servers"}, config); err == nil {
			return nil
		}
	}
	return mergeServerEntry(paths.VSCodeUserSettings, []string{"mcp", "servers"}, config)
}

// mergeServerEntry sets doc[section...][ServerName] = config in the JSON file
// at path, creating the file and intermediate objects as needed.
func mergeServerEntry(path string, section []string, config ServerConfig) error {
	doc := make(map[string]any)
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse existing config %s: %w", path, err)
		}
	}

	node := doc
	for _, name := range section {
		child, ok := node[name].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[name] = child
		}
		node = child
	}
	node[ServerName] = config

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return writeJSONFile(path, doc)
}

// writeJSONFile writes data as indented JSON, keeping the previous file as
// path.bak and restoring it if the write fails.
func writeJSONFile(path string, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	backupPath := path + ".bak"
	previous, readErr := os.ReadFile(path)
	if readErr == nil {
		if err := os.WriteFile(backupPath, previous, 0600); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	// The entry may carry an API token.
	if err := os.WriteFile(path, jsonData, 0600); err != nil {
		if readErr == nil {
			_ = os.WriteFile(path, previous, 0600)
		}
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
