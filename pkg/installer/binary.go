package installer

import (
	"fmt"
	"os"
	"path/filepath"
)

// DockerImage is the image the docker mode runs.
const DockerImage = "jira-mcp-server:latest"

// BinaryConfig holds configuration for the MCP server binary
type BinaryConfig struct {
	Mode        string // "local" or "docker"
	LocalPath   string // Absolute path to local binary
	DockerImage string
	Command     string
	Args        []string
	Env         map[string]string
}

// GetBinaryConfig determines how the MCP client starts the server.
func GetBinaryConfig(mode string, projectRoot string) (*BinaryConfig, error) {
	config := &BinaryConfig{
		Mode: mode,
		Env:  make(map[string]string),
	}

	switch mode {
	case "docker":
		config.DockerImage = DockerImage
		config.Command = "docker"
		config.Args = []string{"run", "-i", "--rm", config.DockerImage, "stdio"}
		return config, nil

	case "local", "":
		localPath := filepath.Join(projectRoot, "bin", "jira-mcp-server")
		if _, err := os.Stat(localPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("binary not found at %s. Please run 'make build' first", localPath)
		}
		absPath, err := filepath.Abs(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		config.Mode = "local"
		config.LocalPath = absPath
		config.Command = absPath
		config.Args = []string{"stdio"}
		return config, nil

	default:
		return nil, fmt.Errorf("invalid mode: %s. Must be 'local' or 'docker'", mode)
	}
}

// passEnv makes docker forward the named variables from the client's env
// block into the container. The flags go before the image name.
func (bc *BinaryConfig) passEnv(names ...string) {
	if bc.Mode != "docker" || len(names) == 0 {
		return
	}
	imageAt := len(bc.Args)
	for i, a := range bc.Args {
		if a == bc.DockerImage {
			imageAt = i
			break
		}
	}
	args := make([]string, 0, len(bc.Args)+2*len(names))
	args = append(args, bc.Args[:imageAt]...)
	for _, n := range names {
		args = append(args, "-e", n)
	}
	bc.Args = append(args, bc.Args[imageAt:]...)
}
