package installer

import "sort"

// Environment variables understood by jira-mcp-server.
const (
	EnvHost        = "JIRA_HOST"
	EnvEmail       = "JIRA_EMAIL"
	EnvAPIToken    = "JIRA_API_TOKEN"
	EnvBearerToken = "JIRA_BEARER_TOKEN"
	EnvReadOnly    = "JIRA_READ_ONLY"
)

// ServerConfig represents the MCP server configuration
type ServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Type    string            `json:"type,omitempty"` // For Claude Code
}

// CreateServerConfig builds the client entry for the collected answers.
// When the token lives in the OS keyring it is left out of the config file
// and the server falls back to the keyring at startup.
func CreateServerConfig(bc *BinaryConfig, pc *PromptConfig) ServerConfig {
	config := ServerConfig{
		Command: bc.Command,
		Env:     make(map[string]string),
	}
	for k, v := range bc.Env {
		config.Env[k] = v
	}

	config.Env[EnvHost] = pc.JiraHost
	if pc.Email != "" {
		config.Env[EnvEmail] = pc.Email
	}
	if !pc.UseKeyring {
		if pc.AuthType == AuthBearer {
			config.Env[EnvBearerToken] = pc.Token
		} else {
			config.Env[EnvAPIToken] = pc.Token
		}
	}
	if pc.ReadOnly {
		config.Env[EnvReadOnly] = "true"
	}

	names := make([]string, 0, len(config.Env))
	for k := range config.Env {
		names = append(names, k)
	}
	sort.Strings(names)
	bc.passEnv(names...)

	config.Args = make([]string, len(bc.Args))
	copy(config.Args, bc.Args)
	return config
}
