package jira

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// ConfigFileName is the name of the per-directory project configuration file.
const ConfigFileName = ".jiramcprc"

// ProjectConfig holds the local project configuration.
type ProjectConfig struct {
	ProjectKey  string    `json:"projectKey"`
	JiraHost    string    `json:"jiraHost,omitempty"`
	ServerName  string    `json:"serverName,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

var (
	issueKeyPattern   = regexp.MustCompile(`^[A-Z][A-Z0-9]+-\d+$`)
	branchKeyPattern  = regexp.MustCompile(`([A-Z][A-Z0-9]+)-\d+`)
	projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]+$`)
)

// FindProjectConfig searches for .jiramcprc in the working directory and its
// parents. It returns nil without error when none exists.
func FindProjectConfig() (*ProjectConfig, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return FindProjectConfigFrom(cwd)
}

// FindProjectConfigFrom is FindProjectConfig starting at dir.
func FindProjectConfigFrom(dir string) (*ProjectConfig, string, error) {
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			config, err := readProjectConfig(configPath)
			if err != nil {
				return nil, "", fmt.Errorf("failed to read config from %s: %w", configPath, err)
			}
			return config, configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

func readProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	var config ProjectConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &config, nil
}

// WriteProjectConfig writes config to dir/.jiramcprc and stamps LastUpdated.
func WriteProjectConfig(dir string, config *ProjectConfig) (string, error) {
	if !projectKeyPattern.MatchString(config.ProjectKey) {
		return "", fmt.Errorf("invalid project key %q: expected uppercase letters and digits, e.g. PROJ", config.ProjectKey)
	}
	config.LastUpdated = time.Now()

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return configPath, nil
}

// DetectProjectFromGit reads the current branch of the Git repository at or
// above dir and extracts a project key from an issue key in its name, e.g.
// "feature/PROJ-123-login" gives "PROJ".
func DetectProjectFromGit(dir string) (projectKey, branch string, err error) {
	gitDir, err := findGitDir(dir)
	if err != nil {
		return "", "", err
	}
	if gitDir == "" {
		return "", "", errors.New("not a Git repository (or any parent up to mount point)")
	}

	branch, err = currentBranch(gitDir)
	if err != nil {
		return "", "", err
	}

	m := branchKeyPattern.FindStringSubmatch(branch)
	if m == nil {
		return "", branch, fmt.Errorf("branch %q does not contain a Jira issue key (e.g. feature/PROJ-123-description)", branch)
	}
	return m[1], branch, nil
}

// findGitDir locates the .git directory. Worktrees and submodules use a .git
// file that points at the real directory.
func findGitDir(startDir string) (string, error) {
	dir := startDir
	for {
		gitPath := filepath.Join(dir, ".git")
		info, err := os.Stat(gitPath)
		if err == nil {
			if info.IsDir() {
				return gitPath, nil
			}
			return resolveGitFile(gitPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func resolveGitFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	line := strings.TrimSpace(string(data))
	target, ok := strings.CutPrefix(line, "gitdir:")
	if !ok {
		return "", fmt.Errorf("unrecognized .git file at %s", path)
	}
	target = strings.TrimSpace(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return target, nil
}

func currentBranch(gitDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	if !sc.Scan() {
		return "", errors.New("HEAD is empty")
	}
	head := strings.TrimSpace(sc.Text())
	ref, ok := strings.CutPrefix(head, "ref: ")
	if !ok {
		return "", errors.New("HEAD is detached; check out a branch named after a Jira issue")
	}
	return strings.TrimPrefix(ref, "refs/heads/"), nil
}

// GetProjectKeyWithFallback returns the projectKey argument, or the key from
// .jiramcprc when the argument is absent.
func GetProjectKeyWithFallback(r *mcp.CallToolRequest) (string, error) {
	key, err := OptionalParam[string](r, "projectKey")
	if err != nil {
		return "", err
	}
	if key = strings.TrimSpace(key); key != "" {
		return key, nil
	}

	config, _, err := FindProjectConfig()
	if err != nil {
		return "", err
	}
	if config == nil || config.ProjectKey == "" {
		return "", fmt.Errorf("projectKey not provided and no %s found. Use set_current_project or pass projectKey", ConfigFileName)
	}
	return config.ProjectKey, nil
}

// checkProjectKey rejects keys that cannot be embedded in JQL as-is.
func checkProjectKey(key string) error {
	if !projectKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid project key %q: expected uppercase letters and digits, e.g. PROJ", key)
	}
	return nil
}
