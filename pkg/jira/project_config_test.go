package jira

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initGitRepo creates a fake repository in dir whose HEAD points at branch.
func initGitRepo(t *testing.T, dir, branch string) {
	t.Helper()
	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref: refs/heads/"+branch+"\n"), 0o644))
}

func TestDetectProjectFromGit(t *testing.T) {
	tests := []struct {
		name        string
		branch      string
		expectedKey string
		expectError string
	}{
		{name: "Feature branch", branch: "feature/PROJ-123-login", expectedKey: "PROJ"},
		{name: "Bare key", branch: "OPS2-7", expectedKey: "OPS2"},
		{name: "Key in the middle", branch: "bugfix/fix-WEB-42", expectedKey: "WEB"},
		{name: "No key", branch: "main", expectError: "does not contain a Jira issue key"},
		{name: "Lowercase key", branch: "feature/proj-123", expectError: "does not contain a Jira issue key"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			initGitRepo(t, dir, tc.branch)

			key, branch, err := DetectProjectFromGit(dir)
			if tc.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedKey, key)
			assert.Equal(t, tc.branch, branch)
		})
	}
}

func TestDetectProjectFromGit_Subdirectory(t *testing.T) {
	root := t.TempDir()
	initGitRepo(t, root, "feature/PROJ-9-nested")
	sub := filepath.Join(root, "src", "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	key, _, err := DetectProjectFromGit(sub)
	require.NoError(t, err)
	assert.Equal(t, "PROJ", key)
}

func TestDetectProjectFromGit_Worktree(t *testing.T) {
	root := t.TempDir()
	realGit := filepath.Join(root, "main-repo", ".git", "worktrees", "wt")
	require.NoError(t, os.MkdirAll(realGit, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(realGit, "HEAD"), []byte("ref: refs/heads/OPS-5-hotfix\n"), 0o644))

	wt := filepath.Join(root, "wt")
	require.NoError(t, os.MkdirAll(wt, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(wt, ".git"), []byte("gitdir: ../main-repo/.git/worktrees/wt\n"), 0o644))

	key, branch, err := DetectProjectFromGit(wt)
	require.NoError(t, err)
	assert.Equal(t, "OPS", key)
	assert.Equal(t, "OPS-5-hotfix", branch)
}

func TestDetectProjectFromGit_DetachedHead(t *testing.T) {
	dir := t.TempDir()
	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("3f2a9c1d\n"), 0o644))

	_, _, err := DetectProjectFromGit(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detached")
}

func TestProjectConfigRoundTrip(t *testing.T) {
	root := t.TempDir()
	path, err := WriteProjectConfig(root, &ProjectConfig{ProjectKey: "PROJ", JiraHost: testBaseURL, ServerName: "work"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ConfigFileName), path)

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	config, found, err := FindProjectConfigFrom(nested)
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, path, found)
	assert.Equal(t, "PROJ", config.ProjectKey)
	assert.Equal(t, "work", config.ServerName)
	assert.False(t, config.LastUpdated.IsZero())
}

func TestWriteProjectConfig_InvalidKey(t *testing.T) {
	_, err := WriteProjectConfig(t.TempDir(), &ProjectConfig{ProjectKey: "proj"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid project key")
}

func TestFindProjectConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not json"), 0o644))

	_, _, err := FindProjectConfigFrom(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse JSON")
}

func TestGetProjectKeyWithFallback(t *testing.T) {
	t.Run("Argument wins", func(t *testing.T) {
		req := createMCPRequest(map[string]any{"projectKey": " OPS "})
		key, err := GetProjectKeyWithFallback(&req)
		require.NoError(t, err)
		assert.Equal(t, "OPS", key)
	})

	t.Run("Falls back to config", func(t *testing.T) {
		dir := t.TempDir()
		_, err := WriteProjectConfig(dir, &ProjectConfig{ProjectKey: "PROJ"})
		require.NoError(t, err)
		t.Chdir(dir)

		req := createMCPRequest(nil)
		key, err := GetProjectKeyWithFallback(&req)
		require.NoError(t, err)
		assert.Equal(t, "PROJ", key)
	})

	t.Run("Neither", func(t *testing.T) {
		t.Chdir(t.TempDir())
		req := createMCPRequest(nil)
		_, err := GetProjectKeyWithFallback(&req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "projectKey not provided")
	})
}
