// Package toolsnaps compares tool definitions against JSON snapshots checked in
// next to the tests, so schema changes show up in review.
package toolsnaps

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/josephburnett/jd/v2"
)

const snapDir = "__toolsnaps__"

// Test marshals tool and compares it with __toolsnaps__/<toolName>.snap.
//
// With UPDATE_TOOLSNAPS=true the snapshot is rewritten. A missing snapshot is
// written as well, except in CI when the __toolsnaps__ directory does not exist.
// Array order is ignored.
func Test(toolName string, tool any) error {
	toolJSON, err := json.MarshalIndent(tool, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tool %s: %w", toolName, err)
	}

	snapPath := filepath.Join(snapDir, toolName+".snap")

	if os.Getenv("UPDATE_TOOLSNAPS") == "true" {
		return writeSnap(snapPath, toolJSON)
	}

	snapJSON, err := os.ReadFile(snapPath)
	if errors.Is(err, os.ErrNotExist) {
		if os.Getenv("GITHUB_ACTIONS") == "true" && !dirExists(snapDir) {
			return fmt.Errorf("tool snapshot does not exist for %s. Please run the tests with UPDATE_TOOLSNAPS=true to create it", toolName)
		}
		return writeSnap(snapPath, toolJSON)
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot file for %s: %w", toolName, err)
	}

	toolNode, err := jd.ReadJsonString(string(toolJSON))
	if err != nil {
		return fmt.Errorf("failed to parse tool JSON for %s: %w", toolName, err)
	}
	snapNode, err := jd.ReadJsonString(string(snapJSON))
	if err != nil {
		return fmt.Errorf("failed to parse snapshot JSON for %s: %w", toolName, err)
	}

	if diff := toolNode.Diff(snapNode, jd.SET).Render(); diff != "" {
		return fmt.Errorf("tool schema for %s has changed unexpectedly:\n%s\nrun with `UPDATE_TOOLSNAPS=true` if this is expected", toolName, diff)
	}
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func writeSnap(snapPath string, contents []byte) error {
	if err := os.MkdirAll(filepath.Dir(snapPath), 0700); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(snapPath, contents, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}
