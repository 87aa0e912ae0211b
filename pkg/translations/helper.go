package translations

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

const (
	configFileName = "jira-mcp-server-config.json"
	envPrefix      = "JIRA_MCP_"
)

// TranslationHelperFunc returns the text for key, or defaultValue when no override exists.
type TranslationHelperFunc func(key, defaultValue string) string

// NullTranslationHelper always returns the default text.
func NullTranslationHelper(_ string, defaultValue string) string {
	return defaultValue
}

// TranslationHelper loads description overrides from the config file next to the
// binary. The returned dump func writes every key requested so far, with its
// current text, back to that file.
func TranslationHelper(logger *log.Logger) (TranslationHelperFunc, func()) {
	execPath, err := os.Executable()
	if err != nil {
		logger.Debugf("Could not locate binary path for translations: %v", err)
		return NullTranslationHelper, func() {}
	}
	return helperForPath(logger, filepath.Join(filepath.Dir(execPath), configFileName))
}

type store struct {
	mu        sync.Mutex
	overrides map[string]string
	used      map[string]string
}

func helperForPath(logger *log.Logger, configPath string) (TranslationHelperFunc, func()) {
	s := &store{
		overrides: make(map[string]string),
		used:      make(map[string]string),
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, &s.overrides); err != nil {
			logger.Warnf("Failed to parse translation config: %v", err)
		} else {
			logger.Infof("Loaded %d translations from %s", len(s.overrides), configPath)
		}
	}

	lookup := func(key, defaultValue string) string {
		key = strings.ToUpper(key)

		s.mu.Lock()
		defer s.mu.Unlock()

		value := defaultValue
		if v, ok := s.overrides[key]; ok {
			value = v
		}
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			value = v
		}
		s.used[key] = value
		return value
	}

	dump := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		dumpTranslations(logger, configPath, s.used)
	}

	return lookup, dump
}

// dumpTranslations merges used into the file at configPath without overwriting existing entries.
func dumpTranslations(logger *log.Logger, configPath string, used map[string]string) {
	existing := make(map[string]string)
	if data, err := os.ReadFile(configPath); err == nil {
		_ = json.Unmarshal(data, &existing)
	}

	added := 0
	for key, value := range used {
		if _, exists := existing[key]; !exists {
			existing[key] = value
			added++
		}
	}

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		logger.Errorf("Failed to marshal translations: %v", err)
		return
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		logger.Errorf("Failed to write translations: %v", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Exported %d translation keys (%d new) to %s\n", len(existing), added, configPath)
	logger.Infof("Exported %d translation keys to %s", len(existing), configPath)
}
