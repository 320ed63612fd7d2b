package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultPromptDir is the subdirectory within the user's home directory.
const defaultPromptDir = ".config/textclassifier/prompts"

// LoadPromptContent resolves the path for a prompt template file and reads it.
// Absolute paths are used directly. A relative path is tried against the
// working directory first and then against ~/.config/textclassifier/prompts/.
func LoadPromptContent(configuredPath string) (string, error) {
	if configuredPath == "" {
		return "", nil
	}

	candidates := []string{configuredPath}
	if !filepath.IsAbs(configuredPath) {
		if homeDir, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(homeDir, defaultPromptDir, configuredPath))
		}
	}

	for _, path := range candidates {
		promptBytes, err := os.ReadFile(path)
		if err == nil {
			return string(promptBytes), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read prompt file '%s': %w", path, err)
		}
	}
	return "", fmt.Errorf("prompt file '%s' not found (looked in %v): %w", configuredPath, candidates, os.ErrNotExist)
}
