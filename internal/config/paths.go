package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FallbackDatasetPath is used when no LIBERO config names a dataset path.
const FallbackDatasetPath = "datasets"

// LiberoConfigFile returns the path of the LIBERO benchmark config file:
// $LIBERO_CONFIG_PATH/config.yaml, or ~/.libero/config.yaml.
func LiberoConfigFile() string {
	dir := os.Getenv("LIBERO_CONFIG_PATH")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".libero")
	}
	return filepath.Join(dir, "config.yaml")
}

// LiberoPath looks up key (e.g. "datasets") in the LIBERO config file.
func LiberoPath(key string) (string, error) {
	file := LiberoConfigFile()
	if file == "" {
		return "", fmt.Errorf("no home directory to locate LIBERO config")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}

	var paths map[string]string
	if err := yaml.Unmarshal(data, &paths); err != nil {
		return "", fmt.Errorf("parse %s: %w", file, err)
	}
	p, ok := paths[key]
	if !ok || p == "" {
		return "", fmt.Errorf("%s: no %q entry", file, key)
	}
	return p, nil
}

// DefaultDatasetPath returns the default download directory.
func DefaultDatasetPath() string {
	if p, err := LiberoPath("datasets"); err == nil {
		return p
	}
	return FallbackDatasetPath
}
