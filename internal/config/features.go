package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Features toggles optional modules. Everything defaults to enabled so a
// missing file changes nothing.
type Features struct {
	Habits        bool `yaml:"habits"`
	Tasks         bool `yaml:"tasks"`
	Goals         bool `yaml:"goals"`
	Finance       bool `yaml:"finance"`
	Principles    bool `yaml:"principles"`
	Notifications bool `yaml:"notifications"`
}

// DefaultFeatures returns the all-enabled feature set.
func DefaultFeatures() Features {
	return Features{Habits: true, Tasks: true, Goals: true, Finance: true, Principles: true, Notifications: true}
}

// LoadFeatures loads config/features.yaml.
func LoadFeatures() (Features, error) {
	return LoadFeaturesFromPath(filepath.Join("config", "features.yaml"))
}

// LoadFeaturesFromPath loads the feature flags from a specific path.
func LoadFeaturesFromPath(path string) (Features, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Features{}, fmt.Errorf("read features config: %w", err)
	}
	f := DefaultFeatures()
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Features{}, fmt.Errorf("parse features config: %w", err)
	}
	return f, nil
}

// LoadFeaturesOrDefault loads the feature flags or falls back to all
// enabled when the file is missing.
func LoadFeaturesOrDefault() Features {
	f, err := LoadFeatures()
	if err != nil {
		return DefaultFeatures()
	}
	return f
}
