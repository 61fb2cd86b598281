package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvGlobalConfig overrides the global config location.
const EnvGlobalConfig = "FORGE_GLOBAL_CONFIG"

// GlobalConfig represents the per-user forge configuration
type GlobalConfig struct {
	VcpkgRoot string `yaml:"vcpkg_root"`
	ConanPath string `yaml:"conan_path"`
	// Verbose echoes tool output instead of showing progress.
	Verbose bool `yaml:"verbose"`
}

// GetConfigDir returns the directory where forge stores its global config
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// Use ~/.config/forge on Unix, %APPDATA%/forge on Windows
	var configDir string
	if runtime.GOOS == "windows" {
		configDir = filepath.Join(os.Getenv("APPDATA"), "forge")
	} else {
		configDir = filepath.Join(homeDir, ".config", "forge")
	}

	return configDir, nil
}

// GetConfigPath returns the path to the global forge config file
func GetConfigPath() (string, error) {
	if path := os.Getenv(EnvGlobalConfig); path != "" {
		return path, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// LoadGlobal loads the global forge configuration
func LoadGlobal() (*GlobalConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadGlobalFrom(configPath)
}

// LoadGlobalFrom loads the global configuration from path. A missing file
// yields the zero config.
func LoadGlobalFrom(configPath string) (*GlobalConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config GlobalConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}
