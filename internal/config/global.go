// Package config manages cforge's global, per-user configuration: the
// one YAML file (~/.config/cforge/config.yaml) that carries machine-wide
// defaults, as opposed to the per-project TOML manifests pkg/manifest
// loads. Kept as YAML, the teacher's original format, since it is never
// hand-shared between collaborators the way cforge.toml is.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// GlobalConfig is cforge's per-user configuration.
type GlobalConfig struct {
	VcpkgRoot              string `yaml:"vcpkg_root"`
	RegistryCacheDir       string `yaml:"registry_cache_dir"`
	DefaultDependenciesDir string `yaml:"default_dependencies_dir"`
	DefaultJobs            int    `yaml:"default_jobs"`
	DefaultCompiler        string `yaml:"default_compiler"`
}

// GetConfigDir returns the directory where cforge stores its global
// config: ~/.config/cforge on Unix, %APPDATA%/cforge on Windows.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	var configDir string
	if runtime.GOOS == "windows" {
		configDir = filepath.Join(os.Getenv("APPDATA"), "cforge")
	} else {
		configDir = filepath.Join(homeDir, ".config", "cforge")
	}

	return configDir, nil
}

// GetConfigPath returns the path to the global cforge config file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

func defaultRegistryCacheDir(configDir string) string {
	return filepath.Join(configDir, "registry")
}

const defaultDependenciesDirName = "deps"

// LoadGlobal loads the global cforge configuration, filling in defaults
// for any field a pre-existing config file left unset (and for a config
// directory that has none yet).
func LoadGlobal() (*GlobalConfig, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := &GlobalConfig{}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if cfg.RegistryCacheDir == "" {
		cfg.RegistryCacheDir = defaultRegistryCacheDir(configDir)
	}
	if cfg.DefaultDependenciesDir == "" {
		cfg.DefaultDependenciesDir = defaultDependenciesDirName
	}
	if cfg.DefaultJobs <= 0 {
		cfg.DefaultJobs = runtime.NumCPU()
	}

	return cfg, nil
}

// SaveGlobal persists the global cforge configuration via write-then-
// rename, matching the durability convention used for cforge.lock and
// cforge.hash.
func SaveGlobal(cfg *GlobalConfig) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(configDir, "config-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
