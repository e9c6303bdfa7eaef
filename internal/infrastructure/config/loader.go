// Package config loads ~/.k8sllm/config.yaml through viper.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/k8sllm/assets"
	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/pkg/filesystem"
	"github.com/doeshing/k8sllm/internal/ports"
)

const (
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "K8SLLM_CONFIG"
	// EnvPrefix namespaces per-key overrides, e.g. K8SLLM_LLM_MODEL.
	EnvPrefix = "K8SLLM"
)

// FileLoader loads YAML configuration from ~/.k8sllm/config.yaml (overridable via K8SLLM_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path uses the default resolution.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Path returns the config file the loader reads.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

// Load implements ports.ConfigProvider. A missing file is created from the
// embedded defaults first.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, err
		}
		if err := writeDefault(path); err != nil {
			return domain.Config{}, fmt.Errorf("write default config: %w", err)
		}
	}

	defaults, err := DefaultConfig()
	if err != nil {
		return domain.Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v, defaults)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return domain.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return domain.Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg = hydrateDefaults(cfg)
	if err := cfg.ValidateConsistency(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML. Callers validate before persisting.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(path, raw, domain.SecureFilePermissions)
}

// Backup copies the current file next to itself with a timestamp suffix.
func (l *FileLoader) Backup() (string, error) {
	path := l.resolvePath()
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().UTC().Format("20060102T150405Z"))
	if err := filesystem.WriteFileAtomic(backup, raw, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return backup, nil
}

// Reset overwrites the file with the embedded defaults.
func (l *FileLoader) Reset() (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}
	if err := writeDefault(path); err != nil {
		return domain.Config{}, err
	}
	return DefaultConfig()
}

// DefaultConfig decodes the embedded default configuration with paths expanded.
func DefaultConfig() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("decode embedded config: %w", err)
	}
	return hydrateDefaults(cfg), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

func writeDefault(path string) error {
	return filesystem.WriteFileAtomic(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg domain.Config) {
	v.SetDefault("config_format_version", cfg.ConfigFormatVersion)
	v.SetDefault("llm.provider", cfg.LLM.Provider)
	v.SetDefault("llm.base_url", cfg.LLM.BaseURL)
	v.SetDefault("llm.api_key", cfg.LLM.APIKey)
	v.SetDefault("llm.api_key_env", cfg.LLM.APIKeyEnv)
	v.SetDefault("llm.model", cfg.LLM.Model)
	v.SetDefault("llm.max_tokens", cfg.LLM.MaxTokens)
	v.SetDefault("llm.response_language", cfg.LLM.ResponseLanguage)
	v.SetDefault("context.backend", cfg.Context.Backend)
	v.SetDefault("context.path", cfg.Context.Path)
	v.SetDefault("execution.binary", cfg.Execution.Binary)
	v.SetDefault("execution.timeout", cfg.Execution.TimeoutSeconds)
	v.SetDefault("security.enabled", cfg.Security.Enabled)
	v.SetDefault("security.rules_file", cfg.Security.RulesFile)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = domain.DefaultAPIKeyEnv
	}
	cfg.Context.Path = filesystem.ExpandPath(cfg.Context.Path)
	cfg.Security.RulesFile = filesystem.ExpandPath(cfg.Security.RulesFile)
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
