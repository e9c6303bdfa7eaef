package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/k8sllm/assets"
	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/pkg/filesystem"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, assets.DefaultConfigYAML, raw)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.SecureFilePermissions), info.Mode().Perm())

	assert.Equal(t, "https://api.deepseek.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "deepseek-coder", cfg.LLM.Model)
	assert.Equal(t, domain.ProviderOpenAI, cfg.GetProvider())
	assert.Equal(t, "Chinese", cfg.GetResponseLanguage())
	assert.Equal(t, "kubectl", cfg.GetExecutionBinary())
	assert.Equal(t, 30, cfg.Execution.TimeoutSeconds)
	assert.True(t, cfg.IsSecurityEnabled())
	assert.True(t, filepath.IsAbs(cfg.Context.Path), "context path should be expanded")
}

func TestLoadMergesPartialFileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "llm:\n  base_url: http://localhost:11434/v1\n  model: llama3\nexecution:\n  timeout: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o600))

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, domain.BackendJSON, cfg.GetContextBackend())
	assert.Zero(t, cfg.GetCommandTimeout(), "explicit zero disables the timeout")
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("K8SLLM_LLM_MODEL", "deepseek-chat")
	t.Setenv("K8SLLM_CONTEXT_BACKEND", "sqlite")

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
	assert.Equal(t, domain.BackendSQLite, cfg.GetContextBackend())
}

func TestResolvePathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(EnvConfigPath, path)

	loader := NewFileLoader("")
	assert.Equal(t, path, loader.Path())

	_, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"unknown provider": "llm:\n  provider: bard\n",
		"unknown backend":  "context:\n  backend: redis\n",
		"negative timeout": "execution:\n  timeout: -5\n",
		"malformed yaml":   "llm: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := NewFileLoader(path).Load(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestDefaultConfigMatchesEmbeddedFile(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.ValidateConsistency())
	assert.Equal(t, "K8SLLM_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, filepath.Join(filesystem.AppDir(), "guardrail.yaml"), cfg.Security.RulesFile)
}

func TestSaveBackupReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)

	cfg.LLM.Model = "deepseek-chat"
	require.NoError(t, loader.Save(cfg))

	reloaded, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", reloaded.LLM.Model)

	backup, err := loader.Backup()
	require.NoError(t, err)
	assert.FileExists(t, backup)

	defaults, err := loader.Reset()
	require.NoError(t, err)
	assert.Equal(t, "deepseek-coder", defaults.LLM.Model)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, assets.DefaultConfigYAML, raw)
}
