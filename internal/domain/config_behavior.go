package domain

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Rich Domain Model: 將業務邏輯封裝在 Domain 實體中

// Provider kinds accepted in llm.provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Context store backends accepted in context.backend.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// ResolveAPIKey returns the configured key, falling back to the environment
// variable named by api_key_env. An empty result is not an error here; the
// backend rejects the request at call time.
func (c *Config) ResolveAPIKey() string {
	if c.LLM.APIKey != "" {
		return c.LLM.APIKey
	}
	env := c.LLM.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	return os.Getenv(env)
}

// GetProvider returns the backend kind, inferring it from the base URL when unset.
func (c *Config) GetProvider() string {
	if p := strings.ToLower(strings.TrimSpace(c.LLM.Provider)); p != "" {
		return p
	}
	switch {
	case strings.Contains(c.LLM.BaseURL, "anthropic.com"):
		return ProviderAnthropic
	case strings.Contains(c.LLM.BaseURL, "11434"):
		return ProviderOllama
	default:
		return ProviderOpenAI
	}
}

// GetResponseLanguage returns the language the model must answer in.
func (c *Config) GetResponseLanguage() string {
	if c.LLM.ResponseLanguage == "" {
		return DefaultResponseLanguage
	}
	return c.LLM.ResponseLanguage
}

// GetMaxTokens returns the completion token limit.
func (c *Config) GetMaxTokens() int {
	if c.LLM.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.LLM.MaxTokens
}

// GetContextBackend returns the context store backend.
func (c *Config) GetContextBackend() string {
	if c.Context.Backend == "" {
		return BackendJSON
	}
	return strings.ToLower(c.Context.Backend)
}

// GetExecutionBinary returns the cluster CLI used to prefix commands.
func (c *Config) GetExecutionBinary() string {
	if c.Execution.Binary == "" {
		return DefaultExecutionBinary
	}
	return c.Execution.Binary
}

// GetCommandTimeout returns the execution timeout; zero disables it.
func (c *Config) GetCommandTimeout() time.Duration {
	if c.Execution.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Execution.TimeoutSeconds) * time.Second
}

// IsSecurityEnabled checks if static guardrails are enabled
func (c *Config) IsSecurityEnabled() bool {
	return c.Security.Enabled
}

// ValidateConsistency checks the internal consistency of the configuration
func (c *Config) ValidateConsistency() error {
	switch c.GetProvider() {
	case ProviderOpenAI, ProviderAnthropic, ProviderOllama:
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}
	switch c.GetContextBackend() {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unsupported context backend %q", c.Context.Backend)
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.Execution.TimeoutSeconds < 0 {
		return fmt.Errorf("execution.timeout must be >= 0, got %d", c.Execution.TimeoutSeconds)
	}
	return nil
}
