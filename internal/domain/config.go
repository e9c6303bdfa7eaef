package domain

// Config mirrors ~/.k8sllm/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version" mapstructure:"config_format_version"`
	LLM                 LLMSettings       `yaml:"llm" mapstructure:"llm"`
	Context             ContextSettings   `yaml:"context" mapstructure:"context"`
	Execution           ExecutionSettings `yaml:"execution" mapstructure:"execution"`
	Security            SecuritySettings  `yaml:"security" mapstructure:"security"`
}

// LLMSettings describes the language-model backend.
type LLMSettings struct {
	Provider         string `yaml:"provider" mapstructure:"provider"`
	BaseURL          string `yaml:"base_url" mapstructure:"base_url"`
	APIKey           string `yaml:"api_key" mapstructure:"api_key"`
	APIKeyEnv        string `yaml:"api_key_env" mapstructure:"api_key_env"`
	Model            string `yaml:"model" mapstructure:"model"`
	MaxTokens        int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	ResponseLanguage string `yaml:"response_language" mapstructure:"response_language"`
}

// ContextSettings configures where conversation context is persisted.
type ContextSettings struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// ExecutionSettings controls how cluster commands run.
type ExecutionSettings struct {
	Binary         string `yaml:"binary" mapstructure:"binary"`
	TimeoutSeconds int    `yaml:"timeout" mapstructure:"timeout"`
}

// SecuritySettings defines guardrail behavior.
type SecuritySettings struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
}
