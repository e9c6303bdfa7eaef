package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout is the timeout for language-model HTTP requests
	DefaultHTTPClientTimeout = 60 * time.Second
	// DefaultCommandTimeoutSeconds bounds a single cluster command
	DefaultCommandTimeoutSeconds = 30
	// DefaultProbeTimeout bounds short diagnostic commands
	DefaultProbeTimeout = 2 * time.Second
)

// Context window constants
const (
	// MaxStoredInteractions is how many interactions the context store keeps
	MaxStoredInteractions = 10
	// PromptContextWindow is how many recent interactions are sent to the model
	PromptContextWindow = 5
)

// Interpreter constants
const (
	// InterpreterTemperature keeps command generation near-deterministic
	InterpreterTemperature = 0.1
	// DefaultMaxTokens is the default completion token limit
	DefaultMaxTokens = 1024
	// DefaultResponseLanguage is the language the model must answer in
	DefaultResponseLanguage = "Chinese"
	// DefaultAPIKeyEnv is consulted when llm.api_key is empty
	DefaultAPIKeyEnv = "K8SLLM_API_KEY"
)

// Execution constants
const (
	// DefaultExecutionBinary prefixes every generated command
	DefaultExecutionBinary = "kubectl"
	// CancelledMessage is the result recorded when the user declines
	CancelledMessage = "Operation cancelled by user."
	// NoCommand is recorded in place of a command for answer intents
	NoCommand = "N/A"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
