// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The interpreter, gate and session services depend only
// on these interfaces, so language-model backends, context storage, the cluster CLI
// and the terminal can all be replaced by stubs in tests.
package ports

import (
	"context"

	"github.com/doeshing/k8sllm/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.k8sllm/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ContextStore persists a bounded window of past interactions.
// Mutating calls persist durably before returning.
type ContextStore interface {
	// Load returns stored interactions oldest first; read errors yield an empty slice.
	Load(ctx context.Context) []domain.Interaction
	// Append adds one interaction and keeps only the most recent MaxStoredInteractions.
	Append(ctx context.Context, query, command, result string) error
	// Clear replaces the stored sequence with an empty one.
	Clear(ctx context.Context) error
	// FormattedContext renders the most recent PromptContextWindow interactions.
	// The boolean is false when the store is empty.
	FormattedContext(ctx context.Context) (string, bool)
	// Path returns the backing file location.
	Path() string
}

// ProviderFactory builds language-model backends from configuration.
type ProviderFactory interface {
	ForConfig(domain.Config) (Provider, error)
}

// Provider wraps a specific chat-completion API.
type Provider interface {
	Name() string
	Complete(context.Context, ProviderRequest) (string, error)
}

// ProviderRequest contains all data needed to generate a model reply.
type ProviderRequest struct {
	Model       string
	Messages    []domain.PromptMessage
	Temperature float64
	MaxTokens   int
}

// SecurityService evaluates commands against static guardrail rules.
type SecurityService interface {
	Evaluate(command string) (domain.RiskAssessment, error)
}

// CommandExecutor runs fully-formed cluster commands.
// A *domain.LaunchError is returned when the process cannot be started;
// a non-zero exit status is reported through ExecutionResult.ExitCode.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (domain.ExecutionResult, error)
}

// ConfirmationPrompter asks the human to approve a dangerous command.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
	Enabled() bool
}

// LineReader reads one line of user input after writing a prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Presenter renders intermediate cycle state before any blocking step.
type Presenter interface {
	ShowCommand(command string, dangerous bool)
	ShowAnswerHeader()
}

// KubeContextReader reports the active kubeconfig context.
type KubeContextReader interface {
	Current() (domain.KubeStatus, error)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
