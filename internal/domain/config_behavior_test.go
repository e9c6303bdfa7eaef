package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/doeshing/k8sllm/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		LLM: domain.LLMSettings{
			BaseURL: "https://api.deepseek.com/v1",
			Model:   "deepseek-coder",
		},
		Context:   domain.ContextSettings{Backend: domain.BackendJSON},
		Execution: domain.ExecutionSettings{Binary: "kubectl", TimeoutSeconds: 30},
	}
}

// TestConfig_GetProvider tests provider inference from the base URL
func TestConfig_GetProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		baseURL  string
		want     string
	}{
		{name: "explicit provider wins", provider: "Anthropic", baseURL: "https://api.deepseek.com/v1", want: domain.ProviderAnthropic},
		{name: "deepseek is openai compatible", baseURL: "https://api.deepseek.com/v1", want: domain.ProviderOpenAI},
		{name: "anthropic inferred", baseURL: "https://api.anthropic.com/v1", want: domain.ProviderAnthropic},
		{name: "ollama inferred from port", baseURL: "http://localhost:11434/v1", want: domain.ProviderOllama},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.Config{LLM: domain.LLMSettings{Provider: tt.provider, BaseURL: tt.baseURL}}
			if got := cfg.GetProvider(); got != tt.want {
				t.Errorf("got provider %s, want %s", got, tt.want)
			}
		})
	}
}

// TestConfig_ResolveAPIKey tests key lookup order
func TestConfig_ResolveAPIKey(t *testing.T) {
	t.Setenv("K8SLLM_API_KEY", "from-default-env")
	t.Setenv("CUSTOM_KEY", "from-custom-env")

	tests := []struct {
		name string
		llm  domain.LLMSettings
		want string
	}{
		{name: "inline key", llm: domain.LLMSettings{APIKey: "inline", APIKeyEnv: "CUSTOM_KEY"}, want: "inline"},
		{name: "custom env", llm: domain.LLMSettings{APIKeyEnv: "CUSTOM_KEY"}, want: "from-custom-env"},
		{name: "default env", llm: domain.LLMSettings{}, want: "from-default-env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.Config{LLM: tt.llm}
			if got := cfg.ResolveAPIKey(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestConfig_Defaults tests fallback values for unset fields
func TestConfig_Defaults(t *testing.T) {
	var cfg domain.Config

	if got := cfg.GetExecutionBinary(); got != "kubectl" {
		t.Errorf("binary = %s, want kubectl", got)
	}
	if got := cfg.GetResponseLanguage(); got != domain.DefaultResponseLanguage {
		t.Errorf("language = %s", got)
	}
	if got := cfg.GetMaxTokens(); got != domain.DefaultMaxTokens {
		t.Errorf("max tokens = %d", got)
	}
	if got := cfg.GetContextBackend(); got != domain.BackendJSON {
		t.Errorf("backend = %s", got)
	}
	if got := cfg.GetCommandTimeout(); got != 0 {
		t.Errorf("timeout = %s, want disabled", got)
	}

	cfg.Execution.TimeoutSeconds = 5
	if got := cfg.GetCommandTimeout(); got != 5*time.Second {
		t.Errorf("timeout = %s, want 5s", got)
	}
}

// TestConfig_ValidateConsistency tests configuration consistency validation
func TestConfig_ValidateConsistency(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*domain.Config)
		wantError bool
	}{
		{name: "valid configuration", mutate: func(*domain.Config) {}},
		{name: "invalid: unknown provider", mutate: func(c *domain.Config) { c.LLM.Provider = "bard" }, wantError: true},
		{name: "invalid: unknown backend", mutate: func(c *domain.Config) { c.Context.Backend = "redis" }, wantError: true},
		{name: "invalid: missing base url", mutate: func(c *domain.Config) { c.LLM.BaseURL = "" }, wantError: true},
		{name: "invalid: missing model", mutate: func(c *domain.Config) { c.LLM.Model = "" }, wantError: true},
		{name: "invalid: negative timeout", mutate: func(c *domain.Config) { c.Execution.TimeoutSeconds = -1 }, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.ValidateConsistency()
			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestIntentConstructors(t *testing.T) {
	cmd := domain.CommandIntent("get pods", true)
	if !cmd.IsCommand() || cmd.Text != "get pods" || !cmd.Dangerous {
		t.Fatalf("unexpected command intent %+v", cmd)
	}

	unparsed := domain.UnparsedIntent("hello")
	if !unparsed.IsUnparsed() || unparsed.Text != "" || unparsed.Raw != "hello" {
		t.Fatalf("unexpected unparsed intent %+v", unparsed)
	}
}

func TestGateStateTerminal(t *testing.T) {
	terminal := []domain.GateState{domain.StateCompleted, domain.StateCancelled, domain.StateBlocked, domain.StateTimedOut}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []domain.GateState{domain.StateProposed, domain.StateAutoRun, domain.StateAwaitingConfirmation} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestErrorsUnwrap(t *testing.T) {
	ierr := &domain.InterpreterError{Stage: "parse", Err: domain.ErrUnparsedReply}
	if !errors.Is(ierr, domain.ErrUnparsedReply) {
		t.Fatal("InterpreterError should unwrap to its cause")
	}

	cause := errors.New("executable file not found")
	lerr := &domain.LaunchError{Command: "kubectl get pods", Err: cause}
	if !errors.Is(lerr, cause) {
		t.Fatal("LaunchError should unwrap to its cause")
	}
}

func TestCombineOutput(t *testing.T) {
	tests := []struct {
		name           string
		stdout, stderr string
		want           string
	}{
		{name: "both", stdout: "out", stderr: "err", want: "out\nerr"},
		{name: "stdout only", stdout: "out", want: "out"},
		{name: "stderr only", stderr: "err", want: "err"},
		{name: "neither", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := domain.ExecutionResult{Stdout: tt.stdout, Stderr: tt.stderr}
			if got := r.Combined(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
