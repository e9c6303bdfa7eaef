// Package doctor runs environment diagnostics.
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/ports"
)

// RuleSource describes loaded guardrail rules.
type RuleSource interface {
	Source() string
	RuleCount() int
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider  ports.ConfigProvider
	SecurityService ports.SecurityService
	Rules           RuleSource
	ContextStore    ports.ContextStore
	KubeReader      ports.KubeContextReader
	LookPath        func(string) (string, error)
}

// Run executes checks and returns a report. Only a config load failure is
// returned as an error; every other problem becomes a check.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("format %s, provider %s, model %s",
		cfg.ConfigFormatVersion, cfg.GetProvider(), cfg.LLM.Model)))

	checks = append(checks, apiKeyCheck(cfg))
	checks = append(checks, s.binaryCheck(cfg.GetExecutionBinary()))
	checks = append(checks, s.kubeCheck())
	checks = append(checks, s.guardrailCheck(cfg))
	checks = append(checks, s.contextCheck(ctx))

	return domain.HealthReport{Checks: checks}, nil
}

func apiKeyCheck(cfg domain.Config) domain.HealthCheck {
	if cfg.ResolveAPIKey() != "" {
		return ok("API key", "configured")
	}
	if cfg.GetProvider() == domain.ProviderOllama {
		return ok("API key", "not required for ollama")
	}
	env := cfg.LLM.APIKeyEnv
	if env == "" {
		env = domain.DefaultAPIKeyEnv
	}
	return warn("API key", fmt.Sprintf("llm.api_key empty and %s unset", env))
}

func (s *Service) binaryCheck(binary string) domain.HealthCheck {
	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(binary)
	if err != nil {
		return fail("Cluster CLI", fmt.Sprintf("%s not found on PATH", binary))
	}
	return ok("Cluster CLI", path)
}

func (s *Service) kubeCheck() domain.HealthCheck {
	if s.KubeReader == nil {
		return warn("Kubeconfig", "reader not initialized")
	}
	status, err := s.KubeReader.Current()
	if err != nil {
		return warn("Kubeconfig", err.Error())
	}
	return ok("Kubeconfig", fmt.Sprintf("context %s, namespace %s (%s)", status.Context, status.Namespace, status.ConfigPath))
}

func (s *Service) guardrailCheck(cfg domain.Config) domain.HealthCheck {
	if !cfg.IsSecurityEnabled() {
		return warn("Guardrail", "disabled; only the model's danger flag gates commands")
	}
	if s.SecurityService == nil {
		return warn("Guardrail", "security service not initialized")
	}
	if _, err := s.SecurityService.Evaluate(cfg.GetExecutionBinary() + " get pods"); err != nil {
		return fail("Guardrail", err.Error())
	}
	if s.Rules == nil {
		return ok("Guardrail", "rules loaded")
	}
	return ok("Guardrail", fmt.Sprintf("%d rules from %s", s.Rules.RuleCount(), s.Rules.Source()))
}

func (s *Service) contextCheck(ctx context.Context) domain.HealthCheck {
	if s.ContextStore == nil {
		return warn("Context store", "not initialized")
	}
	records := s.ContextStore.Load(ctx)
	return ok("Context store", fmt.Sprintf("%d interactions in %s", len(records), s.ContextStore.Path()))
}

// Format renders a report as aligned lines.
func Format(report domain.HealthReport) string {
	var b strings.Builder
	for _, check := range report.Checks {
		fmt.Fprintf(&b, "[%-5s] %-14s %s\n", strings.ToUpper(string(check.Status)), check.Name, check.Details)
	}
	return b.String()
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
