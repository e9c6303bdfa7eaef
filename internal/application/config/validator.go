// Package config performs deeper configuration checks than the loader does.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/doeshing/k8sllm/internal/domain"
)

// Validate ensures config structure is consistent and every section is usable.
// All problems are reported together.
func Validate(cfg domain.Config) error {
	var errs []error
	if err := cfg.ValidateConsistency(); err != nil {
		errs = append(errs, err)
	}
	if err := validateLLM(cfg.LLM); err != nil {
		errs = append(errs, err)
	}
	if err := validateContext(cfg.Context); err != nil {
		errs = append(errs, err)
	}
	if err := validateExecution(cfg.Execution); err != nil {
		errs = append(errs, err)
	}
	if err := validateSecurity(cfg.Security); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func validateLLM(llm domain.LLMSettings) error {
	if llm.BaseURL != "" {
		u, err := url.Parse(llm.BaseURL)
		if err != nil {
			return fmt.Errorf("llm.base_url invalid: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("llm.base_url must be http or https, got %q", llm.BaseURL)
		}
	}
	if llm.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens must be >= 0")
	}
	if llm.APIKey == "" && strings.TrimSpace(llm.APIKeyEnv) == "" {
		return fmt.Errorf("llm.api_key or llm.api_key_env must be set")
	}
	return nil
}

func validateContext(ctx domain.ContextSettings) error {
	if ctx.Path != "" && strings.HasSuffix(ctx.Path, "/") {
		return fmt.Errorf("context.path must be a file, got directory %s", ctx.Path)
	}
	return nil
}

func validateExecution(exec domain.ExecutionSettings) error {
	if strings.ContainsAny(exec.Binary, " \t") {
		return fmt.Errorf("execution.binary must be a single executable name, got %q", exec.Binary)
	}
	return nil
}

func validateSecurity(sec domain.SecuritySettings) error {
	if sec.Enabled && sec.RulesFile == "" {
		return fmt.Errorf("security.rules_file must be set when security is enabled")
	}
	return nil
}
