// Package security evaluates generated cluster commands against static regex rules.
package security

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/k8sllm/assets"
	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/pkg/filesystem"
	"github.com/doeshing/k8sllm/internal/ports"
)

// EmbeddedSource names rules loaded from the binary.
const EmbeddedSource = "embedded"

// Guardrail implements the SecurityService port.
type Guardrail struct {
	patterns []compiledPattern
	source   string
}

type compiledPattern struct {
	re   *regexp.Regexp
	rule DangerPattern
}

// DangerPattern describes a regex-based guardrail rule.
type DangerPattern struct {
	Pattern string `yaml:"pattern"`
	Level   string `yaml:"level"`
	Message string `yaml:"message"`
	Action  string `yaml:"action"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		DangerPatterns []DangerPattern `yaml:"danger_patterns"`
	} `yaml:"rules"`
}

// NewGuardrail loads rules from path, or the embedded defaults when the file
// does not exist. A file that exists but cannot be parsed is an error.
func NewGuardrail(path string) (*Guardrail, error) {
	path = filesystem.ExpandPath(path)
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			g, err := NewGuardrailFromYAML(data)
			if err != nil {
				return nil, fmt.Errorf("guardrail %s: %w", path, err)
			}
			g.source = path
			return g, nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read guardrail %s: %w", path, err)
		}
	}
	return NewGuardrailFromYAML(assets.DefaultGuardrailYAML)
}

// NewGuardrailFromYAML compiles rules from raw YAML.
func NewGuardrailFromYAML(data []byte) (*Guardrail, error) {
	var rules RulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}

	compiled := make([]compiledPattern, 0, len(rules.Rules.DangerPatterns))
	for _, pattern := range rules.Rules.DangerPatterns {
		re, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", pattern.Pattern, err)
		}
		compiled = append(compiled, compiledPattern{re: re, rule: pattern})
	}
	return &Guardrail{patterns: compiled, source: EmbeddedSource}, nil
}

// Disabled returns a guardrail that allows everything.
func Disabled() *Guardrail {
	return &Guardrail{source: "disabled"}
}

// Source reports where the rules came from.
func (g *Guardrail) Source() string {
	return g.source
}

// RuleCount reports how many rules are active.
func (g *Guardrail) RuleCount() int {
	return len(g.patterns)
}

// Evaluate implements ports.SecurityService. Every matching rule contributes a
// reason; level and action are the most severe seen.
func (g *Guardrail) Evaluate(command string) (domain.RiskAssessment, error) {
	if g == nil {
		return domain.RiskAssessment{}, errors.New("guardrail nil")
	}
	assessment := domain.RiskAssessment{
		Level:  domain.RiskSafe,
		Action: domain.ActionAllow,
	}
	for _, pattern := range g.patterns {
		if !pattern.re.MatchString(command) {
			continue
		}
		level := parseRiskLevel(pattern.rule.Level)
		if moreSevere(level, assessment.Level) {
			assessment.Level = level
		}
		if action := parseAction(pattern.rule.Action, level); stricter(action, assessment.Action) {
			assessment.Action = action
		}
		assessment.Reasons = append(assessment.Reasons, pattern.rule.Message)
		assessment.MatchedRules = append(assessment.MatchedRules, pattern.rule.Pattern)
	}
	return assessment, nil
}

func parseRiskLevel(value string) domain.RiskLevel {
	switch strings.ToLower(value) {
	case "low":
		return domain.RiskLow
	case "medium":
		return domain.RiskMedium
	case "high":
		return domain.RiskHigh
	case "critical":
		return domain.RiskCritical
	default:
		return domain.RiskSafe
	}
}

func parseAction(value string, fallback domain.RiskLevel) domain.GuardrailAction {
	switch strings.ToLower(value) {
	case "allow":
		return domain.ActionAllow
	case "confirm":
		return domain.ActionConfirm
	case "block":
		return domain.ActionBlock
	default:
		if fallback == domain.RiskSafe {
			return domain.ActionAllow
		}
		return domain.ActionConfirm
	}
}

func moreSevere(next domain.RiskLevel, current domain.RiskLevel) bool {
	order := map[domain.RiskLevel]int{
		domain.RiskSafe:     0,
		domain.RiskLow:      1,
		domain.RiskMedium:   2,
		domain.RiskHigh:     3,
		domain.RiskCritical: 4,
	}
	return order[next] > order[current]
}

func stricter(next domain.GuardrailAction, current domain.GuardrailAction) bool {
	order := map[domain.GuardrailAction]int{
		domain.ActionAllow:   0,
		domain.ActionConfirm: 1,
		domain.ActionBlock:   2,
	}
	return order[next] > order[current]
}

var _ ports.SecurityService = (*Guardrail)(nil)
