// Package gate decides whether a proposed command runs immediately, waits for
// a human decision, or never runs at all.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/ports"
)

const confirmationPrompt = "⚠️  This is a potentially dangerous operation!\nCommand to be executed: %s\nPlease confirm you want to proceed (y/n): "

// Gate holds the collaborators shared by every proposal.
type Gate struct {
	Binary          string
	SecurityService ports.SecurityService
	Executor        ports.CommandExecutor
	Presenter       ports.Presenter
	Logger          ports.Logger
}

// Proposal is one command moving through the gate. It accepts at most one
// decision; later calls return the recorded outcome.
type Proposal struct {
	gate    *Gate
	mu      sync.Mutex
	outcome domain.Outcome
}

// NormalizeCommand prefixes text with binary unless it already starts with it.
func NormalizeCommand(binary, text string) string {
	if binary == "" {
		binary = domain.DefaultExecutionBinary
	}
	text = strings.TrimSpace(text)
	if text == binary || strings.HasPrefix(text, binary+" ") {
		return text
	}
	return binary + " " + text
}

// Propose normalizes the intent's command and either runs it, holds it for
// confirmation, or blocks it.
func (g *Gate) Propose(ctx context.Context, intent domain.Intent) (*Proposal, error) {
	if g.Executor == nil || g.Logger == nil {
		return nil, errors.New("gate.Gate dependencies not satisfied")
	}
	if !intent.IsCommand() {
		return nil, fmt.Errorf("propose %s intent: %w", intent.Kind, domain.ErrNotCommand)
	}

	command := NormalizeCommand(g.Binary, intent.Text)
	p := &Proposal{
		gate: g,
		outcome: domain.Outcome{
			State:     domain.StateProposed,
			Command:   command,
			Dangerous: intent.Dangerous,
		},
	}

	if g.SecurityService != nil {
		risk, err := g.SecurityService.Evaluate(command)
		if err != nil {
			return nil, fmt.Errorf("security evaluate: %w", err)
		}
		p.outcome.Reasons = risk.Reasons
		if risk.Blocked() {
			g.Logger.Warn("command blocked by guardrail", map[string]interface{}{
				"command": command,
				"rules":   risk.MatchedRules,
			})
			p.outcome.State = domain.StateBlocked
			p.outcome.Dangerous = true
			p.outcome.Message = blockedMessage(risk)
			g.show(p.outcome)
			return p, nil
		}
		if risk.RequiresConfirmation() && !intent.Dangerous {
			g.Logger.Info("guardrail escalated command to dangerous", map[string]interface{}{
				"command": command,
				"level":   string(risk.Level),
			})
			p.outcome.Dangerous = true
		}
	}

	g.show(p.outcome)
	if p.outcome.Dangerous {
		p.outcome.State = domain.StateAwaitingConfirmation
		p.outcome.Prompt = fmt.Sprintf(confirmationPrompt, command)
		return p, nil
	}

	p.outcome.State = domain.StateAutoRun
	p.outcome = g.run(ctx, p.outcome)
	return p, nil
}

// Outcome returns the current outcome.
func (p *Proposal) Outcome() domain.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outcome
}

// Confirm runs a command awaiting confirmation.
func (p *Proposal) Confirm(ctx context.Context) domain.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.outcome.State != domain.StateAwaitingConfirmation {
		return p.outcome
	}
	p.outcome = p.gate.run(ctx, p.outcome)
	return p.outcome
}

// Decline cancels a command awaiting confirmation.
func (p *Proposal) Decline() domain.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.outcome.State != domain.StateAwaitingConfirmation {
		return p.outcome
	}
	p.outcome.State = domain.StateCancelled
	p.outcome.Message = domain.CancelledMessage
	p.outcome.Prompt = ""
	return p.outcome
}

func (g *Gate) run(ctx context.Context, outcome domain.Outcome) domain.Outcome {
	outcome.Prompt = ""
	result, err := g.Executor.Execute(ctx, outcome.Command)
	outcome.ExitCode = result.ExitCode
	outcome.DurationMS = result.DurationMS

	var launchErr *domain.LaunchError
	switch {
	case errors.Is(err, domain.ErrCommandTimeout):
		g.Logger.Warn("command timed out", map[string]interface{}{"command": outcome.Command})
		outcome.State = domain.StateTimedOut
		outcome.Message = "Error: " + err.Error()
	case errors.As(err, &launchErr):
		g.Logger.Error("command failed to start", err, map[string]interface{}{"command": outcome.Command})
		outcome.State = domain.StateCompleted
		outcome.Output = "Error: " + launchErr.Err.Error()
	case err != nil:
		g.Logger.Error("command execution failed", err, map[string]interface{}{"command": outcome.Command})
		outcome.State = domain.StateCompleted
		outcome.Output = "Error: " + err.Error()
	default:
		g.Logger.Debug("command finished", map[string]interface{}{
			"command":     outcome.Command,
			"exit_code":   result.ExitCode,
			"duration_ms": result.DurationMS,
		})
		outcome.State = domain.StateCompleted
		outcome.Output = result.Combined()
	}
	return outcome
}

// show displays the command before anything blocks on it.
func (g *Gate) show(outcome domain.Outcome) {
	if g.Presenter != nil {
		g.Presenter.ShowCommand(outcome.Command, outcome.Dangerous)
	}
}

func blockedMessage(risk domain.RiskAssessment) string {
	if len(risk.Reasons) == 0 {
		return "Error: command blocked by guardrail"
	}
	return "Error: command blocked by guardrail: " + strings.Join(risk.Reasons, "; ")
}
