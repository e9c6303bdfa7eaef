// Package session runs one query cycle end to end: context, interpretation,
// gating, display and recording.
package session

import (
	"context"
	"errors"

	"github.com/doeshing/k8sllm/internal/application/gate"
	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/ports"
)

// Interpreter turns a query into an intent.
type Interpreter interface {
	Interpret(ctx context.Context, query, history string, hasHistory bool) (domain.Intent, error)
}

// Proposer hands command intents to the gate.
type Proposer interface {
	Propose(ctx context.Context, intent domain.Intent) (*gate.Proposal, error)
}

// Service orchestrates the query lifecycle.
type Service struct {
	ContextStore ports.ContextStore
	Interpreter  Interpreter
	Gate         Proposer
	Prompter     ports.ConfirmationPrompter
	Presenter    ports.Presenter // answer header; commands are shown by the gate
	Logger       ports.Logger
}

// Run processes a single natural-language query. Interpretation failures
// return an error with nothing executed and nothing recorded.
func (s *Service) Run(ctx context.Context, query string) (domain.SessionResult, error) {
	if s.ContextStore == nil || s.Interpreter == nil || s.Gate == nil || s.Logger == nil {
		return domain.SessionResult{}, errors.New("session.Service dependencies not satisfied")
	}

	history, hasHistory := s.ContextStore.FormattedContext(ctx)
	intent, err := s.Interpreter.Interpret(ctx, query, history, hasHistory)
	if err != nil {
		return domain.SessionResult{Query: query}, err
	}

	res := domain.SessionResult{Query: query, Intent: intent}
	var recordedCommand string

	switch {
	case intent.IsUnparsed():
		return res, &domain.InterpreterError{Stage: "parse", Err: domain.ErrUnparsedReply}

	case intent.IsCommand():
		proposal, err := s.Gate.Propose(ctx, intent)
		if err != nil {
			return res, err
		}
		outcome := proposal.Outcome()
		if outcome.State == domain.StateAwaitingConfirmation {
			outcome = s.decide(ctx, proposal, outcome)
		}
		res.Outcome = &outcome
		res.Text = outcome.Text()
		recordedCommand = outcome.Command

	default:
		if s.Presenter != nil {
			s.Presenter.ShowAnswerHeader()
		}
		res.Text = intent.Text
		recordedCommand = domain.NoCommand
	}

	if err := s.ContextStore.Append(ctx, query, recordedCommand, res.Text); err != nil {
		s.Logger.Error("failed to record interaction", err, map[string]interface{}{
			"path": s.ContextStore.Path(),
		})
		return res, nil
	}
	res.Recorded = true
	return res, nil
}

func (s *Service) decide(ctx context.Context, proposal *gate.Proposal, outcome domain.Outcome) domain.Outcome {
	if s.Prompter == nil || !s.Prompter.Enabled() {
		s.Logger.Warn("confirmation unavailable, declining", map[string]interface{}{"command": outcome.Command})
		return proposal.Decline()
	}
	ok, err := s.Prompter.Confirm(outcome.Prompt)
	if err != nil {
		s.Logger.Warn("confirmation read failed, declining", map[string]interface{}{"error": err.Error()})
		return proposal.Decline()
	}
	if !ok {
		return proposal.Decline()
	}
	return proposal.Confirm(ctx)
}
