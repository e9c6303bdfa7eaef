// Package interpret turns a natural-language query into a structured intent
// by asking the configured language model.
package interpret

import (
	"context"
	"errors"
	"fmt"

	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/ports"
)

// Interpreter asks the model for exactly one intent per query.
type Interpreter struct {
	ConfigProvider  ports.ConfigProvider
	ProviderFactory ports.ProviderFactory
	Logger          ports.Logger
}

// Interpret sends the query (and history, when present) to the model and parses
// the reply. Backend failures are returned as *domain.InterpreterError.
func (i *Interpreter) Interpret(ctx context.Context, query, history string, hasHistory bool) (domain.Intent, error) {
	if i.ConfigProvider == nil || i.ProviderFactory == nil || i.Logger == nil {
		return domain.Intent{}, errors.New("interpret.Interpreter dependencies not satisfied")
	}

	cfg, err := i.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.Intent{}, fmt.Errorf("load config: %w", err)
	}

	provider, err := i.ProviderFactory.ForConfig(cfg)
	if err != nil {
		return domain.Intent{}, &domain.InterpreterError{Stage: "provider", Err: err}
	}

	messages := BuildMessages(query, history, hasHistory, cfg.GetResponseLanguage())
	i.Logger.Debug("calling provider", map[string]interface{}{
		"provider":    provider.Name(),
		"model":       cfg.LLM.Model,
		"has_history": hasHistory,
	})

	reply, err := provider.Complete(ctx, ports.ProviderRequest{
		Model:       cfg.LLM.Model,
		Messages:    messages,
		Temperature: domain.InterpreterTemperature,
		MaxTokens:   cfg.GetMaxTokens(),
	})
	if err != nil {
		return domain.Intent{}, &domain.InterpreterError{Stage: "backend", Err: err}
	}

	intent := ParseReply(reply)
	if intent.IsUnparsed() {
		i.Logger.Warn("model reply carried no COMMAND or ANSWER marker", map[string]interface{}{
			"reply_length": len(reply),
		})
	}
	return intent, nil
}
