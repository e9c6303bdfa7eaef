// Package contextstore persists the rolling conversation window fed back into
// interpretation of follow-up queries.
package contextstore

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/k8sllm/internal/domain"
)

// Format renders the most recent PromptContextWindow interactions as
// "User:/Command:/Result:" triples joined by newlines.
func Format(records []domain.Interaction) (string, bool) {
	if len(records) == 0 {
		return "", false
	}
	recent := tail(records, domain.PromptContextWindow)
	lines := make([]string, 0, len(recent)*3)
	for _, rec := range recent {
		lines = append(lines,
			"User: "+rec.Query,
			"Command: "+rec.Command,
			"Result: "+rec.Result,
		)
	}
	return strings.Join(lines, "\n"), true
}

func tail(records []domain.Interaction, n int) []domain.Interaction {
	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

func newInteraction(query, command, result string) domain.Interaction {
	return domain.Interaction{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Query:     query,
		Command:   command,
		Result:    result,
	}
}
