package interpret

import (
	"fmt"

	"github.com/doeshing/k8sllm/internal/domain"
)

const (
	commandMarker   = "COMMAND:"
	answerMarker    = "ANSWER:"
	dangerousMarker = "DANGEROUS:"
	contextPrefix   = "Previous context: "
)

const systemPromptTemplate = `You are a Kubernetes expert. Analyze the user's query and respond appropriately:

1. If the user is asking for a kubectl command or operation:
- Convert the query into the appropriate kubectl command
- Format your response exactly as:
COMMAND: <the kubectl command>
DANGEROUS: <true/false>

2. If the user is asking a general question about Kubernetes:
- Provide a clear and concise answer
- Format your response exactly as:
ANSWER: <your detailed explanation>

IMPORTANT: always respond in %s
`

// SystemPrompt returns the fixed instruction for the given response language.
func SystemPrompt(language string) string {
	if language == "" {
		language = domain.DefaultResponseLanguage
	}
	return fmt.Sprintf(systemPromptTemplate, language)
}

// BuildMessages assembles the ordered chat sequence sent to the model.
// The history message is included only when hasHistory is true.
func BuildMessages(query, history string, hasHistory bool, language string) []domain.PromptMessage {
	messages := make([]domain.PromptMessage, 0, 3)
	messages = append(messages, domain.PromptMessage{Role: domain.RoleSystem, Content: SystemPrompt(language)})
	if hasHistory {
		messages = append(messages, domain.PromptMessage{Role: domain.RoleUser, Content: contextPrefix + history})
	}
	return append(messages, domain.PromptMessage{Role: domain.RoleUser, Content: query})
}
