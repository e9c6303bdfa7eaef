package interpret

import (
	"strings"

	"github.com/doeshing/k8sllm/internal/domain"
)

// ParseReply classifies a raw model reply. It never fails: a reply that carries
// neither marker becomes an Unparsed intent holding the raw text.
func ParseReply(reply string) domain.Intent {
	lines := strings.Split(strings.TrimSpace(reply), "\n")

	commandLine, hasCommand := firstWithPrefix(lines, commandMarker)
	answerLine, hasAnswer := firstWithPrefix(lines, answerMarker)
	dangerousLine, _ := firstWithPrefix(lines, dangerousMarker)

	switch {
	case hasCommand:
		command := strings.TrimSpace(strings.TrimPrefix(commandLine, commandMarker))
		flag := strings.TrimSpace(strings.TrimPrefix(dangerousLine, dangerousMarker))
		return domain.CommandIntent(command, strings.EqualFold(flag, "true"))
	case hasAnswer:
		return domain.AnswerIntent(strings.TrimSpace(strings.TrimPrefix(answerLine, answerMarker)))
	default:
		return domain.UnparsedIntent(reply)
	}
}

func firstWithPrefix(lines []string, prefix string) (string, bool) {
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			return line, true
		}
	}
	return "", false
}
