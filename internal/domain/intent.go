package domain

// IntentKind tags the variant held by an Intent.
type IntentKind string

const (
	IntentCommand  IntentKind = "command"
	IntentAnswer   IntentKind = "answer"
	IntentUnparsed IntentKind = "unparsed"
)

// Intent is the structured decision derived from a model reply.
// Unparsed intents carry an empty Text so they read as an empty answer.
type Intent struct {
	Kind      IntentKind
	Text      string
	Dangerous bool
	Raw       string
}

// CommandIntent builds a command intent.
func CommandIntent(text string, dangerous bool) Intent {
	return Intent{Kind: IntentCommand, Text: text, Dangerous: dangerous}
}

// AnswerIntent builds an answer intent.
func AnswerIntent(text string) Intent {
	return Intent{Kind: IntentAnswer, Text: text}
}

// UnparsedIntent records a reply that matched neither marker.
func UnparsedIntent(raw string) Intent {
	return Intent{Kind: IntentUnparsed, Raw: raw}
}

// IsCommand reports whether the intent asks for execution.
func (i Intent) IsCommand() bool { return i.Kind == IntentCommand }

// IsAnswer reports whether the intent is informational.
func (i Intent) IsAnswer() bool { return i.Kind == IntentAnswer }

// IsUnparsed reports whether the model reply could not be interpreted.
func (i Intent) IsUnparsed() bool { return i.Kind == IntentUnparsed }
