package commands

// CLI-specific constants
const (
	// DefaultEditorCommand is the default editor command
	DefaultEditorCommand = "vi"
	// ResultSeparator follows every displayed result
	ResultSeparator = "\n-------------------\n"
	// QueryPrompt is shown when no query was given on the command line
	QueryPrompt = "Enter your Kubernetes query: "
	// ChatPrompt is the long-lived session prompt
	ChatPrompt = "k8sllm> "
)

// Error messages
const (
	ErrConfigLoaderUnavailable  = "config loader unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrContextStoreUnavailable  = "context store unavailable"
	ErrSessionUnavailable       = "session service unavailable"
	ErrInputUnavailable         = "input reader unavailable"
	ErrQueryRequired            = "a query is required"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgContextCleared           = "Context cleared successfully."
	MsgNoContextRecorded        = "No context recorded yet."
)
