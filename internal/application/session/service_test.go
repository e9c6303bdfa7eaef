package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/k8sllm/internal/application/gate"
	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/pkg/logger"
)

type record struct {
	query, command, result string
}

type stubStore struct {
	history    string
	hasHistory bool
	appended   []record
	appendErr  error
}

func (s *stubStore) Load(context.Context) []domain.Interaction { return nil }

func (s *stubStore) Append(_ context.Context, query, command, result string) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, record{query, command, result})
	return nil
}

func (s *stubStore) Clear(context.Context) error { return nil }

func (s *stubStore) FormattedContext(context.Context) (string, bool) { return s.history, s.hasHistory }

func (s *stubStore) Path() string { return "/tmp/context.json" }

type stubInterpreter struct {
	intent     domain.Intent
	err        error
	gotHistory string
	gotHas     bool
}

func (s *stubInterpreter) Interpret(_ context.Context, _ string, history string, hasHistory bool) (domain.Intent, error) {
	s.gotHistory, s.gotHas = history, hasHistory
	return s.intent, s.err
}

type stubExecutor struct {
	calls  []string
	output string
}

func (s *stubExecutor) Execute(_ context.Context, command string) (domain.ExecutionResult, error) {
	s.calls = append(s.calls, command)
	return domain.ExecutionResult{Stdout: s.output}, nil
}

type stubPrompter struct {
	enabled bool
	answer  bool
	err     error
	prompts []string
}

func (s *stubPrompter) Enabled() bool { return s.enabled }

func (s *stubPrompter) Confirm(prompt string) (bool, error) {
	s.prompts = append(s.prompts, prompt)
	return s.answer, s.err
}

type stubPresenter struct {
	commands []string
	answers  int
}

func (s *stubPresenter) ShowCommand(command string, _ bool) { s.commands = append(s.commands, command) }

func (s *stubPresenter) ShowAnswerHeader() { s.answers++ }

type fixture struct {
	store     *stubStore
	interp    *stubInterpreter
	exec      *stubExecutor
	prompter  *stubPrompter
	presenter *stubPresenter
	svc       *Service
}

func newFixture(intent domain.Intent) *fixture {
	f := &fixture{
		store:     &stubStore{},
		interp:    &stubInterpreter{intent: intent},
		exec:      &stubExecutor{output: "nginx   1/1   Running"},
		prompter:  &stubPrompter{enabled: true},
		presenter: &stubPresenter{},
	}
	g := &gate.Gate{Binary: "kubectl", Executor: f.exec, Presenter: f.presenter, Logger: logger.NewNop()}
	f.svc = &Service{
		ContextStore: f.store,
		Interpreter:  f.interp,
		Gate:         g,
		Prompter:     f.prompter,
		Presenter:    f.presenter,
		Logger:       logger.NewNop(),
	}
	return f
}

func TestRunSafeCommand(t *testing.T) {
	f := newFixture(domain.CommandIntent("get pods", false))

	res, err := f.svc.Run(context.Background(), "list all pods")
	require.NoError(t, err)

	assert.Equal(t, "nginx   1/1   Running", res.Text)
	assert.Equal(t, domain.StateCompleted, res.Outcome.State)
	assert.True(t, res.Recorded)
	assert.Equal(t, []string{"kubectl get pods"}, f.exec.calls)
	assert.Equal(t, []string{"kubectl get pods"}, f.presenter.commands)
	assert.Empty(t, f.prompter.prompts, "safe commands never ask")
	assert.Equal(t, []record{{"list all pods", "kubectl get pods", "nginx   1/1   Running"}}, f.store.appended)
}

func TestRunDangerousDeclined(t *testing.T) {
	f := newFixture(domain.CommandIntent("delete namespace prod", true))
	f.prompter.answer = false

	res, err := f.svc.Run(context.Background(), "delete namespace prod")
	require.NoError(t, err)

	assert.Equal(t, "Operation cancelled by user.", res.Text)
	assert.Equal(t, domain.StateCancelled, res.Outcome.State)
	assert.Empty(t, f.exec.calls)
	require.Len(t, f.prompter.prompts, 1)
	assert.Contains(t, f.prompter.prompts[0], "Command to be executed: kubectl delete namespace prod")
	assert.Equal(t, []record{{"delete namespace prod", "kubectl delete namespace prod", "Operation cancelled by user."}}, f.store.appended)
}

func TestRunDangerousConfirmed(t *testing.T) {
	f := newFixture(domain.CommandIntent("delete namespace prod", true))
	f.prompter.answer = true
	f.exec.output = `namespace "prod" deleted`

	res, err := f.svc.Run(context.Background(), "delete namespace prod")
	require.NoError(t, err)
	assert.Equal(t, `namespace "prod" deleted`, res.Text)
	assert.Equal(t, []string{"kubectl delete namespace prod"}, f.exec.calls)
}

func TestRunNonInteractiveDeclines(t *testing.T) {
	f := newFixture(domain.CommandIntent("drain node-1", true))
	f.prompter.enabled = false
	f.prompter.answer = true

	res, err := f.svc.Run(context.Background(), "drain node-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateCancelled, res.Outcome.State)
	assert.Empty(t, f.prompter.prompts)
	assert.Empty(t, f.exec.calls)
}

func TestRunPromptErrorDeclines(t *testing.T) {
	f := newFixture(domain.CommandIntent("drain node-1", true))
	f.prompter.err = errors.New("EOF")

	res, err := f.svc.Run(context.Background(), "drain node-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateCancelled, res.Outcome.State)
	assert.Empty(t, f.exec.calls)
}

func TestRunAnswerRecordsNoCommand(t *testing.T) {
	f := newFixture(domain.AnswerIntent("A pod is the smallest deployable unit."))
	f.store.history, f.store.hasHistory = "User: q\nCommand: c\nResult: r", true

	res, err := f.svc.Run(context.Background(), "what is a pod")
	require.NoError(t, err)

	assert.Nil(t, res.Outcome)
	assert.Equal(t, "A pod is the smallest deployable unit.", res.Text)
	assert.Equal(t, 1, f.presenter.answers)
	assert.Empty(t, f.exec.calls)
	assert.True(t, f.interp.gotHas)
	assert.Equal(t, "User: q\nCommand: c\nResult: r", f.interp.gotHistory)
	assert.Equal(t, []record{{"what is a pod", "N/A", "A pod is the smallest deployable unit."}}, f.store.appended)
}

func TestRunInterpreterErrorRecordsNothing(t *testing.T) {
	f := newFixture(domain.Intent{})
	f.interp.err = &domain.InterpreterError{Stage: "backend", Err: errors.New("401 Unauthorized")}

	_, err := f.svc.Run(context.Background(), "list all pods")
	var ierr *domain.InterpreterError
	require.ErrorAs(t, err, &ierr)
	assert.Empty(t, f.exec.calls)
	assert.Empty(t, f.store.appended)
}

func TestRunUnparsedRecordsNothing(t *testing.T) {
	f := newFixture(domain.UnparsedIntent("hello"))

	res, err := f.svc.Run(context.Background(), "hi")
	assert.ErrorIs(t, err, domain.ErrUnparsedReply)
	assert.True(t, res.Intent.IsUnparsed())
	assert.Empty(t, f.exec.calls)
	assert.Empty(t, f.store.appended)
	assert.Zero(t, f.presenter.answers)
}

func TestRunAppendFailureIsNotFatal(t *testing.T) {
	f := newFixture(domain.CommandIntent("get pods", false))
	f.store.appendErr = errors.New("disk full")

	res, err := f.svc.Run(context.Background(), "list all pods")
	require.NoError(t, err)
	assert.False(t, res.Recorded)
	assert.Equal(t, "nginx   1/1   Running", res.Text)
}

func TestRunMissingDependencies(t *testing.T) {
	_, err := (&Service{}).Run(context.Background(), "q")
	assert.Error(t, err)
}
