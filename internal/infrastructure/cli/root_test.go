package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/k8sllm/internal/domain"
)

type cliEnv struct {
	dir        string
	configPath string
}

// newCLIEnv isolates HOME and writes a config that points the model at baseURL
// and runs commands through echo instead of kubectl.
func newCLIEnv(t *testing.T, baseURL string) cliEnv {
	t.Helper()
	return newCLIEnvWith(t, baseURL, "echo", "json")
}

func newCLIEnvWith(t *testing.T, baseURL, binary, backend string) cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("K8SLLM_CONFIG", "")

	configPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`config_format_version: "1"
llm:
  provider: openai
  base_url: %s
  api_key: test-key
  model: deepseek-coder
  max_tokens: 256
  response_language: English
context:
  backend: %s
  path: %s
execution:
  binary: %s
  timeout: 5
security:
  enabled: true
  rules_file: %s
`, baseURL, backend, filepath.Join(dir, "context."+backend), binary, filepath.Join(dir, "missing-guardrail.yaml"))
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o600))
	return cliEnv{dir: dir, configPath: configPath}
}

func (e cliEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root, closeContainer := NewRootCmd(context.Background(), Options{})
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := root.Execute()
	require.NoError(t, closeContainer())
	return out.String(), errOut.String(), err
}

func (e cliEnv) storedInteractions(t *testing.T) []domain.Interaction {
	t.Helper()
	out, _, err := e.run(t, "", "context", "show", "--json")
	require.NoError(t, err)
	var records []domain.Interaction
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	return records
}

func modelServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRootRunsSafeCommandAndRecordsIt(t *testing.T) {
	srv := modelServer(t, "COMMAND: get pods\nDANGEROUS: false")
	env := newCLIEnv(t, srv.URL)

	out, _, err := env.run(t, "", "list", "pods")
	require.NoError(t, err)
	assert.Contains(t, out, "Command to execute:")
	assert.Contains(t, out, " echo get pods")
	assert.Contains(t, out, "get pods\n")
	assert.Contains(t, out, "-------------------")

	records := env.storedInteractions(t)
	require.Len(t, records, 1)
	assert.Equal(t, "list pods", records[0].Query)
	assert.Equal(t, "echo get pods", records[0].Command)
}

// writeMarkerBinary creates an executable that records each invocation in a
// marker file, so tests can tell whether a command ran.
func writeMarkerBinary(t *testing.T, dir string) (string, string) {
	t.Helper()
	marker := filepath.Join(dir, "ran")
	script := filepath.Join(dir, "fake-kubectl")
	body := fmt.Sprintf("#!/bin/sh\necho \"$@\" >> %q\necho done\n", marker)
	require.NoError(t, os.WriteFile(script, []byte(body), 0o700))
	return script, marker
}

func TestRootDeclinedDangerousCommand(t *testing.T) {
	srv := modelServer(t, "COMMAND: delete pod web\nDANGEROUS: true")
	binDir := t.TempDir()
	binary, marker := writeMarkerBinary(t, binDir)
	env := newCLIEnvWith(t, srv.URL, binary, "json")

	out, _, err := env.run(t, "n\n", "-q", "delete the web pod")
	require.NoError(t, err)
	assert.Contains(t, out, "Please confirm you want to proceed (y/n): ")
	assert.Contains(t, out, domain.CancelledMessage)
	assert.NoFileExists(t, marker, "declined command must not run")

	records := env.storedInteractions(t)
	require.Len(t, records, 1)
	assert.Equal(t, domain.CancelledMessage, records[0].Result)
	assert.Equal(t, binary+" delete pod web", records[0].Command)
}

func TestRootConfirmedDangerousCommandRuns(t *testing.T) {
	srv := modelServer(t, "COMMAND: delete pod web\nDANGEROUS: true")
	binDir := t.TempDir()
	binary, marker := writeMarkerBinary(t, binDir)
	env := newCLIEnvWith(t, srv.URL, binary, "json")

	out, _, err := env.run(t, "y\n", "delete the web pod")
	require.NoError(t, err)
	assert.Contains(t, out, "done")

	ran, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "delete pod web\n", string(ran))
}

func TestRootAnswer(t *testing.T) {
	srv := modelServer(t, "ANSWER: A pod is the smallest deployable unit.")
	env := newCLIEnv(t, srv.URL)

	out, _, err := env.run(t, "", "what is a pod")
	require.NoError(t, err)
	assert.Contains(t, out, "Answer:")
	assert.Contains(t, out, "A pod is the smallest deployable unit.")
}

func TestRootPromptsForQuery(t *testing.T) {
	srv := modelServer(t, "ANSWER: yes")
	env := newCLIEnv(t, srv.URL)

	out, _, err := env.run(t, "is the cluster healthy\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Enter your Kubernetes query: ")
	assert.Contains(t, out, "yes")
}

func TestRootClearContext(t *testing.T) {
	srv := modelServer(t, "ANSWER: ok")
	env := newCLIEnv(t, srv.URL)

	_, _, err := env.run(t, "", "hello")
	require.NoError(t, err)

	out, _, err := env.run(t, "", "-c")
	require.NoError(t, err)
	assert.Equal(t, "Context cleared successfully.\n", out)

	out, _, err = env.run(t, "", "context", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No context recorded yet.")
}

func TestChatLoopContinuesAfterErrors(t *testing.T) {
	srv := modelServer(t, "I am not following the format")
	env := newCLIEnv(t, srv.URL)

	out, errOut, err := env.run(t, "first\n\nsecond\nexit\nthird\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "k8sllm interactive session")
	assert.Equal(t, 2, strings.Count(errOut, "error:"), "each unparsed reply is reported and the loop continues")
}

func TestContainerClosedAfterFailedCycle(t *testing.T) {
	srv := modelServer(t, "no markers here")
	env := newCLIEnvWith(t, srv.URL, "echo", domain.BackendSQLite)

	root, container := newRootCmd(context.Background(), Options{})
	root.SetIn(strings.NewReader(""))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", env.configPath, "list", "pods"})
	require.Error(t, root.Execute())

	store := container.ContextStore
	require.NotNil(t, store)
	require.NoError(t, store.Append(context.Background(), "q", "c", "r"), "store is open until the container is closed")

	require.NoError(t, container.Close())
	assert.Error(t, store.Append(context.Background(), "q", "c", "r"), "append after close must fail")
}

func TestGuardrailCheckAndStatus(t *testing.T) {
	env := newCLIEnv(t, "http://127.0.0.1:1")

	out, _, err := env.run(t, "", "guardrail", "check", "delete", "namespace", "kube-system")
	require.NoError(t, err)
	assert.Contains(t, out, "Command: echo delete namespace kube-system")
	assert.Contains(t, out, "Action:  block")

	out, _, err = env.run(t, "", "guardrail", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Guardrails are currently enabled.")
	assert.Contains(t, out, "from embedded")

	_, _, err = env.run(t, "", "guardrail", "disable")
	require.NoError(t, err)
	out, _, err = env.run(t, "", "guardrail", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Guardrails are currently disabled.")
}

func TestConfigGetSetDiff(t *testing.T) {
	env := newCLIEnv(t, "http://127.0.0.1:1")

	out, _, err := env.run(t, "", "config", "get", "llm.api_key")
	require.NoError(t, err)
	assert.NotContains(t, out, "test-key", "api key must be masked")

	_, _, err = env.run(t, "", "config", "set", "execution.timeout", "45")
	require.NoError(t, err)
	out, _, err = env.run(t, "", "config", "get", "execution.timeout")
	require.NoError(t, err)
	assert.Equal(t, "45\n", out)

	_, _, err = env.run(t, "", "config", "set", "execution.tiemout", "45")
	assert.Error(t, err)

	out, _, err = env.run(t, "", "config", "diff")
	require.NoError(t, err)
	assert.Contains(t, out, "TimeoutSeconds")

	out, _, err = env.run(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, env.configPath+"\n", out)
}

func TestVersionSkipsContainer(t *testing.T) {
	env := newCLIEnv(t, "http://127.0.0.1:1")
	require.NoError(t, os.WriteFile(env.configPath, []byte("llm: [broken"), 0o600))

	out, _, err := env.run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "k8sllm version")
}

func TestQueryFailsOnBrokenConfig(t *testing.T) {
	env := newCLIEnv(t, "http://127.0.0.1:1")
	require.NoError(t, os.WriteFile(env.configPath, []byte("llm: [broken"), 0o600))

	_, _, err := env.run(t, "", "list", "pods")
	assert.Error(t, err)
}
