// Package executor runs generated cluster commands as child processes.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/shlex"

	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/ports"
)

// waitDelay bounds how long Wait lingers on pipes held open by grandchildren.
const waitDelay = time.Second

// KubectlExecutor runs a command line directly, without a shell.
type KubectlExecutor struct {
	timeout time.Duration
	log     ports.Logger
}

// NewKubectlExecutor builds an executor. A zero timeout disables the limit.
func NewKubectlExecutor(timeout time.Duration, log ports.Logger) *KubectlExecutor {
	return &KubectlExecutor{timeout: timeout, log: log}
}

// Execute implements ports.CommandExecutor. The command is split with POSIX
// shell-word rules; pipes, redirects and globs are passed through literally.
func (e *KubectlExecutor) Execute(ctx context.Context, command string) (domain.ExecutionResult, error) {
	args, err := shlex.Split(command)
	if err != nil {
		return domain.ExecutionResult{}, &domain.LaunchError{Command: command, Err: err}
	}
	if len(args) == 0 {
		return domain.ExecutionResult{}, &domain.LaunchError{Command: command, Err: errors.New("empty command")}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, args[0], args[1:]...)
	c.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if e.log != nil {
		e.log.Debug("executing command", map[string]interface{}{"argv": args})
	}

	start := time.Now()
	if err := c.Start(); err != nil {
		return domain.ExecutionResult{}, &domain.LaunchError{Command: command, Err: err}
	}
	err = c.Wait()

	result := domain.ExecutionResult{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: time.Since(start).Milliseconds(),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.ExitCode = -1
		return result, fmt.Errorf("%w after %s", domain.ErrCommandTimeout, e.timeout)
	}
	if ctx.Err() != nil {
		result.ExitCode = -1
		return result, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

var _ ports.CommandExecutor = (*KubectlExecutor)(nil)
