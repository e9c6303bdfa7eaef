package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/doeshing/k8sllm/internal/app"
)

// RunQuery runs one cycle and prints its result followed by the separator.
func RunQuery(ctx context.Context, out io.Writer, container *app.Container, query string) error {
	if container.ConfigErr != nil {
		return container.ConfigErr
	}
	if container.SessionService == nil {
		return errors.New(ErrSessionUnavailable)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New(ErrQueryRequired)
	}

	res, err := container.SessionService.Run(ctx, query)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, res.Text+ResultSeparator)
	return nil
}

// ReadQuery prompts for a query when none was given on the command line.
func ReadQuery(container *app.Container) (string, error) {
	if container.Input == nil {
		return "", errors.New(ErrInputUnavailable)
	}
	line, err := container.Input.ReadLine(QueryPrompt)
	if err != nil {
		return "", fmt.Errorf("failed to read query: %w", err)
	}
	return line, nil
}
