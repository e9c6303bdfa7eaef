package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/k8sllm/internal/app"
)

// NewChatCommand creates a long-lived session that reads one query per line.
func NewChatCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session (exit, quit or Ctrl-D to leave)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, container)
		},
	}
}

func runChat(cmd *cobra.Command, container *app.Container) error {
	if container.ConfigErr != nil {
		return container.ConfigErr
	}
	if container.Input == nil {
		return errors.New(ErrInputUnavailable)
	}

	out := cmd.OutOrStdout()
	printBanner(out, container)

	ctx := cmd.Context()
	for ctx.Err() == nil {
		line, err := container.Input.ReadLine(ChatPrompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read query: %w", err)
		}

		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if err := RunQuery(ctx, out, container, line); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	}
	return nil
}

func printBanner(out io.Writer, container *app.Container) {
	fmt.Fprintln(out, "k8sllm interactive session. Type exit or quit to leave.")
	if container.KubeReader == nil {
		return
	}
	status, err := container.KubeReader.Current()
	if err != nil {
		return
	}
	fmt.Fprintf(out, "Kubernetes context: %s (namespace %s)\n", status.Context, status.Namespace)
}
