package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/k8sllm/internal/app"
	"github.com/doeshing/k8sllm/internal/domain"
)

// NewContextCommand creates the context command with all subcommands
func NewContextCommand(container *app.Container) *cobra.Command {
	var asJSON bool

	contextCmd := &cobra.Command{
		Use:   "context",
		Short: "Inspect the stored conversation context",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "List stored interactions, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.ContextStore == nil {
				return errors.New(ErrContextStoreUnavailable)
			}
			records := container.ContextStore.Load(cmd.Context())
			if asJSON {
				return writeInteractionsJSON(cmd.OutOrStdout(), records)
			}
			writeInteractions(cmd.OutOrStdout(), records)
			return nil
		},
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")

	contextCmd.AddCommand(
		showCmd,
		&cobra.Command{
			Use:   "clear",
			Short: "Forget all stored interactions",
			RunE: func(cmd *cobra.Command, args []string) error {
				if container.ContextStore == nil {
					return errors.New(ErrContextStoreUnavailable)
				}
				if err := container.ContextStore.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear context: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), MsgContextCleared)
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the context store location",
			RunE: func(cmd *cobra.Command, args []string) error {
				if container.ContextStore == nil {
					return errors.New(ErrContextStoreUnavailable)
				}
				fmt.Fprintln(cmd.OutOrStdout(), container.ContextStore.Path())
				return nil
			},
		},
	)

	return contextCmd
}

func writeInteractions(out io.Writer, records []domain.Interaction) {
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoContextRecorded)
		return
	}
	for i, rec := range records {
		stamp := "-"
		if !rec.Timestamp.IsZero() {
			stamp = rec.Timestamp.Local().Format(domain.TimestampFormat)
		}
		fmt.Fprintf(out, "#%d %s\n", i+1, stamp)
		fmt.Fprintf(out, "  User:    %s\n", rec.Query)
		fmt.Fprintf(out, "  Command: %s\n", rec.Command)
		fmt.Fprintf(out, "  Result:  %s\n", rec.Result)
	}
}

func writeInteractionsJSON(out io.Writer, records []domain.Interaction) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode context: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
