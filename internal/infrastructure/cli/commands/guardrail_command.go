package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/k8sllm/internal/app"
	"github.com/doeshing/k8sllm/internal/application/gate"
	"github.com/doeshing/k8sllm/internal/infrastructure/cli/helpers"
)

// NewGuardrailCommand creates the guardrail command with enable/disable subcommands
func NewGuardrailCommand(container *app.Container) *cobra.Command {
	guardrailCmd := &cobra.Command{
		Use:   "guardrail",
		Short: "Manage command guardrails",
	}

	guardrailCmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Enable guardrail rules",
			RunE: func(cmd *cobra.Command, args []string) error {
				return setGuardrailState(cmd.Context(), cmd.OutOrStdout(), container, true)
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Disable guardrail rules (the model's danger flag still applies)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return setGuardrailState(cmd.Context(), cmd.OutOrStdout(), container, false)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show guardrail status",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showGuardrailStatus(cmd.Context(), cmd.OutOrStdout(), container)
			},
		},
		&cobra.Command{
			Use:   "check <command>",
			Short: "Evaluate a command against the rules without running it",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return checkCommand(cmd.OutOrStdout(), container, strings.Join(args, " "))
			},
		},
	)

	return guardrailCmd
}

// setGuardrailState enables or disables guardrails
func setGuardrailState(ctx context.Context, out io.Writer, container *app.Container, enabled bool) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.Security.Enabled = enabled

	if _, err := helpers.SaveConfigWithValidation(container, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "Guardrails %s successfully.\n", stateLabel(enabled))
	return nil
}

// showGuardrailStatus displays the current guardrail status
func showGuardrailStatus(ctx context.Context, out io.Writer, container *app.Container) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Fprintf(out, "Guardrails are currently %s.\n", stateLabel(cfg.IsSecurityEnabled()))
	if cfg.IsSecurityEnabled() {
		fmt.Fprintf(out, "Rules file: %s\n", cfg.Security.RulesFile)
		if container.Guardrail != nil {
			fmt.Fprintf(out, "Loaded: %d rules from %s\n", container.Guardrail.RuleCount(), container.Guardrail.Source())
		}
	}
	return nil
}

// checkCommand prints the assessment for one command.
func checkCommand(out io.Writer, container *app.Container, text string) error {
	if container.Guardrail == nil {
		return fmt.Errorf("guardrail unavailable")
	}
	command := gate.NormalizeCommand(container.Config.GetExecutionBinary(), text)
	assessment, err := container.Guardrail.Evaluate(command)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Command: %s\n", command)
	fmt.Fprintf(out, "Level:   %s\n", assessment.Level)
	fmt.Fprintf(out, "Action:  %s\n", assessment.Action)
	for _, reason := range assessment.Reasons {
		fmt.Fprintf(out, "  - %s\n", reason)
	}
	return nil
}

func stateLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
