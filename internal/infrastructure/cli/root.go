package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/doeshing/k8sllm/internal/app"
	"github.com/doeshing/k8sllm/internal/infrastructure/cli/commands"
)

// skipContainerAnnotation marks commands that run without the dependency graph.
const skipContainerAnnotation = "k8sllm/skip-container"

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. The container is built once flags
// are parsed, so --config and --debug apply to every subcommand. The returned
// func releases the container and must run after Execute, whether or not it failed.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, func() error) {
	root, container := newRootCmd(ctx, opts)
	return root, container.Close
}

func newRootCmd(ctx context.Context, opts Options) (*cobra.Command, *app.Container) {
	var (
		configPath   string
		debug        bool
		optionQuery  string
		clearContext bool
	)
	container := &app.Container{}

	root := &cobra.Command{
		Use:   "k8sllm [query]",
		Short: "k8sllm - natural language interface for Kubernetes",
		Long: "k8sllm turns natural-language requests into kubectl commands, " +
			"asks before running dangerous ones, and answers general Kubernetes questions.",
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipContainerAnnotation] == "true" {
				return nil
			}
			built, err := app.BuildContainer(cmd.Context(), app.Options{
				ConfigPath: configPath,
				Verbose:    opts.Verbose || debug,
			})
			if err != nil {
				return err
			}
			*container = *built
			attachTerminal(container, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if clearContext {
				if err := container.ContextStore.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear context: %w", err)
				}
				fmt.Fprintln(out, commands.MsgContextCleared)
				return nil
			}

			query := strings.Join(args, " ")
			if query == "" {
				query = optionQuery
			}
			if query == "" {
				if container.ConfigErr != nil {
					return container.ConfigErr
				}
				line, err := commands.ReadQuery(container)
				if err != nil {
					return err
				}
				query = line
			}
			return commands.RunQuery(cmd.Context(), out, container, query)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetContext(ctx)

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.k8sllm/config.yaml, or $K8SLLM_CONFIG)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable verbose logging")
	root.Flags().StringVarP(&optionQuery, "query", "q", "", "Natural language query for Kubernetes operations")
	root.Flags().BoolVarP(&clearContext, "clear-context", "c", false, "Clear the conversation context")

	version := commands.NewVersionCommand()
	version.Annotations = map[string]string{skipContainerAnnotation: "true"}

	root.AddCommand(
		commands.NewChatCommand(container),
		commands.NewContextCommand(container),
		commands.NewConfigCommand(container),
		commands.NewGuardrailCommand(container),
		commands.NewDoctorCommand(container),
		version,
	)
	return root, container
}

// attachTerminal connects the container's interactive ports to stdio.
func attachTerminal(container *app.Container, in io.Reader, out, errOut io.Writer) {
	prompter := NewPrompter(in, out)
	renderer := NewRenderer(out)

	container.Input = prompter
	if container.Gate != nil {
		container.Gate.Presenter = renderer
	}
	if container.SessionService == nil {
		return
	}
	container.SessionService.Prompter = prompter
	container.SessionService.Presenter = renderer
	if isTerminal(errOut) && container.Interpreter != nil {
		container.SessionService.Interpreter = spinningInterpreter{
			next:    container.Interpreter,
			spinner: NewSpinner(errOut),
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
