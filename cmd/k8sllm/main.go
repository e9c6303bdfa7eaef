package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/doeshing/k8sllm/internal/infrastructure/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, closeContainer := cli.NewRootCmd(ctx, cli.Options{Verbose: isVerbose()})
	err := root.ExecuteContext(ctx)
	if closeErr := closeContainer(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func isVerbose() bool {
	value := os.Getenv("K8SLLM_DEBUG")
	return strings.EqualFold(value, "1") || strings.EqualFold(value, "true")
}
