package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/markm-portfolio/repoindex/internal/cli"
	rierrors "github.com/markm-portfolio/repoindex/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := cli.New(os.Stderr, cli.LogInfo).RootCommand().ExecuteContext(ctx)
	code := rierrors.ExitCode(err)
	if code != 0 && code != 130 {
		fmt.Fprintln(os.Stderr, rierrors.UserMessage(err))
	}
	os.Exit(code)
}
