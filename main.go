package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rubeniskov/traverse-json/cmd"
	"github.com/rubeniskov/traverse-json/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	logger.Sync()
	if code := cmd.ExitCode(err); code != 0 {
		os.Exit(code)
	}
}
