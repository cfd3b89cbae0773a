// Command narada is a thin CLI over the SDK: it opens and initializes
// browser windows, dispatches agent tasks and runs one-off extension actions,
// mainly as a smoke-testing and scripting aid.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Execute(ctx); err != nil {
		os.Exit(1)
	}
}
