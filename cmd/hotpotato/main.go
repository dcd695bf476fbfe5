package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	// Set up a context that is canceled when the command is interrupted.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case <-interrupt:
			cancel()
			fmt.Fprintln(os.Stderr, "Received interrupt signal, shutting down...")
		case <-ctx.Done():
		}
		// Allow any further SIGTERM or SIGINT to kill process.
		signal.Stop(interrupt)
	}()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  path.Base(os.Args[0]),
		Usage: "Play hot potato over TCP",
		Description: "Start one coordinator, then numPlayers players pointed at it. " +
			"The coordinator prints the trace of the potato once it runs out of hops.",
		Commands: []*cli.Command{
			coordinatorCmd,
			playerCmd,
		},
	}
}
