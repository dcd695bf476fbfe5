package main

import (
	"fmt"

	"github.com/ngrok/hotpotato"
	"github.com/ngrok/hotpotato/internal/config"
	"github.com/urfave/cli/v2"
)

var coordinatorCmd = &cli.Command{
	Name:      "coordinator",
	Usage:     "Run the game: admit players, release the potato and print its trace",
	ArgsUsage: "<port> <numPlayers> <numHops>",
	Flags:     commonFlags,
	Action:    coordinatorAction,
}

func coordinatorConfig(cctx *cli.Context) (*config.Coordinator, error) {
	if cctx.NArg() != 3 {
		return nil, usageError(cctx, "expected 3 arguments, got "+fmt.Sprint(cctx.NArg()))
	}
	cfg, err := config.LoadCoordinator(cctx.String("config"))
	if err != nil {
		return nil, cli.Exit(err, exitUsage)
	}
	if cfg.Port, err = intArg(cctx, 0, "port"); err != nil {
		return nil, err
	}
	if cfg.Players, err = intArg(cctx, 1, "number of players"); err != nil {
		return nil, err
	}
	if cfg.Hops, err = intArg(cctx, 2, "number of hops"); err != nil {
		return nil, err
	}
	applyCommon(cctx, &cfg.Seed, &cfg.Log)
	if err := cfg.Validate(); err != nil {
		return nil, cli.Exit(err, exitUsage)
	}
	return cfg, nil
}

func coordinatorAction(cctx *cli.Context) error {
	cfg, err := coordinatorConfig(cctx)
	if err != nil {
		return err
	}
	l, err := newLogger(cfg.Log)
	if err != nil {
		return cli.Exit(err, exitUsage)
	}

	opts := append(roleOptions(l, cfg.Seed), hotpotato.WithGameOverMessage(cfg.GameOver))
	c, err := hotpotato.NewCoordinator(cfg.Port, cfg.Players, opts...)
	if err != nil {
		return cli.Exit(err, exitUsage)
	}
	defer c.Close()

	out := cctx.App.Writer
	fmt.Fprintf(out, "Potato Coordinator\nPlayers = %d\nHops = %d\n", cfg.Players, cfg.Hops)
	final, err := c.Run(cctx.Context, cfg.Hops)
	if final != nil && final.IsValid() {
		fmt.Fprintf(out, "Trace of potato:\n%s\n", final)
	}
	return err
}
