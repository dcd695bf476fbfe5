package main

import (
	"fmt"

	"github.com/ngrok/hotpotato"
	"github.com/ngrok/hotpotato/internal/config"
	"github.com/urfave/cli/v2"
)

var playerCmd = &cli.Command{
	Name:      "player",
	Usage:     "Join a game and relay the potato until the coordinator ends it",
	ArgsUsage: "<coordinatorAddress> <coordinatorPort>",
	Flags: append([]cli.Flag{
		&cli.IntFlag{
			Name:  "listen-port",
			Usage: "Port to accept neighbor connections on. 0 picks any free port",
		},
	}, commonFlags...),
	Action: playerAction,
}

func playerConfig(cctx *cli.Context) (*config.Player, error) {
	if cctx.NArg() != 2 {
		return nil, usageError(cctx, "expected 2 arguments, got "+fmt.Sprint(cctx.NArg()))
	}
	cfg, err := config.LoadPlayer(cctx.String("config"))
	if err != nil {
		return nil, cli.Exit(err, exitUsage)
	}
	cfg.CoordinatorAddress = cctx.Args().Get(0)
	if cfg.CoordinatorPort, err = intArg(cctx, 1, "coordinator port"); err != nil {
		return nil, err
	}
	if cctx.IsSet("listen-port") {
		cfg.ListenPort = cctx.Int("listen-port")
	}
	applyCommon(cctx, &cfg.Seed, &cfg.Log)
	if err := cfg.Validate(); err != nil {
		return nil, cli.Exit(err, exitUsage)
	}
	return cfg, nil
}

func playerAction(cctx *cli.Context) error {
	cfg, err := playerConfig(cctx)
	if err != nil {
		return err
	}
	l, err := newLogger(cfg.Log)
	if err != nil {
		return cli.Exit(err, exitUsage)
	}

	opts := append(roleOptions(l, cfg.Seed), hotpotato.WithListenPort(cfg.ListenPort))
	p := hotpotato.NewPlayer(opts...)
	defer p.Close()

	if err := p.Start(cctx.Context, cfg.CoordinatorAddress, cfg.CoordinatorPort); err != nil {
		return err
	}
	out := cctx.App.Writer
	fmt.Fprintf(out, "Connected as player %d out of %d total players\n", p.ID(), p.Count())

	msg, err := p.Play()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, msg)
	return nil
}
