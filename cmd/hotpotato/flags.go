package main

import (
	"os"
	"strconv"

	"github.com/inconshreveable/log15"
	"github.com/ngrok/hotpotato"
	"github.com/ngrok/hotpotato/internal/config"
	"github.com/urfave/cli/v2"
)

// exitUsage is the exit code for bad arguments or configuration. Anything
// that fails once the game is under way exits 1.
const exitUsage = 2

var commonFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Usage:   "YAML file to read settings from, before the command line is applied",
		Aliases: []string{"c"},
	},
	&cli.Int64Flag{
		Name:  "seed",
		Usage: "Seed for random choices. 0 seeds from the clock",
	},
	&cli.StringFlag{
		Name:  "log-level",
		Usage: "One of debug, info, warn, error, crit",
	},
}

func usageError(cctx *cli.Context, msg string) error {
	return cli.Exit("Usage: "+cctx.App.Name+" "+cctx.Command.Name+" "+cctx.Command.ArgsUsage+"\n"+msg, exitUsage)
}

// intArg parses positional argument i, leaving range checks to config
// validation.
func intArg(cctx *cli.Context, i int, name string) (int, error) {
	v, err := strconv.Atoi(cctx.Args().Get(i))
	if err != nil {
		return 0, usageError(cctx, "invalid "+name+": "+cctx.Args().Get(i))
	}
	return v, nil
}

// applyCommon lays the command line over the seed and log settings from the
// config file.
func applyCommon(cctx *cli.Context, seed *int64, lc *config.Log) {
	if cctx.IsSet("seed") {
		*seed = cctx.Int64("seed")
	}
	if cctx.IsSet("log-level") {
		lc.Level = cctx.String("log-level")
	}
}

func newLogger(lc config.Log) (log15.Logger, error) {
	lvl, err := lc.Lvl()
	if err != nil {
		return nil, err
	}
	l := log15.New()
	l.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stderr, log15.LogfmtFormat())))
	return l, nil
}

func roleOptions(l log15.Logger, seed int64) []hotpotato.Option {
	opts := []hotpotato.Option{hotpotato.WithLogger(l)}
	if seed != 0 {
		opts = append(opts, hotpotato.WithSeed(seed))
	}
	return opts
}
