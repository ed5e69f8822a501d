package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/stockcast/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("stockcast failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "stockcast",
		Usage: "Forecast demand and optimize stock levels from CSV files or the planning database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Usage:   "Emit JSON logs instead of console output",
				EnvVars: []string{"LOG_JSON"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Configure(c.String("log-level"), c.Bool("log-json"))
			return nil
		},
		Commands: []*cli.Command{
			forecastCommand(),
			optimizeCommand(),
			abcCommand(),
			importCommand(),
			planCommand(),
			migrateCommand(),
		},
	}
}
