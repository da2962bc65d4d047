package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/saas-management-techmomentum/nova-ware-sub000/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "forecast",
		Usage: "Run inventory restock forecasts against exported or stored snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.UseJSON()
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Compute the full forecast report",
				Flags:  append(sourceFlags(), outputFlags()...),
				Action: runReport,
			},
			{
				Name:   "sufficiency",
				Usage:  "Report whether the history is long enough to forecast",
				Flags:  sourceFlags(),
				Action: runSufficiency,
			},
			{
				Name:  "ingest",
				Usage: "Load snapshot exports into the inventory tables",
				Flags: append(fileSourceFlags(),
					newDBURLFlag(true),
					newWarehouseFlag(),
				),
				Action: runIngest,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("forecast command failed")
	}
}
