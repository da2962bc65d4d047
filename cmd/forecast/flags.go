package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

func newDBURLFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: required,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newWarehouseFlag() *cli.Int64Flag {
	return &cli.Int64Flag{
		Name:    "warehouse-id",
		Usage:   "Warehouse the snapshot belongs to",
		EnvVars: []string{"WAREHOUSE_ID"},
	}
}

func fileSourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "items",
			Usage: "Inventory export file (csv, xlsx or json)",
		},
		&cli.StringFlag{
			Name:  "transactions",
			Usage: "Transaction export file (csv, xlsx or json)",
		},
		&cli.StringFlag{
			Name:  "items-key",
			Usage: "Object key of the inventory export in the storage bucket",
		},
		&cli.StringFlag{
			Name:  "transactions-key",
			Usage: "Object key of the transaction export in the storage bucket",
		},
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "Bucket prefix searched for the latest exports when keys are not given",
		},
		&cli.StringFlag{
			Name:  "drive-folder-id",
			Usage: "Google Drive folder holding the exports",
		},
		&cli.BoolFlag{
			Name:  "drive",
			Usage: "Load the exports from the configured DRIVE_FOLDER_ID",
		},
		&cli.StringFlag{
			Name:  "drive-folder-path",
			Usage: "Google Drive folder path, resolved when no folder id is given",
		},
	}
}

func sourceFlags() []cli.Flag {
	return append(fileSourceFlags(),
		newDBURLFlag(false),
		newWarehouseFlag(),
		&cli.StringFlag{
			Name:  "since",
			Usage: "First day of history to load from the database (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "as-of",
			Usage: "Forecast reference day (YYYY-MM-DD), defaults to the latest transaction day",
		},
	)
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "top-n",
			Usage:   "Length of the best-seller and slow-mover lists",
			EnvVars: []string{"FORECAST_TOP_N"},
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Report format (json, csv, xlsx)",
			Value: "json",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "Write the report to this file instead of stdout",
		},
		&cli.StringFlag{
			Name:  "upload-key",
			Usage: "Also upload the report to the storage bucket under this key",
		},
	}
}

// parseDayFlag reads an optional YYYY-MM-DD flag as a UTC day.
func parseDayFlag(c *cli.Context, name string) (*time.Time, error) {
	raw := c.String(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", name, raw, err)
	}
	return &t, nil
}
