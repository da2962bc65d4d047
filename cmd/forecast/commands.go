package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/cache"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/config"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/drive"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/export"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/forecast"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/repository"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/repository/postgres"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/service"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/snapshot"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/storage"
	"github.com/saas-management-techmomentum/nova-ware-sub000/pkg/logger"
	"github.com/urfave/cli/v2"
)

// snapshotSource is either an in-memory export or a database repository.
type snapshotSource struct {
	items   []domain.InventoryItem
	records []domain.RawTransaction
	repo    repository.SnapshotRepository
	db      *sql.DB
}

func (s *snapshotSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func openDB(ctx context.Context, dbURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// loadExports reads an items and a transactions export from local files,
// the storage bucket or a Drive folder, in that order of preference.
func loadExports(c *cli.Context, cfg *config.Config) ([]domain.InventoryItem, []domain.RawTransaction, bool, error) {
	ctx := c.Context

	switch {
	case c.String("items") != "" || c.String("transactions") != "":
		if c.String("items") == "" || c.String("transactions") == "" {
			return nil, nil, false, fmt.Errorf("--items and --transactions must be given together")
		}
		items, err := snapshot.LoadItemsFile(c.String("items"))
		if err != nil {
			return nil, nil, false, err
		}
		records, err := snapshot.LoadTransactionsFile(c.String("transactions"))
		if err != nil {
			return nil, nil, false, err
		}
		return items, records, true, nil

	case c.String("items-key") != "" || c.String("transactions-key") != "" || c.IsSet("prefix"):
		client, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			return nil, nil, false, err
		}
		itemsKey, txKey := c.String("items-key"), c.String("transactions-key")
		if itemsKey == "" || txKey == "" {
			if !c.IsSet("prefix") {
				return nil, nil, false, fmt.Errorf("--items-key and --transactions-key must be given together")
			}
			if itemsKey, txKey, err = storage.LatestExports(ctx, client, c.String("prefix")); err != nil {
				return nil, nil, false, err
			}
		}
		items, err := loadItemsObject(ctx, client, itemsKey)
		if err != nil {
			return nil, nil, false, err
		}
		records, err := loadTransactionsObject(ctx, client, txKey)
		if err != nil {
			return nil, nil, false, err
		}
		return items, records, true, nil

	case c.String("drive-folder-id") != "" || c.String("drive-folder-path") != "" || c.Bool("drive"):
		svc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, nil, false, err
		}
		folderID := c.String("drive-folder-id")
		if folderID == "" && c.String("drive-folder-path") == "" {
			folderID = cfg.Drive.FolderID
		}
		if folderID == "" {
			if folderID, err = svc.FindFolderByPath(ctx, c.String("drive-folder-path")); err != nil {
				return nil, nil, false, err
			}
		}
		items, records, err := drive.NewSnapshotSource(svc).Load(ctx, folderID)
		if err != nil {
			return nil, nil, false, err
		}
		return items, records, true, nil
	}

	return nil, nil, false, nil
}

func loadItemsObject(ctx context.Context, store storage.ObjectStorage, key string) ([]domain.InventoryItem, error) {
	data, err := store.GetObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return snapshot.LoadItemsBytes(key, data)
}

func loadTransactionsObject(ctx context.Context, store storage.ObjectStorage, key string) ([]domain.RawTransaction, error) {
	data, err := store.GetObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return snapshot.LoadTransactionsBytes(key, data)
}

func loadSource(c *cli.Context, cfg *config.Config) (*snapshotSource, error) {
	items, records, ok, err := loadExports(c, cfg)
	if err != nil {
		return nil, err
	}
	if ok {
		logger.Log.Info().
			Int("items", len(items)).
			Int("transactions", len(records)).
			Msg("loaded snapshot exports")
		return &snapshotSource{items: items, records: records}, nil
	}

	if c.String("db-url") == "" {
		return nil, fmt.Errorf("no snapshot source: pass export files, storage keys, a drive folder or --db-url")
	}
	db, err := openDB(c.Context, c.String("db-url"))
	if err != nil {
		return nil, err
	}
	repo := repository.NewSnapshotRepository(postgres.Wrap(sqlx.NewDb(db, "pgx")))
	return &snapshotSource{repo: repo, db: db}, nil
}

func newEngine(cfg *config.Config) *forecast.Engine {
	return forecast.NewEngine(
		forecast.ConfigFromSettings(cfg.Forecast),
		forecast.WithLogger(logger.Log),
	)
}

func buildReport(c *cli.Context, cfg *config.Config, src *snapshotSource) (*domain.ForecastReport, error) {
	asOf, err := parseDayFlag(c, "as-of")
	if err != nil {
		return nil, err
	}

	svc := service.NewForecastService(src.repo, cache.NewNoopForecastCache(), newEngine(cfg))

	if src.repo == nil {
		return svc.Evaluate(c.Context, domain.EvaluateRequest{
			Items:        src.items,
			Transactions: src.records,
			AsOf:         asOf,
			TopN:         c.Int("top-n"),
		})
	}

	since, err := parseDayFlag(c, "since")
	if err != nil {
		return nil, err
	}
	filter := domain.ForecastFilter{
		Since: since,
		AsOf:  asOf,
		TopN:  c.Int("top-n"),
	}
	if c.IsSet("warehouse-id") {
		id := c.Int64("warehouse-id")
		filter.WarehouseID = &id
	}
	return svc.GetReport(c.Context, filter)
}

func runReport(c *cli.Context) error {
	cfg := config.Load()

	format, err := export.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	src, err := loadSource(c, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	report, err := buildReport(c, cfg, src)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}
	if err := export.Write(out, report, format); err != nil {
		return err
	}

	if key := c.String("upload-key"); key != "" {
		client, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			return err
		}
		data, err := export.Encode(report, format)
		if err != nil {
			return err
		}
		if err := client.UploadObject(c.Context, key, data); err != nil {
			return err
		}
		logger.Log.Info().Str("key", key).Msg("report uploaded")
	}

	logger.Log.Info().
		Int("predictions", len(report.Predictions)).
		Int("skipped", report.SkippedTransactions).
		Bool("sufficient", report.Sufficiency.HasSufficientData).
		Msg("forecast complete")
	return nil
}

func runSufficiency(c *cli.Context) error {
	cfg := config.Load()

	src, err := loadSource(c, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	var result domain.DataSufficiencyResult
	if src.repo == nil {
		engine := newEngine(cfg)
		normalized := engine.Normalize(src.records)
		result = engine.EvaluateDataSufficiency(normalized.Events)
	} else {
		report, err := buildReport(c, cfg, src)
		if err != nil {
			return err
		}
		result = report.Sufficiency
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runIngest(c *cli.Context) error {
	cfg := config.Load()
	ctx := c.Context

	items, records, ok, err := loadExports(c, cfg)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no exports to ingest: pass export files, storage keys or a drive folder")
	}

	normalized := newEngine(cfg).Normalize(records)
	if normalized.Skipped > 0 {
		logger.Log.Warn().
			Int("skipped", normalized.Skipped).
			Interface("reasons", normalized.SkipReasons).
			Msg("some transactions could not be normalized")
	}

	db, err := openDB(ctx, c.String("db-url"))
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repository.NewIngestRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := repo.Import(ctx, c.Int64("warehouse-id"), items, normalized.Events); err != nil {
		return err
	}

	if forecastCache, err := cache.NewForecastCache(cfg.Cache); err != nil {
		logger.Log.Warn().Err(err).Msg("forecast cache unavailable, skipping invalidation")
	} else if err := forecastCache.InvalidateAll(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("forecast cache invalidation failed")
	}

	logger.Log.Info().
		Int("items", len(items)).
		Int("transactions", len(normalized.Events)).
		Int64("warehouse_id", c.Int64("warehouse-id")).
		Msg("ingest complete")
	return nil
}
