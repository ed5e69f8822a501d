package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/ingest"
	"github.com/andresuchdata/stockcast/internal/repository/postgres"
	"github.com/andresuchdata/stockcast/internal/service"
	"github.com/andresuchdata/stockcast/internal/storage"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey{}, postgres.Wrap(sqlx.NewDb(db, "pgx")))
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*postgres.DB, error) {
	db, ok := c.Context.Value(dbKey{}).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return db, nil
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Create the planning tables if they do not exist",
		Flags:  []cli.Flag{newDBURLFlag()},
		Before: initDB,
		After:  closeDB,
		Action: func(c *cli.Context) error {
			db, err := dbFrom(c)
			if err != nil {
				return err
			}
			if err := db.EnsureSchema(c.Context); err != nil {
				return err
			}
			log.Info().Msg("schema is up to date")
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Load item, stock and demand CSV files into the planning database",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.StringFlag{
				Name:  "items",
				Usage: "Item CSV; current_stock becomes the stock level of the row's warehouse",
			},
			&cli.StringFlag{
				Name:  "history",
				Usage: "Demand CSV with an item_id column",
			},
			&cli.StringFlag{
				Name:  "warehouse",
				Usage: "Warehouse for rows without a warehouse_id",
			},
		},
		Before: initDB,
		After:  closeDB,
		Action: runImport,
	}
}

func runImport(c *cli.Context) error {
	if c.String("items") == "" && c.String("history") == "" {
		return fmt.Errorf("nothing to import: pass --items and/or --history")
	}
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	batch := service.ImportBatch{DefaultWarehouse: c.String("warehouse")}
	if path := c.String("items"); path != "" {
		if batch.Items, err = readFile(path, ingest.ReadItems); err != nil {
			return err
		}
	}
	if path := c.String("history"); path != "" {
		if batch.Demand, err = readFile(path, ingest.ReadDemand); err != nil {
			return err
		}
	}

	forecastCache, err := cache.NewForecastCache(config.Load().Cache)
	if err != nil {
		log.Warn().Err(err).Msg("forecast cache unavailable, cached forecasts are not invalidated")
	}

	_, err = service.NewImportService(postgres.NewImportRepository(db), forecastCache).Import(c.Context, batch)
	return err
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Optimize every stocked item of a warehouse and store the run",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.StringFlag{
				Name:     "warehouse",
				Usage:    "Warehouse id",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "export",
				Usage: "Upload the run report to object storage (STORAGE_* settings)",
			},
			outputFlag(),
		},
		Before: initDB,
		After:  closeDB,
		Action: runPlan,
	}
}

func runPlan(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	cfg := config.Load()

	forecastParams, err := cfg.Forecast.Parameters()
	if err != nil {
		return err
	}

	var store storage.ObjectStorage
	if c.Bool("export") {
		client, err := storage.NewMinioClient(c.Context, storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			return err
		}
		store = client
	}

	svc := service.NewPlanningService(postgres.NewPlanningRepository(db), nil, store, service.AllowAll{}, service.Options{
		Forecast:     forecastParams,
		Optimizer:    cfg.Optimizer.Parameters(),
		HorizonDays:  cfg.Forecast.HorizonDays,
		HistoryDays:  cfg.Optimizer.HistoryDays,
		BatchWorkers: cfg.Optimizer.BatchWorkers,
		ReportPrefix: cfg.Storage.Prefix,
	})

	report, err := svc.PlanWarehouse(c.Context, c.String("warehouse"))
	if err != nil {
		return err
	}
	for _, f := range report.Failures {
		log.Warn().Str("item_id", f.ItemID).Str("error", f.Error).Msg("item not planned")
	}
	log.Info().
		Str("run_id", report.Run.ID).
		Int("items", report.Run.Items).
		Int("failed", report.Run.Failed).
		Str("report_key", report.Run.ReportKey).
		Msg("plan run stored")

	return withOutput(c, func(w io.Writer) error {
		return ingest.WriteOptimizationResults(w, report.Results)
	})
}
