// Command seedcatalog loads the catalog and historical orders from an Excel workbook.
// Usage: go run ./cmd/seedcatalog -file "data/Business Analytics - Case Study Data.xlsx" [-reset]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"orderscan/internal/config"
	"orderscan/internal/logger"
	"orderscan/internal/repository/postgres"
	"orderscan/internal/seed"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := flag.String("file", "data/Business Analytics - Case Study Data.xlsx", "workbook to load")
	reset := flag.Bool("reset", false, "empty every seeded table first")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	zl, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	f, err := excelize.OpenFile(*xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	seeder := seed.NewSeeder(db, zl)
	if *reset {
		if err := seeder.Reset(ctx); err != nil {
			return err
		}
		zl.Info("tables emptied")
	}

	zl.Info("loading workbook", zap.String("file", *xlsxPath), zap.String("sheets", strings.Join(seed.SheetNames(), ", ")))
	var failed []string
	for _, res := range seeder.SeedWorkbook(ctx, f) {
		if res.Err != nil {
			failed = append(failed, res.Sheet)
		}
		if len(res.Skipped) > 0 {
			zl.Warn("ignored columns", zap.String("sheet", res.Sheet), zap.Strings("headers", res.Skipped))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("sheets failed: %s", strings.Join(failed, ", "))
	}
	zl.Info("database setup complete")
	return nil
}
