package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fiscal-engine/internal/core"
	"fiscal-engine/internal/db"
	"fiscal-engine/internal/dispatch"
	"fiscal-engine/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Runs the overdue check and produces one period's declarations for a
// tenant. The engine itself is transport-agnostic; this binary is the
// smallest useful host for it.
//
// Environment: DATABASE_URL, TENANT_ID, PERIOD (YYYYMM, default: previous
// month), OUT_DIR (default ".").
func main() {
	_ = godotenv.Load()

	log, err := logger.New()
	if err != nil {
		fmt.Printf("logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	pool, err := db.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	tenantID, err := strconv.Atoi(os.Getenv("TENANT_ID"))
	if err != nil {
		log.Fatal("TENANT_ID must be set to a tenant id", zap.Error(err))
	}

	period, err := resolvePeriod(tenantID, os.Getenv("PERIOD"))
	if err != nil {
		log.Fatal("invalid PERIOD", zap.Error(err))
	}

	outDir := os.Getenv("OUT_DIR")
	if outDir == "" {
		outDir = "."
	}

	seqService := core.NewSequenceService(pool)
	invoiceService := core.NewInvoiceService(pool, seqService)
	declarations := core.NewDeclarationService(pool, core.NewExpenseFeed(pool))
	dispatcher := dispatch.New(log, dispatch.LogSink{Log: log})

	overdueEvents, err := invoiceService.MarkOverdue(ctx, tenantID)
	if err != nil {
		log.Fatal("overdue check", zap.Error(err))
	}
	dispatcher.Dispatch(ctx, overdueEvents)
	log.Info("overdue check complete", zap.Int("tenant_id", tenantID), zap.Int("transitioned", len(overdueEvents)))

	build := []func(context.Context, core.PeriodSelection) (core.Artifact, error){
		declarations.Purchases,
		declarations.Sales,
		declarations.VoidedDocuments,
	}
	for _, f := range build {
		artifact, err := f(ctx, period)
		if err != nil && !errors.Is(err, core.ErrEmptyPeriodSelection) {
			log.Fatal("declaration failed", zap.Error(err))
		}
		if errors.Is(err, core.ErrEmptyPeriodSelection) {
			log.Warn("period is empty, emitting header-only file",
				zap.String("report", artifact.Code))
		}
		path := filepath.Join(outDir, artifact.MachineName)
		if werr := os.WriteFile(path, []byte(artifact.Content), 0o644); werr != nil {
			log.Fatal("write artifact", zap.String("path", path), zap.Error(werr))
		}
		log.Info("declaration written",
			zap.String("report", artifact.Code),
			zap.String("file", path),
			zap.String("display_name", artifact.DisplayName))
	}

	summary, err := declarations.LiquidationSummary(ctx, period)
	if err != nil {
		log.Fatal("liquidation summary", zap.Error(err))
	}
	log.Info("liquidation summary",
		zap.String("period", summary.Period),
		zap.String("net_sales", summary.NetSales.StringFixed(2)),
		zap.String("vat_on_sales", summary.VATOnSales.StringFixed(2)),
		zap.String("vat_on_purchases", summary.VATOnPurchases.StringFixed(2)),
		zap.String("vat_payable", summary.VATPayable.StringFixed(2)))
}

// resolvePeriod parses PERIOD (YYYYMM) or defaults to the previous month.
func resolvePeriod(tenantID int, raw string) (core.PeriodSelection, error) {
	if raw == "" {
		prev := time.Now().AddDate(0, -1, 0)
		return core.PeriodOf(tenantID, prev.Year(), prev.Month()), nil
	}
	t, err := time.Parse("200601", raw)
	if err != nil {
		return core.PeriodSelection{}, fmt.Errorf("expected YYYYMM, got %q: %w", raw, err)
	}
	return core.PeriodOf(tenantID, t.Year(), t.Month()), nil
}
