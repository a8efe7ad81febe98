package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/rgdevment/scam-registry/internal/app"
	"github.com/rgdevment/scam-registry/internal/config"
	"github.com/rgdevment/scam-registry/internal/platform/logger"
)

func main() {
	identifier := flag.String("identifier", "", "The identifier to re-score (phone, UPI ID, website or email)")
	idType := flag.String("type", "", "Identifier type; inferred from the value when empty")
	flag.Parse()

	if *identifier == "" {
		log.Fatal("You must provide an identifier.\nUsage: go run ./cmd/worker -identifier=+911401234567 [-type=phone]")
	}

	cfg, _, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Re-scoring identifier", zap.String("identifier", *identifier))

	application, err := app.New(context.Background(), cfg, zapLogger, false)
	if err != nil {
		zapLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := application.Service.Rescore(ctx, *identifier, *idType)
	if err != nil {
		zapLogger.Fatal("Re-scoring failed", zap.Error(err))
	}

	if result.Risk == nil {
		zapLogger.Info("No reports on file", zap.String("identifier", result.Identifier))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Identifier  string `json:"identifier"`
		ReportCount int    `json:"report_count"`
		Risk        any    `json:"risk"`
	}{result.Identifier, result.ReportCount, result.Risk}); err != nil {
		zapLogger.Fatal("Failed to print result", zap.Error(err))
	}
}
