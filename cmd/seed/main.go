// Command seed writes a starter menu, the business settings and one employee
// under fixed ids, so running it twice leaves the same documents behind.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-pos-server/internal/app/api"
	catalogmirror "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/adapters/mirror"
	catalogdomain "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/adapters/credentials"
	directorymirror "github.com/Apurer/go-gin-pos-server/internal/domains/directory/adapters/mirror"
	directorydomain "github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	settingsmirror "github.com/Apurer/go-gin-pos-server/internal/domains/settings/adapters/mirror"
	settingsdomain "github.com/Apurer/go-gin-pos-server/internal/domains/settings/domain"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
)

var starterMenu = []catalogdomain.Item{
	{ID: "burger", Name: "Burger", UnitPrice: decimal.RequireFromString("8.50"), Category: catalogdomain.CategoryMain},
	{ID: "fries", Name: "Fries", UnitPrice: decimal.RequireFromString("3.25"), Category: catalogdomain.CategorySide},
	{ID: "soda", Name: "Soda", UnitPrice: decimal.RequireFromString("1.75"), Category: catalogdomain.CategoryDrink},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.DocstoreDriver == api.DriverMemory {
		log.Fatal("POSTGRES_DSN or SQLITE_PATH must be set; nothing to seed in memory")
	}
	store, cleanup, err := api.OpenDocstore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open document store: %v", err)
	}
	defer cleanup()

	for _, item := range starterMenu {
		doc, err := catalogmirror.Encode(item)
		if err != nil {
			log.Fatalf("failed to encode %s: %v", item.Name, err)
		}
		if err := store.Set(ctx, docstore.Join(catalogmirror.Collection, item.ID), doc); err != nil {
			log.Fatalf("failed to seed %s: %v", item.Name, err)
		}
	}

	settings, err := settingsmirror.Encode(settingsdomain.Default(cfg.BusinessName, cfg.TaxRatePercent))
	if err != nil {
		log.Fatalf("failed to encode settings: %v", err)
	}
	if err := store.Set(ctx, settingsmirror.Path, settings); err != nil {
		log.Fatalf("failed to seed settings: %v", err)
	}

	verifier, err := credentials.ForMode(cfg.CredentialMode)
	if err != nil {
		log.Fatalf("invalid credential mode: %v", err)
	}
	username := envOrDefault("SEED_USERNAME", "cashier")
	password, err := verifier.Prepare(envOrDefault("SEED_PASSWORD", "cashier"))
	if err != nil {
		log.Fatalf("failed to prepare password: %v", err)
	}
	doc, err := directorymirror.Encode(directorydomain.Employee{Username: username, Password: password})
	if err != nil {
		log.Fatalf("failed to encode employee: %v", err)
	}
	if err := store.Set(ctx, docstore.Join(directorymirror.Collection, "seed-"+username), doc); err != nil {
		log.Fatalf("failed to seed employee: %v", err)
	}
	logger.Info("seed completed", slog.Int("items", len(starterMenu)), slog.String("employee", username), slog.String("docstore", cfg.DocstoreDriver))
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
