package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/store-admin/db"
	"github.com/xenking/store-admin/internal/domain/auth"
	"github.com/xenking/store-admin/internal/domain/product"
	"github.com/xenking/store-admin/internal/repository"
)

type categoryJSON struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func main() {
	var (
		databaseURL    string
		categoriesFile string
		apiKey         string
		apiKeyPepper   string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&categoriesFile, "categories-file", "", "path to categories JSON file (embedded defaults when empty)")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or STORE_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STORE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("STORE_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or STORE_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("STORE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, categoriesFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, categoriesFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCategories(ctx, pool, categoriesFile); err != nil {
		return errors.Wrap(err, "seed categories")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool, categoriesFile string) error {
	data := db.SeedCategories
	if categoriesFile != "" {
		slog.Info("reading categories file", slog.String("path", categoriesFile))

		var err error
		data, err = os.ReadFile(categoriesFile)
		if err != nil {
			return errors.Wrap(err, "read categories file")
		}
	}

	var categories []categoryJSON
	if err := json.Unmarshal(data, &categories); err != nil {
		return errors.Wrap(err, "parse categories JSON")
	}

	slog.Info("upserting categories", slog.Int("count", len(categories)))

	repo := repository.NewCategoryRepository(pool)
	for _, c := range categories {
		cat := product.Category{Name: c.Name, Slug: c.Slug, Description: c.Description}
		if err := repo.Upsert(ctx, &cat); err != nil {
			return err
		}

		slog.Info("upserted category", slog.Int64("id", cat.ID), slog.String("slug", cat.Slug))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding admin API key")

	info := &auth.APIKeyInfo{
		KeyHash: auth.HashKey([]byte(pepper), apiKey),
		Name:    "Default admin key",
		Scopes:  []string{auth.ScopeAdmin},
	}
	if err := repository.NewAPIKeyRepository(pool).Upsert(ctx, info); err != nil {
		return err
	}

	slog.Info("upserted API key", slog.Int64("id", info.ID), slog.String("name", info.Name))

	return nil
}
