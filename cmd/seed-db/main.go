package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/beemanhoney/shop/internal/auth"
	"github.com/beemanhoney/shop/internal/domain/promo"
	"github.com/beemanhoney/shop/internal/repository"
)

type productJSON struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url"`
	IsFeatured    bool            `json:"is_featured"`
}

const upsertProductSQL = `INSERT INTO products (id, name, description, price, category, stock_quantity, image_url, is_featured, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
	ON CONFLICT (id) DO UPDATE SET
		name           = EXCLUDED.name,
		description    = EXCLUDED.description,
		price          = EXCLUDED.price,
		category       = EXCLUDED.category,
		stock_quantity = EXCLUDED.stock_quantity,
		image_url      = EXCLUDED.image_url,
		is_featured    = EXCLUDED.is_featured,
		is_active      = TRUE`

const upsertAdminSQL = `INSERT INTO users (id, email, hashed_password, full_name, role, created_at)
	VALUES ($1, $2, $3, $4, 'admin', $5)
	ON CONFLICT (email) DO UPDATE SET
		hashed_password = EXCLUDED.hashed_password,
		role            = 'admin'`

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&adminEmail, "admin-email", "admin@beemanhoney.com", "admin account email")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password (or HONEY_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("HONEY_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or HONEY_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminEmail, adminPassword string) error {
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

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedPromos(ctx, pool); err != nil {
		return errors.Wrap(err, "seed promo codes")
	}

	if err := seedAdmin(ctx, pool, adminEmail, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin user")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		_, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Description, p.Price, p.Category,
			p.StockQuantity, p.ImageURL, p.IsFeatured,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedPromos(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding promo codes")

	promos := repository.NewPromoRepository(pool)
	codes := []promo.PromoCode{
		{
			Code:            "WELCOME10",
			DiscountPercent: decimal.NewFromInt(10),
			MinOrderValue:   decimal.RequireFromString("15.00"),
			IsActive:        true,
		},
		{
			Code:           "SWEET5",
			DiscountAmount: decimal.RequireFromString("5.00"),
			MinOrderValue:  decimal.RequireFromString("30.00"),
			MaxUses:        500,
			IsActive:       true,
		},
	}

	for i := range codes {
		if err := promos.Upsert(ctx, &codes[i]); err != nil {
			return errors.Wrapf(err, "upsert promo %s", codes[i].Code)
		}

		slog.Info("upserted promo", slog.String("code", codes[i].Code))
	}

	return nil
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	slog.Info("seeding admin user", slog.String("email", email))

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	_, err = pool.Exec(ctx, upsertAdminSQL, uuid.NewString(), email, hashed, "Shop Admin", time.Now())
	if err != nil {
		return errors.Wrap(err, "upsert admin user")
	}

	return nil
}
