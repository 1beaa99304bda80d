// Package repository implements the domain store contracts on PostgreSQL
// via pgx. Repositories run against either the pool or a transaction through
// the shared DB query surface.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beemanhoney/shop/db"
	"github.com/beemanhoney/shop/internal/domain/order"
)

// DB is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPool creates a pgxpool.Pool configured with shopspring/decimal support
// for NUMERIC columns.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the embedded DDL schema against the pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, db.Schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Store bundles the pool-bound repositories and implements order.Transactor.
type Store struct {
	pool      *pgxpool.Pool
	txTimeout time.Duration

	Products *ProductRepository
	Promos   *PromoRepository
	Orders   *OrderRepository
	Users    *UserRepository
}

// NewStore wires repositories over the given pool. txTimeout bounds every
// InTx call; zero means a 10 second default.
func NewStore(pool *pgxpool.Pool, txTimeout time.Duration) *Store {
	if txTimeout <= 0 {
		txTimeout = 10 * time.Second
	}
	return &Store{
		pool:      pool,
		txTimeout: txTimeout,
		Products:  NewProductRepository(pool),
		Promos:    NewPromoRepository(pool),
		Orders:    NewOrderRepository(pool),
		Users:     NewUserRepository(pool),
	}
}

var _ order.Transactor = (*Store)(nil)

// InTx runs fn inside a single transaction with the store's timeout.
// Timeouts surface as order.TransientError so callers know a retry is safe;
// the transaction did not commit.
func (s *Store) InTx(ctx context.Context, fn func(order.TxStores) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return asTransient(ctx, fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback(context.WithoutCancel(ctx)) //nolint:errcheck // no-op after commit

	err = fn(order.TxStores{
		Products: NewProductRepository(tx),
		Promos:   NewPromoRepository(tx),
		Orders:   NewOrderRepository(tx),
	})
	if err != nil {
		return asTransient(ctx, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return asTransient(ctx, fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

func asTransient(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return &order.TransientError{Err: err}
	}
	return err
}
