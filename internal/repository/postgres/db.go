package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/config"
	"golang.org/x/sync/semaphore"
)

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

var (
	dbInstance *DB
	dbErr      error
	once       sync.Once
)

// DSN builds a lib/pq keyword connection string
func DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// NewDB creates the shared database connection pool
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	once.Do(func() {
		db, err := sqlx.Connect("postgres", DSN(cfg))
		if err != nil {
			dbErr = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		dbInstance = Wrap(db)
	})

	return dbInstance, dbErr
}

// Wrap configures the pool of an open connection, e.g. one opened through
// the pgx stdlib driver.
func Wrap(db *sqlx.DB) *DB {
	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(10), // Limit to 10 concurrent operations
	}
}

// Acquire blocks until a query slot is free. Call the returned func to release it.
func (db *DB) Acquire(ctx context.Context) (func(), error) {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("could not acquire semaphore: %w", err)
	}
	return func() { db.sem.Release(1) }, nil
}
