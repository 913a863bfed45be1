package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chartapp/chartapp-services/db/migrations"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

const uniqueViolation = "23505"

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type ChatDB struct {
	DB  *sql.DB
	Log *zerolog.Logger
}

// NewChatDB opens the database and checks the connection is alive.
func NewChatDB(driver, source string, log *zerolog.Logger) (*ChatDB, error) {
	if source == "" {
		log.Error().Msg("database source is not set")
		return nil, errors.New("database source is not set")
	}

	// Open the database connection
	db, err := sql.Open(driver, source)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	// Check we are actually connected
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("Database connection failed during ping")
		db.Close()
		return nil, err
	}

	return &ChatDB{DB: db, Log: log}, nil
}

func (c *ChatDB) Close() error {
	if err := c.DB.Close(); err != nil {
		return err
	}
	c.Log.Info().Msg("database connection closed")
	return nil
}

// Migrate applies the embedded schema migrations.
func (c *ChatDB) Migrate(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		c.Log.Error().Err(err).Msg("Database connection ping failed")
		return fmt.Errorf("database connection ping failed: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, c.DB, "."); err != nil {
		c.Log.Error().Err(err).Msg("error applying migrations")
		return fmt.Errorf("error applying migrations: %w", err)
	}

	c.Log.Info().Msg("Tables initialized successfully")
	return nil
}

// WithTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back otherwise, including on panic.
func (c *ChatDB) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbtx) error) (err error) {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("error committing transaction: %w", err)
		}
	}()

	return fn(ctx, tx)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
