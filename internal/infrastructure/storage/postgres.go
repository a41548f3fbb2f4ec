package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/internal/config"
	_ "github.com/lib/pq"
)

// Schema creates the table backing PostgresBackend.
const Schema = `
CREATE TABLE IF NOT EXISTS local_storage (
	namespace  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`

// PostgresBackend stores values in the local_storage table.
type PostgresBackend struct {
	db *sql.DB
}

// ConnectPostgres opens and pings a connection pool configured from cfg.
func ConnectPostgres(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the storage table when it does not exist yet.
func (p *PostgresBackend) EnsureSchema(ctx context.Context) error {
	if p.db == nil {
		return ErrNotInitialized
	}
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create local_storage table: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	if p.db == nil {
		return "", false, ErrNotInitialized
	}
	var value string
	err := p.db.QueryRowContext(ctx, `
		SELECT value FROM local_storage WHERE namespace = $1 AND key = $2
	`, namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres get %s/%s: %w", namespace, key, err)
	}
	return value, true, nil
}

func (p *PostgresBackend) Set(ctx context.Context, namespace, key, value string) error {
	if p.db == nil {
		return ErrNotInitialized
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO local_storage (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, namespace, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("postgres set %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (p *PostgresBackend) Delete(ctx context.Context, namespace, key string) error {
	if p.db == nil {
		return ErrNotInitialized
	}
	_, err := p.db.ExecContext(ctx, `
		DELETE FROM local_storage WHERE namespace = $1 AND key = $2
	`, namespace, key)
	if err != nil {
		return fmt.Errorf("postgres delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (p *PostgresBackend) Ping(ctx context.Context) error {
	if p.db == nil {
		return ErrNotInitialized
	}
	return p.db.PingContext(ctx)
}

func (p *PostgresBackend) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}
