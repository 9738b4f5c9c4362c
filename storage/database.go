package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type DatabaseURLStorerBackend struct {
	DB      *pgxpool.Pool
	timeout time.Duration
}

const initDatabaseSQL = `
CREATE TABLE IF NOT EXISTS mappings (
    token TEXT PRIMARY KEY,
    original_url TEXT NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    CHECK (token <> '')
);
`

const upsertMappingSQL = "INSERT INTO mappings (token, original_url) VALUES($1, $2) " +
	"ON CONFLICT (token) DO UPDATE SET original_url = EXCLUDED.original_url, updated_at = NOW()"

func NewDatabaseURLStorerBackend(db *pgxpool.Pool, timeout time.Duration) (*DatabaseURLStorerBackend, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	// при инициализации бэкенда создаем по необходимости нужные нам сущности в бд
	if _, err := db.Exec(ctx, initDatabaseSQL); err != nil {
		return nil, errors.Wrap(err, "unable to init database schema")
	}
	return &DatabaseURLStorerBackend{db, timeout}, nil
}

func (backend DatabaseURLStorerBackend) Set(ctx context.Context, token, longURL string) error {
	ctx, cancel := context.WithTimeout(ctx, backend.timeout)
	defer cancel()
	if _, err := backend.DB.Exec(ctx, upsertMappingSQL, token, longURL); err != nil {
		log.WithField("token", token).Errorf("failed to save mapping due to %v", err)
		return err
	}
	return nil
}

func (backend DatabaseURLStorerBackend) Get(ctx context.Context, token string) (string, error) {
	var longURL string

	ctx, cancel := context.WithTimeout(ctx, backend.timeout)
	defer cancel()

	err := backend.DB.QueryRow(ctx, "SELECT original_url FROM mappings WHERE token = $1", token).Scan(&longURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrTokenNotFound
		}
		return "", err
	}

	return longURL, nil
}

func (backend DatabaseURLStorerBackend) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, backend.timeout)
	defer cancel()
	if err := backend.DB.Ping(ctx); err != nil {
		log.Errorf("failed to ping database because of %s", err)
		return err
	}
	return nil
}

// Cleanup отчищает таблицу с токенами с помощью вызова TRUNCATE
// Метод предназначен только для вызовов в тестах
func (backend DatabaseURLStorerBackend) Cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), backend.timeout)
	defer cancel()
	if _, err := backend.DB.Exec(ctx, "TRUNCATE TABLE mappings"); err != nil {
		panic(err)
	}
}

func (backend DatabaseURLStorerBackend) Close() error {
	// соединение к бд закрывается на уровне приложения
	return nil
}
