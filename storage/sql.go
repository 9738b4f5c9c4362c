package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	// драйверы для database/sql регистрируются при импорте
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

var ErrUnknownSQLDriver = errors.New("unknown sql driver")

// Dialect описывает различия в SQL между поддерживаемыми движками
type Dialect struct {
	Driver string
	Schema []string
	Upsert string
	Select string
}

var SQLiteDialect = Dialect{
	Driver: "sqlite",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS mappings (
			token TEXT PRIMARY KEY,
			original_url TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CHECK (token <> '')
		);`,
	},
	Upsert: "INSERT INTO mappings (token, original_url) VALUES (?, ?) " +
		"ON CONFLICT(token) DO UPDATE SET original_url = excluded.original_url, updated_at = CURRENT_TIMESTAMP",
	Select: "SELECT original_url FROM mappings WHERE token = ? LIMIT 1",
}

var MySQLDialect = Dialect{
	Driver: "mysql",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS mappings (
			token VARCHAR(16) PRIMARY KEY,
			original_url TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		);`,
	},
	Upsert: "INSERT INTO mappings (token, original_url) VALUES (?, ?) " +
		"ON DUPLICATE KEY UPDATE original_url = VALUES(original_url)",
	Select: "SELECT original_url FROM mappings WHERE token = ? LIMIT 1",
}

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case SQLiteDialect.Driver:
		return SQLiteDialect, nil
	case MySQLDialect.Driver:
		return MySQLDialect, nil
	}
	return Dialect{}, errors.Wrap(ErrUnknownSQLDriver, driver)
}

// SQLURLStorerBackend хранит ссылки в любой базе, доступной через database/sql:
// встраиваемой SQLite либо MySQL
type SQLURLStorerBackend struct {
	DB      *sql.DB
	dialect Dialect
	timeout time.Duration
}

// OpenSQL открывает соединение к базе и подготавливает схему
func OpenSQL(driver, dsn string, timeout time.Duration) (*SQLURLStorerBackend, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s database", driver)
	}
	if dialect.Driver == SQLiteDialect.Driver {
		// sqlite не умеет параллельную запись, а в памяти каждое соединение видит свою базу
		db.SetMaxOpenConns(1)
		db.SetConnMaxIdleTime(0)
		db.SetConnMaxLifetime(0)
	}
	backend, err := NewSQLURLStorerBackend(db, dialect, timeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return backend, nil
}

func NewSQLURLStorerBackend(db *sql.DB, dialect Dialect, timeout time.Duration) (*SQLURLStorerBackend, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for _, stmt := range dialect.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, errors.Wrap(err, "unable to init database schema")
		}
	}
	return &SQLURLStorerBackend{DB: db, dialect: dialect, timeout: timeout}, nil
}

func (backend *SQLURLStorerBackend) Set(ctx context.Context, token, longURL string) error {
	ctx, cancel := context.WithTimeout(ctx, backend.timeout)
	defer cancel()
	if _, err := backend.DB.ExecContext(ctx, backend.dialect.Upsert, token, longURL); err != nil {
		log.WithField("token", token).Errorf("failed to save mapping due to %v", err)
		return err
	}
	return nil
}

func (backend *SQLURLStorerBackend) Get(ctx context.Context, token string) (string, error) {
	var longURL string
	ctx, cancel := context.WithTimeout(ctx, backend.timeout)
	defer cancel()
	err := backend.DB.QueryRowContext(ctx, backend.dialect.Select, token).Scan(&longURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	return longURL, nil
}

func (backend *SQLURLStorerBackend) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, backend.timeout)
	defer cancel()
	if err := backend.DB.PingContext(ctx); err != nil {
		log.Errorf("failed to ping %s database because of %s", backend.dialect.Driver, err)
		return err
	}
	return nil
}

// Cleanup удаляет все записи; предназначен только для тестов
func (backend *SQLURLStorerBackend) Cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), backend.timeout)
	defer cancel()
	if _, err := backend.DB.ExecContext(ctx, "DELETE FROM mappings"); err != nil {
		panic(err)
	}
}

func (backend *SQLURLStorerBackend) Close() error {
	return backend.DB.Close()
}
