package app

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ppinng/url-shotener/internal/jobs"
	"github.com/ppinng/url-shotener/internal/metrics"
	"github.com/ppinng/url-shotener/internal/shortener"
	"github.com/ppinng/url-shotener/pkg/background"
	"github.com/ppinng/url-shotener/pkg/url/hasher"
	"github.com/ppinng/url-shotener/storage"
)

// ShortLinkPrefix - путь, под которым обслуживаются короткие ссылки
const ShortLinkPrefix = "utils"

type App struct {
	Config    *Config
	Storage   storage.URLStorer
	Hasher    hasher.Hasher
	Shortener *shortener.Service
	Metrics   *metrics.Metrics
	Pool      *background.Pool
	DB        *pgxpool.Pool
}

func New(overrides ...Override) (*App, error) {
	cfg, err := NewConfig(overrides...)
	if err != nil {
		return nil, err
	}
	if err = configureLogging(cfg); err != nil {
		return nil, errors.Wrap(err, "unable to configure logging")
	}

	db, err := configureDatabase(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to configure database")
	}
	store, err := configureStorage(cfg, db)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, errors.Wrap(err, "unable to configure storage")
	}
	log.Infof("using storage %T", store)

	appMetrics := metrics.New()
	theHasher := hasher.NewRollingHasher()
	app := &App{
		Config:  cfg,
		Storage: store,
		Hasher:  theHasher,
		Metrics: appMetrics,
		DB:      db,
		Shortener: &shortener.Service{
			Storage: store,
			Hasher:  theHasher,
			Metrics: appMetrics,
		},
		Pool: background.NewPool(background.PoolConfig{
			Concurrency:   cfg.WorkerConcurrency,
			DoJobTimeout:  cfg.WorkerJobTimeout,
			AddJobTimeout: cfg.WorkerAddTimeout,
		}),
	}
	return app, nil
}

// Shorten сокращает ссылку и, если хранилище держит записи в памяти,
// ставит в очередь их сброс на диск
func (app *App) Shorten(ctx context.Context, input string) (shortener.Mapping, error) {
	mapping, err := app.Shortener.Shorten(ctx, input)
	if err != nil {
		return mapping, err
	}
	if flusher, ok := app.Storage.(storage.Flusher); ok {
		if err := app.Pool.Add(ctx, jobs.FlushStorage(flusher)); err != nil {
			// ссылка уже сохранена, на диск она попадет при закрытии хранилища
			log.WithField("token", mapping.Token).Warnf("unable to schedule storage flush due to %v", err)
		}
	}
	return mapping, nil
}

// ShortURL строит короткую ссылку по настройке базового URL сервиса.
// В случае ее отсутствия используем имя хоста, с которым был совершен запрос,
// а вне запроса (CLI) - адрес, который слушает сервер
func (app *App) ShortURL(token string, r *http.Request) string {
	scheme, host, path := "http", app.Config.ServerAddress, "/"
	if r != nil && r.Host != "" {
		host = r.Host
	}
	if base := app.Config.BaseURL; base != nil {
		if base.Scheme != "" {
			scheme = base.Scheme
		}
		if base.Host != "" {
			host = base.Host
		}
		if base.Path != "" {
			path = base.Path
		}
	}
	return scheme + "://" + host + strings.TrimRight(path, "/") + "/" + ShortLinkPrefix + "/" + token
}

// RefreshSeconds - задержка перехода в формате заголовка Refresh
func (app *App) RefreshSeconds() string {
	return strconv.FormatFloat(app.Config.RedirectDelay.Seconds(), 'f', -1, 64)
}

func (app *App) Close() {
	// сначала дорабатываем поставленные джобы, они могут обращаться к хранилищу
	app.Pool.Close()
	if err := app.Storage.Close(); err != nil {
		log.Errorf("failed to close storage %T due to %s; possible data loss", app.Storage, err)
	}
	if app.DB != nil {
		app.DB.Close()
	}
}

// configureDatabase подключается к postgres, только если задан DSN
func configureDatabase(cfg *Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseDSN == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DatabaseQueryTimeout)
	defer cancel()
	return pgxpool.Connect(ctx, cfg.DatabaseDSN)
}

// configureStorage инициализирует тип хранилища
// в зависимости от настроек сервиса, заданных переменными окружения
func configureStorage(cfg *Config, db *pgxpool.Pool) (storage.URLStorer, error) {
	switch {
	case db != nil:
		return storage.NewDatabaseURLStorerBackend(db, cfg.DatabaseQueryTimeout)
	case cfg.SQLDSN != "":
		return storage.OpenSQL(cfg.SQLDriver, cfg.SQLDSN, cfg.DatabaseQueryTimeout)
	case cfg.FileStoragePath != "":
		return storage.NewFileURLStorerBackend(cfg.FileStoragePath)
	}
	return storage.NewLocmemURLStorerBackend(), nil
}
