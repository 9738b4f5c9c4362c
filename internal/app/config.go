package app

import (
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	BaseURL               *url.URL      `env:"BASE_URL"`
	ServerAddress         string        `env:"SERVER_ADDRESS" envDefault:"localhost:8080"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	FileStoragePath       string        `env:"FILE_STORAGE_PATH"`
	DatabaseDSN           string        `env:"DATABASE_DSN"`
	DatabaseQueryTimeout  time.Duration `env:"DATABASE_QUERY_TIMEOUT" envDefault:"5s"`
	SQLDriver             string        `env:"SQL_DRIVER" envDefault:"sqlite"`
	SQLDSN                string        `env:"SQL_DSN"`
	RedirectDelay         time.Duration `env:"REDIRECT_DELAY" envDefault:"1500ms"`
	ToastDuration         time.Duration `env:"TOAST_DURATION" envDefault:"2s"`
	LogLevel              string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat             string        `env:"LOG_FORMAT" envDefault:"text"`
	WorkerConcurrency     int           `env:"WORKER_CONCURRENCY" envDefault:"2"`
	WorkerJobTimeout      time.Duration `env:"WORKER_JOB_TIMEOUT" envDefault:"5s"`
	WorkerAddTimeout      time.Duration `env:"WORKER_ADD_TIMEOUT" envDefault:"1s"`
}

// Override позволяет переопределить настройки после чтения окружения,
// например в тестах или при использовании флагов
type Override func(*Config) error

// dotenvFile подгружается в окружение перед разбором настроек, если существует.
// Уже заданные переменные окружения не перезаписываются
var dotenvFile = ".env"

func NewConfig(overrides ...Override) (*Config, error) {
	if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(err, "unable to load %s", dotenvFile)
	}
	var cfg Config
	// Получаем настройки приложения из environment-переменных
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "unable to parse environment")
	}
	for _, override := range overrides {
		if err := override(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func configureLogging(cfg *Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	switch cfg.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return errors.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return nil
}
