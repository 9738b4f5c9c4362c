package main

import (
	"net/url"

	"github.com/spf13/pflag"

	"github.com/ppinng/url-shotener/internal/app"
)

type flagConfig struct {
	BaseURL         string
	ServerAddress   string
	FileStoragePath string
	DatabaseDSN     string
}

func (fc *flagConfig) register(flags *pflag.FlagSet) {
	flags.StringVarP(&fc.ServerAddress, "address", "a", "", "Server listen address in the form of host:port")
	flags.StringVarP(&fc.BaseURL, "base-url", "b", "", "Base URL for short links")
	flags.StringVarP(&fc.FileStoragePath, "file", "f", "", "File path to persistent URL database storage")
	flags.StringVarP(&fc.DatabaseDSN, "database", "d", "", "Database connection DSN")
}

// override применяет значения флагов поверх настроек из окружения.
// Указанные значения настроек из CLI-аргументов имеют преимущество перед одноименными environment переменными
func (fc *flagConfig) override(cfg *app.Config) error {
	if fc.BaseURL != "" {
		u, err := url.Parse(fc.BaseURL)
		if err != nil {
			return err
		}
		cfg.BaseURL = u
	}
	if fc.ServerAddress != "" {
		cfg.ServerAddress = fc.ServerAddress
	}
	if fc.FileStoragePath != "" {
		cfg.FileStoragePath = fc.FileStoragePath
	}
	if fc.DatabaseDSN != "" {
		cfg.DatabaseDSN = fc.DatabaseDSN
	}
	return nil
}
