package shortener

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ppinng/url-shotener/internal/metrics"
	"github.com/ppinng/url-shotener/pkg/url/hasher"
	"github.com/ppinng/url-shotener/pkg/url/validator"
	"github.com/ppinng/url-shotener/storage"
)

// Mapping - сохраненное соответствие токена и оригинального URL
type Mapping struct {
	Token       string
	OriginalURL string
}

type Service struct {
	Storage storage.URLStorer
	Hasher  hasher.Hasher
	Metrics *metrics.Metrics
}

// Shorten валидирует введенный URL, вычисляет для него токен и сохраняет пару в хранилище.
// Невалидный ввод не затрагивает хранилище.
// Если под тем же токеном уже лежит другой URL, он перезаписывается (последняя запись побеждает)
func (s *Service) Shorten(ctx context.Context, input string) (Mapping, error) {
	longURL, err := validator.Validate(input)
	if err != nil {
		return Mapping{}, err
	}
	token := s.Hasher.Hash(longURL)
	logger := log.WithFields(log.Fields{"token": token, "url": longURL})

	previous, err := s.Storage.Get(ctx, token)
	switch {
	case err == nil && previous != longURL:
		logger.Warnf("token collision; overwriting %s", previous)
		if s.Metrics != nil {
			s.Metrics.TokenOverwrites.Inc()
		}
	case err != nil && !errors.Is(err, storage.ErrTokenNotFound):
		// проверка коллизии носит информационный характер, запись все равно выполняем
		logger.Warnf("unable to check token for collision due to %v", err)
	}

	if err := s.Storage.Set(ctx, token, longURL); err != nil {
		return Mapping{}, errors.Wrapf(err, "unable to save token %s", token)
	}
	if s.Metrics != nil {
		s.Metrics.LinksCreated.Inc()
	}
	logger.Info("shortened url")
	return Mapping{Token: token, OriginalURL: longURL}, nil
}

// Lookup возвращает оригинальный URL по токену либо storage.ErrTokenNotFound
func (s *Service) Lookup(ctx context.Context, token string) (string, error) {
	longURL, err := s.Storage.Get(ctx, token)
	if s.Metrics != nil {
		switch {
		case err == nil:
			s.Metrics.Lookups.WithLabelValues(metrics.LookupFound).Inc()
		case errors.Is(err, storage.ErrTokenNotFound):
			s.Metrics.Lookups.WithLabelValues(metrics.LookupNotFound).Inc()
		default:
			s.Metrics.Lookups.WithLabelValues(metrics.LookupError).Inc()
		}
	}
	return longURL, err
}

// Get позволяет использовать сервис как источник для redirect.Enter
func (s *Service) Get(ctx context.Context, token string) (string, error) {
	return s.Lookup(ctx, token)
}
