package validator

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

var ErrEmptyURL = errors.New("please provide a url to shorten")
var ErrInvalidURL = errors.New("please enter a valid URL")

// Validate проверяет, что введенный пользователем текст является абсолютным URL (схема + хост).
// Пробельные символы по краям допускаются, как это делает браузерный парсер URL,
// но возвращается ввод как есть: токен вычисляется ровно от того, что ввел пользователь
func Validate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyURL
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", errors.Wrap(ErrInvalidURL, err.Error())
	}
	if u.Scheme == "" || u.Host == "" {
		return "", ErrInvalidURL
	}
	return raw, nil
}
