package storage

import "context"

// URLStorer хранит соответствие токен -> оригинальный URL в плоском пространстве ключей.
// Set безусловно перезаписывает прежнее значение (последняя запись побеждает)
type URLStorer interface {
	Set(ctx context.Context, token, longURL string) error
	Get(ctx context.Context, token string) (string, error)
	Ping(ctx context.Context) error
	Cleanup()
	Close() error
}

// Flusher реализуется бэкендами, которые держат записи в памяти
// и умеют сбрасывать их на диск до завершения программы
type Flusher interface {
	Flush() error
}
