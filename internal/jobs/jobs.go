package jobs

import (
	"context"

	"github.com/ppinng/url-shotener/pkg/background"
	"github.com/ppinng/url-shotener/storage"
)

// FlushStorage сбрасывает на диск записи бэкенда, который держит их в памяти
func FlushStorage(store storage.Flusher) background.Job {
	return background.NewJob("flush storage", func(ctx context.Context) error {
		return store.Flush()
	})
}
