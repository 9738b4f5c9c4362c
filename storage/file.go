package storage

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type FileURLStorerBackend struct {
	filename string
	cache    map[string]string
	mu       sync.RWMutex
}

func NewFileURLStorerBackend(filename string) (*FileURLStorerBackend, error) {
	cache := make(map[string]string)
	// Считываем с диска записи, сохраненные ранее, и заполняем ими кэш,
	// с которым мы и будем работать до завершения программы
	file, err := os.OpenFile(filename, os.O_RDONLY, 0600)
	if err != nil {
		// Если файл не найден, то ничего страшного - это ожидаемое поведение при первом запуске сервиса
		if os.IsNotExist(err) {
			log.Infof("file %s not found; will start with empty storage", filename)
		} else {
			log.Errorf("error opening %s: %s", filename, err)
			return nil, err
		}
	} else {
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cache); err != nil {
			// Файл пустой - ожидаемое поведение
			if errors.Is(err, io.EOF) {
				log.Infof("file is empty %s; will start with empty storage", filename)
			} else {
				log.Errorf("unable to populate storage from %s due to %s", filename, err)
				return nil, err
			}
		}
	}
	backend := FileURLStorerBackend{
		filename: filename,
		cache:    cache,
	}
	return &backend, nil
}

func (backend *FileURLStorerBackend) Set(ctx context.Context, token, longURL string) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.cache[token] = longURL
	return nil
}

func (backend *FileURLStorerBackend) Get(ctx context.Context, token string) (string, error) {
	backend.mu.RLock()
	defer backend.mu.RUnlock()
	longURL, found := backend.cache[token]
	if !found {
		return "", ErrTokenNotFound
	}
	return longURL, nil
}

func (backend *FileURLStorerBackend) Ping(ctx context.Context) error {
	return nil
}

// Flush сохраняет на диск рабочий кэш со ссылками,
// который будет использован при следующем старте программы
func (backend *FileURLStorerBackend) Flush() error {
	backend.mu.RLock()
	defer backend.mu.RUnlock()
	// пишем во временный файл и подменяем им основной, чтобы не оставить на диске обрезанный json
	tmp, err := os.CreateTemp(filepath.Dir(backend.filename), ".mappings-*")
	if err != nil {
		log.Errorf("unable to create temp file for dumping storage due to %s", err)
		return err
	}
	defer os.Remove(tmp.Name())
	encoder := json.NewEncoder(tmp)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(&backend.cache); err != nil {
		tmp.Close()
		log.Errorf("unable to dump storage to %s due to %s", backend.filename, err)
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), backend.filename); err != nil {
		log.Errorf("unable to replace %s due to %s", backend.filename, err)
		return errors.Wrapf(err, "unable to replace %s", backend.filename)
	}
	return nil
}

func (backend *FileURLStorerBackend) Cleanup() {
	backend.mu.Lock()
	backend.cache = make(map[string]string)
	backend.mu.Unlock()
	if err := os.Remove(backend.filename); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			panic(err)
		}
	}
}

func (backend *FileURLStorerBackend) Close() error {
	return backend.Flush()
}
