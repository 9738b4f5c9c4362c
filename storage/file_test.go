package storage_test

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"testing"

	"github.com/ppinng/url-shotener/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestFileStorage(t *testing.T) *storage.FileURLStorerBackend {
	f, err := os.CreateTemp("", "*")
	require.NoError(t, err)
	f.Close()
	theStorage, err := storage.NewFileURLStorerBackend(f.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		theStorage.Close()
		os.Remove(f.Name())
	})
	return theStorage
}

func readSavedItems(t *testing.T, filename string) map[string]string {
	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()
	savedItems := make(map[string]string)
	require.NoError(t, json.NewDecoder(f).Decode(&savedItems))
	return savedItems
}

func TestSetGetFromFileStorage(t *testing.T) {
	ctx := context.TODO()
	theStorage := getTestFileStorage(t)

	theStorage.Set(ctx, "foo", "https://practicum.yandex.ru/") // nolint: errcheck
	URL, _ := theStorage.Get(ctx, "foo")
	assert.Equal(t, "https://practicum.yandex.ru/", URL)
	// Можем перезаписать
	theStorage.Set(ctx, "foo", "https://go.dev/") // nolint: errcheck
	URL, _ = theStorage.Get(ctx, "foo")
	assert.Equal(t, "https://go.dev/", URL)

	// Или записать с другим токеном
	theStorage.Set(ctx, "bar", "https://example.com/") // nolint: errcheck
	URL1, _ := theStorage.Get(ctx, "foo")
	URL2, _ := theStorage.Get(ctx, "bar")
	assert.Equal(t, "https://go.dev/", URL1)
	assert.Equal(t, "https://example.com/", URL2)
}

func TestGetURLFromFileStorage(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		isErr  bool
		result string
	}{
		{
			name:   "positive case",
			key:    "foo",
			isErr:  false,
			result: "https://practicum.yandex.ru/",
		},
		{
			name:   "unknown key",
			key:    "bar",
			isErr:  true,
			result: "",
		},
		{
			name:   "empty key",
			key:    "",
			isErr:  true,
			result: "",
		},
	}

	ctx := context.TODO()
	theStorage := getTestFileStorage(t)
	theStorage.Set(ctx, "foo", "https://practicum.yandex.ru/") // nolint: errcheck

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			longURL, err := theStorage.Get(ctx, tt.key)
			if tt.isErr {
				assert.ErrorIs(t, err, storage.ErrTokenNotFound)
				assert.Equal(t, "", longURL)
			} else {
				assert.Equal(t, tt.result, longURL)
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileStorageIsPersistent(t *testing.T) {
	ctx := context.TODO()
	f, _ := os.CreateTemp("", "*")
	f.Close()
	defer os.Remove(f.Name())

	firstStorage, _ := storage.NewFileURLStorerBackend(f.Name())
	firstStorage.Set(ctx, "foo", "https://go.dev") // nolint: errcheck
	firstStorage.Close()

	secondStorage, _ := storage.NewFileURLStorerBackend(f.Name())
	URL, _ := secondStorage.Get(ctx, "foo")
	assert.Equal(t, "https://go.dev", URL)
	secondStorage.Set(ctx, "bar", "https://blog.golang.org/") // nolint: errcheck
	secondStorage.Close()

	thirdStorage, _ := storage.NewFileURLStorerBackend(f.Name())
	URL1, _ := thirdStorage.Get(ctx, "foo")
	URL2, _ := thirdStorage.Get(ctx, "bar")
	assert.Equal(t, "https://go.dev", URL1)
	assert.Equal(t, "https://blog.golang.org/", URL2)
	thirdStorage.Close()

	savedItems := readSavedItems(t, f.Name())
	assert.Equal(t, "https://go.dev", savedItems["foo"])
	assert.Equal(t, "https://blog.golang.org/", savedItems["bar"])
}

func TestFileStorageFlushKeepsServing(t *testing.T) {
	ctx := context.TODO()
	theStorage := getTestFileStorage(t)
	theStorage.Set(ctx, "foo", "https://go.dev/") // nolint: errcheck
	require.NoError(t, theStorage.Flush())
	theStorage.Set(ctx, "bar", "https://example.com/") // nolint: errcheck

	URL, err := theStorage.Get(ctx, "foo")
	assert.NoError(t, err)
	assert.Equal(t, "https://go.dev/", URL)
	URL, err = theStorage.Get(ctx, "bar")
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/", URL)
}

func TestFileStorageIsAbleToStartWithoutFile(t *testing.T) {
	tmpDir, _ := os.MkdirTemp("", "*")
	filename := path.Join(tmpDir, "saved.json")
	defer os.RemoveAll(tmpDir)

	theStorage, err := storage.NewFileURLStorerBackend(filename)
	assert.NoError(t, err)
	theStorage.Set(context.TODO(), "foo", "https://go.dev/") // nolint: errcheck
	theStorage.Close()

	savedItems := readSavedItems(t, filename)
	assert.Equal(t, "https://go.dev/", savedItems["foo"])
}

func TestFileStorageIsAbleToStartWithEmptyFile(t *testing.T) {
	f, _ := os.CreateTemp("", "*")
	f.Close()
	defer os.Remove(f.Name())

	theStorage, err := storage.NewFileURLStorerBackend(f.Name())
	assert.NoError(t, err)
	theStorage.Set(context.TODO(), "foo", "https://go.dev/") // nolint: errcheck
	theStorage.Close()

	savedItems := readSavedItems(t, f.Name())
	assert.Equal(t, "https://go.dev/", savedItems["foo"])
}

func TestFileStorageWontStartWithBrokenJSON(t *testing.T) {
	f, _ := os.CreateTemp("", "*")
	f.Write([]byte(`{foo: "bar"}`)) // nolint:errcheck
	f.Close()
	defer os.Remove(f.Name())

	theStorage, err := storage.NewFileURLStorerBackend(f.Name())
	assert.Nil(t, theStorage)
	assert.IsType(t, &json.SyntaxError{}, err)
}

func TestFileStorageDoesNotEscapeHTMLChars(t *testing.T) {
	ctx := context.TODO()
	f, _ := os.CreateTemp("", "*")
	f.Close()
	defer os.Remove(f.Name())

	theStorage, _ := storage.NewFileURLStorerBackend(f.Name())
	theStorage.Set(ctx, "foo", "https://yandex.ru/search/?lr=213&text=golang") // nolint: errcheck
	theStorage.Close()

	newStorage, _ := storage.NewFileURLStorerBackend(f.Name())
	URL, _ := newStorage.Get(ctx, "foo")
	assert.Equal(t, "https://yandex.ru/search/?lr=213&text=golang", URL)
	newStorage.Close()

	raw, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "lr=213&text=golang")
}
