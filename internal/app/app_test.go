package app_test

import (
	"context"
	"net/http/httptest"
	"net/url"
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppinng/url-shotener/internal/app"
	"github.com/ppinng/url-shotener/storage"
)

func clearStorageEnv(t *testing.T) {
	for _, key := range []string{"DATABASE_DSN", "SQL_DSN", "FILE_STORAGE_PATH", "BASE_URL"} {
		t.Setenv(key, "")
	}
}

func TestAppDefaults(t *testing.T) {
	clearStorageEnv(t)
	theApp, err := app.New()
	require.NoError(t, err)
	defer theApp.Close()

	assert.Equal(t, "localhost:8080", theApp.Config.ServerAddress)
	assert.Equal(t, 1500*time.Millisecond, theApp.Config.RedirectDelay)
	assert.Equal(t, 2*time.Second, theApp.Config.ToastDuration)
	assert.Equal(t, "sqlite", theApp.Config.SQLDriver)
	assert.IsType(t, &storage.LocmemURLStorerBackend{}, theApp.Storage)
	assert.Nil(t, theApp.DB)
	assert.Equal(t, "1.5", theApp.RefreshSeconds())
}

func TestAppStorageSelection(t *testing.T) {
	tmpDir, _ := os.MkdirTemp("", "*")
	defer os.RemoveAll(tmpDir)

	tests := []struct {
		name string
		env  map[string]string
		want storage.URLStorer
	}{
		{
			name: "locmem by default",
			env:  map[string]string{},
			want: &storage.LocmemURLStorerBackend{},
		},
		{
			name: "file storage",
			env:  map[string]string{"FILE_STORAGE_PATH": path.Join(tmpDir, "file.json")},
			want: &storage.FileURLStorerBackend{},
		},
		{
			name: "sql storage takes precedence over file",
			env: map[string]string{
				"FILE_STORAGE_PATH": path.Join(tmpDir, "other.json"),
				"SQL_DRIVER":        "sqlite",
				"SQL_DSN":           ":memory:",
			},
			want: &storage.SQLURLStorerBackend{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearStorageEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			theApp, err := app.New()
			require.NoError(t, err)
			defer theApp.Close()
			assert.IsType(t, tt.want, theApp.Storage)
		})
	}
}

func TestAppRejectsUnknownSQLDriver(t *testing.T) {
	clearStorageEnv(t)
	t.Setenv("SQL_DRIVER", "oracle")
	t.Setenv("SQL_DSN", "whatever")
	_, err := app.New()
	assert.ErrorIs(t, err, storage.ErrUnknownSQLDriver)
}

func TestAppRejectsBadLogSettings(t *testing.T) {
	clearStorageEnv(t)
	_, err := app.New(func(cfg *app.Config) error {
		cfg.LogLevel = "loud"
		return nil
	})
	assert.Error(t, err)

	_, err = app.New(func(cfg *app.Config) error {
		cfg.LogFormat = "xml"
		return nil
	})
	assert.Error(t, err)
}

func TestOverridesTakePrecedenceOverEnv(t *testing.T) {
	clearStorageEnv(t)
	t.Setenv("SERVER_ADDRESS", "localhost:9000")
	theApp, err := app.New(func(cfg *app.Config) error {
		cfg.ServerAddress = "localhost:9999"
		return nil
	})
	require.NoError(t, err)
	defer theApp.Close()
	assert.Equal(t, "localhost:9999", theApp.Config.ServerAddress)
}

func TestShortURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{
			name: "request host",
			want: "http://example.org/utils/ags5vy",
		},
		{
			name:    "base url",
			baseURL: "https://sho.rt",
			want:    "https://sho.rt/utils/ags5vy",
		},
		{
			name:    "base url with path",
			baseURL: "https://sho.rt/s/",
			want:    "https://sho.rt/s/utils/ags5vy",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearStorageEnv(t)
			theApp, err := app.New(func(cfg *app.Config) error {
				if tt.baseURL != "" {
					u, err := url.Parse(tt.baseURL)
					cfg.BaseURL = u
					return err
				}
				return nil
			})
			require.NoError(t, err)
			defer theApp.Close()
			r := httptest.NewRequest("GET", "http://example.org/", nil)
			assert.Equal(t, tt.want, theApp.ShortURL("ags5vy", r))
		})
	}
}

func TestAppShortenFlushesFileStorage(t *testing.T) {
	clearStorageEnv(t)
	tmpDir, _ := os.MkdirTemp("", "*")
	defer os.RemoveAll(tmpDir)
	filename := path.Join(tmpDir, "urls.json")
	t.Setenv("FILE_STORAGE_PATH", filename)

	theApp, err := app.New()
	require.NoError(t, err)
	mapping, err := theApp.Shorten(context.TODO(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "ags5vy", mapping.Token)
	theApp.Close()

	reopened, err := storage.NewFileURLStorerBackend(filename)
	require.NoError(t, err)
	longURL, err := reopened.Get(context.TODO(), "ags5vy")
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com", longURL)
}
