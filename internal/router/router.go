package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ppinng/url-shotener/internal/app"
	"github.com/ppinng/url-shotener/internal/handlers"
	"github.com/ppinng/url-shotener/internal/middleware"
)

func New(theApp *app.App) chi.Router {
	handler := &handlers.Handler{
		App: theApp,
	}
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.LogRequests)
	router.Use(chimw.Recoverer)
	// promhttp сам сжимает ответ, поэтому метрики живут вне gzip группы
	router.Method("GET", "/metrics", theApp.Metrics.Handler())
	router.Group(func(r chi.Router) {
		r.Use(middleware.GzipSupport)
		r.Get("/", handler.Index)
		r.Post("/", handler.ShortenURL)
		// токен вне алфавита тоже доходит до обработчика и получает страницу "не найдено"
		r.Get("/"+app.ShortLinkPrefix+"/{token}", handler.ExpandURL)
		r.Get("/ping", handler.Ping)
		r.Post("/api/shorten", handler.APIShortenURL)
	})
	return router
}
