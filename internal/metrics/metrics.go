package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupError    = "error"
)

// Metrics держит собственный реестр, чтобы несколько экземпляров приложения (например в тестах)
// не конфликтовали при регистрации
type Metrics struct {
	registry        *prometheus.Registry
	LinksCreated    prometheus.Counter
	TokenOverwrites prometheus.Counter
	Lookups         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LinksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shortener",
			Name:      "links_created_total",
			Help:      "Number of successfully shortened links.",
		}),
		TokenOverwrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shortener",
			Name:      "token_overwrites_total",
			Help:      "Number of times a token was reassigned to a different URL.",
		}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shortener",
			Name:      "lookups_total",
			Help:      "Token lookups by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.LinksCreated, m.TokenOverwrites, m.Lookups)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
