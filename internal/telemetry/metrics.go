// Package telemetry turns search lifecycle events into Prometheus metrics.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bazaar/internal/eventbus"
)

const namespace = "bazaar"

// Metrics holds the search collectors
type Metrics struct {
	registry *prometheus.Registry

	dispatched      prometheus.Counter
	presented       *prometheus.CounterVec
	discarded       prometheus.Counter
	cancelled       prometheus.Counter
	providerSeconds prometheus.Histogram
	seeded          prometheus.Counter

	unsubscribe []func()
}

// New creates the collectors on a fresh registry, including Go runtime metrics
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "dispatched_total",
			Help:      "Queries sent to the search provider.",
		}),
		presented: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "presented_total",
			Help:      "Outcomes shown to the user, by kind.",
		}, []string{"kind"}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "discarded_total",
			Help:      "Provider outcomes dropped because a newer query had been dispatched.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "cancelled_total",
			Help:      "Dispatches fenced off by cancel-all or an empty query.",
		}),
		providerSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "provider_seconds",
			Help:      "Provider latency of every finished dispatch, presented or not.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		seeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "seeded_listings_total",
			Help:      "Listings inserted by catalog seeding.",
		}),
	}

	m.registry.MustRegister(
		m.dispatched,
		m.presented,
		m.discarded,
		m.cancelled,
		m.providerSeconds,
		m.seeded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Subscribe feeds the collectors from bus until Unsubscribe is called
func (m *Metrics) Subscribe(bus eventbus.EventBus) {
	m.unsubscribe = append(m.unsubscribe,
		bus.Subscribe(eventbus.EventSearchDispatched, func(eventbus.DomainEvent) {
			m.dispatched.Inc()
		}),
		bus.Subscribe(eventbus.EventSearchPresented, func(e eventbus.DomainEvent) {
			event, ok := e.(eventbus.SearchPresentedEvent)
			if !ok {
				return
			}
			m.presented.WithLabelValues(event.Kind).Inc()
			// The empty short-circuit never reached a provider
			if event.RequestID != 0 && event.Elapsed > 0 {
				m.providerSeconds.Observe(event.Elapsed.Seconds())
			}
		}),
		bus.Subscribe(eventbus.EventSearchDiscarded, func(e eventbus.DomainEvent) {
			m.discarded.Inc()
			if event, ok := e.(eventbus.SearchDiscardedEvent); ok && event.Elapsed > 0 {
				m.providerSeconds.Observe(event.Elapsed.Seconds())
			}
		}),
		bus.Subscribe(eventbus.EventSearchCancelled, func(e eventbus.DomainEvent) {
			if event, ok := e.(eventbus.SearchCancelledEvent); ok {
				m.cancelled.Add(float64(event.Outstanding))
			}
		}),
		bus.Subscribe(eventbus.EventCatalogSeeded, func(e eventbus.DomainEvent) {
			if event, ok := e.(eventbus.CatalogSeededEvent); ok {
				m.seeded.Add(float64(event.Inserted))
			}
		}),
	)
}

// Unsubscribe detaches the collectors from the bus
func (m *Metrics) Unsubscribe() {
	for _, unsub := range m.unsubscribe {
		unsub()
	}
	m.unsubscribe = nil
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Router mounts /metrics and a /health probe
func (m *Metrics) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", m.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

// Serve exposes the router on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	return nil
}
