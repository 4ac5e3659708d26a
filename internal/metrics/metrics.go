// Package metrics exposes Prometheus instruments for indexing and search.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pagecontext"

// Metrics holds the collectors registered on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	sourcesIndexed *prometheus.CounterVec
	chunksWritten  prometheus.Counter
	indexDuration  prometheus.Histogram
	searches       *prometheus.CounterVec
	searchResults  prometheus.Counter
	searchDuration prometheus.Histogram
	storeEntries   prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		sourcesIndexed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sources_indexed_total",
			Help:      "Sources processed by the indexer, by status.",
		}, []string{"status"}),
		chunksWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_written_total",
			Help:      "Index entries upserted into the vector store.",
		}),
		indexDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_duration_seconds",
			Help:      "Time spent indexing one source.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Search requests, by outcome.",
		}, []string{"outcome"}),
		searchResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_results_total",
			Help:      "Results returned across all searches.",
		}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time spent answering one search.",
			Buckets:   prometheus.DefBuckets,
		}),
		storeEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_entries",
			Help:      "Entries in the vector store at last count.",
		}),
	}

	reg.MustRegister(
		m.sourcesIndexed,
		m.chunksWritten,
		m.indexDuration,
		m.searches,
		m.searchResults,
		m.searchDuration,
		m.storeEntries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveIndex records one indexed source.
func (m *Metrics) ObserveIndex(status string, chunks int, d time.Duration) {
	if m == nil {
		return
	}
	m.sourcesIndexed.WithLabelValues(status).Inc()
	if chunks > 0 {
		m.chunksWritten.Add(float64(chunks))
	}
	m.indexDuration.Observe(d.Seconds())
}

// ObserveSearch records one search. A non-nil err counts as a failure.
func (m *Metrics) ObserveSearch(results int, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.searches.WithLabelValues(outcome).Inc()
	m.searchResults.Add(float64(results))
	m.searchDuration.Observe(d.Seconds())
}

// SetStoreEntries records the current store size
func (m *Metrics) SetStoreEntries(n int) {
	if m == nil {
		return
	}
	m.storeEntries.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
