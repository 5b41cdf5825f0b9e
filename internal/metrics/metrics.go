package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the locator's Prometheus collectors.
type Metrics struct {
	Resolutions      *prometheus.CounterVec
	ReadingsIngested *prometheus.CounterVec
	PublishFailures  *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locator",
			Subsystem: "position",
			Name:      "resolutions_total",
			Help:      "Resolution cycles by degradation tier reached",
		}, []string{"tier"}),

		ReadingsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locator",
			Subsystem: "scan",
			Name:      "readings_ingested_total",
			Help:      "Distance readings stored, by beacon",
		}, []string{"beacon"}),

		PublishFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locator",
			Subsystem: "output",
			Name:      "publish_failures_total",
			Help:      "Failed position deliveries, by sink",
		}, []string{"sink"}),
	}
}

func (m *Metrics) ObserveTier(tier string)        { m.Resolutions.WithLabelValues(tier).Inc() }
func (m *Metrics) ObserveReading(b string)        { m.ReadingsIngested.WithLabelValues(b).Inc() }
func (m *Metrics) ObservePublishFailure(s string) { m.PublishFailures.WithLabelValues(s).Inc() }

// Serve exposes /metrics for gatherer on addr until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
