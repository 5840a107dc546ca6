package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openst/mosaic/log"
)

const namespace = "mosaic"

var (
	BlocksObservedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blocks_observed_total",
		Help:      "number of blocks streamed from the chain node",
	}, []string{"chain"})

	BlockErrorsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "block_errors_total",
		Help:      "number of blocks skipped because of retrieval or validation errors",
	}, []string{"chain"})

	EventsDecodedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_decoded_total",
		Help:      "number of logs decoded into domain events",
	}, []string{"chain"})

	EventDecodeErrorsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_decode_errors_total",
		Help:      "number of logs that matched a decoder but failed to decode",
	}, []string{"chain"})

	BlocksReportedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blocks_reported_total",
		Help:      "number of reportBlock transactions submitted",
	}, []string{"chain"})

	ReportErrorsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_errors_total",
		Help:      "number of failed block store queries and submissions",
	}, []string{"chain"})
)

// Serve exposes the prometheus metrics over HTTP until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.GetLogger().WithModule("metrics").Error("failed to shutdown the metrics server", "error", err)
		}
	}()

	log.GetLogger().WithModule("metrics").Info("metrics server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
