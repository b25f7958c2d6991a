// Package metrics wires Connection lifecycle events to Prometheus
// collectors, the same module-level var-and-init pattern the teacher uses
// in pkg/consensus/prometheus.go.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	handshakesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arcus",
		Name:      "handshakes_completed_total",
		Help:      "Number of Connections that reached the ready state.",
	})
	handshakesFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arcus",
		Name:      "handshakes_failed_total",
		Help:      "Number of Connections that entered the error state.",
	})
	healthTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arcus",
		Name:      "health_timeouts_total",
		Help:      "Number of Connections that observed a health timeout.",
	})
	messagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arcus",
		Name:      "messages_sent_total",
		Help:      "Number of socket writes that transferred at least one byte.",
	})
	messagesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arcus",
		Name:      "messages_received_total",
		Help:      "Number of Messages parsed off the wire and queued for a caller.",
	})
)

func init() {
	prometheus.MustRegister(
		handshakesCompleted,
		handshakesFailed,
		healthTimeouts,
		messagesSent,
		messagesReceived,
	)
}

// Collector implements connection.Observer by incrementing the package's
// Prometheus counters. The zero value is ready to use; every Connection in
// a process can share a single Collector.
type Collector struct{}

// HandshakeCompleted implements connection.Observer.
func (Collector) HandshakeCompleted() { handshakesCompleted.Inc() }

// HandshakeFailed implements connection.Observer.
func (Collector) HandshakeFailed(error) { handshakesFailed.Inc() }

// HealthTimeout implements connection.Observer.
func (Collector) HealthTimeout() { healthTimeouts.Inc() }

// MessageSent implements connection.Observer.
func (Collector) MessageSent() { messagesSent.Inc() }

// MessageReceived implements connection.Observer.
func (Collector) MessageReceived() { messagesReceived.Inc() }

// Handler returns the promhttp handler a Server binds to MetricsAddr.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve runs a blocking HTTP server exposing Handler on addr. It is meant
// to be started on its own goroutine by a cmd entry point; a failure is
// logged rather than propagated since metrics are not load-bearing for the
// protocol itself.
func Serve(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics: server stopped", zap.Error(err))
	}
}
