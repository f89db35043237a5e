package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "votebot"

// Collector owns the bot's Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	Messages           *prometheus.CounterVec
	RemoteCalls        *prometheus.CounterVec
	RemoteCallDuration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Chat messages handled, by the route they took",
		}, []string{"route"}),
		RemoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Calls to the survey service, by operation and HTTP status",
		}, []string{"operation", "status"}),
		RemoteCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Duration of calls to the survey service",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(c.Messages, c.RemoteCalls, c.RemoteCallDuration)
	return c
}

// CountMessage records one handled chat message.
func (c *Collector) CountMessage(route string) {
	c.Messages.WithLabelValues(route).Inc()
}

// ObserveRemoteCall records one call to the survey service. A status of 0
// is reported as "error".
func (c *Collector) ObserveRemoteCall(operation string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	c.RemoteCalls.WithLabelValues(operation, label).Inc()
	c.RemoteCallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
