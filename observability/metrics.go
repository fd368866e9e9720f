package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chat"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// RuntimeCollector reads the broadcasting counters at scrape time.
// The coordinator owns its counters, so there is nothing to keep in sync.
type RuntimeCollector struct {
	log     *slog.Logger
	runtime IRuntimeStats
	timeout time.Duration

	users           *prometheus.Desc
	subscribers     *prometheus.Desc
	queuedCommands  *prometheus.Desc
	published       *prometheus.Desc
	publishFailures *prometheus.Desc
	delivered       *prometheus.Desc
	dropped         *prometheus.Desc
	evictions       *prometheus.Desc
	restarts        *prometheus.Desc
}

var _ prometheus.Collector = (*RuntimeCollector)(nil)

func NewRuntimeCollector(log *slog.Logger, runtime IRuntimeStats, timeout time.Duration) *RuntimeCollector {
	desc := func(subsystem, name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, nil)
	}
	return &RuntimeCollector{
		log:             log,
		runtime:         runtime,
		timeout:         timeout,
		users:           desc("coordinator", "users", "Number of distinct users with at least one live connection."),
		subscribers:     desc("coordinator", "subscribers", "Number of live connections."),
		queuedCommands:  desc("coordinator", "queued_commands", "Commands waiting in the coordinator mailbox."),
		published:       desc("coordinator", "messages_published_total", "Messages persisted and broadcast."),
		publishFailures: desc("coordinator", "publish_failures_total", "Messages dropped because persistence failed."),
		delivered:       desc("fanout", "frames_delivered_total", "Frames accepted by a subscriber sink."),
		dropped:         desc("fanout", "frames_dropped_total", "Frames rejected by a full, closed or slow sink."),
		evictions:       desc("liveness", "evictions_total", "Subscribers removed after a failed heartbeat."),
		restarts:        desc("supervisor", "worker_restarts_total", "Workers restarted after a crash."),
	}
}

func (c *RuntimeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.users
	ch <- c.subscribers
	ch <- c.queuedCommands
	ch <- c.published
	ch <- c.publishFailures
	ch <- c.delivered
	ch <- c.dropped
	ch <- c.evictions
	ch <- c.restarts
}

// Collect emits nothing when the coordinator does not answer in time.
func (c *RuntimeCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	stats, err := c.runtime.Stats(ctx)
	if err != nil {
		c.log.Warn("Runtime metrics unavailable", "error", err)
		return
	}

	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	gauge(c.users, float64(stats.Coordinator.Users))
	gauge(c.subscribers, float64(stats.Coordinator.Subscribers))
	gauge(c.queuedCommands, float64(stats.Coordinator.QueuedCommands))
	counter(c.published, stats.Coordinator.Published)
	counter(c.publishFailures, stats.Coordinator.PublishFailures)
	counter(c.delivered, stats.Fanout.Delivered)
	counter(c.dropped, stats.Fanout.Dropped)
	counter(c.evictions, stats.Evictions)
	counter(c.restarts, stats.Restarts)
}
