package workers

import (
	"chat-broadcaster/contract"
	"chat-broadcaster/domain"
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

var _ contract.Worker = (*HealthMonitoringWorker)(nil)

// HealthMonitoringWorker periodically evaluates the server health
// and publishes serving transitions.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	clock          clockwork.Clock
	probe          contract.IHealthProbe
	status         contract.IServingStatus
	metricInterval time.Duration
	lastStatus     domain.HealthStatus
}

func NewHealthMonitoringWorker(log *slog.Logger, clock clockwork.Clock, probe contract.IHealthProbe,
	status contract.IServingStatus, metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		clock:          clock,
		probe:          probe,
		status:         status,
		metricInterval: metricInterval,
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	ticker := w.clock.NewTicker(w.metricInterval)
	defer ticker.Stop()

	w.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			w.status.SetServing(false)
			return nil
		case <-ticker.Chan():
			w.Check(ctx)
		}
	}
}

// Check runs one evaluation and returns the report it was based on.
func (w *HealthMonitoringWorker) Check(ctx context.Context) domain.HealthReport {
	report := w.probe.Report(ctx)
	w.log.Debug("Health report",
		"status", report.Status,
		"users", report.Runtime.Coordinator.Users,
		"subscribers", report.Runtime.Coordinator.Subscribers,
		"rss_bytes", report.Process.RSSBytes,
		"cpu_percent", report.Process.CPUPercent,
		"goroutines", report.Process.Goroutines)

	if report.Status != w.lastStatus {
		w.log.Info("Health status changed", "from", w.lastStatus, "to", report.Status)
		w.lastStatus = report.Status
	}
	w.status.SetServing(report.Status == domain.HealthStatusOK)
	return report
}
