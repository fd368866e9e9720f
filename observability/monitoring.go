package observability

import (
	"chat-broadcaster/domain"
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shirou/gopsutil/process"
)

// IRuntimeStats is implemented by the orchestrator.
type IRuntimeStats interface {
	Stats(ctx context.Context) (domain.RuntimeStats, error)
}

// MonitoringManager builds health reports from the runtime counters and the process metrics.
type MonitoringManager struct {
	log       *slog.Logger
	runtime   IRuntimeStats
	process   *process.Process
	clock     clockwork.Clock
	startedAt time.Time
	// statsTimeout bounds the wait for the coordinator reply
	statsTimeout time.Duration
}

func NewMonitoringManager(log *slog.Logger, runtime IRuntimeStats, clock clockwork.Clock,
	statsTimeout time.Duration) (*MonitoringManager, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("retrieving own process: %w", err)
	}
	return &MonitoringManager{
		log:       log,
		runtime:   runtime,
		process:   p,
		clock:     clock,
		startedAt: clock.Now(),

		statsTimeout: statsTimeout,
	}, nil
}

// Report is degraded when the coordinator does not answer within statsTimeout.
func (mm *MonitoringManager) Report(ctx context.Context) domain.HealthReport {
	ctx, cancel := context.WithTimeout(ctx, mm.statsTimeout)
	defer cancel()

	report := domain.HealthReport{
		Status:        domain.HealthStatusOK,
		UptimeSeconds: int64(mm.clock.Since(mm.startedAt).Seconds()),
		Process:       mm.processStats(),
	}

	stats, err := mm.runtime.Stats(ctx)
	if err != nil {
		mm.log.Warn("Runtime stats unavailable", "error", err)
		report.Status = domain.HealthStatusDegraded
		return report
	}
	report.Runtime = stats
	return report
}

func (mm *MonitoringManager) processStats() domain.ProcessStats {
	stats := domain.ProcessStats{
		PID:        mm.process.Pid,
		Goroutines: runtime.NumGoroutine(),
	}

	if memory, err := mm.process.MemoryInfo(); err != nil {
		mm.log.Debug("Error while finding process ram usage", "err", err)
	} else {
		stats.RSSBytes = memory.RSS
	}
	if cpu, err := mm.process.CPUPercent(); err != nil {
		mm.log.Debug("Error while finding process cpu usage", "err", err)
	} else {
		stats.CPUPercent = cpu
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.AllocMemMb = m.Alloc / 1024 / 1024
	stats.NumGC = m.NumGC
	return stats
}
