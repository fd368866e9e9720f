package domain

// CoordinatorStats is a point-in-time view of the coordinator state.
type CoordinatorStats struct {
	Users           int    `json:"users"`
	Subscribers     int    `json:"subscribers"`
	QueuedCommands  int    `json:"queued_commands"`
	Published       uint64 `json:"published"`
	PublishFailures uint64 `json:"publish_failures"`
}

type FanoutStats struct {
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`
}

// RuntimeStats aggregates the counters of the broadcasting pipeline.
type RuntimeStats struct {
	Coordinator CoordinatorStats `json:"coordinator"`
	Fanout      FanoutStats      `json:"fanout"`
	Evictions   uint64           `json:"evictions"`
	Restarts    uint64           `json:"worker_restarts"`
}

type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "ok"
	HealthStatusDegraded HealthStatus = "degraded"
)

// ProcessStats describes the server process as seen by the operating system.
type ProcessStats struct {
	PID        int32   `json:"pid"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Goroutines int     `json:"goroutines"`
	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
}

type HealthReport struct {
	Status        HealthStatus `json:"status"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	Runtime       RuntimeStats `json:"runtime"`
	Process       ProcessStats `json:"process"`
}
