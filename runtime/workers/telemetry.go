package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"github.com/PY0226H/aicomm/contract"
	"github.com/PY0226H/aicomm/observability"
)

// TelemetryWorker periodically samples process health (RSS, CPU) and
// registry growth into the metrics. Reading registry stats takes shard
// read locks only, so sampling never interferes with fan-out.
type TelemetryWorker struct {
	log            *slog.Logger
	registry       contract.IRegistry
	metrics        *observability.Metrics
	metricInterval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, registry contract.IRegistry,
	metrics *observability.Metrics, metricInterval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{
		log:            log,
		registry:       registry,
		metrics:        metrics,
		metricInterval: metricInterval,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.sample(p)
		}
	}
}

func (w *TelemetryWorker) sample(p *process.Process) {
	stats := w.registry.Stats()
	w.metrics.KnownUsers.Set(float64(stats.Users))

	rss, cpu, err := selfStats(p)
	if err != nil {
		w.log.Error("Failed to collect self stats", "err", err)
		return
	}
	w.metrics.ProcessRSSBytes.Set(float64(rss))
	w.metrics.ProcessCPUPercent.Set(cpu)

	w.log.Debug("telemetry sample",
		"users", stats.Users,
		"subscribers", stats.Subscribers,
		"rss_bytes", rss,
		"cpu_percent", cpu,
	)
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
