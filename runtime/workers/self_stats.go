package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// SelfStatsWorker logs the engine's own CPU, RAM and OS status on a fixed
// cadence so operators can spot a runaway sweep without external tooling.
type SelfStatsWorker struct {
	interval time.Duration
	log      *slog.Logger
}

func NewSelfStatsWorker(interval time.Duration, log *slog.Logger) *SelfStatsWorker {
	return &SelfStatsWorker{interval: interval, log: log}
}

func (w *SelfStatsWorker) Run(ctx context.Context) error {
	w.log.Info("Starting self stats worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
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
			rss, cpu, status, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.log.Info("Engine self stats",
				"pid", os.Getpid(),
				"status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss)
		}
	}
}

// getSelfStats retrieves memory, CPU and OS status for the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
