package observability

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
)

// Monitor periodically logs process and runtime statistics. It runs under
// the supervisor next to the event fan-out worker.
type Monitor struct {
	log      *slog.Logger
	interval time.Duration
	proc     *process.Process
}

func NewMonitor(log *slog.Logger, interval time.Duration) (*Monitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Monitor{log: log, interval: interval, proc: proc}, nil
}

func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.report()
		}
	}
}

func (m *Monitor) report() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	fields := []any{
		"goroutines", runtime.NumGoroutine(),
		"alloc_mb", memStats.Alloc / 1024 / 1024,
		"num_gc", memStats.NumGC,
	}

	if cpuPercent, err := m.proc.CPUPercent(); err == nil {
		fields = append(fields, "cpu_percent", cpuPercent)
	}
	if memInfo, err := m.proc.MemoryInfo(); err == nil {
		fields = append(fields, "rss_mb", memInfo.RSS/1024/1024)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		fields = append(fields, "host_mem_used_percent", vm.UsedPercent)
	}

	m.log.Info("process stats", fields...)
}
