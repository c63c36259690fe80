package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ProcessStats is a point-in-time view of the Go runtime
type ProcessStats struct {
	Goroutines  int     `json:"goroutines"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`
	SysMB       float64 `json:"sys_mb"`
	NumGC       uint32  `json:"gc_count"`
	LastGCPause string  `json:"last_gc_pause"`
	Uptime      string  `json:"uptime"`
}

// ReadProcessStats samples the runtime; started is the process start time
func ReadProcessStats(started time.Time) ProcessStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return ProcessStats{
		Goroutines:  runtime.NumGoroutine(),
		HeapAllocMB: float64(mem.HeapAlloc) / (1 << 20),
		SysMB:       float64(mem.Sys) / (1 << 20),
		NumGC:       mem.NumGC,
		LastGCPause: time.Duration(mem.PauseNs[(mem.NumGC+255)%256]).String(),
		Uptime:      time.Since(started).Round(time.Second).String(),
	}
}

// RegisterProcessMetrics registers observable runtime gauges on meter. They
// are sampled on every collection, so there is no background goroutine.
// Call Unregister on the result during shutdown.
func RegisterProcessMetrics(meter metric.Meter, started time.Time) (metric.Registration, error) {
	goroutines, err := meter.Int64ObservableGauge("process_goroutines",
		metric.WithDescription("Number of active goroutines"))
	if err != nil {
		return nil, fmt.Errorf("goroutines gauge: %w", err)
	}
	heap, err := meter.Int64ObservableGauge("process_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, fmt.Errorf("heap gauge: %w", err)
	}
	gcCount, err := meter.Int64ObservableCounter("process_gc_cycles",
		metric.WithDescription("Completed GC cycles"))
	if err != nil {
		return nil, fmt.Errorf("gc counter: %w", err)
	}
	uptime, err := meter.Float64ObservableGauge("process_uptime_seconds",
		metric.WithDescription("Seconds since the process started"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("uptime gauge: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		o.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))
		o.ObserveInt64(heap, int64(mem.HeapAlloc))
		o.ObserveInt64(gcCount, int64(mem.NumGC))
		o.ObserveFloat64(uptime, time.Since(started).Seconds())
		return nil
	}, goroutines, heap, gcCount, uptime)
}
