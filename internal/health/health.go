package health

import (
	"context"
	"fmt"
	"time"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/cache"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Pinger is satisfied by *db.Provider.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db       Pinger
	diskPath string
}

type HealthStatus struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
	Cache    string         `json:"cache"`
	Host     *HostHealth    `json:"host,omitempty"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

type HostHealth struct {
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    string  `json:"memory_used"`
	MemoryTotal   string  `json:"memory_total"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsed      string  `json:"disk_used"`
	DiskTotal     string  `json:"disk_total"`
}

func NewHealthChecker(db Pinger) *HealthChecker {
	return &HealthChecker{db: db, diskPath: "/"}
}

// CheckBasic pings the database and reports the cache state. A missing
// cache is "disabled" and does not make the service unhealthy.
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	dbHealth := h.checkDatabase(ctx)

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
		Cache:    cacheStatus(),
	}
}

// CheckDetailed adds host memory and disk usage.
func (h *HealthChecker) CheckDetailed(ctx context.Context) HealthStatus {
	status := h.CheckBasic(ctx)

	host := &HostHealth{}
	if memStats, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		host.MemoryPercent = memStats.UsedPercent
		host.MemoryUsed = formatBytes(memStats.Used)
		host.MemoryTotal = formatBytes(memStats.Total)
	}
	if diskStats, err := disk.UsageWithContext(ctx, h.diskPath); err == nil {
		host.DiskPercent = diskStats.UsedPercent
		host.DiskUsed = formatBytes(diskStats.Used)
		host.DiskTotal = formatBytes(diskStats.Total)
	}
	status.Host = host
	return status
}

func (h *HealthChecker) checkDatabase(ctx context.Context) DatabaseHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DatabaseHealth{
			Status:       "unhealthy",
			ResponseTime: responseTime,
			Error:        err.Error(),
		}
	}

	return DatabaseHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}

func cacheStatus() string {
	switch {
	case !cache.Enabled():
		return "disabled"
	case cache.IsHealthy():
		return "healthy"
	default:
		return "unhealthy"
	}
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
