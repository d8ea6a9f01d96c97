package health

import (
	"context"
	"runtime"
	"syscall"
	"time"

	"github.com/omnisearch/backend/internal/adapters"
	redisc "github.com/omnisearch/backend/internal/cache/redis"
)

type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

type OverallStatus string

const (
	StatusHealthy   OverallStatus = "healthy"
	StatusDegraded  OverallStatus = "degraded"
	StatusUnhealthy OverallStatus = "unhealthy"
)

type Check struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}

type Report struct {
	Status OverallStatus `json:"status"`
	Checks []Check       `json:"checks"`
	Time   int64         `json:"time"`
}

// Checker runs the service health checks: cache store reachability,
// integration registry, memory pressure, and disk headroom.
type Checker struct {
	redis    *redisc.Client
	registry *adapters.Registry

	heapWarnBytes uint64
	diskWarnRatio float64
	diskPath      string
}

func NewChecker(redis *redisc.Client, registry *adapters.Registry) *Checker {
	return &Checker{
		redis:         redis,
		registry:      registry,
		heapWarnBytes: 1 << 30,
		diskWarnRatio: 0.9,
		diskPath:      "/",
	}
}

func (c *Checker) Run(ctx context.Context) Report {
	checks := []Check{
		c.checkCacheStore(ctx),
		c.checkIntegrations(),
		c.checkMemory(),
		c.checkDisk(),
	}

	return Report{
		Status: overall(checks),
		Checks: checks,
		Time:   time.Now().Unix(),
	}
}

func overall(checks []Check) OverallStatus {
	warned := false
	for _, check := range checks {
		switch check.Status {
		case StatusFail:
			return StatusUnhealthy
		case StatusWarn:
			warned = true
		}
	}
	if warned {
		return StatusDegraded
	}
	return StatusHealthy
}

func (c *Checker) checkCacheStore(ctx context.Context) Check {
	check := Check{Name: "cache_store"}
	if c.redis == nil {
		check.Status = StatusWarn
		check.Message = "not configured"
		return check
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.redis.Ping(ctx); err != nil {
		check.Status = StatusFail
		check.Message = err.Error()
		return check
	}
	check.Status = StatusPass
	return check
}

func (c *Checker) checkIntegrations() Check {
	check := Check{Name: "integrations"}
	if c.registry == nil || c.registry.Len() == 0 {
		check.Status = StatusFail
		check.Message = "no adapters configured"
		return check
	}
	check.Status = StatusPass
	return check
}

func (c *Checker) checkMemory() Check {
	check := Check{Name: "memory"}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	if stats.HeapAlloc > c.heapWarnBytes {
		check.Status = StatusWarn
		check.Message = "heap allocation above threshold"
		return check
	}
	check.Status = StatusPass
	return check
}

func (c *Checker) checkDisk() Check {
	check := Check{Name: "disk"}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(c.diskPath, &stat); err != nil {
		check.Status = StatusWarn
		check.Message = err.Error()
		return check
	}

	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	if total == 0 {
		check.Status = StatusWarn
		check.Message = "could not determine disk usage"
		return check
	}

	used := float64(total-free) / float64(total)
	if used > c.diskWarnRatio {
		check.Status = StatusWarn
		check.Message = "disk usage above threshold"
		return check
	}
	check.Status = StatusPass
	return check
}
