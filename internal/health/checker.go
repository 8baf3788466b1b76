package health

import (
	"context"
	"fmt"
	"time"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus represents the overall system health
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Message   string                   `json:"message"`
	Services  map[string]ServiceHealth `json:"services"`
	Sessions  int                      `json:"online_sessions"`
	Uptime    string                   `json:"uptime"`
}

// ServiceHealth represents health of a service
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Latency string `json:"latency_ms"`
}

// HealthChecker performs health checks on system components
type HealthChecker struct {
	store     Pinger
	sessions  func() int
	timeout   time.Duration
	startTime time.Time
}

// NewHealthChecker creates a new health checker. sessions may be nil.
func NewHealthChecker(store Pinger, sessions func() int, timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthChecker{
		store:     store,
		sessions:  sessions,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// Check performs a complete health check
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  make(map[string]ServiceHealth),
		Uptime:    hc.calculateUptime(),
	}

	dbHealth := hc.checkDatabase(ctx)
	status.Services["database"] = dbHealth

	if hc.sessions != nil {
		status.Sessions = hc.sessions()
	}

	if dbHealth.Status != "healthy" {
		status.Status = "degraded"
		status.Message = "Database connectivity issue"
	} else {
		status.Message = fmt.Sprintf("System operating normally with %d online sessions", status.Sessions)
	}

	return status
}

// checkDatabase verifies database connectivity
func (hc *HealthChecker) checkDatabase(ctx context.Context) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	start := time.Now()
	err := hc.store.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ServiceHealth{
			Status:  "unhealthy",
			Message: "Database connection failed: " + err.Error(),
			Latency: fmt.Sprintf("%d", latency.Milliseconds()),
		}
	}

	return ServiceHealth{
		Status:  "healthy",
		Message: "Database connection successful",
		Latency: fmt.Sprintf("%d", latency.Milliseconds()),
	}
}

// calculateUptime calculates system uptime as human-readable string
func (hc *HealthChecker) calculateUptime() string {
	elapsed := time.Since(hc.startTime)

	days := int(elapsed.Hours()) / 24
	hours := int(elapsed.Hours()) % 24
	minutes := int(elapsed.Minutes()) % 60
	seconds := int(elapsed.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
