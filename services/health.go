package services

import (
	"context"
	"fmt"
	"time"

	"project-analyzer-web/clients"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Name      string        `json:"name"`
	Status    HealthStatus  `json:"status"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// SystemHealth represents the overall system health
type SystemHealth struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Uptime     time.Duration              `json:"uptime"`
	Components map[string]ComponentHealth `json:"components"`
}

// HealthChecker interface for health checking
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) ComponentHealth
}

// HealthService runs the registered checkers and aggregates their results.
type HealthService struct {
	checkers  []HealthChecker
	startTime time.Time
}

// NewHealthService creates a new health service
func NewHealthService() *HealthService {
	return &HealthService{startTime: time.Now()}
}

// RegisterChecker adds a component checker.
func (s *HealthService) RegisterChecker(checker HealthChecker) {
	s.checkers = append(s.checkers, checker)
}

// CheckHealth runs all checkers. The system is unhealthy when any component
// is unhealthy, degraded when any is degraded.
func (s *HealthService) CheckHealth(ctx context.Context) SystemHealth {
	health := SystemHealth{
		Status:     HealthStatusHealthy,
		Timestamp:  time.Now(),
		Uptime:     time.Since(s.startTime),
		Components: make(map[string]ComponentHealth),
	}

	for _, checker := range s.checkers {
		component := checker.Check(ctx)
		health.Components[checker.Name()] = component

		switch component.Status {
		case HealthStatusUnhealthy:
			health.Status = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if health.Status == HealthStatusHealthy {
				health.Status = HealthStatusDegraded
			}
		}
	}

	return health
}

// BackendChecker reports whether the analysis backend is reachable.
type BackendChecker struct {
	client clients.AnalyzerAPI
}

// NewBackendChecker creates a backend reachability checker.
func NewBackendChecker(client clients.AnalyzerAPI) *BackendChecker {
	return &BackendChecker{client: client}
}

// Name implements HealthChecker.
func (c *BackendChecker) Name() string { return "analysis_backend" }

// Check implements HealthChecker. The UI stays usable without a backend, so
// an unreachable backend reports degraded rather than unhealthy.
func (c *BackendChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()
	component := ComponentHealth{
		Name:      c.Name(),
		Status:    HealthStatusHealthy,
		Timestamp: start,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	response, err := c.client.Health(checkCtx)
	component.Duration = time.Since(start)
	if err != nil {
		component.Status = HealthStatusDegraded
		component.Message = err.Error()
		return component
	}
	if response.Status != "healthy" {
		component.Status = HealthStatusDegraded
		component.Message = "backend reports " + response.Status
	}
	return component
}

// SessionStoreChecker reports session store liveness and size.
type SessionStoreChecker struct {
	store SessionStore
}

// NewSessionStoreChecker creates a session store checker.
func NewSessionStoreChecker(store SessionStore) *SessionStoreChecker {
	return &SessionStoreChecker{store: store}
}

// Name implements HealthChecker.
func (c *SessionStoreChecker) Name() string { return "session_store" }

// Check implements HealthChecker.
func (c *SessionStoreChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()
	stats := c.store.GetStats()
	return ComponentHealth{
		Name:      c.Name(),
		Status:    HealthStatusHealthy,
		Message:   fmt.Sprintf("%d live sessions", stats.Size),
		Timestamp: start,
		Duration:  time.Since(start),
	}
}
