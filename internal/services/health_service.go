package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"reqcheck/internal/exporter"
	"reqcheck/pkg/contracts"
)

// SessionCounter reports the number of live sessions.
type SessionCounter interface {
	Len() int
}

// GateStatus reports whether the access password is configured.
type GateStatus interface {
	Enabled() bool
}

// CacheStatser reports export cache counters.
type CacheStatser interface {
	CacheStats() exporter.CacheStats
}

// HealthService provides health check functionality
type HealthService struct {
	version   contracts.VersionInfo
	sessions  SessionCounter
	gate      GateStatus
	cache     CacheStatser
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. Any collaborator may be nil; the
// matching readiness entry is then omitted.
func NewHealthService(version contracts.VersionInfo, sessions SessionCounter, gate GateStatus, cache CacheStatser, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version.Version),
		slog.String("commit", version.GitCommit),
		slog.String("build_time", version.BuildTime))

	return &HealthService{
		version:   version,
		sessions:  sessions,
		gate:      gate,
		cache:     cache,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns the readiness of the components the report routes
// depend on. Status is "ok" or "degraded".
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
		Services:  make(map[string]interface{}),
	}

	if hs.gate != nil {
		status.Services["access_gate"] = hs.checkGate()
	}
	if hs.sessions != nil {
		status.Services["sessions"] = map[string]interface{}{
			"status": "ready",
			"active": hs.sessions.Len(),
		}
	}
	if hs.cache != nil {
		stats := hs.cache.CacheStats()
		status.Services["export_cache"] = map[string]interface{}{
			"status":  "ready",
			"entries": stats.Entries,
			"max":     stats.MaxSize,
			"hits":    stats.HitCount,
			"misses":  stats.MissCount,
		}
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "degraded"
			break
		}
	}

	hs.logger.DebugContext(ctx, "Health check completed",
		slog.String("status", status.Status))

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":       hs.version.Version,
		"stage":         hs.version.Stage,
		"build_time":    hs.version.BuildTime,
		"git_commit":    hs.version.GitCommit,
		"go_version":    hs.version.GoVersion,
		"os":            hs.version.OS,
		"arch":          hs.version.Architecture,
		"report_format": hs.version.ReportFormat,
		"api_version":   hs.version.APIVersion,
		"uptime":        time.Since(hs.startTime).Seconds(),
		"start_time":    hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkGate() ServiceHealth {
	if !hs.gate.Enabled() {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "access password is not configured; set REQCHECK_SECURITY_PASSWORD_HASH",
		}
	}
	return ServiceHealth{Status: "ready"}
}
