package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqcheck/internal/exporter"
	"reqcheck/internal/shared/testutil"
	"reqcheck/pkg/contracts"
)

type fakeSessions int

func (f fakeSessions) Len() int { return int(f) }

type fakeGate bool

func (f fakeGate) Enabled() bool { return bool(f) }

type fakeCache exporter.CacheStats

func (f fakeCache) CacheStats() exporter.CacheStats { return exporter.CacheStats(f) }

func TestHealthService_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		gate       GateStatus
		wantStatus string
	}{
		{name: "gate configured", gate: fakeGate(true), wantStatus: "ok"},
		{name: "gate disabled", gate: fakeGate(false), wantStatus: "degraded"},
		{name: "no gate", gate: nil, wantStatus: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService(contracts.GetVersionInfo(), fakeSessions(3), tt.gate,
				fakeCache{Entries: 2, MaxSize: 8, HitCount: 5, MissCount: 2}, testutil.DiscardLogger())

			status := hs.HealthCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, contracts.Version, status.Version)

			sessions, ok := status.Services["sessions"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, 3, sessions["active"])

			cache, ok := status.Services["export_cache"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, int64(5), cache["hits"])

			_, hasGate := status.Services["access_gate"]
			assert.Equal(t, tt.gate != nil, hasGate)
		})
	}
}

func TestHealthService_LivenessCheck(t *testing.T) {
	hs := NewHealthService(contracts.GetVersionInfo(), nil, nil, nil, testutil.DiscardLogger())

	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	assert.Contains(t, status.Runtime, "uptime")
	assert.Contains(t, status.Runtime, "goroutines")
	assert.Empty(t, status.Services)
}

func TestHealthService_Version(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	info := contracts.GetVersionInfo()
	info.GitCommit = "abc123"

	hs := NewHealthService(info, nil, nil, nil, logger)
	v := hs.Version()

	assert.Equal(t, contracts.Version, v["version"])
	assert.Equal(t, "abc123", v["git_commit"])
	assert.Equal(t, contracts.APIVersion, v["api_version"])
	assert.Contains(t, v, "start_time")
	assert.True(t, handler.ContainsAttr("commit", "abc123"))
}
