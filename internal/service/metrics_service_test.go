package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest("GET", "/teams/:teamId/schedule", 200, 20*time.Millisecond)
	m.ObserveHTTPRequest("POST", "/teams/:teamId/schedule/compute", 200, 80*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.ObserveDBQuery("list_training_slots", 5*time.Millisecond)
	m.ObservePlanComputation("FEASIBLE", 12*time.Millisecond, 3)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 50.0, snap.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.001)
	assert.Equal(t, uint64(1), snap.DBQueryCount)
	assert.Equal(t, uint64(1), snap.PlanComputations)
	assert.False(t, snap.GeneratedAt.IsZero())
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObservePlanComputation("INFEASIBLE", time.Millisecond, 0)
	assert.Equal(t, uint64(0), m.Snapshot().RequestsTotal)
	assert.NotNil(t, m.Handler())
}
