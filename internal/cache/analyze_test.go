package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportingStore struct {
	Store
	used int64
	err  error
}

func (r reportingStore) MemoryUsage(context.Context) (int64, error) {
	return r.used, r.err
}

func findingCodes(a Analysis) []string {
	codes := make([]string, 0, len(a.Findings))
	for _, f := range a.Findings {
		codes = append(codes, f.Code)
	}
	return codes
}

func TestAnalyzeWithoutTrafficIsHealthy(t *testing.T) {
	m := newTestManager(t, struct{ Store }{NewMemoryStore()})
	a := m.AnalyzePerformance(context.Background())
	assert.True(t, a.Healthy)
	assert.Empty(t, a.Findings)
	assert.Nil(t, a.MemoryBytes)
}

func TestAnalyzeFlagsLowHitRatio(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, NewMemoryStore())
	for i := 0; i < 3; i++ {
		_, _, err := m.Get(ctx, "missing")
		require.NoError(t, err)
	}

	a := m.AnalyzePerformance(ctx)
	assert.False(t, a.Healthy)
	assert.Equal(t, []string{"low_hit_ratio"}, findingCodes(a))
	require.NotNil(t, a.MemoryBytes)
	assert.Zero(t, *a.MemoryBytes)
}

func TestAnalyzeFlagsHighMemory(t *testing.T) {
	store := reportingStore{Store: NewMemoryStore(), used: 150 * 1024 * 1024}
	m := newTestManager(t, store)

	a := m.AnalyzePerformance(context.Background())
	assert.Equal(t, []string{"high_memory_usage"}, findingCodes(a))
	assert.Contains(t, a.Findings[0].Message, "150 MB")
}

func TestAnalyzeIgnoresMemoryErrors(t *testing.T) {
	store := reportingStore{Store: NewMemoryStore(), err: errors.New("info disabled")}
	m := newTestManager(t, store)

	a := m.AnalyzePerformance(context.Background())
	assert.True(t, a.Healthy)
	assert.Nil(t, a.MemoryBytes)
}
