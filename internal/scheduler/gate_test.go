package scheduler

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestGateFirstCallIsDue(t *testing.T) {
	g := NewGate(5*time.Minute, clock.NewMock())

	assert.True(t, g.Due(StageTokens))
}

func TestGateHoldsBackWithinInterval(t *testing.T) {
	mock := clock.NewMock()
	g := NewGate(5*time.Minute, mock)

	assert.True(t, g.Due(StageTokens))
	assert.False(t, g.Due(StageTokens))

	mock.Add(4 * time.Minute)
	assert.False(t, g.Due(StageTokens))

	mock.Add(1 * time.Minute)
	assert.True(t, g.Due(StageTokens))
}

func TestGateStagesAreIndependent(t *testing.T) {
	mock := clock.NewMock()
	g := NewGate(5*time.Minute, mock)

	assert.True(t, g.Due(StageTokens))
	assert.True(t, g.Due(StageHolders))
	assert.False(t, g.Due(StageTokens))
	assert.False(t, g.Due(StageHolders))
}

func TestGateResetClearsStage(t *testing.T) {
	mock := clock.NewMock()
	g := NewGate(5*time.Minute, mock)

	assert.True(t, g.Due(StageTokens))
	g.Reset(StageTokens)
	assert.True(t, g.Due(StageTokens))
}

func TestGatePassesAtMostOncePerInterval(t *testing.T) {
	mock := clock.NewMock()
	g := NewGate(5*time.Minute, mock)

	passes := 0
	for i := 0; i < 20; i++ {
		if g.Due(StageHolders) {
			passes++
		}
		mock.Add(30 * time.Second)
	}

	// 20 polls over 10 minutes with a 5 minute interval: two passes
	assert.Equal(t, 2, passes)
}
