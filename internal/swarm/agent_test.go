package swarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgentStep_PullsTowardNeighborMean(t *testing.T) {
	a := newAgent(0, 50000, RoleFollower)
	a.Step([]float64{60000, 62000}, 0.3)
	// mean 61000, pull 0.3 * 11000
	assert.InDelta(t, 53300, a.Frequency, 1e-9)
}

func TestAgentStep_EmptyNeighborhoodUnchanged(t *testing.T) {
	a := newAgent(0, 47000, RoleFollower)
	a.Step(nil, 0.3)
	assert.Equal(t, 47000.0, a.Frequency)
}

func TestAgentStep_ObserverNeverMoves(t *testing.T) {
	a := newAgent(0, 47000, RoleObserver)
	a.Step([]float64{80000, 81000, 82000}, 0.3)
	assert.Equal(t, 47000.0, a.Frequency)
}

func TestAgentStep_DissenterPushesAway(t *testing.T) {
	a := newAgent(0, 50000, RoleDissenter)
	a.Step([]float64{60000}, 0.3)
	assert.InDelta(t, 47000, a.Frequency, 1e-9)
}

func TestAgentSynced(t *testing.T) {
	a := newAgent(0, 60050, RoleFollower)
	assert.True(t, a.Synced(60000, 100))
	assert.False(t, a.Synced(60000, 50))
	assert.False(t, a.Synced(60150, 100))
}

func TestAgentHistory_Bounded(t *testing.T) {
	a := newAgent(0, 50000, RoleFollower)
	for i := 0; i < historyLimit+50; i++ {
		a.Step([]float64{60000}, 0.1)
	}
	h := a.History()
	assert.Len(t, h, historyLimit)
	// The trajectory approaches the neighbor mean; the retained window
	// ends at the current frequency.
	assert.Equal(t, a.Frequency, h[len(h)-1])
	assert.InDelta(t, 60000, a.Frequency, 1)
}

func TestRoleAndPhaseNames(t *testing.T) {
	assert.Equal(t, "follower", RoleFollower.String())
	assert.Equal(t, "observer", RoleObserver.String())
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "transmitted", PhaseTransmitted.String())
}
