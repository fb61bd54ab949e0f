package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ematoledor/starflight-server/internal/geom"
	"github.com/ematoledor/starflight-server/internal/physics"
	"github.com/ematoledor/starflight-server/internal/universe"
	"github.com/ematoledor/starflight-server/internal/world"
)

type hazardFixture struct {
	state *world.State
	space *physics.Space
	sys   *HazardSystem
	sec   *world.Sector
}

func newHazardFixture(t *testing.T) *hazardFixture {
	t.Helper()
	st := world.NewState()
	space := physics.NewSpace(500, st.Entities.Registry())
	sec := &world.Sector{Name: "Hydrae Deep", Radius: 5000, Danger: 3}
	st.Sectors = append(st.Sectors, sec)

	// Tables stay nil: respawns are scheduled but never run in these tests.
	gen := universe.NewGenerator(st, space, nil, nil, nil,
		universe.Options{Seed: 1, TickRate: tick}, zap.NewNop())
	sys := NewHazardSystem(st, space, gen, zap.NewNop())
	return &hazardFixture{state: st, space: space, sys: sys, sec: sec}
}

func (f *hazardFixture) addAnomaly(pulseEvery uint64) *world.Anomaly {
	a := &world.Anomaly{
		ID:          f.state.Entities.CreateEntity(),
		Kind:        world.AnomalyEnergy,
		Radius:      100,
		PulseDamage: 15,
		PulseEvery:  pulseEvery,
	}
	f.sec.Anomalies = append(f.sec.Anomalies, a)
	f.state.Anomalies = append(f.state.Anomalies, a)
	return a
}

func (f *hazardFixture) addAlien(pos geom.Vec3, hull int32) *world.AlienShip {
	a := &world.AlienShip{
		ID:       f.state.Entities.CreateEntity(),
		Class:    "scout",
		Position: pos,
		Hull:     hull,
		MaxHull:  hull,
		State:    world.AIPatrolling,
	}
	f.state.AddAlien(f.sec, a)
	f.space.AddObject(a.ID, physics.GroupAlien, pos, 10)
	return a
}

// runTicks advances the clock and pumps due deferred actions, as the
// deferred-action system would.
func (f *hazardFixture) runTicks(n int) {
	for i := 0; i < n; i++ {
		f.state.AdvanceTick()
		f.state.RunDeferred()
	}
}

func TestAnomalyPulseDamagesShipsInRadius(t *testing.T) {
	f := newHazardFixture(t)
	f.addAnomaly(4)

	pilot := &world.Spacecraft{ID: f.state.Entities.CreateEntity(), Hull: 100, MaxHull: 100}
	pilot.Position = geom.Vec3{X: 50}
	f.state.Player = pilot

	inside := f.addAlien(geom.Vec3{X: -60}, 40)
	outside := f.addAlien(geom.Vec3{X: 150}, 40)

	f.sys.Prime()
	f.runTicks(3)
	assert.Equal(t, int32(100), pilot.Hull, "no pulse before the period elapses")

	f.runTicks(1)
	assert.Equal(t, int32(85), pilot.Hull)
	assert.Equal(t, int32(25), inside.Hull)
	assert.Equal(t, int32(40), outside.Hull, "ship past the radius must be spared")

	// The pulse reschedules itself on the same period.
	f.runTicks(4)
	assert.Equal(t, int32(70), pilot.Hull)
	assert.Equal(t, int32(10), inside.Hull)
}

func TestAnomalyPulseDestroysAlien(t *testing.T) {
	f := newHazardFixture(t)
	f.addAnomaly(2)
	doomed := f.addAlien(geom.Vec3{X: 30}, 10)

	f.sys.Prime()
	f.runTicks(2)

	assert.Equal(t, world.AIDestroyed, doomed.State)
	assert.Nil(t, f.state.Alien(doomed.ID), "destroyed alien must leave the roster")
	assert.Empty(t, f.sec.Aliens)

	// Pending work: the rescheduled pulse plus the respawn for the loss.
	require.Equal(t, 2, f.state.PendingDeferred())
}
