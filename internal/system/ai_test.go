package system

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ematoledor/starflight-server/internal/data"
	"github.com/ematoledor/starflight-server/internal/geom"
	"github.com/ematoledor/starflight-server/internal/physics"
	"github.com/ematoledor/starflight-server/internal/world"
)

const tick = 50 * time.Millisecond

type aiFixture struct {
	state *world.State
	space *physics.Space
	sys   *AISystem
	alien *world.AlienShip
	pilot *world.Spacecraft
}

func newAIFixture(t *testing.T, margin float64) *aiFixture {
	t.Helper()
	st := world.NewState()
	space := physics.NewSpace(500, st.Entities.Registry())

	sec := &world.Sector{Name: "Arena", Radius: 5000}
	st.Sectors = append(st.Sectors, sec)

	a := &world.AlienShip{
		ID:              st.Entities.CreateEntity(),
		Class:           "scout",
		Hull:            40,
		MaxHull:         40,
		Speed:           200,
		DetectionRadius: 300,
		AggroRadius:     200,
		ShootingRange:   120,
		State:           world.AIPatrolling,
		PatrolTarget:    geom.Vec3{X: 1000},
	}
	st.AddAlien(sec, a)

	pilot := &world.Spacecraft{
		ID:      st.Entities.CreateEntity(),
		Hull:    100,
		MaxHull: 100,
	}
	st.Player = pilot

	sys := NewAISystem(st, space, rand.New(rand.NewSource(1)), margin)
	return &aiFixture{state: st, space: space, sys: sys, alien: a, pilot: pilot}
}

func (f *aiFixture) placePilot(dist float64) {
	f.pilot.Position = f.alien.Position.Add(geom.Vec3{X: dist})
}

func TestAIEntersTrackingAtDetectionRadius(t *testing.T) {
	f := newAIFixture(t, 0.1)

	f.placePilot(301)
	f.sys.Update(tick)
	assert.Equal(t, world.AIPatrolling, f.alien.State)

	f.placePilot(300)
	f.sys.Update(tick)
	assert.Equal(t, world.AITracking, f.alien.State)
}

func TestAIEntersEngagingAtAggroRadius(t *testing.T) {
	f := newAIFixture(t, 0.1)

	f.placePilot(250)
	f.sys.Update(tick)
	require.Equal(t, world.AITracking, f.alien.State)

	f.placePilot(200)
	f.sys.Update(tick)
	assert.Equal(t, world.AIEngaging, f.alien.State)
}

func TestAIHysteresisHoldsStateInsideMargin(t *testing.T) {
	f := newAIFixture(t, 0.1)

	f.placePilot(300)
	f.sys.Update(tick)
	require.Equal(t, world.AITracking, f.alien.State)

	// Past the radius but inside radius*(1+margin): state holds.
	f.placePilot(320)
	f.sys.Update(tick)
	assert.Equal(t, world.AITracking, f.alien.State)

	// Past the margin: drops back to patrolling.
	f.placePilot(331)
	f.sys.Update(tick)
	assert.Equal(t, world.AIPatrolling, f.alien.State)
}

func TestAIHysteresisOnAggroExit(t *testing.T) {
	f := newAIFixture(t, 0.1)

	f.placePilot(200)
	f.sys.Update(tick)
	f.sys.Update(tick)
	require.Equal(t, world.AIEngaging, f.alien.State)

	f.placePilot(215)
	f.sys.Update(tick)
	assert.Equal(t, world.AIEngaging, f.alien.State, "inside aggro margin")

	f.placePilot(221)
	f.sys.Update(tick)
	assert.Equal(t, world.AITracking, f.alien.State)
}

func TestAIZeroMarginFlipsOnBoundary(t *testing.T) {
	f := newAIFixture(t, 0)

	f.placePilot(300)
	f.sys.Update(tick)
	require.Equal(t, world.AITracking, f.alien.State)

	f.placePilot(300.5)
	f.sys.Update(tick)
	assert.Equal(t, world.AIPatrolling, f.alien.State,
		"without a margin the boundary flips immediately")
}

func TestAIPatrolsWithoutPilot(t *testing.T) {
	f := newAIFixture(t, 0.1)
	f.state.Player = nil

	f.sys.Update(tick)
	assert.Equal(t, world.AIPatrolling, f.alien.State)
	assert.Greater(t, f.alien.Velocity.Len(), 0.0, "patrolling alien must move")
	assert.Less(t, f.alien.Velocity.Len(), f.alien.Speed, "patrol pace is below full speed")
}

func TestAIDeadPilotDropsEngagement(t *testing.T) {
	f := newAIFixture(t, 0.1)

	f.placePilot(150)
	f.sys.Update(tick) // patrolling -> tracking
	f.sys.Update(tick) // tracking -> engaging
	require.Equal(t, world.AIEngaging, f.alien.State)

	f.pilot.Dead = true
	f.sys.Update(tick)
	assert.Equal(t, world.AIPatrolling, f.alien.State)
}

func TestAIEngageApproachesThenHoldsAndFires(t *testing.T) {
	f := newAIFixture(t, 0.1)
	w := world.NewWeapon(&data.WeaponTemplate{
		ID: "zap", Cooldown: 0.2, MaxProjectiles: 4,
		ProjectileSpeed: 500, Lifespan: 2, Damage: 8, MuzzleOffset: 5, HitRadius: 3,
	}, f.state.Entities.CreateEntity, nil)
	f.alien.Weapon = w

	// Outside shooting range: full-speed approach, no shots. Two updates
	// because the state machine advances one transition per tick.
	f.placePilot(180)
	f.sys.Update(tick)
	f.sys.Update(tick)
	require.Equal(t, world.AIEngaging, f.alien.State)
	assert.InDelta(t, f.alien.Speed, f.alien.Velocity.Len(), 1e-9)
	assert.Empty(t, w.Projectiles)

	// Inside shooting range: hold position and fire.
	f.placePilot(100)
	f.sys.Update(tick)
	assert.Equal(t, geom.Vec3{}, f.alien.Velocity)
	require.Len(t, w.Projectiles, 1)
	assert.NotNil(t, f.space.Body(w.Projectiles[0].ID),
		"fired projectile must enter the physics space")
	assert.InDelta(t, 1.0, f.alien.Forward.X, 1e-9, "faces the pilot")
}

func TestAIDestroyedIsTerminal(t *testing.T) {
	f := newAIFixture(t, 0.1)
	f.alien.State = world.AIDestroyed

	f.placePilot(50)
	f.sys.Update(tick)
	assert.Equal(t, world.AIDestroyed, f.alien.State)
	assert.Equal(t, geom.Vec3{}, f.alien.Velocity)
}
