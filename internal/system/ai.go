package system

import (
	"math/rand"
	"time"

	"github.com/ematoledor/starflight-server/internal/core/ecs"
	coresys "github.com/ematoledor/starflight-server/internal/core/system"
	"github.com/ematoledor/starflight-server/internal/geom"
	"github.com/ematoledor/starflight-server/internal/physics"
	"github.com/ematoledor/starflight-server/internal/world"
)

// Patrol pacing relative to a ship's rated speed.
const (
	patrolSpeedFactor   = 0.4
	trackSpeedFactor    = 0.7
	patrolRetargetTicks = 600
	patrolArriveDist    = 25.0
)

// AISystem drives alien behavioral states. Transitions follow the pilot's
// distance across the detection and aggro radii; leaving a state requires
// backing out past the radius plus a hysteresis margin, so a pilot sitting
// exactly on a threshold cannot flip the state every frame. Phase 2
// (Update), registered before movement so velocities land in the same tick.
type AISystem struct {
	state  *world.State
	space  *physics.Space
	rng    *rand.Rand
	margin float64 // fraction of each radius, e.g. 0.1
}

func NewAISystem(st *world.State, space *physics.Space, rng *rand.Rand, hysteresisMargin float64) *AISystem {
	if hysteresisMargin < 0 {
		hysteresisMargin = 0
	}
	return &AISystem{state: st, space: space, rng: rng, margin: hysteresisMargin}
}

func (s *AISystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *AISystem) Update(dt time.Duration) {
	pilot := s.state.Player
	for _, a := range s.state.Aliens() {
		if a.State == world.AIDestroyed {
			continue
		}
		if pilot == nil || pilot.Dead {
			if a.State != world.AIPatrolling {
				a.State = world.AIPatrolling
			}
			s.patrol(a)
			continue
		}
		dist := a.Position.DistanceTo(pilot.Position)
		s.transition(a, dist)

		switch a.State {
		case world.AIPatrolling:
			s.patrol(a)
		case world.AITracking:
			s.track(a, pilot)
		case world.AIEngaging:
			s.engage(a, pilot, dist)
		}
	}
}

// transition re-evaluates the state for the current pilot distance.
// Entry uses the raw radius; exit uses radius*(1+margin).
func (s *AISystem) transition(a *world.AlienShip, dist float64) {
	switch a.State {
	case world.AIPatrolling:
		if dist <= a.DetectionRadius {
			a.State = world.AITracking
		}
	case world.AITracking:
		if dist <= a.AggroRadius {
			a.State = world.AIEngaging
		} else if dist > a.DetectionRadius*(1+s.margin) {
			a.State = world.AIPatrolling
		}
	case world.AIEngaging:
		if dist > a.AggroRadius*(1+s.margin) {
			a.State = world.AITracking
		}
	}
}

func (s *AISystem) patrol(a *world.AlienShip) {
	a.PatrolTicks++
	arrived := a.Position.DistanceTo(a.PatrolTarget) <= patrolArriveDist
	if arrived || a.PatrolTicks > patrolRetargetTicks {
		a.PatrolTarget = s.rollPatrolTarget(a)
		a.PatrolTicks = 0
	}
	dir := a.PatrolTarget.Sub(a.Position).Normalized()
	a.Forward = dir
	a.Velocity = dir.Scale(a.Speed * patrolSpeedFactor)
}

// rollPatrolTarget picks a waypoint inside the alien's current sector, or
// near its present position when it has drifted into deep space.
func (s *AISystem) rollPatrolTarget(a *world.AlienShip) geom.Vec3 {
	if sec, ok := s.state.SectorAt(a.Position); ok {
		return randomOffset(s.rng, sec.Center, sec.Radius)
	}
	return randomOffset(s.rng, a.Position, 200)
}

func (s *AISystem) track(a *world.AlienShip, pilot *world.Spacecraft) {
	dir := pilot.Position.Sub(a.Position).Normalized()
	a.Forward = dir
	a.Velocity = dir.Scale(a.Speed * trackSpeedFactor)
}

// engage approaches outside shooting range and holds-and-fires inside it.
func (s *AISystem) engage(a *world.AlienShip, pilot *world.Spacecraft, dist float64) {
	dir := pilot.Position.Sub(a.Position).Normalized()
	a.Forward = dir
	if dist > a.ShootingRange {
		a.Velocity = dir.Scale(a.Speed)
		return
	}
	a.Velocity = geom.Vec3{}
	fireWeapon(s.space, a.Weapon, a.ID, a.Position, a.Forward)
	if a.Turret != nil {
		mount := a.Position.Add(a.Turret.Mount)
		fireWeapon(s.space, a.Turret.Weapon, a.ID, mount, dir)
	}
}

// fireWeapon attempts a shot and, on success, registers the new projectile
// with the physics space so the combat pass can see it.
func fireWeapon(space *physics.Space, w *world.Weapon, owner ecs.EntityID, pos, forward geom.Vec3) bool {
	if w == nil {
		return false
	}
	p, ok := w.Fire(owner, pos, forward)
	if !ok {
		return false
	}
	space.AddProjectile(p.ID, p.Position, p.HitRadius)
	return true
}

// randomOffset samples a point within radius of center; not volumetric
// sampling, patrol waypoints only need to stay roughly inside the region.
func randomOffset(rng *rand.Rand, center geom.Vec3, radius float64) geom.Vec3 {
	return geom.Vec3{
		X: center.X + (rng.Float64()*2-1)*radius*0.8,
		Y: center.Y + (rng.Float64()*2-1)*radius*0.8,
		Z: center.Z + (rng.Float64()*2-1)*radius*0.8,
	}
}
