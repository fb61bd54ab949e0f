package world

import (
	"github.com/ematoledor/starflight-server/internal/core/ecs"
	"github.com/ematoledor/starflight-server/internal/geom"
)

// AIState is the behavioral state of an alien ship.
type AIState int

const (
	AIPatrolling AIState = iota // no pilot inside detection radius
	AITracking                  // pilot detected, outside aggro radius
	AIEngaging                  // pilot inside aggro radius
	AIDestroyed                 // terminal; respawn already scheduled
)

func (s AIState) String() string {
	switch s {
	case AIPatrolling:
		return "patrolling"
	case AITracking:
		return "tracking"
	case AIEngaging:
		return "engaging"
	case AIDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// AlienShip holds runtime data for one alien currently in-world.
// Accessed only from the game loop goroutine — no locks.
type AlienShip struct {
	ID    ecs.EntityID
	Class string // template key from the ship table

	Position geom.Vec3
	Velocity geom.Vec3
	Forward  geom.Vec3 // unit vector; weapon fire direction

	Hull    int32
	MaxHull int32
	Speed   float64

	// Behavioral thresholds from the template.
	DetectionRadius float64
	AggroRadius     float64
	ShootingRange   float64

	State AIState

	Weapon *Weapon
	// Turret is the second weapon mount; only capital ships carry one.
	Turret  *Turret
	Capital bool

	Credits int64 // base kill reward
	Score   int64

	// Patrol waypoint state, re-rolled when reached or timed out.
	PatrolTarget geom.Vec3
	PatrolTicks  int
}

// Turret is an independently cooled weapon mount on a capital ship.
type Turret struct {
	Weapon *Weapon
	// Offset from the hull center, rotated by the ship's forward vector.
	Mount geom.Vec3
}

// TakeDamage reduces hull and reports whether the ship was destroyed by
// this hit. Damage to an already destroyed ship is ignored.
func (a *AlienShip) TakeDamage(dmg int32) bool {
	if a.State == AIDestroyed {
		return false
	}
	a.Hull -= dmg
	if a.Hull <= 0 {
		a.Hull = 0
		a.State = AIDestroyed
		return true
	}
	return false
}

// Spacecraft is the pilot's ship.
// Accessed only from the game loop goroutine — no locks.
type Spacecraft struct {
	ID ecs.EntityID

	Position geom.Vec3
	Velocity geom.Vec3
	Forward  geom.Vec3

	Hull      int32
	MaxHull   int32
	Shield    int32
	MaxShield int32
	MaxSpeed  float64

	Weapon *Weapon

	Dead bool

	// Control inputs for the current tick, written by the input system and
	// consumed by the movement system.
	Thrust    float64 // 0..1 fraction of MaxSpeed
	YawRate   float64 // radians per second
	PitchRate float64
	FireHeld  bool

	// Regen accumulator: counts whole seconds since the last regen apply.
	RegenAcc float64
}

// TakeDamage applies damage shield-first and reports whether the hit
// destroyed the craft.
func (sc *Spacecraft) TakeDamage(dmg int32) bool {
	if sc.Dead {
		return false
	}
	if sc.Shield > 0 {
		if dmg <= sc.Shield {
			sc.Shield -= dmg
			return false
		}
		dmg -= sc.Shield
		sc.Shield = 0
	}
	sc.Hull -= dmg
	if sc.Hull <= 0 {
		sc.Hull = 0
		sc.Dead = true
		return true
	}
	return false
}
