package event

import (
	"github.com/ematoledor/starflight-server/internal/core/ecs"
	"github.com/ematoledor/starflight-server/internal/geom"
)

// Domain events carried on the bus. Emitted in tick N, dispatched in N+1.

// EnemyDestroyed fires when an alien ship's hull reaches zero.
type EnemyDestroyed struct {
	EntityID ecs.EntityID
	Class    string // alien class key from the ship table
	Sector   string
	Position geom.Vec3
	Credits  int64 // reward resolved by the kill_reward Lua hook
}

// PlayerDeath fires when the pilot's hull reaches zero.
type PlayerDeath struct {
	Position geom.Vec3
	Sector   string
}

// SectorDiscovered fires the first time the pilot enters a sector.
type SectorDiscovered struct {
	Name   string
	Danger int
}

// ProjectileHit fires when a projectile overlaps a collidable body.
type ProjectileHit struct {
	Projectile ecs.EntityID
	Target     ecs.EntityID
	Damage     int32
	Position   geom.Vec3
}
