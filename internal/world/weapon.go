package world

import (
	"github.com/ematoledor/starflight-server/internal/core/ecs"
	"github.com/ematoledor/starflight-server/internal/data"
	"github.com/ematoledor/starflight-server/internal/geom"
)

// Projectile is a single live shot. Owned by exactly one Weapon; once the
// weapon removes it, Update is never called again.
type Projectile struct {
	ID    ecs.EntityID
	Owner ecs.EntityID

	Position geom.Vec3
	Velocity geom.Vec3

	Damage    int32
	HitRadius float64

	Age      float64
	Lifespan float64
}

// Update advances the projectile by dt seconds and reports expiry. The
// report is true exactly on the first frame where age reaches lifespan.
func (p *Projectile) Update(dt float64) bool {
	p.Position = p.Position.Add(p.Velocity.Scale(dt))
	p.Age += dt
	return p.Age >= p.Lifespan
}

// Weapon manages a bounded pool of live projectiles and a fire cooldown.
// Firing at capacity never fails: the oldest projectile is evicted first
// (drop-oldest backpressure, a fixed budget for live shots).
type Weapon struct {
	Cooldown        float64
	CooldownTimer   float64
	MaxProjectiles  int
	ProjectileSpeed float64
	Lifespan        float64
	Damage          int32
	MuzzleOffset    float64
	HitRadius       float64

	Projectiles []*Projectile

	alloc   func() ecs.EntityID
	release func(*Projectile)
}

// NewWeapon builds a weapon from a template. alloc provides entity IDs for
// spawned projectiles; release is invoked for every projectile the weapon
// lets go of (expiry, eviction, or Clear) so the caller can unregister it
// from physics and the entity pool. release may be nil.
func NewWeapon(tpl *data.WeaponTemplate, alloc func() ecs.EntityID, release func(*Projectile)) *Weapon {
	return &Weapon{
		Cooldown:        tpl.Cooldown,
		MaxProjectiles:  tpl.MaxProjectiles,
		ProjectileSpeed: tpl.ProjectileSpeed,
		Lifespan:        tpl.Lifespan,
		Damage:          tpl.Damage,
		MuzzleOffset:    tpl.MuzzleOffset,
		HitRadius:       tpl.HitRadius,
		Projectiles:     make([]*Projectile, 0, tpl.MaxProjectiles),
		alloc:           alloc,
		release:         release,
	}
}

// Fire spawns a projectile ahead of the owner along forward. Returns nil,
// false while the cooldown is running. At capacity the oldest projectile is
// evicted before the new one spawns.
func (w *Weapon) Fire(owner ecs.EntityID, pos, forward geom.Vec3) (*Projectile, bool) {
	if w.CooldownTimer > 0 {
		return nil, false
	}
	if len(w.Projectiles) >= w.MaxProjectiles {
		oldest := w.Projectiles[0]
		copy(w.Projectiles, w.Projectiles[1:])
		w.Projectiles[len(w.Projectiles)-1] = nil
		w.Projectiles = w.Projectiles[:len(w.Projectiles)-1]
		w.dispose(oldest)
	}
	w.CooldownTimer = w.Cooldown

	p := &Projectile{
		ID:        w.alloc(),
		Owner:     owner,
		Position:  pos.Add(forward.Scale(w.MuzzleOffset)),
		Velocity:  forward.Scale(w.ProjectileSpeed),
		Damage:    w.Damage,
		HitRadius: w.HitRadius,
		Lifespan:  w.Lifespan,
	}
	w.Projectiles = append(w.Projectiles, p)
	return p, true
}

// Update ticks the cooldown and every live projectile. Expired projectiles
// are removed in reverse index order so removal is safe mid-iteration.
func (w *Weapon) Update(dt float64) {
	if w.CooldownTimer > 0 {
		w.CooldownTimer -= dt
		if w.CooldownTimer < 0 {
			w.CooldownTimer = 0
		}
	}
	for i := len(w.Projectiles) - 1; i >= 0; i-- {
		p := w.Projectiles[i]
		if p.Update(dt) {
			w.removeAt(i)
			w.dispose(p)
		}
	}
}

// Remove drops the projectile with the given ID from the pool, releasing
// it. Used when a projectile hits something before its lifespan runs out.
func (w *Weapon) Remove(id ecs.EntityID) bool {
	for i, p := range w.Projectiles {
		if p.ID == id {
			w.removeAt(i)
			w.dispose(p)
			return true
		}
	}
	return false
}

// Clear releases every live projectile. Called on owner destruction and on
// universe reset.
func (w *Weapon) Clear() {
	for _, p := range w.Projectiles {
		w.dispose(p)
	}
	w.Projectiles = w.Projectiles[:0]
}

func (w *Weapon) removeAt(i int) {
	copy(w.Projectiles[i:], w.Projectiles[i+1:])
	w.Projectiles[len(w.Projectiles)-1] = nil
	w.Projectiles = w.Projectiles[:len(w.Projectiles)-1]
}

func (w *Weapon) dispose(p *Projectile) {
	if w.release != nil {
		w.release(p)
	}
}
