package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ematoledor/starflight-server/internal/core/ecs"
	"github.com/ematoledor/starflight-server/internal/data"
	"github.com/ematoledor/starflight-server/internal/geom"
)

func testWeapon(t *testing.T, maxProjectiles int, cooldown float64) (*Weapon, *[]ecs.EntityID) {
	t.Helper()
	pool := ecs.NewEntityPool()
	released := &[]ecs.EntityID{}
	w := NewWeapon(&data.WeaponTemplate{
		ID:              "test",
		Cooldown:        cooldown,
		MaxProjectiles:  maxProjectiles,
		ProjectileSpeed: 100,
		Lifespan:        1.0,
		Damage:          5,
		MuzzleOffset:    2,
		HitRadius:       1,
	}, pool.Create, func(p *Projectile) {
		*released = append(*released, p.ID)
	})
	return w, released
}

var fwd = geom.Vec3{Z: -1}

func TestWeaponFireSpawnsAtMuzzle(t *testing.T) {
	w, _ := testWeapon(t, 4, 0)
	owner := ecs.NewEntityID(99, 0)

	p, ok := w.Fire(owner, geom.Vec3{Z: 10}, fwd)
	require.True(t, ok)
	assert.Equal(t, owner, p.Owner)
	assert.Equal(t, geom.Vec3{Z: 8}, p.Position, "muzzle offset applies along forward")
	assert.Equal(t, geom.Vec3{Z: -100}, p.Velocity)
}

func TestWeaponCooldownGate(t *testing.T) {
	w, _ := testWeapon(t, 10, 0.5)

	_, ok := w.Fire(0, geom.Vec3{}, fwd)
	require.True(t, ok)

	// Cooldown running: every attempt fails without side effects.
	_, ok = w.Fire(0, geom.Vec3{}, fwd)
	assert.False(t, ok)
	assert.Len(t, w.Projectiles, 1)

	w.Update(0.2)
	_, ok = w.Fire(0, geom.Vec3{}, fwd)
	assert.False(t, ok, "cooldown not yet elapsed")

	w.Update(0.3)
	_, ok = w.Fire(0, geom.Vec3{}, fwd)
	assert.True(t, ok, "cooldown elapsed exactly")
}

func TestWeaponEvictsOldestAtCapacity(t *testing.T) {
	w, released := testWeapon(t, 3, 0)

	var ids []ecs.EntityID
	for i := 0; i < 3; i++ {
		p, ok := w.Fire(0, geom.Vec3{}, fwd)
		require.True(t, ok)
		ids = append(ids, p.ID)
	}
	require.Len(t, w.Projectiles, 3)

	// The N+1-th shot never fails; the oldest goes first.
	p4, ok := w.Fire(0, geom.Vec3{}, fwd)
	require.True(t, ok)
	assert.Len(t, w.Projectiles, 3)
	assert.Equal(t, []ecs.EntityID{ids[0]}, *released)
	assert.Equal(t, ids[1], w.Projectiles[0].ID, "FIFO order preserved")
	assert.Equal(t, p4.ID, w.Projectiles[2].ID)
}

func TestProjectileExpiresExactlyOnce(t *testing.T) {
	w, released := testWeapon(t, 4, 0)
	p, ok := w.Fire(0, geom.Vec3{}, fwd)
	require.True(t, ok)

	w.Update(0.5)
	assert.Len(t, w.Projectiles, 1)
	assert.InDelta(t, -52.0, p.Position.Z, 1e-9, "projectile advances from the muzzle point")

	w.Update(0.5)
	assert.Empty(t, w.Projectiles, "lifespan reached releases the projectile")
	assert.Equal(t, []ecs.EntityID{p.ID}, *released)

	// Further updates never touch the released projectile again.
	w.Update(1.0)
	assert.Len(t, *released, 1)
}

func TestWeaponRemoveAndClear(t *testing.T) {
	w, released := testWeapon(t, 4, 0)
	p1, _ := w.Fire(0, geom.Vec3{}, fwd)
	p2, _ := w.Fire(0, geom.Vec3{}, fwd)

	assert.True(t, w.Remove(p1.ID))
	assert.False(t, w.Remove(p1.ID), "second remove of same id")
	assert.Len(t, w.Projectiles, 1)

	w.Clear()
	assert.Empty(t, w.Projectiles)
	assert.ElementsMatch(t, []ecs.EntityID{p1.ID, p2.ID}, *released)
}
