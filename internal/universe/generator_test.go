package universe

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ematoledor/starflight-server/internal/data"
	"github.com/ematoledor/starflight-server/internal/physics"
	"github.com/ematoledor/starflight-server/internal/world"
)

const testSectorYAML = `
sectors:
  - name: "Calm Verge"
    center_x: 0
    center_y: 0
    center_z: 0
    radius: 2000
    danger: 1
    planets: 5
    asteroid_fields: 2
    nebulae: 1
    anomalies: 1
  - name: "Hot Zone"
    center_x: 10000
    center_y: 0
    center_z: 0
    radius: 3000
    danger: 4
    planets: 5
    asteroid_fields: 1
    nebulae: 0
    anomalies: 0
`

const testShipYAML = `
ships:
  - class: scout
    hull: 40
    speed: 200
    detection_radius: 300
    aggro_radius: 200
    shooting_range: 120
    weapon_id: zap
    credits: 50
    score: 10
    min_danger: 1
    weight: 10
  - class: mothership
    hull: 500
    speed: 80
    detection_radius: 600
    aggro_radius: 400
    shooting_range: 250
    weapon_id: zap
    credits: 1000
    score: 200
    min_danger: 3
    weight: 1
    capital: true
`

const testWeaponYAML = `
weapons:
  - id: zap
    cooldown: 0.2
    max_projectiles: 8
    projectile_speed: 500
    lifespan: 2.0
    damage: 8
    muzzle_offset: 5
    hit_radius: 3
`

type fixture struct {
	state *world.State
	space *physics.Space
	gen   *Generator
}

func newFixture(t *testing.T, seed int64) *fixture {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		return path
	}

	sectors, err := data.LoadSectorTable(write("sectors.yaml", testSectorYAML))
	require.NoError(t, err)
	ships, err := data.LoadShipTable(write("ships.yaml", testShipYAML))
	require.NoError(t, err)
	weapons, err := data.LoadWeaponTable(write("weapons.yaml", testWeaponYAML))
	require.NoError(t, err)

	st := world.NewState()
	space := physics.NewSpace(500, st.Entities.Registry())
	gen := NewGenerator(st, space, sectors, ships, weapons, Options{
		Seed:       seed,
		TickRate:   50 * time.Millisecond,
		RespawnMin: time.Second,
		RespawnMax: time.Second,
	}, zap.NewNop())
	return &fixture{state: st, space: space, gen: gen}
}

func TestGeneratePopulatesSectors(t *testing.T) {
	f := newFixture(t, 7)
	require.NoError(t, f.gen.Generate())

	require.Len(t, f.state.Sectors, 2)
	for _, sec := range f.state.Sectors {
		assert.Len(t, sec.Planets, 5, "sector %q", sec.Name)
		for _, p := range sec.Planets {
			assert.True(t, p.Position.InSphere(sec.Center, sec.Radius),
				"planet %q outside its sector", p.Name)
		}
		for _, a := range sec.Aliens {
			assert.True(t, a.Position.InSphere(sec.Center, sec.Radius))
			assert.Equal(t, world.AIPatrolling, a.State)
			assert.NotNil(t, a.Weapon)
		}
	}

	// Danger 1 sector: scouts only, no capital. Danger 4: capital present.
	calm := f.state.Sectors[0]
	for _, a := range calm.Aliens {
		assert.Equal(t, "scout", a.Class)
	}
	hot := f.state.Sectors[1]
	capitals := 0
	for _, a := range hot.Aliens {
		if a.Capital {
			capitals++
			assert.NotNil(t, a.Turret)
		}
	}
	assert.Equal(t, 1, capitals, "one capital per qualifying sector")

	// Density floor: danger*2 enemies guaranteed, plus the roll.
	assert.GreaterOrEqual(t, len(calm.Aliens), 2)
	assert.GreaterOrEqual(t, len(hot.Aliens), 9, "8 rolled + capital")
}

func TestGenerateRegistersColliders(t *testing.T) {
	f := newFixture(t, 7)
	require.NoError(t, f.gen.Generate())

	counts := f.space.GroupCounts()
	assert.Equal(t, len(f.state.Planets), counts[physics.GroupPlanet])
	assert.Equal(t, len(f.state.AsteroidFields), counts[physics.GroupAsteroid])
	assert.Equal(t, f.state.AlienCount(), counts[physics.GroupAlien])
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	a := newFixture(t, 42)
	b := newFixture(t, 42)
	require.NoError(t, a.gen.Generate())
	require.NoError(t, b.gen.Generate())

	require.Equal(t, a.state.AlienCount(), b.state.AlienCount())
	for i, p := range a.state.Planets {
		assert.Equal(t, p.Position, b.state.Planets[i].Position)
	}

	c := newFixture(t, 43)
	require.NoError(t, c.gen.Generate())
	different := c.state.AlienCount() != a.state.AlienCount() ||
		c.state.Planets[0].Position != a.state.Planets[0].Position
	assert.True(t, different, "distinct seeds should diverge")
}

func TestGenerateTwiceFails(t *testing.T) {
	f := newFixture(t, 1)
	require.NoError(t, f.gen.Generate())
	assert.Error(t, f.gen.Generate())
}

func TestRegenerateRebuildsWorld(t *testing.T) {
	f := newFixture(t, 1)
	require.NoError(t, f.gen.Generate())
	before := f.state.Epoch()

	require.NoError(t, f.gen.Regenerate())
	assert.Equal(t, before+1, f.state.Epoch())
	assert.Len(t, f.state.Sectors, 2)
	assert.Greater(t, f.state.AlienCount(), 0)
}

func TestSpawnPilot(t *testing.T) {
	f := newFixture(t, 1)
	require.NoError(t, f.gen.Generate())

	pilot, err := f.gen.SpawnPilot("zap")
	require.NoError(t, err)
	assert.Same(t, pilot, f.state.Player)
	assert.NotNil(t, pilot.Weapon)
	assert.Equal(t, int32(100), pilot.Hull)
	require.NotNil(t, f.space.Body(pilot.ID))

	_, err = f.gen.SpawnPilot("bogus")
	assert.Error(t, err)
}

func TestScheduleRespawnRestoresAlien(t *testing.T) {
	f := newFixture(t, 3)
	require.NoError(t, f.gen.Generate())

	sec := f.state.Sectors[0]
	victim := sec.Aliens[0]
	count := f.state.AlienCount()

	require.True(t, f.state.RemoveAlien(victim.ID))
	f.gen.ScheduleRespawn(victim.Class, sec.Name)
	require.Equal(t, count-1, f.state.AlienCount())

	// Respawn window is pinned to exactly 1s = 20 ticks in the fixture.
	for i := 0; i < 19; i++ {
		f.state.AdvanceTick()
		f.state.RunDeferred()
	}
	assert.Equal(t, count-1, f.state.AlienCount(), "respawn must wait out the delay")

	f.state.AdvanceTick()
	f.state.RunDeferred()
	assert.Equal(t, count, f.state.AlienCount())
}

func TestResetCancelsScheduledRespawn(t *testing.T) {
	f := newFixture(t, 3)
	require.NoError(t, f.gen.Generate())

	sec := f.state.Sectors[0]
	victim := sec.Aliens[0]
	require.True(t, f.state.RemoveAlien(victim.ID))
	f.gen.ScheduleRespawn(victim.Class, sec.Name)

	require.NoError(t, f.gen.Regenerate())
	after := f.state.AlienCount()

	for i := 0; i < 40; i++ {
		f.state.AdvanceTick()
		f.state.RunDeferred()
	}
	assert.Equal(t, after, f.state.AlienCount(),
		"a respawn scheduled before the reset must never fire")
}
