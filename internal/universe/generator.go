package universe

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/aquilax/go-perlin"
	"go.uber.org/zap"

	"github.com/ematoledor/starflight-server/internal/core/ecs"
	"github.com/ematoledor/starflight-server/internal/data"
	"github.com/ematoledor/starflight-server/internal/geom"
	"github.com/ematoledor/starflight-server/internal/physics"
	"github.com/ematoledor/starflight-server/internal/world"
)

// Perlin field shape for asteroid density. Coordinates are scaled down so
// neighbouring fields in one sector land on different parts of the noise.
const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3
	noiseScale   = 1.0 / 4096.0
)

// Default pilot craft stats. The weapon comes from the weapon table.
const (
	pilotHull     = 100
	pilotShield   = 50
	pilotMaxSpeed = 300.0
)

// Options tunes generation and the respawn window.
type Options struct {
	Seed       int64
	TickRate   time.Duration
	RespawnMin time.Duration
	RespawnMax time.Duration
}

// Generator populates and maintains the explorable universe. It owns
// sector membership exclusively: entities are created here, wired to the
// physics space, and respawned here through the deferred-action queue.
type Generator struct {
	state   *world.State
	space   *physics.Space
	sectors *data.SectorTable
	ships   *data.ShipTable
	weapons *data.WeaponTable
	rng     *rand.Rand
	noise   *perlin.Perlin
	log     *zap.Logger

	tickRate   time.Duration
	respawnMin time.Duration
	respawnMax time.Duration
}

// NewGenerator builds a generator. The random source is injected so tests
// can seed it; the same seed re-creates the same universe.
func NewGenerator(st *world.State, space *physics.Space, sectors *data.SectorTable,
	ships *data.ShipTable, weapons *data.WeaponTable, opts Options, log *zap.Logger) *Generator {
	if opts.TickRate <= 0 {
		opts.TickRate = 50 * time.Millisecond
	}
	if opts.RespawnMin <= 0 {
		opts.RespawnMin = 30 * time.Second
	}
	if opts.RespawnMax < opts.RespawnMin {
		opts.RespawnMax = opts.RespawnMin + 60*time.Second
	}
	return &Generator{
		state:      st,
		space:      space,
		sectors:    sectors,
		ships:      ships,
		weapons:    weapons,
		rng:        rand.New(rand.NewSource(opts.Seed)),
		noise:      perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, opts.Seed),
		log:        log,
		tickRate:   opts.TickRate,
		respawnMin: opts.RespawnMin,
		respawnMax: opts.RespawnMax,
	}
}

// Rand exposes the generator's seeded random source so other single-threaded
// loop collaborators (AI patrol targets) draw from the same stream.
func (g *Generator) Rand() *rand.Rand { return g.rng }

// Generate creates every sector from the definition table. Calling it on a
// populated state is a programmer error; use Regenerate for that.
func (g *Generator) Generate() error {
	if len(g.state.Sectors) > 0 {
		return fmt.Errorf("generate: state already has %d sectors", len(g.state.Sectors))
	}
	for _, def := range g.sectors.Defs() {
		sec, err := g.createSector(def)
		if err != nil {
			return fmt.Errorf("sector %q: %w", def.Name, err)
		}
		g.state.Sectors = append(g.state.Sectors, sec)
	}
	g.log.Info("universe generated",
		zap.Int("sectors", len(g.state.Sectors)),
		zap.Int("planets", len(g.state.Planets)),
		zap.Int("aliens", g.state.AlienCount()))
	return nil
}

// Regenerate resets the world and builds it again. The epoch bump in Reset
// cancels every pending respawn from the previous universe.
func (g *Generator) Regenerate() error {
	g.state.Reset()
	return g.Generate()
}

// SectorAt resolves the sector containing pos; false means deep space.
func (g *Generator) SectorAt(pos geom.Vec3) (*world.Sector, bool) {
	return g.state.SectorAt(pos)
}

func (g *Generator) createSector(def data.SectorDef) (*world.Sector, error) {
	sec := &world.Sector{
		Name:   def.Name,
		Center: geom.Vec3{X: def.CenterX, Y: def.CenterY, Z: def.CenterZ},
		Radius: def.Radius,
		Danger: def.Danger,
	}

	for i := 0; i < def.Planets; i++ {
		p := g.spawnPlanet(sec, i)
		sec.Planets = append(sec.Planets, p)
		g.state.Planets = append(g.state.Planets, p)
	}
	for i := 0; i < def.AsteroidFields; i++ {
		f := g.spawnAsteroidField(sec)
		sec.AsteroidFields = append(sec.AsteroidFields, f)
		g.state.AsteroidFields = append(g.state.AsteroidFields, f)
	}
	for i := 0; i < def.Nebulae; i++ {
		n := &world.Nebula{
			ID:       g.state.Entities.CreateEntity(),
			Position: pointInSphere(g.rng, sec.Center, sec.Radius),
			Radius:   rangeFloat(g.rng, 150, 400),
		}
		sec.Nebulae = append(sec.Nebulae, n)
		g.state.Nebulae = append(g.state.Nebulae, n)
	}
	for i := 0; i < def.Anomalies; i++ {
		a := g.spawnAnomaly(sec)
		sec.Anomalies = append(sec.Anomalies, a)
		g.state.Anomalies = append(g.state.Anomalies, a)
	}

	// Enemy density scales with danger; the fractional part is a roll, so
	// two sectors with the same danger can differ by up to two ships.
	enemies := int(math.Floor(float64(def.Danger)*2 + g.rng.Float64()*3))
	for i := 0; i < enemies; i++ {
		tpl := g.rollClass(def.Danger)
		if tpl == nil {
			return nil, fmt.Errorf("no eligible alien class for danger %d", def.Danger)
		}
		if _, err := g.spawnAlien(sec, tpl); err != nil {
			return nil, err
		}
	}
	if capital := g.ships.Capital(def.Danger); capital != nil {
		if _, err := g.spawnAlien(sec, capital); err != nil {
			return nil, err
		}
	}
	return sec, nil
}

func (g *Generator) spawnPlanet(sec *world.Sector, ordinal int) *world.Planet {
	p := &world.Planet{
		ID:       g.state.Entities.CreateEntity(),
		Name:     fmt.Sprintf("%s %s", sec.Name, romanNumeral(ordinal+1)),
		Position: pointInSphere(g.rng, sec.Center, sec.Radius),
		Radius:   rangeFloat(g.rng, 30, 120),
	}
	g.space.AddStaticObject(p.ID, physics.GroupPlanet, p.Position, p.Radius)

	for i := 0; i < g.rng.Intn(3); i++ {
		sat := &world.Satellite{
			ID:          g.state.Entities.CreateEntity(),
			OrbitRadius: p.Radius*1.5 + g.rng.Float64()*p.Radius,
			OrbitSpeed:  rangeFloat(g.rng, 0.05, 0.25),
			Inclination: rangeFloat(g.rng, 0, math.Pi/4),
			Angle:       rangeFloat(g.rng, 0, 2*math.Pi),
		}
		sat.Position = world.SatellitePosition(p, sat)
		p.Satellites = append(p.Satellites, sat)
	}
	return p
}

func (g *Generator) spawnAsteroidField(sec *world.Sector) *world.AsteroidField {
	pos := pointInSphere(g.rng, sec.Center, sec.Radius)
	// Noise in [-1,1] mapped to [0,1]; dense regions of the universe carry
	// more rocks per field.
	density := (g.noise.Noise3D(pos.X*noiseScale, pos.Y*noiseScale, pos.Z*noiseScale) + 1) / 2
	f := &world.AsteroidField{
		ID:       g.state.Entities.CreateEntity(),
		Position: pos,
		Radius:   rangeFloat(g.rng, 80, 220),
		Count:    10 + int(density*40),
		Density:  density,
	}
	g.space.AddStaticObject(f.ID, physics.GroupAsteroid, f.Position, f.Radius)
	return f
}

func (g *Generator) spawnAnomaly(sec *world.Sector) *world.Anomaly {
	a := &world.Anomaly{
		ID:       g.state.Entities.CreateEntity(),
		Position: pointInSphere(g.rng, sec.Center, sec.Radius),
		Radius:   rangeFloat(g.rng, 50, 150),
	}
	if g.rng.Float64() < 0.3 {
		a.Kind = world.AnomalyWormhole
	} else {
		a.Kind = world.AnomalyEnergy
		a.PulseDamage = int32(5 + g.rng.Intn(11))
		a.PulseEvery = g.ticksFor(5 * time.Second)
	}
	return a
}

// rollClass picks an alien class for the danger level by spawn weight.
func (g *Generator) rollClass(danger int) *data.ShipTemplate {
	eligible := g.ships.Eligible(danger)
	if len(eligible) == 0 {
		return nil
	}
	total := 0
	for _, s := range eligible {
		total += s.Weight
	}
	if total <= 0 {
		return eligible[g.rng.Intn(len(eligible))]
	}
	roll := g.rng.Intn(total)
	for _, s := range eligible {
		roll -= s.Weight
		if roll < 0 {
			return s
		}
	}
	return eligible[len(eligible)-1]
}

func (g *Generator) spawnAlien(sec *world.Sector, tpl *data.ShipTemplate) (*world.AlienShip, error) {
	weapon, err := g.NewWeapon(tpl.WeaponID)
	if err != nil {
		return nil, fmt.Errorf("class %q: %w", tpl.Class, err)
	}
	a := &world.AlienShip{
		ID:              g.state.Entities.CreateEntity(),
		Class:           tpl.Class,
		Position:        pointInSphere(g.rng, sec.Center, sec.Radius),
		Forward:         unitVector(g.rng),
		Hull:            tpl.Hull,
		MaxHull:         tpl.Hull,
		Speed:           tpl.Speed,
		DetectionRadius: tpl.DetectionRadius,
		AggroRadius:     tpl.AggroRadius,
		ShootingRange:   tpl.ShootingRange,
		State:           world.AIPatrolling,
		Weapon:          weapon,
		Capital:         tpl.Capital,
		Credits:         tpl.Credits,
		Score:           tpl.Score,
		PatrolTarget:    pointInSphere(g.rng, sec.Center, sec.Radius),
	}
	if tpl.Capital {
		turretWeapon, err := g.NewWeapon(tpl.WeaponID)
		if err != nil {
			return nil, err
		}
		a.Turret = &world.Turret{
			Weapon: turretWeapon,
			Mount:  geom.Vec3{Y: 20},
		}
	}
	g.state.AddAlien(sec, a)
	g.space.AddObject(a.ID, physics.GroupAlien, a.Position, hullRadius(tpl))
	return a, nil
}

// hullRadius derives a collider radius from the template's hull class.
func hullRadius(tpl *data.ShipTemplate) float64 {
	if tpl.Capital {
		return 60
	}
	return 8 + float64(tpl.Hull)/40
}

// NewWeapon instantiates a weapon from the template table, wired so that
// spawned projectiles get entity slots and released ones leave the physics
// space and the entity pool.
func (g *Generator) NewWeapon(id string) (*world.Weapon, error) {
	tpl := g.weapons.Get(id)
	if tpl == nil {
		return nil, fmt.Errorf("unknown weapon %q", id)
	}
	return world.NewWeapon(tpl,
		func() ecs.EntityID { return g.state.Entities.CreateEntity() },
		func(p *world.Projectile) {
			g.space.RemoveObject(p.ID)
			g.state.Entities.MarkForDestruction(p.ID)
		}), nil
}

// SpawnPilot creates the pilot's spacecraft at the origin and registers it
// with the physics space.
func (g *Generator) SpawnPilot(weaponID string) (*world.Spacecraft, error) {
	weapon, err := g.NewWeapon(weaponID)
	if err != nil {
		return nil, fmt.Errorf("pilot weapon: %w", err)
	}
	sc := &world.Spacecraft{
		ID:        g.state.Entities.CreateEntity(),
		Forward:   geom.Vec3{Z: -1},
		Hull:      pilotHull,
		MaxHull:   pilotHull,
		Shield:    pilotShield,
		MaxShield: pilotShield,
		MaxSpeed:  pilotMaxSpeed,
		Weapon:    weapon,
	}
	g.state.Player = sc
	g.space.AddObject(sc.ID, physics.GroupSpacecraft, sc.Position, 6)
	return sc, nil
}

// ScheduleRespawn queues a same-class replacement in the named sector
// after a randomized delay. The action is epoch-bound: if the universe is
// reset before it runs, it is dropped. If the sector is gone by fire time
// (regenerated under a new table), the respawn is skipped and logged.
func (g *Generator) ScheduleRespawn(class string, sectorName string) {
	window := g.respawnMax - g.respawnMin
	delay := g.respawnMin
	if window > 0 {
		delay += time.Duration(g.rng.Int63n(int64(window)))
	}
	ticks := g.ticksFor(delay)
	g.state.Defer(ticks, func() {
		var sec *world.Sector
		for _, s := range g.state.Sectors {
			if s.Name == sectorName {
				sec = s
				break
			}
		}
		if sec == nil {
			g.log.Debug("respawn dropped, sector no longer exists",
				zap.String("sector", sectorName), zap.String("class", class))
			return
		}
		tpl := g.ships.Get(class)
		if tpl == nil {
			g.log.Warn("respawn dropped, unknown class", zap.String("class", class))
			return
		}
		if _, err := g.spawnAlien(sec, tpl); err != nil {
			g.log.Error("respawn failed", zap.String("class", class), zap.Error(err))
			return
		}
		g.log.Debug("alien respawned",
			zap.String("class", class), zap.String("sector", sectorName))
	})
	g.log.Debug("respawn scheduled",
		zap.String("class", class),
		zap.String("sector", sectorName),
		zap.Duration("delay", delay))
}

// RandomSectorCenter picks a sector center for wormhole exits. Falls back
// to the origin when the universe is empty.
func (g *Generator) RandomSectorCenter() geom.Vec3 {
	if len(g.state.Sectors) == 0 {
		return geom.Vec3{}
	}
	return g.state.Sectors[g.rng.Intn(len(g.state.Sectors))].Center
}

func (g *Generator) ticksFor(d time.Duration) uint64 {
	if d <= 0 {
		return 1
	}
	t := uint64(d / g.tickRate)
	if t == 0 {
		t = 1
	}
	return t
}

func romanNumeral(n int) string {
	numerals := []string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}
	if n >= 1 && n <= len(numerals) {
		return numerals[n-1]
	}
	return fmt.Sprintf("%d", n)
}
