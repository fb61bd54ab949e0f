package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/ematoledor/starflight-server/internal/config"
	"github.com/ematoledor/starflight-server/internal/core/ecs"
	"github.com/ematoledor/starflight-server/internal/core/event"
	coresys "github.com/ematoledor/starflight-server/internal/core/system"
	"github.com/ematoledor/starflight-server/internal/geom"
	"github.com/ematoledor/starflight-server/internal/physics"
	"github.com/ematoledor/starflight-server/internal/scripting"
	"github.com/ematoledor/starflight-server/internal/universe"
	"github.com/ematoledor/starflight-server/internal/world"
)

// Pilot revive delay after death, in seconds of game time.
const pilotRespawnSeconds = 10

// CombatSystem owns everything that happens after a trigger pull: weapon
// cooldowns, projectile flight, hit resolution through the Lua damage hook,
// kill rewards, and death handling for both sides. Phase 2 (Update),
// registered after movement so hits are tested against settled positions.
type CombatSystem struct {
	state   *world.State
	space   *physics.Space
	bus     *event.Bus
	scripts *scripting.Engine
	gen     *universe.Generator
	session *world.PilotSession
	rates   config.RatesConfig
	log     *zap.Logger

	ticksPerSecond float64
}

func NewCombatSystem(
	st *world.State,
	space *physics.Space,
	bus *event.Bus,
	scripts *scripting.Engine,
	gen *universe.Generator,
	session *world.PilotSession,
	rates config.RatesConfig,
	tickRate time.Duration,
	log *zap.Logger,
) *CombatSystem {
	return &CombatSystem{
		state:          st,
		space:          space,
		bus:            bus,
		scripts:        scripts,
		gen:            gen,
		session:        session,
		rates:          rates,
		log:            log,
		ticksPerSecond: float64(time.Second) / float64(tickRate),
	}
}

func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CombatSystem) Update(dt time.Duration) {
	step := dt.Seconds()
	pilot := s.state.Player

	if pilot != nil && !pilot.Dead && pilot.FireHeld {
		fireWeapon(s.space, pilot.Weapon, pilot.ID, pilot.Position, pilot.Forward)
	}

	// Tick every weapon first so projectiles advance and expire, then run
	// hit tests against the settled positions.
	if pilot != nil {
		s.tickWeapon(pilot.Weapon, step)
	}
	for _, a := range s.state.Aliens() {
		s.tickWeapon(a.Weapon, step)
		if a.Turret != nil {
			s.tickWeapon(a.Turret.Weapon, step)
		}
	}

	if pilot != nil {
		s.resolveHits(pilot.Weapon, true)
	}
	// Alien rosters shrink inside resolveHits when a kill lands; snapshot
	// the list so iteration stays stable.
	aliens := append([]*world.AlienShip(nil), s.state.Aliens()...)
	for _, a := range aliens {
		if a.State == world.AIDestroyed {
			continue
		}
		s.resolveHits(a.Weapon, false)
		if a.Turret != nil {
			s.resolveHits(a.Turret.Weapon, false)
		}
	}
}

// tickWeapon advances cooldown and projectiles, then syncs surviving
// projectiles into the broad phase. Expired ones already left via release.
func (s *CombatSystem) tickWeapon(w *world.Weapon, step float64) {
	if w == nil {
		return
	}
	w.Update(step)
	for _, p := range w.Projectiles {
		s.space.Move(p.ID, p.Position)
	}
}

// resolveHits tests every live projectile of w against valid targets.
// Pilot shots hit aliens; alien shots hit the pilot. Both hit terrain
// (planets and asteroid fields), which simply eats the shot.
func (s *CombatSystem) resolveHits(w *world.Weapon, pilotOwned bool) {
	if w == nil {
		return
	}
	var spent []ecs.EntityID
	for _, p := range w.Projectiles {
		target, hit := s.firstTarget(p, pilotOwned)
		if !hit {
			continue
		}
		s.applyHit(p, target, pilotOwned)
		spent = append(spent, p.ID)
	}
	for _, id := range spent {
		w.Remove(id)
	}
}

// firstTarget returns the first valid body overlapping the projectile.
// The owner is never a valid target.
func (s *CombatSystem) firstTarget(p *world.Projectile, pilotOwned bool) (ecs.EntityID, bool) {
	groups := []physics.Group{physics.GroupAlien, physics.GroupPlanet, physics.GroupAsteroid}
	if !pilotOwned {
		groups[0] = physics.GroupSpacecraft
	}
	for _, id := range s.space.Overlaps(p.Position, p.HitRadius, groups...) {
		if id != p.Owner {
			return id, true
		}
	}
	return 0, false
}

func (s *CombatSystem) applyHit(p *world.Projectile, target ecs.EntityID, pilotOwned bool) {
	event.Emit(s.bus, event.ProjectileHit{
		Projectile: p.ID,
		Target:     target,
		Damage:     p.Damage,
		Position:   p.Position,
	})

	danger := 0
	if sec, ok := s.state.SectorAt(p.Position); ok {
		danger = sec.Danger
	}

	if pilotOwned {
		a := s.state.Alien(target)
		if a == nil {
			return // terrain hit
		}
		dmg := s.scripts.CalcHitDamage(scripting.HitContext{
			WeaponDamage: p.Damage,
			TargetHull:   a.Hull,
			TargetMax:    a.MaxHull,
			Shielded:     false,
			Danger:       danger,
		})
		if a.TakeDamage(dmg) {
			s.onAlienKilled(a, danger)
		}
		return
	}

	pilot := s.state.Player
	if pilot == nil || target != pilot.ID {
		return // terrain hit
	}
	dmg := s.scripts.CalcHitDamage(scripting.HitContext{
		WeaponDamage: p.Damage,
		TargetHull:   pilot.Hull,
		TargetMax:    pilot.MaxHull,
		Shielded:     pilot.Shield > 0,
		Danger:       danger,
	})
	if pilot.TakeDamage(dmg) {
		s.onPilotKilled(pilot)
	}
}

func (s *CombatSystem) onAlienKilled(a *world.AlienShip, danger int) {
	sectorName := s.homeSector(a.ID)

	credits, score := s.scripts.KillReward(scripting.RewardContext{
		Class:   a.Class,
		Credits: a.Credits,
		Score:   a.Score,
		Danger:  danger,
	})
	credits = int64(float64(credits) * s.rates.CreditRate)
	score = int64(float64(score) * s.rates.ScoreRate)
	if s.session != nil {
		s.session.RecordKill(a.Class, sectorName, credits, score)
	}

	event.Emit(s.bus, event.EnemyDestroyed{
		EntityID: a.ID,
		Class:    a.Class,
		Sector:   sectorName,
		Position: a.Position,
		Credits:  credits,
	})
	s.log.Info("alien destroyed",
		zap.String("class", a.Class),
		zap.String("sector", sectorName),
		zap.Int64("credits", credits))

	if sectorName != world.DeepSpaceName {
		s.gen.ScheduleRespawn(a.Class, sectorName)
	}
	s.state.RemoveAlien(a.ID)
}

// homeSector returns the name of the sector whose roster holds the alien,
// falling back to deep space. Aliens carry no back-reference, so this scans.
func (s *CombatSystem) homeSector(id ecs.EntityID) string {
	for _, sec := range s.state.Sectors {
		for _, it := range sec.Aliens {
			if it.ID == id {
				return sec.Name
			}
		}
	}
	return world.DeepSpaceName
}

func (s *CombatSystem) onPilotKilled(pilot *world.Spacecraft) {
	sectorName := world.DeepSpaceName
	if sec, ok := s.state.SectorAt(pilot.Position); ok {
		sectorName = sec.Name
	}
	event.Emit(s.bus, event.PlayerDeath{
		Position: pilot.Position,
		Sector:   sectorName,
	})
	if s.session != nil {
		s.session.RecordDeath(s.rates.DeathPenalty)
	}
	s.log.Info("pilot destroyed",
		zap.String("sector", sectorName),
		zap.Float64("penalty", s.rates.DeathPenalty))

	delay := uint64(pilotRespawnSeconds * s.ticksPerSecond)
	s.state.Defer(delay, func() {
		s.revivePilot(pilot)
	})
}

// revivePilot restores the craft at the origin with full hull and shield.
// Runs from the deferred queue; a universe reset in between cancels it, so
// boot code must revive the pilot itself after a regenerate.
func (s *CombatSystem) revivePilot(pilot *world.Spacecraft) {
	pilot.Position = geom.Vec3{}
	pilot.Velocity = geom.Vec3{}
	pilot.Hull = pilot.MaxHull
	pilot.Shield = pilot.MaxShield
	pilot.Thrust = 0
	pilot.Dead = false
	s.space.Move(pilot.ID, pilot.Position)
	s.log.Info("pilot respawned")
}
