package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/ematoledor/starflight-server/internal/core/system"
	"github.com/ematoledor/starflight-server/internal/geom"
	"github.com/ematoledor/starflight-server/internal/physics"
	"github.com/ematoledor/starflight-server/internal/universe"
	"github.com/ematoledor/starflight-server/internal/world"
)

// Ticks of immunity after a wormhole jump, so the arrival point cannot
// immediately re-trigger another anomaly.
const wormholeGraceTicks = 100

// HazardSystem runs anomaly effects. Energy anomalies damage every ship
// inside their radius on a fixed pulse period driven by self-rescheduling
// deferred actions; wormholes teleport the pilot to a random sector center
// on contact. Phase 3 (PostUpdate), registered before the deferred pump so
// a pulse scheduled this tick cannot also fire this tick.
type HazardSystem struct {
	state *world.State
	space *physics.Space
	gen   *universe.Generator
	log   *zap.Logger

	graceUntil uint64 // tick until which wormholes ignore the pilot
}

func NewHazardSystem(st *world.State, space *physics.Space, gen *universe.Generator, log *zap.Logger) *HazardSystem {
	return &HazardSystem{state: st, space: space, gen: gen, log: log}
}

func (s *HazardSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// Prime schedules the first pulse for every energy anomaly. Call once after
// each Generate or Regenerate; the epoch bump on reset cancels the previous
// universe's pulse chain.
func (s *HazardSystem) Prime() {
	for _, a := range s.state.Anomalies {
		if a.Kind == world.AnomalyEnergy && a.PulseEvery > 0 {
			s.schedulePulse(a)
		}
	}
}

func (s *HazardSystem) schedulePulse(a *world.Anomaly) {
	s.state.Defer(a.PulseEvery, func() {
		s.pulse(a)
		s.schedulePulse(a)
	})
}

func (s *HazardSystem) pulse(a *world.Anomaly) {
	pilot := s.state.Player
	if pilot != nil && !pilot.Dead && pilot.Position.DistanceTo(a.Position) <= a.Radius {
		pilot.TakeDamage(a.PulseDamage)
		s.log.Debug("anomaly pulse hit pilot",
			zap.Int32("damage", a.PulseDamage),
			zap.Int32("hull", pilot.Hull),
			zap.Int32("shield", pilot.Shield))
	}

	for _, id := range s.space.Overlaps(a.Position, a.Radius, physics.GroupAlien) {
		alien := s.state.Alien(id)
		if alien == nil {
			continue
		}
		if alien.TakeDamage(a.PulseDamage) {
			s.onAlienBurned(alien)
		}
	}
}

// onAlienBurned handles an alien destroyed by the environment. No kill
// reward or destroy event; the pilot earned nothing.
func (s *HazardSystem) onAlienBurned(alien *world.AlienShip) {
	sectorName := world.DeepSpaceName
	for _, sec := range s.state.Sectors {
		for _, it := range sec.Aliens {
			if it.ID == alien.ID {
				sectorName = sec.Name
				break
			}
		}
	}
	if sectorName != world.DeepSpaceName {
		s.gen.ScheduleRespawn(alien.Class, sectorName)
	}
	s.state.RemoveAlien(alien.ID)
	s.log.Debug("alien lost to anomaly",
		zap.String("class", alien.Class),
		zap.String("sector", sectorName))
}

func (s *HazardSystem) Update(time.Duration) {
	pilot := s.state.Player
	if pilot == nil || pilot.Dead {
		return
	}
	if s.state.Tick() < s.graceUntil {
		return
	}
	for _, a := range s.state.Anomalies {
		if a.Kind != world.AnomalyWormhole {
			continue
		}
		if pilot.Position.DistanceTo(a.Position) > a.Radius {
			continue
		}
		dest := s.gen.RandomSectorCenter()
		pilot.Position = dest
		pilot.Velocity = geom.Vec3{}
		s.space.Move(pilot.ID, dest)
		s.graceUntil = s.state.Tick() + wormholeGraceTicks
		s.log.Info("wormhole jump",
			zap.Float64("x", dest.X),
			zap.Float64("y", dest.Y),
			zap.Float64("z", dest.Z))
		break
	}
}
