package system

import (
	"fmt"
	"time"

	"github.com/ematoledor/starflight-server/internal/core/event"
	coresys "github.com/ematoledor/starflight-server/internal/core/system"
	"github.com/ematoledor/starflight-server/internal/geom"
	"github.com/ematoledor/starflight-server/internal/telemetry"
	"github.com/ematoledor/starflight-server/internal/world"
)

// TelemetrySystem builds the per-tick snapshot and hands it to the
// websocket hub. Event notifications are collected from the bus during
// dispatch and attached to the next snapshot. Phase 4 (Output).
type TelemetrySystem struct {
	state     *world.State
	hub       *telemetry.Hub
	session   *world.PilotSession
	discovery *DiscoverySystem

	pending []telemetry.EventDTO
}

func NewTelemetrySystem(
	st *world.State,
	hub *telemetry.Hub,
	bus *event.Bus,
	session *world.PilotSession,
	discovery *DiscoverySystem,
) *TelemetrySystem {
	s := &TelemetrySystem{
		state:     st,
		hub:       hub,
		session:   session,
		discovery: discovery,
	}
	event.Subscribe(bus, func(ev event.EnemyDestroyed) {
		s.pending = append(s.pending, telemetry.EventDTO{
			Kind:   "kill",
			Detail: fmt.Sprintf("%s destroyed in %s (+%d credits)", ev.Class, ev.Sector, ev.Credits),
		})
	})
	event.Subscribe(bus, func(ev event.PlayerDeath) {
		s.pending = append(s.pending, telemetry.EventDTO{
			Kind:   "death",
			Detail: fmt.Sprintf("ship lost in %s", ev.Sector),
		})
	})
	event.Subscribe(bus, func(ev event.SectorDiscovered) {
		s.pending = append(s.pending, telemetry.EventDTO{
			Kind:   "discovery",
			Detail: fmt.Sprintf("entered %s (danger %d)", ev.Name, ev.Danger),
		})
	})
	return s
}

func (s *TelemetrySystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *TelemetrySystem) Update(time.Duration) {
	if s.hub.ClientCount() == 0 {
		s.pending = nil
		return
	}

	snap := telemetry.Snapshot{
		Tick:   s.state.Tick(),
		Sector: s.discovery.CurrentSector(),
		Events: s.pending,
	}
	s.pending = nil

	if pilot := s.state.Player; pilot != nil {
		snap.Pilot = telemetry.PilotDTO{
			Position: vecDTO(pilot.Position),
			Velocity: vecDTO(pilot.Velocity),
			Hull:     pilot.Hull,
			Shield:   pilot.Shield,
			Dead:     pilot.Dead,
		}
		if s.session != nil {
			snap.Pilot.Credits = s.session.Credits
			snap.Pilot.Score = s.session.Score
		}
		snap.Shots = appendShots(snap.Shots, pilot.Weapon)
	}

	for _, a := range s.state.Aliens() {
		snap.Aliens = append(snap.Aliens, telemetry.AlienDTO{
			Class:    a.Class,
			Position: vecDTO(a.Position),
			Hull:     a.Hull,
			State:    a.State.String(),
		})
		snap.Shots = appendShots(snap.Shots, a.Weapon)
		if a.Turret != nil {
			snap.Shots = appendShots(snap.Shots, a.Turret.Weapon)
		}
	}

	s.hub.Broadcast(snap)
}

func appendShots(dst []telemetry.ShotDTO, w *world.Weapon) []telemetry.ShotDTO {
	if w == nil {
		return dst
	}
	for _, p := range w.Projectiles {
		dst = append(dst, telemetry.ShotDTO{
			Position: vecDTO(p.Position),
			Velocity: vecDTO(p.Velocity),
		})
	}
	return dst
}

func vecDTO(v geom.Vec3) telemetry.Vec3DTO {
	return telemetry.Vec3DTO{X: v.X, Y: v.Y, Z: v.Z}
}
