package system

import (
	"time"

	coresys "github.com/ematoledor/starflight-server/internal/core/system"
	"github.com/ematoledor/starflight-server/internal/physics"
	"github.com/ematoledor/starflight-server/internal/world"
)

// MovementSystem integrates ship and satellite kinematics and keeps the
// physics space in sync with the new positions. Alien velocities are set by
// the AI system earlier in the same phase order; this system only
// integrates. Phase 2 (Update).
type MovementSystem struct {
	state *world.State
	space *physics.Space
}

func NewMovementSystem(st *world.State, space *physics.Space) *MovementSystem {
	return &MovementSystem{state: st, space: space}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	step := dt.Seconds()

	if sc := s.state.Player; sc != nil && !sc.Dead {
		// Turn first, then thrust along the new forward.
		if sc.YawRate != 0 {
			sc.Forward = sc.Forward.RotateY(sc.YawRate * step).Normalized()
		}
		if sc.PitchRate != 0 {
			sc.Forward = sc.Forward.RotateX(sc.PitchRate * step).Normalized()
		}
		sc.Velocity = sc.Forward.Scale(sc.Thrust * sc.MaxSpeed)
		sc.Position = sc.Position.Add(sc.Velocity.Scale(step))
		s.space.Move(sc.ID, sc.Position)
	}

	for _, a := range s.state.Aliens() {
		if a.State == world.AIDestroyed {
			continue
		}
		if a.Velocity.LenSq() > 0 {
			a.Position = a.Position.Add(a.Velocity.Scale(step))
			s.space.Move(a.ID, a.Position)
		}
	}

	for _, p := range s.state.Planets {
		for _, sat := range p.Satellites {
			sat.Angle += sat.OrbitSpeed * step
			sat.Position = world.SatellitePosition(p, sat)
		}
	}
}
