package system

import (
	"time"

	coresys "github.com/ematoledor/starflight-server/internal/core/system"
	"github.com/ematoledor/starflight-server/internal/telemetry"
	"github.com/ematoledor/starflight-server/internal/world"
)

// InputSystem drains pilot control commands from the telemetry hub and
// writes them onto the spacecraft for this tick. A per-tick budget caps
// how many frames one tick absorbs; later commands win because the last
// write sticks. Phase 0 (Input).
type InputSystem struct {
	state  *world.State
	hub    *telemetry.Hub
	budget int
}

func NewInputSystem(st *world.State, hub *telemetry.Hub, maxCommandsPerTick int) *InputSystem {
	if maxCommandsPerTick <= 0 {
		maxCommandsPerTick = 32
	}
	return &InputSystem{state: st, hub: hub, budget: maxCommandsPerTick}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	sc := s.state.Player
	if sc == nil {
		return
	}
	// FireHeld is edge-triggered per frame; reset before draining.
	sc.FireHeld = false

	for i := 0; i < s.budget; i++ {
		select {
		case cmd := <-s.hub.Commands():
			s.apply(sc, cmd)
		default:
			return
		}
	}
}

func (s *InputSystem) apply(sc *world.Spacecraft, cmd telemetry.Command) {
	if sc.Dead {
		return
	}
	sc.Thrust = clamp(cmd.Thrust, 0, 1)
	sc.YawRate = clamp(cmd.Yaw, -maxTurnRate, maxTurnRate)
	sc.PitchRate = clamp(cmd.Pitch, -maxTurnRate, maxTurnRate)
	if cmd.Fire {
		sc.FireHeld = true
	}
}

// maxTurnRate bounds commanded angular velocity (radians per second).
const maxTurnRate = 2.0

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
