package system

import (
	"time"

	"github.com/ematoledor/starflight-server/internal/core/event"
	coresys "github.com/ematoledor/starflight-server/internal/core/system"
)

// EventDispatchSystem rotates the event bus buffers and delivers last
// tick's events to their handlers. Phase 1 (PreUpdate), so every other
// system sees a stable front buffer for the whole tick.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
