package system

import (
	"time"

	"github.com/ematoledor/starflight-server/internal/core/ecs"
	coresys "github.com/ematoledor/starflight-server/internal/core/system"
)

// CleanupSystem flushes the entity destroy queue at the end of every tick.
// Runs last so no other system can observe a half-destroyed entity within
// the tick that marked it. Phase 6 (Cleanup).
type CleanupSystem struct {
	entities *ecs.World
}

func NewCleanupSystem(entities *ecs.World) *CleanupSystem {
	return &CleanupSystem{entities: entities}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(time.Duration) {
	s.entities.FlushDestroyQueue()
}
