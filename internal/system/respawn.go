package system

import (
	"time"

	coresys "github.com/ematoledor/starflight-server/internal/core/system"
	"github.com/ematoledor/starflight-server/internal/world"
)

// DeferredActionSystem pumps the world's deferred-action queue once per
// tick. Every delayed mutation in the server (alien respawns, pilot revival,
// anomaly pulses) is a queued action, so this system is the only place
// where "later" becomes "now". Phase 3 (PostUpdate), after regen.
type DeferredActionSystem struct {
	state *world.State
}

func NewDeferredActionSystem(st *world.State) *DeferredActionSystem {
	return &DeferredActionSystem{state: st}
}

func (s *DeferredActionSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *DeferredActionSystem) Update(time.Duration) {
	s.state.RunDeferred()
}
