package system

import (
	"time"

	coresys "github.com/ematoledor/starflight-server/internal/core/system"
	"github.com/ematoledor/starflight-server/internal/world"
)

// Shield and hull recovery per whole second.
const (
	shieldRegenPerSecond = 2
	hullRegenPerSecond   = 1
)

// RegenSystem restores the pilot's shield and hull over time. Regen applies
// once per accumulated whole second so the rate is independent of the tick
// length. Dead craft do not regenerate. Phase 3 (PostUpdate).
type RegenSystem struct {
	state *world.State
}

func NewRegenSystem(st *world.State) *RegenSystem {
	return &RegenSystem{state: st}
}

func (s *RegenSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *RegenSystem) Update(dt time.Duration) {
	pilot := s.state.Player
	if pilot == nil || pilot.Dead {
		return
	}
	pilot.RegenAcc += dt.Seconds()
	if pilot.RegenAcc < 1 {
		return
	}
	whole := int32(pilot.RegenAcc)
	pilot.RegenAcc -= float64(whole)

	pilot.Shield += whole * shieldRegenPerSecond
	if pilot.Shield > pilot.MaxShield {
		pilot.Shield = pilot.MaxShield
	}
	pilot.Hull += whole * hullRegenPerSecond
	if pilot.Hull > pilot.MaxHull {
		pilot.Hull = pilot.MaxHull
	}
}
