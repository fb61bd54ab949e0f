package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/ematoledor/starflight-server/internal/core/event"
	coresys "github.com/ematoledor/starflight-server/internal/core/system"
	"github.com/ematoledor/starflight-server/internal/scripting"
	"github.com/ematoledor/starflight-server/internal/world"
)

// DiscoverySystem tracks which sector the pilot currently occupies and
// credits first visits. The current sector name also feeds telemetry.
// Phase 3 (PostUpdate), after movement has settled the pilot's position.
type DiscoverySystem struct {
	state   *world.State
	bus     *event.Bus
	scripts *scripting.Engine
	session *world.PilotSession
	log     *zap.Logger

	current string
}

func NewDiscoverySystem(
	st *world.State,
	bus *event.Bus,
	scripts *scripting.Engine,
	session *world.PilotSession,
	log *zap.Logger,
) *DiscoverySystem {
	return &DiscoverySystem{
		state:   st,
		bus:     bus,
		scripts: scripts,
		session: session,
		log:     log,
		current: world.DeepSpaceName,
	}
}

func (s *DiscoverySystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// CurrentSector returns the name of the sector the pilot was last seen in,
// or "Deep Space".
func (s *DiscoverySystem) CurrentSector() string { return s.current }

func (s *DiscoverySystem) Update(time.Duration) {
	pilot := s.state.Player
	if pilot == nil || pilot.Dead {
		return
	}

	name := world.DeepSpaceName
	danger := 0
	if sec, ok := s.state.SectorAt(pilot.Position); ok {
		name = sec.Name
		danger = sec.Danger
	}
	if name == s.current {
		return
	}
	s.current = name
	if name == world.DeepSpaceName {
		return
	}

	if s.session != nil && s.session.RecordDiscovery(name) {
		event.Emit(s.bus, event.SectorDiscovered{Name: name, Danger: danger})
		s.scripts.OnSectorDiscovered(name, danger)
		s.log.Info("sector discovered",
			zap.String("sector", name),
			zap.Int("danger", danger))
	}
}
