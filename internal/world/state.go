package world

import (
	"github.com/ematoledor/starflight-server/internal/core/ecs"
	"github.com/ematoledor/starflight-server/internal/geom"
)

// deferredAction is a world mutation scheduled for a future tick. Actions
// carry the epoch they were scheduled under; a universe reset bumps the
// epoch, so stale actions are dropped instead of mutating a torn-down
// world. This replaces fire-and-forget timers entirely: every delayed
// mutation runs inside the game loop.
type deferredAction struct {
	dueTick uint64
	epoch   uint64
	fn      func()
}

// State owns all runtime world data: the sector list, the global flat
// entity lists, the pilot's spacecraft, and the deferred-action queue.
// Accessed only from the game loop goroutine — no locks.
type State struct {
	Entities *ecs.World

	Sectors []*Sector

	// Global flat lists. The generator owns membership; sectors hold the
	// per-region rosters.
	Planets        []*Planet
	AsteroidFields []*AsteroidField
	Nebulae        []*Nebula
	Anomalies      []*Anomaly

	Player *Spacecraft

	aliens    map[ecs.EntityID]*AlienShip
	alienList []*AlienShip // stable iteration order

	tick     uint64
	epoch    uint64
	deferred []deferredAction
}

func NewState() *State {
	return &State{
		Entities: ecs.NewWorld(),
		aliens:   make(map[ecs.EntityID]*AlienShip, 128),
	}
}

// Tick returns the current simulation tick.
func (s *State) Tick() uint64 { return s.tick }

// Epoch returns the current world epoch. It increments on Reset.
func (s *State) Epoch() uint64 { return s.epoch }

// AdvanceTick moves the simulation clock forward one tick. Called exactly
// once per loop iteration, before any system runs.
func (s *State) AdvanceTick() { s.tick++ }

// Defer schedules fn to run delayTicks from now, bound to the current
// epoch. fn runs inside RunDeferred on the game loop goroutine.
func (s *State) Defer(delayTicks uint64, fn func()) {
	s.deferred = append(s.deferred, deferredAction{
		dueTick: s.tick + delayTicks,
		epoch:   s.epoch,
		fn:      fn,
	})
}

// RunDeferred executes every due action scheduled under the current epoch
// and drops due actions from older epochs. Actions scheduled by a running
// action land in the queue for a later tick.
func (s *State) RunDeferred() {
	kept := s.deferred[:0]
	var due []deferredAction
	for _, a := range s.deferred {
		if a.dueTick > s.tick {
			kept = append(kept, a)
			continue
		}
		if a.epoch == s.epoch {
			due = append(due, a)
		}
		// due + stale epoch: dropped
	}
	s.deferred = kept
	for _, a := range due {
		a.fn()
	}
}

// PendingDeferred returns the number of queued actions. Test hook.
func (s *State) PendingDeferred() int { return len(s.deferred) }

// AddAlien registers an alien in the global roster and the given sector.
func (s *State) AddAlien(sector *Sector, a *AlienShip) {
	s.aliens[a.ID] = a
	s.alienList = append(s.alienList, a)
	sector.Aliens = append(sector.Aliens, a)
}

// RemoveAlien drops an alien from the global roster and from whichever
// sector holds it. The entity slot is queued for end-of-tick destruction.
// Returns false when the ID is unknown.
func (s *State) RemoveAlien(id ecs.EntityID) bool {
	a, ok := s.aliens[id]
	if !ok {
		return false
	}
	delete(s.aliens, id)
	for i, it := range s.alienList {
		if it.ID == id {
			copy(s.alienList[i:], s.alienList[i+1:])
			s.alienList[len(s.alienList)-1] = nil
			s.alienList = s.alienList[:len(s.alienList)-1]
			break
		}
	}
	// Entities carry no sector back-reference; scan for the owner.
	for _, sec := range s.Sectors {
		if sec.RemoveAlien(id) {
			break
		}
	}
	if a.Weapon != nil {
		a.Weapon.Clear()
	}
	if a.Turret != nil {
		a.Turret.Weapon.Clear()
	}
	s.Entities.MarkForDestruction(id)
	return true
}

// Alien returns the live alien with the given ID, or nil.
func (s *State) Alien(id ecs.EntityID) *AlienShip {
	return s.aliens[id]
}

// Aliens returns the global alien roster in insertion order. Callers must
// not mutate membership during iteration; use RemoveAlien afterwards.
func (s *State) Aliens() []*AlienShip {
	return s.alienList
}

// AlienCount returns the number of live aliens.
func (s *State) AlienCount() int { return len(s.aliens) }

// SectorAt returns the first declared sector containing pos. The boolean
// is false in deep space. When sector spheres overlap, the earlier-declared
// sector wins; declaration order is the only tiebreak.
func (s *State) SectorAt(pos geom.Vec3) (*Sector, bool) {
	for _, sec := range s.Sectors {
		if sec.Contains(pos) {
			return sec, true
		}
	}
	return nil, false
}

// Reset tears down the universe: every sector, entity list, and live alien
// goes away, and the epoch bump invalidates all pending deferred actions.
// The pilot's craft survives a reset.
func (s *State) Reset() {
	for _, a := range s.alienList {
		if a.Weapon != nil {
			a.Weapon.Clear()
		}
		if a.Turret != nil {
			a.Turret.Weapon.Clear()
		}
		s.Entities.MarkForDestruction(a.ID)
	}
	for _, p := range s.Planets {
		for _, sat := range p.Satellites {
			s.Entities.MarkForDestruction(sat.ID)
		}
		s.Entities.MarkForDestruction(p.ID)
	}
	for _, f := range s.AsteroidFields {
		s.Entities.MarkForDestruction(f.ID)
	}
	for _, n := range s.Nebulae {
		s.Entities.MarkForDestruction(n.ID)
	}
	for _, an := range s.Anomalies {
		s.Entities.MarkForDestruction(an.ID)
	}
	s.Sectors = nil
	s.Planets = nil
	s.AsteroidFields = nil
	s.Nebulae = nil
	s.Anomalies = nil
	s.aliens = make(map[ecs.EntityID]*AlienShip, 128)
	s.alienList = nil
	s.epoch++
}
