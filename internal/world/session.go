package world

// KillRecord is one alien kill not yet flushed to the database.
type KillRecord struct {
	Class   string
	Sector  string
	Credits int64
}

// PilotSession is the pilot's persistent profile as held in memory between
// autosaves. Accessed only from the game loop goroutine — no locks.
type PilotSession struct {
	ProfileID int32
	Callsign  string

	Credits int64
	Score   int64
	Kills   int64
	Deaths  int64

	// Accumulated since the last save, flushed by the persist phase.
	UnsavedKills       []KillRecord
	UnsavedDiscoveries []string

	// Sector names already credited to this pilot.
	Discovered map[string]bool
}

func NewPilotSession(profileID int32, callsign string) *PilotSession {
	return &PilotSession{
		ProfileID:  profileID,
		Callsign:   callsign,
		Discovered: make(map[string]bool, 16),
	}
}

// RecordKill credits a kill and queues it for the next save.
func (ps *PilotSession) RecordKill(class, sector string, credits, score int64) {
	ps.Credits += credits
	ps.Score += score
	ps.Kills++
	ps.UnsavedKills = append(ps.UnsavedKills, KillRecord{
		Class:   class,
		Sector:  sector,
		Credits: credits,
	})
}

// RecordDeath applies the death penalty fraction to the pilot's credits.
func (ps *PilotSession) RecordDeath(penalty float64) {
	if penalty < 0 {
		penalty = 0
	} else if penalty > 1 {
		penalty = 1
	}
	ps.Credits -= int64(float64(ps.Credits) * penalty)
	ps.Deaths++
}

// RecordDiscovery marks a sector as discovered and reports whether this was
// the first visit.
func (ps *PilotSession) RecordDiscovery(sector string) bool {
	if ps.Discovered[sector] {
		return false
	}
	ps.Discovered[sector] = true
	ps.UnsavedDiscoveries = append(ps.UnsavedDiscoveries, sector)
	return true
}

// TakeUnsavedKills returns the queued kills and clears the queue.
func (ps *PilotSession) TakeUnsavedKills() []KillRecord {
	kills := ps.UnsavedKills
	ps.UnsavedKills = nil
	return kills
}

// TakeUnsavedDiscoveries returns the queued discoveries and clears the queue.
func (ps *PilotSession) TakeUnsavedDiscoveries() []string {
	names := ps.UnsavedDiscoveries
	ps.UnsavedDiscoveries = nil
	return names
}
