package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/ematoledor/starflight-server/internal/core/system"
	"github.com/ematoledor/starflight-server/internal/persist"
	"github.com/ematoledor/starflight-server/internal/world"
)

const saveTimeout = 10 * time.Second

// PilotStore is the slice of the pilot repository this system writes to.
type PilotStore interface {
	Save(ctx context.Context, row *persist.PilotRow, kills []persist.KillEntry) error
	RecordDiscovery(ctx context.Context, pilotID int32, sector string, danger int) error
}

// PersistenceSystem flushes the pilot session to the database on a fixed
// autosave interval. Saves run synchronously inside the persist phase; the
// interval keeps them rare enough that a blocking write is acceptable.
// Phase 5 (Persist).
type PersistenceSystem struct {
	state   *world.State
	repo    PilotStore
	session *world.PilotSession
	log     *zap.Logger

	interval time.Duration
	elapsed  time.Duration
}

func NewPersistenceSystem(
	st *world.State,
	repo PilotStore,
	session *world.PilotSession,
	interval time.Duration,
	log *zap.Logger,
) *PersistenceSystem {
	return &PersistenceSystem{
		state:    st,
		repo:     repo,
		session:  session,
		log:      log,
		interval: interval,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(dt time.Duration) {
	if s.repo == nil || s.session == nil {
		return
	}
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed = 0
	s.Flush()
}

// Flush writes the session out immediately. Also called once on shutdown.
func (s *PersistenceSystem) Flush() {
	if s.repo == nil || s.session == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	row := &persist.PilotRow{
		ID:       s.session.ProfileID,
		Callsign: s.session.Callsign,
		Credits:  s.session.Credits,
		Score:    s.session.Score,
		Kills:    int32(s.session.Kills),
		Deaths:   int32(s.session.Deaths),
	}
	records := s.session.TakeUnsavedKills()
	if err := s.repo.Save(ctx, row, killEntries(records)); err != nil {
		// Re-queue so the kill log is retried on the next save.
		s.session.UnsavedKills = append(records, s.session.UnsavedKills...)
		s.log.Error("pilot save failed", zap.Error(err))
		return
	}

	var failed []string
	for _, name := range s.session.TakeUnsavedDiscoveries() {
		danger := s.sectorDanger(name)
		if err := s.repo.RecordDiscovery(ctx, s.session.ProfileID, name, danger); err != nil {
			failed = append(failed, name)
			s.log.Error("discovery save failed",
				zap.String("sector", name), zap.Error(err))
		}
	}
	if len(failed) > 0 {
		// Re-queue so the rows are retried on the next save. Discovered
		// already holds the names, so RecordDiscovery will not re-add them.
		s.session.UnsavedDiscoveries = append(failed, s.session.UnsavedDiscoveries...)
	}

	s.log.Debug("pilot session saved",
		zap.Int64("credits", s.session.Credits),
		zap.Int("kills_flushed", len(records)))
}

func (s *PersistenceSystem) sectorDanger(name string) int {
	for _, sec := range s.state.Sectors {
		if sec.Name == name {
			return sec.Danger
		}
	}
	return 0
}

func killEntries(records []world.KillRecord) []persist.KillEntry {
	if len(records) == 0 {
		return nil
	}
	entries := make([]persist.KillEntry, len(records))
	for i, r := range records {
		entries[i] = persist.KillEntry{
			AlienClass: r.Class,
			SectorName: r.Sector,
			Credits:    r.Credits,
		}
	}
	return entries
}
