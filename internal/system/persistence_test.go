package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ematoledor/starflight-server/internal/persist"
	"github.com/ematoledor/starflight-server/internal/world"
)

// fakePilotStore records writes and can be told to fail them.
type fakePilotStore struct {
	failSave        bool
	failDiscoveries map[string]bool

	savedKills  []persist.KillEntry
	discoveries []string
}

func (f *fakePilotStore) Save(_ context.Context, _ *persist.PilotRow, kills []persist.KillEntry) error {
	if f.failSave {
		return errors.New("connection reset")
	}
	f.savedKills = append(f.savedKills, kills...)
	return nil
}

func (f *fakePilotStore) RecordDiscovery(_ context.Context, _ int32, sector string, _ int) error {
	if f.failDiscoveries[sector] {
		return errors.New("connection reset")
	}
	f.discoveries = append(f.discoveries, sector)
	return nil
}

func newPersistenceFixture(store *fakePilotStore) (*PersistenceSystem, *world.PilotSession) {
	st := world.NewState()
	st.Sectors = []*world.Sector{
		{Name: "Altair Reach", Danger: 1},
	}
	session := world.NewPilotSession(7, "Vega")
	sys := NewPersistenceSystem(st, store, session, time.Minute, zap.NewNop())
	return sys, session
}

func TestPersistenceFlushWritesSession(t *testing.T) {
	store := &fakePilotStore{}
	sys, session := newPersistenceFixture(store)

	session.RecordKill("scout", "Altair Reach", 50, 10)
	require.True(t, session.RecordDiscovery("Altair Reach"))
	sys.Flush()

	assert.Len(t, store.savedKills, 1)
	assert.Equal(t, []string{"Altair Reach"}, store.discoveries)
	assert.Empty(t, session.UnsavedKills)
	assert.Empty(t, session.UnsavedDiscoveries)
}

func TestPersistenceRequeuesKillsOnSaveFailure(t *testing.T) {
	store := &fakePilotStore{failSave: true}
	sys, session := newPersistenceFixture(store)

	session.RecordKill("scout", "Altair Reach", 50, 10)
	sys.Flush()

	require.Len(t, session.UnsavedKills, 1, "failed kill log must stay queued")

	// A kill recorded after the failed flush keeps its place behind the retry.
	session.RecordKill("fighter", "Altair Reach", 80, 15)
	store.failSave = false
	sys.Flush()

	require.Len(t, store.savedKills, 2)
	assert.Equal(t, "scout", store.savedKills[0].AlienClass)
	assert.Equal(t, "fighter", store.savedKills[1].AlienClass)
	assert.Empty(t, session.UnsavedKills)
}

func TestPersistenceRequeuesDiscoveriesOnFailure(t *testing.T) {
	store := &fakePilotStore{failDiscoveries: map[string]bool{"Altair Reach": true}}
	sys, session := newPersistenceFixture(store)

	require.True(t, session.RecordDiscovery("Altair Reach"))
	sys.Flush()

	// Already marked discovered, so it cannot be re-recorded; the retry
	// queue is the only way the row ever reaches the database.
	assert.False(t, session.RecordDiscovery("Altair Reach"))
	require.Equal(t, []string{"Altair Reach"}, session.UnsavedDiscoveries,
		"failed discovery must stay queued")

	store.failDiscoveries = nil
	sys.Flush()

	assert.Equal(t, []string{"Altair Reach"}, store.discoveries)
	assert.Empty(t, session.UnsavedDiscoveries)
}
