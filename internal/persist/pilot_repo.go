package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// PilotRow mirrors one pilot_profiles row.
type PilotRow struct {
	ID        int32
	Callsign  string
	Credits   int64
	Score     int64
	Kills     int32
	Deaths    int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KillEntry is one append-only kill_log row, batched per save.
type KillEntry struct {
	AlienClass string
	SectorName string
	Credits    int64
}

type PilotRepo struct {
	db *DB
}

func NewPilotRepo(db *DB) *PilotRepo {
	return &PilotRepo{db: db}
}

// LoadOrCreate fetches the profile for a callsign, inserting a fresh one on
// first boot.
func (r *PilotRepo) LoadOrCreate(ctx context.Context, callsign string) (*PilotRow, error) {
	row, err := r.load(ctx, callsign)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load pilot %q: %w", callsign, err)
	}

	var created PilotRow
	err = r.db.Pool.QueryRow(ctx,
		`INSERT INTO pilot_profiles (callsign)
		 VALUES ($1)
		 RETURNING id, callsign, credits, score, kills, deaths, created_at, updated_at`,
		callsign,
	).Scan(&created.ID, &created.Callsign, &created.Credits, &created.Score,
		&created.Kills, &created.Deaths, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create pilot %q: %w", callsign, err)
	}
	return &created, nil
}

func (r *PilotRepo) load(ctx context.Context, callsign string) (*PilotRow, error) {
	var row PilotRow
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, callsign, credits, score, kills, deaths, created_at, updated_at
		 FROM pilot_profiles
		 WHERE callsign = $1`, callsign,
	).Scan(&row.ID, &row.Callsign, &row.Credits, &row.Score,
		&row.Kills, &row.Deaths, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Save writes the profile counters and flushes pending kill-log entries in
// one transaction, so a crash never records a kill without its reward.
func (r *PilotRepo) Save(ctx context.Context, row *PilotRow, kills []KillEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save pilot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE pilot_profiles
		 SET credits = $2, score = $3, kills = $4, deaths = $5, updated_at = now()
		 WHERE id = $1`,
		row.ID, row.Credits, row.Score, row.Kills, row.Deaths,
	); err != nil {
		return fmt.Errorf("save pilot update: %w", err)
	}

	for _, k := range kills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO kill_log (pilot_id, alien_class, sector_name, credits)
			 VALUES ($1, $2, $3, $4)`,
			row.ID, k.AlienClass, k.SectorName, k.Credits,
		); err != nil {
			return fmt.Errorf("save pilot kill log: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// RecordDiscovery inserts a discovery row; re-discovering a sector (after a
// universe regenerate) is a no-op.
func (r *PilotRepo) RecordDiscovery(ctx context.Context, pilotID int32, sector string, danger int) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO sector_discoveries (pilot_id, sector_name, danger)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (pilot_id, sector_name) DO NOTHING`,
		pilotID, sector, danger,
	)
	if err != nil {
		return fmt.Errorf("record discovery %q: %w", sector, err)
	}
	return nil
}

// Discoveries returns the sector names the pilot has already visited.
func (r *PilotRepo) Discoveries(ctx context.Context, pilotID int32) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT sector_name FROM sector_discoveries WHERE pilot_id = $1`, pilotID)
	if err != nil {
		return nil, fmt.Errorf("load discoveries: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan discovery: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
