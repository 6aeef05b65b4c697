package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/banshee-data/habitat.report/internal/occupancy"
	"github.com/banshee-data/habitat.report/internal/timeutil"
)

// ErrPhaseNotFound is returned when a phase name has no stored bounds.
var ErrPhaseNotFound = errors.New("phase not found")

// UpsertPhase stores or replaces the bounds of a phase.
func (db *DB) UpsertPhase(ctx context.Context, p occupancy.Phase) error {
	if !p.Start.Before(p.End) {
		return fmt.Errorf("phase %q: start must be before end", p.Name)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO phases (name, start_unix, end_unix) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET start_unix = excluded.start_unix, end_unix = excluded.end_unix`,
		p.Name, timeutil.UnixSeconds(p.Start), timeutil.UnixSeconds(p.End))
	if err != nil {
		return fmt.Errorf("upsert phase %q: %w", p.Name, err)
	}
	return nil
}

// PhaseBounds returns the stored window of the named phase.
func (db *DB) PhaseBounds(ctx context.Context, name string) (occupancy.Phase, error) {
	var start, end float64
	err := db.QueryRowContext(ctx,
		`SELECT start_unix, end_unix FROM phases WHERE name = ?`, name).Scan(&start, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return occupancy.Phase{}, fmt.Errorf("%w: %q", ErrPhaseNotFound, name)
	}
	if err != nil {
		return occupancy.Phase{}, fmt.Errorf("phase bounds %q: %w", name, err)
	}
	return occupancy.Phase{
		Name:  name,
		Start: timeutil.FromUnixSeconds(start),
		End:   timeutil.FromUnixSeconds(end),
	}, nil
}

// Phases lists every stored phase in start order.
func (db *DB) Phases(ctx context.Context) ([]occupancy.Phase, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name, start_unix, end_unix FROM phases ORDER BY start_unix, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phases []occupancy.Phase
	for rows.Next() {
		var (
			name       string
			start, end float64
		)
		if err := rows.Scan(&name, &start, &end); err != nil {
			return nil, err
		}
		phases = append(phases, occupancy.Phase{
			Name:  name,
			Start: timeutil.FromUnixSeconds(start),
			End:   timeutil.FromUnixSeconds(end),
		})
	}
	return phases, rows.Err()
}

// Entities lists every entity with at least one stored visit.
func (db *DB) Entities(ctx context.Context) ([]occupancy.EntityID, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT entity FROM visits ORDER BY entity`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []occupancy.EntityID
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		entities = append(entities, occupancy.EntityID(e))
	}
	return entities, rows.Err()
}

// InsertVisits stores raw intervals for one entity in a single transaction.
// A row with the same entity and start replaces the earlier one.
func (db *DB) InsertVisits(ctx context.Context, entity occupancy.EntityID, source string, intervals []occupancy.RawInterval) (int, error) {
	if len(intervals) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO visits (entity, start_unix, end_unix, zone, source) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(entity, start_unix) DO UPDATE SET
			end_unix = excluded.end_unix, zone = excluded.zone, source = excluded.source`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, iv := range intervals {
		if _, err := stmt.ExecContext(ctx, string(entity), iv.Start, iv.End, int(iv.Zone), source); err != nil {
			return 0, fmt.Errorf("insert visit %s@%f: %w", entity, iv.Start, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(intervals), nil
}

// FetchVisits returns the raw intervals of entity that touch the named
// phase, ordered by start. The exact phase filter is left to the caller.
func (db *DB) FetchVisits(ctx context.Context, entity occupancy.EntityID, phase string) ([]occupancy.RawInterval, error) {
	bounds, err := db.PhaseBounds(ctx, phase)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT start_unix, end_unix, zone FROM visits
		WHERE entity = ? AND start_unix < ? AND (end_unix >= ? OR start_unix >= ?)
		ORDER BY start_unix, visit_id`,
		string(entity), timeutil.UnixSeconds(bounds.End),
		timeutil.UnixSeconds(bounds.Start), timeutil.UnixSeconds(bounds.Start))
	if err != nil {
		return nil, fmt.Errorf("fetch visits %s/%s: %w", entity, phase, err)
	}
	defer rows.Close()

	var out []occupancy.RawInterval
	for rows.Next() {
		var (
			iv   occupancy.RawInterval
			zone int
		)
		if err := rows.Scan(&iv.Start, &iv.End, &zone); err != nil {
			return nil, err
		}
		iv.Zone = occupancy.Zone(zone)
		out = append(out, iv)
	}
	return out, rows.Err()
}
