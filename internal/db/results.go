package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/habitat.report/internal/occupancy"
	"github.com/banshee-data/habitat.report/internal/timeutil"
)

// Run states stored in analysis_runs.status.
const (
	RunRunning  = "running"
	RunFinished = "finished"
	RunAborted  = "aborted"
)

// AnalysisRun is the bookkeeping row of one analysis invocation.
type AnalysisRun struct {
	RunID            string
	Started          time.Time
	Finished         time.Time // zero while the run is in progress
	TransitionPolicy string
	Phases           []string
	Status           string
	Error            string // why an aborted run stopped
	ResidencyRows    int
	MeetingRows      int
	FailedTasks      int
}

// FailureRow is a persisted task failure.
type FailureRow struct {
	Kind     string
	Phase    string
	Entities string
	Error    string
}

// StartRun records the start of an analysis run and returns its ID.
func (db *DB) StartRun(ctx context.Context, started time.Time, policy occupancy.TransitionPolicy, phases []string) (string, error) {
	if phases == nil {
		phases = []string{}
	}
	names, err := json.Marshal(phases)
	if err != nil {
		return "", fmt.Errorf("encode phases: %w", err)
	}
	runID := uuid.New().String()
	_, err = db.ExecContext(ctx, `
		INSERT INTO analysis_runs (run_id, started_unix, transition_policy, phases, status)
		VALUES (?, ?, ?, ?, ?)`,
		runID, timeutil.UnixSeconds(started), policy.String(), string(names), RunRunning)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return runID, nil
}

// FinishRun stamps the run with its completion time and row counts.
func (db *DB) FinishRun(ctx context.Context, runID string, finished time.Time, residencyRows, meetingRows, failedTasks int) error {
	res, err := db.ExecContext(ctx, `
		UPDATE analysis_runs
		SET finished_unix = ?, status = ?, residency_rows = ?, meeting_rows = ?, failed_tasks = ?
		WHERE run_id = ?`,
		timeutil.UnixSeconds(finished), RunFinished, residencyRows, meetingRows, failedTasks, runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: no such run", runID)
	}
	return nil
}

// AbortRun marks a run that stopped before its results were stored.
func (db *DB) AbortRun(ctx context.Context, runID string, finished time.Time, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	res, err := db.ExecContext(ctx, `
		UPDATE analysis_runs SET finished_unix = ?, status = ?, error = ?
		WHERE run_id = ?`,
		timeutil.UnixSeconds(finished), RunAborted, msg, runID)
	if err != nil {
		return fmt.Errorf("abort run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("abort run %s: no such run", runID)
	}
	return nil
}

// GetRun loads a run by ID.
func (db *DB) GetRun(ctx context.Context, runID string) (*AnalysisRun, error) {
	var (
		run      AnalysisRun
		started  float64
		finished sql.NullFloat64
		phases   string
	)
	err := db.QueryRowContext(ctx, `
		SELECT run_id, started_unix, finished_unix, transition_policy, phases,
			status, error, residency_rows, meeting_rows, failed_tasks
		FROM analysis_runs WHERE run_id = ?`, runID).Scan(
		&run.RunID, &started, &finished, &run.TransitionPolicy, &phases,
		&run.Status, &run.Error, &run.ResidencyRows, &run.MeetingRows, &run.FailedTasks)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, err
	}
	run.Started = timeutil.FromUnixSeconds(started)
	if finished.Valid {
		run.Finished = timeutil.FromUnixSeconds(finished.Float64)
	}
	if err := json.Unmarshal([]byte(phases), &run.Phases); err != nil {
		return nil, fmt.Errorf("run %s: decode phases: %w", runID, err)
	}
	return &run, nil
}

// SaveResidency stores residency records under runID.
func (db *DB) SaveResidency(ctx context.Context, runID string, records []occupancy.ResidencyRecord) error {
	return db.inTx(ctx, `
		INSERT INTO residency_results (run_id, entity, phase, zone, total_duration_ms, visit_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		len(records), func(i int) []any {
			r := records[i]
			return []any{runID, string(r.Entity), r.Phase, int(r.Zone),
				timeutil.Milliseconds(r.TotalDuration), r.VisitCount}
		})
}

// SaveMeetings stores meeting records under runID.
func (db *DB) SaveMeetings(ctx context.Context, runID string, records []occupancy.MeetingRecord) error {
	return db.inTx(ctx, `
		INSERT INTO meeting_results (run_id, entity_pair, entity_a, entity_b, phase, zone,
			total_meeting_duration_ms, meeting_count, average_meeting_duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(records), func(i int) []any {
			r := records[i]
			return []any{runID, r.Pair.String(), string(r.Pair.A), string(r.Pair.B), r.Phase, int(r.Zone),
				timeutil.Milliseconds(r.TotalDuration), r.EpisodeCount,
				timeutil.Milliseconds(r.AverageDuration)}
		})
}

// SaveFailures stores the failed tasks of a run.
func (db *DB) SaveFailures(ctx context.Context, runID string, failures []FailureRow) error {
	return db.inTx(ctx, `
		INSERT INTO task_failures (run_id, kind, phase, entities, error) VALUES (?, ?, ?, ?, ?)`,
		len(failures), func(i int) []any {
			f := failures[i]
			return []any{runID, f.Kind, f.Phase, f.Entities, f.Error}
		})
}

// inTx executes query n times in one transaction with args(i).
func (db *DB) inTx(ctx context.Context, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ResidencyCount returns the number of residency rows stored for runID.
func (db *DB) ResidencyCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM residency_results WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

// MeetingRows loads the stored meeting table of a run in output order.
func (db *DB) MeetingRows(ctx context.Context, runID string) ([]occupancy.MeetingRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT entity_a, entity_b, phase, zone, total_meeting_duration_ms, meeting_count, average_meeting_duration_ms
		FROM meeting_results WHERE run_id = ?
		ORDER BY phase, entity_pair, entity_a, zone`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []occupancy.MeetingRecord
	for rows.Next() {
		var (
			a, b           string
			rec            occupancy.MeetingRecord
			zone           int
			totalMs, avgMs int64
		)
		if err := rows.Scan(&a, &b, &rec.Phase, &zone, &totalMs, &rec.EpisodeCount, &avgMs); err != nil {
			return nil, err
		}
		rec.Pair = occupancy.Pair{A: occupancy.EntityID(a), B: occupancy.EntityID(b)}
		rec.Zone = occupancy.Zone(zone)
		rec.TotalDuration = time.Duration(totalMs) * time.Millisecond
		rec.AverageDuration = time.Duration(avgMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}
