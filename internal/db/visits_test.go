package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/habitat.report/internal/occupancy"
)

func TestPhases_UpsertAndBounds(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	light := testPhase("PHASE 1 light", 12, 24)
	dark := testPhase("PHASE 1 dark", 0, 12)
	require.NoError(t, db.UpsertPhase(ctx, light))
	require.NoError(t, db.UpsertPhase(ctx, dark))

	got, err := db.PhaseBounds(ctx, "PHASE 1 dark")
	require.NoError(t, err)
	assert.True(t, got.Start.Equal(dark.Start))
	assert.True(t, got.End.Equal(dark.End))

	// Upsert replaces bounds.
	moved := testPhase("PHASE 1 dark", 1, 12)
	require.NoError(t, db.UpsertPhase(ctx, moved))
	got, err = db.PhaseBounds(ctx, "PHASE 1 dark")
	require.NoError(t, err)
	assert.True(t, got.Start.Equal(moved.Start))

	phases, err := db.Phases(ctx)
	require.NoError(t, err)
	require.Len(t, phases, 2)
	assert.Equal(t, "PHASE 1 dark", phases[0].Name)
	assert.Equal(t, "PHASE 1 light", phases[1].Name)
}

func TestPhaseBounds_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.PhaseBounds(context.Background(), "PHASE 9")
	if !errors.Is(err, ErrPhaseNotFound) {
		t.Fatalf("expected ErrPhaseNotFound, got %v", err)
	}

	_, err = db.FetchVisits(context.Background(), "m1", "PHASE 9")
	assert.ErrorIs(t, err, ErrPhaseNotFound)
}

func TestUpsertPhase_RejectsEmptyWindow(t *testing.T) {
	db := setupTestDB(t)
	assert.Error(t, db.UpsertPhase(context.Background(), testPhase("p", 5, 5)))
}

func TestInsertAndFetchVisits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertPhase(ctx, testPhase("p", 0, 1)))

	intervals := []occupancy.RawInterval{
		{Start: secs(-100), End: secs(-50), Zone: 1},  // before the phase
		{Start: secs(-10), End: secs(20), Zone: 2},    // straddles the start
		{Start: secs(30), End: secs(90), Zone: 3},     // inside
		{Start: secs(3590), End: secs(3700), Zone: 4}, // straddles the end
		{Start: secs(3600), End: secs(3700), Zone: 1}, // starts at the end
	}
	n, err := db.InsertVisits(ctx, "m1", "test", intervals)
	require.NoError(t, err)
	assert.Equal(t, len(intervals), n)

	_, err = db.InsertVisits(ctx, "m2", "test", []occupancy.RawInterval{{Start: secs(40), End: secs(50), Zone: 3}})
	require.NoError(t, err)

	got, err := db.FetchVisits(ctx, "m1", "p")
	require.NoError(t, err)
	want := []occupancy.RawInterval{intervals[1], intervals[2], intervals[3]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FetchVisits mismatch (-want +got):\n%s", diff)
	}

	entities, err := db.Entities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []occupancy.EntityID{"m1", "m2"}, entities)
}

func TestInsertVisits_ReplacesSameStart(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertPhase(ctx, testPhase("p", 0, 1)))

	_, err := db.InsertVisits(ctx, "m1", "a", []occupancy.RawInterval{{Start: secs(10), End: secs(20), Zone: 1}})
	require.NoError(t, err)
	_, err = db.InsertVisits(ctx, "m1", "b", []occupancy.RawInterval{{Start: secs(10), End: secs(25), Zone: 2}})
	require.NoError(t, err)

	got, err := db.FetchVisits(ctx, "m1", "p")
	require.NoError(t, err)
	assert.Equal(t, []occupancy.RawInterval{{Start: secs(10), End: secs(25), Zone: 2}}, got)

	n, err := db.InsertVisits(ctx, "m1", "c", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFetchVisits_KeepsMalformedRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertPhase(ctx, testPhase("p", 0, 1)))

	inverted := occupancy.RawInterval{Start: secs(100), End: secs(50), Zone: 1}
	_, err := db.InsertVisits(ctx, "m1", "test", []occupancy.RawInterval{inverted})
	require.NoError(t, err)

	got, err := db.FetchVisits(ctx, "m1", "p")
	require.NoError(t, err)
	assert.Equal(t, []occupancy.RawInterval{inverted}, got)
}
