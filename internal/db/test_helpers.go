package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/habitat.report/internal/occupancy"
)

// setupTestDB opens a migrated database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "habitat_test.db"))
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var testEpoch = time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

func testPhase(name string, startHours, endHours int) occupancy.Phase {
	return occupancy.Phase{
		Name:  name,
		Start: testEpoch.Add(time.Duration(startHours) * time.Hour),
		End:   testEpoch.Add(time.Duration(endHours) * time.Hour),
	}
}

// secs returns epoch seconds offset from testEpoch.
func secs(offset float64) float64 {
	return float64(testEpoch.Unix()) + offset
}
