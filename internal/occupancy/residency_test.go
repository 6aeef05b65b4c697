package occupancy

import (
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResidency_SumsPerZone(t *testing.T) {
	visits, _ := buildEntity(t, "m1",
		span{0, 10, 1},
		span{15, 20, 2},
		span{30, 45, 1},
	)

	got := Residency(visits)
	want := map[Zone]ZoneResidency{
		1: {Total: 25 * time.Second, Visits: 2},
		2: {Total: 5 * time.Second, Visits: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Residency mismatch (-want +got):\n%s", diff)
	}
}

func TestResidency_OrderIndependentAndRepeatable(t *testing.T) {
	visits, _ := buildEntity(t, "m1",
		span{0, 3, 4},
		span{4, 9, 2},
		span{10, 11, 4},
		span{20, 32, 3},
	)
	reversed := slices.Clone(visits)
	slices.Reverse(reversed)

	first := ResidencyRecords("m1", "PHASE 1 dark", visits)
	second := ResidencyRecords("m1", "PHASE 1 dark", visits)
	fromReversed := ResidencyRecords("m1", "PHASE 1 dark", reversed)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeat run differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first, fromReversed); diff != "" {
		t.Errorf("reversed input differs (-ordered +reversed):\n%s", diff)
	}
}

func TestResidency_EmptyHasNoZones(t *testing.T) {
	assert.Empty(t, Residency(nil))
	assert.Nil(t, ResidencyRecords("m1", "p", nil))
}

func TestResidency_ZeroLengthVisitCounts(t *testing.T) {
	visits := []Visit{
		{Entity: "m1", Zone: 3, Start: at(5), End: at(5), Index: 0},
		{Entity: "m1", Zone: 3, Start: at(6), End: at(8), Index: 1},
	}
	got := Residency(visits)
	assert.Equal(t, ZoneResidency{Total: 2 * time.Second, Visits: 2}, got[3])
}

func TestResidencyRecords_SortedByZone(t *testing.T) {
	visits, _ := buildEntity(t, "m3",
		span{0, 1, 4},
		span{2, 4, 1},
		span{5, 8, 3},
	)
	records := ResidencyRecords("m3", "PHASE 2 light", visits)

	require.Len(t, records, 3)
	assert.Equal(t, []Zone{1, 3, 4}, []Zone{records[0].Zone, records[1].Zone, records[2].Zone})
	assert.Equal(t, ResidencyRecord{
		Entity:        "m3",
		Phase:         "PHASE 2 light",
		Zone:          3,
		TotalDuration: 3 * time.Second,
		VisitCount:    1,
	}, records[1])
}

func TestResidency_BoundedByPhaseSpan(t *testing.T) {
	phase := Phase{Name: "p", Start: at(0), End: at(100)}

	tests := []struct {
		name      string
		spans     []span
		wantEqual bool
	}{
		{"gaps", []span{{0, 10, 1}, {20, 50, 2}, {60, 100, 1}}, false},
		{"full cover", []span{{0, 40, 1}, {40, 70, 2}, {70, 100, 3}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visits, _ := buildEntity(t, "m1", tt.spans...)
			var total time.Duration
			for _, r := range Residency(visits) {
				total += r.Total
			}
			assert.LessOrEqual(t, total, phase.Span())
			assert.Equal(t, tt.wantEqual, total == phase.Span())
		})
	}
}
