package analysis

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/habitat.report/internal/occupancy"
)

func TestFilterToPhase(t *testing.T) {
	phase := hourPhase("p", 0)
	raw := []occupancy.RawInterval{
		iv(-50, 10, 1),    // starts before the phase
		iv(0, 20, 2),      // starts on the boundary
		iv(100, 200, 3),   // inside
		iv(3500, 4000, 4), // runs past the end
		iv(3600, 3700, 5), // starts at the end
		iv(300, 250, 6),   // inverted, passed through
	}

	clipped := FilterToPhase(raw, phase, true)
	want := []occupancy.RawInterval{iv(0, 20, 2), iv(100, 200, 3), iv(3500, 3600, 4), iv(300, 250, 6)}
	if diff := cmp.Diff(want, clipped); diff != "" {
		t.Errorf("FilterToPhase(clip) mismatch (-want +got):\n%s", diff)
	}

	unclipped := FilterToPhase(raw, phase, false)
	assert.Equal(t, iv(3500, 4000, 4), unclipped[2])

	assert.Empty(t, FilterToPhase(nil, phase, true))
}

func TestColumns(t *testing.T) {
	starts, ends, zones := columns([]occupancy.RawInterval{iv(0, 1.5, 7)})
	assert.True(t, starts[0].Equal(epoch))
	assert.True(t, ends[0].Equal(epoch.Add(1500*time.Millisecond)))
	assert.Equal(t, []occupancy.Zone{7}, zones)
}

func TestPairs(t *testing.T) {
	got := Pairs([]occupancy.EntityID{"m1", "m2", "m3"})
	want := []occupancy.Pair{{A: "m1", B: "m2"}, {A: "m1", B: "m3"}, {A: "m2", B: "m3"}}
	assert.Equal(t, want, got)

	assert.Empty(t, Pairs([]occupancy.EntityID{"m1"}))
}
