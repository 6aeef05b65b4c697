package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

// at returns the instant s seconds after the test epoch.
func at(s int) time.Time {
	return epoch.Add(time.Duration(s) * time.Second)
}

type span struct {
	start, end int
	zone       Zone
}

func columns(spans []span) (starts, ends []time.Time, zones []Zone) {
	for _, s := range spans {
		starts = append(starts, at(s.start))
		ends = append(ends, at(s.end))
		zones = append(zones, s.zone)
	}
	return starts, ends, zones
}

// buildEntity builds visits and events for spans that must be well formed.
func buildEntity(t *testing.T, id EntityID, spans ...span) ([]Visit, []Event) {
	t.Helper()
	starts, ends, zones := columns(spans)
	visits, events, err := BuildVisits(id, starts, ends, zones)
	require.NoError(t, err)
	return visits, events
}

func eventsOf(t *testing.T, id EntityID, spans ...span) []Event {
	t.Helper()
	_, events := buildEntity(t, id, spans...)
	return events
}
