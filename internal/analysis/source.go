package analysis

import (
	"context"
	"time"

	"github.com/banshee-data/habitat.report/internal/occupancy"
	"github.com/banshee-data/habitat.report/internal/timeutil"
)

// VisitSource supplies raw intervals and phase windows. *db.DB implements it.
type VisitSource interface {
	FetchVisits(ctx context.Context, entity occupancy.EntityID, phase string) ([]occupancy.RawInterval, error)
	PhaseBounds(ctx context.Context, phase string) (occupancy.Phase, error)
}

// FilterToPhase keeps the intervals whose start lies in [phase.Start,
// phase.End). With clip set, ends past phase.End are cut back to it so that
// residency can never exceed the phase length. Order is preserved and bad
// intervals are passed through for the builder to reject.
func FilterToPhase(raw []occupancy.RawInterval, phase occupancy.Phase, clip bool) []occupancy.RawInterval {
	end := timeutil.UnixSeconds(phase.End)
	out := make([]occupancy.RawInterval, 0, len(raw))
	for _, iv := range raw {
		if !phase.Contains(timeutil.FromUnixSeconds(iv.Start)) {
			continue
		}
		if clip && iv.End > end {
			iv.End = end
		}
		out = append(out, iv)
	}
	return out
}

// columns splits intervals into the builder's parallel start/end/zone inputs.
func columns(raw []occupancy.RawInterval) (starts, ends []time.Time, zones []occupancy.Zone) {
	starts = make([]time.Time, len(raw))
	ends = make([]time.Time, len(raw))
	zones = make([]occupancy.Zone, len(raw))
	for i, iv := range raw {
		starts[i] = timeutil.FromUnixSeconds(iv.Start)
		ends[i] = timeutil.FromUnixSeconds(iv.End)
		zones[i] = iv.Zone
	}
	return starts, ends, zones
}
