package occupancy

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// BuildVisits turns the three parallel sequences delivered for one entity in
// one phase into indexed visits and their boundary events.
//
// Visit i takes zones[i], starts[i] and ends[i] and gets index i. Starts must
// be strictly increasing, every visit must have start < end and no visit may
// begin before the previous one ended. Touching visits are allowed.
// Empty input yields no visits and no error.
func BuildVisits(entity EntityID, starts, ends []time.Time, zones []Zone) ([]Visit, []Event, error) {
	if len(starts) != len(ends) || len(starts) != len(zones) {
		return nil, nil, &MalformedIntervalError{
			Entity:     entity,
			VisitIndex: NoVisit,
			Reason:     fmt.Sprintf("length mismatch: %d starts, %d ends, %d zones", len(starts), len(ends), len(zones)),
		}
	}
	if len(starts) == 0 {
		return nil, nil, nil
	}

	visits := make([]Visit, 0, len(starts))
	for i := range starts {
		if zones[i] == Unassigned {
			return nil, nil, malformed(entity, i, "zone id is reserved for unassigned")
		}
		if !starts[i].Before(ends[i]) {
			return nil, nil, malformed(entity, i, fmt.Sprintf("start %s not before end %s",
				starts[i].Format(time.RFC3339Nano), ends[i].Format(time.RFC3339Nano)))
		}
		if i > 0 {
			if !starts[i].After(starts[i-1]) {
				return nil, nil, malformed(entity, i, "start times not strictly increasing")
			}
			if starts[i].Before(ends[i-1]) {
				return nil, nil, malformed(entity, i, fmt.Sprintf("overlaps visit %d", i-1))
			}
		}
		visits = append(visits, Visit{
			Entity: entity,
			Zone:   zones[i],
			Start:  starts[i],
			End:    ends[i],
			Index:  i,
		})
	}

	return visits, VisitEvents(visits), nil
}

// VisitEvents emits the Enter and Leave event of every visit ordered by
// timestamp. At a shared instant the Leave of the earlier visit comes first,
// so an Enter/Leave pair of one visit is never split.
func VisitEvents(visits []Visit) []Event {
	events := make([]Event, 0, 2*len(visits))
	for _, v := range visits {
		events = append(events,
			Event{At: v.Start, Entity: v.Entity, Kind: Enter, Zone: v.Zone, VisitIndex: v.Index},
			Event{At: v.End, Entity: v.Entity, Kind: Leave, Zone: v.Zone, VisitIndex: v.Index},
		)
	}
	slices.SortStableFunc(events, compareEvents)
	return events
}

func compareEvents(a, b Event) int {
	if c := a.At.Compare(b.At); c != 0 {
		return c
	}
	// Leave sorts before Enter at the same instant.
	return cmp.Compare(b.Kind, a.Kind)
}

func malformed(entity EntityID, index int, reason string) error {
	return &MalformedIntervalError{Entity: entity, VisitIndex: index, Reason: reason}
}
