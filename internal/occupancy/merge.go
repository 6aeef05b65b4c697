package occupancy

import (
	"fmt"
	"slices"
	"time"
)

// TransitionPolicy decides how rows that fall between two visits of an
// entity are labelled after the directional fill.
type TransitionPolicy int

const (
	// CorrectWholeGap marks every row outside a visit Unassigned: rows before
	// the first Enter, between a Leave and the next Enter, and after the last Leave.
	// This matches the recorder analysis, where the Unassigned mark on the row
	// before an Enter is back-filled over the rest of the gap, so a multi-row
	// gap never counts as time already spent in the next zone.
	CorrectWholeGap TransitionPolicy = iota
	// CorrectPrecedingRow marks only the single row right before an Enter that
	// is separated from the entity's previous event by a foreign row.
	CorrectPrecedingRow
	// CorrectNone keeps the raw directional fill.
	CorrectNone
)

var policyNames = map[TransitionPolicy]string{
	CorrectWholeGap:     "whole-gap",
	CorrectPrecedingRow: "preceding-row",
	CorrectNone:         "none",
}

func (p TransitionPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("TransitionPolicy(%d)", int(p))
}

// ParseTransitionPolicy accepts the names printed by TransitionPolicy.String.
func ParseTransitionPolicy(s string) (TransitionPolicy, error) {
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown transition policy %q (want whole-gap, preceding-row or none)", s)
}

// MergeTimelines merges the event streams of entities A and B into one row
// per distinct timestamp.
//
// A row where an entity has no event of its own takes the zone and visit of
// that entity's next event, i.e. where it is about to be. Rows after an
// entity's last event are Unassigned for it. The policy then removes the
// false presence this fill creates in the untracked time between visits.
//
// When an entity leaves one visit and enters the next at the same instant the
// row carries the entered visit, while earlier rows are filled from the Leave.
func MergeTimelines(a, b []Event, policy TransitionPolicy) []CombinedRow {
	times := unionTimes(a, b)
	if len(times) == 0 {
		return nil
	}

	pa := project(a, times, policy)
	pb := project(b, times, policy)

	rows := make([]CombinedRow, len(times))
	for i, t := range times {
		rows[i] = CombinedRow{At: t, A: pa[i], B: pb[i]}
	}
	return rows
}

func unionTimes(a, b []Event) []time.Time {
	times := make([]time.Time, 0, len(a)+len(b))
	for _, e := range a {
		times = append(times, e.At)
	}
	for _, e := range b {
		times = append(times, e.At)
	}
	slices.SortFunc(times, time.Time.Compare)
	return slices.CompactFunc(times, time.Time.Equal)
}

// nativeEvents holds the first and last event an entity has at one row.
type nativeEvents struct {
	first   Event
	last    Event
	present bool
}

func project(events []Event, times []time.Time, policy TransitionPolicy) []Presence {
	natives := make([]nativeEvents, len(times))
	j := 0
	for i, t := range times {
		for j < len(events) && events[j].At.Equal(t) {
			n := &natives[i]
			if !n.present {
				n.first = events[j]
				n.present = true
			}
			n.last = events[j]
			j++
		}
	}

	out := make([]Presence, len(times))
	var next Event
	hasNext := false
	for i := len(times) - 1; i >= 0; i-- {
		n := natives[i]
		if n.present {
			out[i] = Presence{Zone: n.last.Zone, Visit: n.last.VisitIndex, Native: true}
			next = n.first
			hasNext = true
			continue
		}
		if !hasNext {
			out[i] = Presence{Zone: Unassigned, Visit: NoVisit}
			continue
		}
		out[i] = Presence{Zone: next.Zone, Visit: next.VisitIndex}
		if policy == CorrectWholeGap && next.Kind == Enter {
			out[i].Zone = Unassigned
		}
	}

	if policy == CorrectPrecedingRow {
		seen := false
		for i, n := range natives {
			if !n.present {
				continue
			}
			if seen && n.first.Kind == Enter && i > 0 && !natives[i-1].present {
				out[i-1].Zone = Unassigned
			}
			seen = true
		}
	}

	return out
}
