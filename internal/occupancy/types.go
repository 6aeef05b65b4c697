package occupancy

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Zone identifies a region of the habitat.
type Zone int

// Unassigned marks an instant where an entity's location is not known.
const Unassigned Zone = math.MinInt32

// NoVisit is the visit index carried by timeline rows that belong to no visit.
const NoVisit = -1

func (z Zone) String() string {
	if z == Unassigned {
		return "unassigned"
	}
	return strconv.Itoa(int(z))
}

// EntityID identifies a tracked animal.
type EntityID string

// Phase is a named, half-open analysis window [Start, End).
type Phase struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within [Start, End).
func (p Phase) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Span is the length of the phase.
func (p Phase) Span() time.Duration {
	return p.End.Sub(p.Start)
}

// Visit is one contiguous stay of an entity in a zone.
type Visit struct {
	Entity EntityID
	Zone   Zone
	Start  time.Time
	End    time.Time
	Index  int
}

// Duration is End - Start.
func (v Visit) Duration() time.Duration {
	return v.End.Sub(v.Start)
}

// RawInterval is a visit as stored by a raw-interval source: start and end in
// floating seconds since the epoch.
type RawInterval struct {
	Start float64
	End   float64
	Zone  Zone
}

// EventKind is the boundary type of an Event.
type EventKind int

const (
	Enter EventKind = iota
	Leave
)

func (k EventKind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Leave:
		return "leave"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is the Enter or Leave boundary of a Visit.
type Event struct {
	At         time.Time
	Entity     EntityID
	Kind       EventKind
	Zone       Zone
	VisitIndex int
}

// Presence is what the combined timeline believes about one entity at one instant.
type Presence struct {
	Zone  Zone
	Visit int
	// Native is true when the entity has its own event at the row's timestamp.
	Native bool
}

// CombinedRow is one distinct timestamp of the merged timeline of two entities.
type CombinedRow struct {
	At time.Time
	A  Presence
	B  Presence
}

// Pair is an unordered entity pair, stored in the order it was analysed.
type Pair struct {
	A EntityID
	B EntityID
}

// String renders the pair as "A_B".
func (p Pair) String() string {
	return string(p.A) + "_" + string(p.B)
}

// EpisodeKey identifies a meeting by the visit of each entity it happened in.
// Both indices are kept separately; summing them would let distinct visit
// pairs such as (1,2) and (2,1) collide.
type EpisodeKey struct {
	VisitA int
	VisitB int
}

// MeetingEpisode is a maximal span where both entities were in the same zone.
type MeetingEpisode struct {
	Pair  Pair
	Zone  Zone
	Start time.Time
	End   time.Time
	Key   EpisodeKey
}

// Duration is End - Start; single-row episodes last zero.
func (e MeetingEpisode) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// ResidencyRecord is the time one entity spent in one zone during a phase.
type ResidencyRecord struct {
	Entity        EntityID
	Phase         string
	Zone          Zone
	TotalDuration time.Duration
	VisitCount    int
}

// MeetingRecord aggregates the meeting episodes of a pair in one zone during a phase.
type MeetingRecord struct {
	Pair            Pair
	Phase           string
	Zone            Zone
	TotalDuration   time.Duration
	EpisodeCount    int
	AverageDuration time.Duration
}
