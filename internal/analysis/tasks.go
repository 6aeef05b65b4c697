package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/banshee-data/habitat.report/internal/occupancy"
)

// TaskKind names the unit of work a TaskFailure belongs to.
type TaskKind int

const (
	KindFetch TaskKind = iota
	KindResidency
	KindMeeting
)

func (k TaskKind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindResidency:
		return "residency"
	case KindMeeting:
		return "meeting"
	default:
		return fmt.Sprintf("TaskKind(%d)", int(k))
	}
}

// TaskFailure is one task that produced no records.
type TaskFailure struct {
	Kind     TaskKind
	Phase    string
	Entities []occupancy.EntityID
	Err      error
}

// EntityList joins the entities of the failed task with "_", matching the
// entity_pair column.
func (f TaskFailure) EntityList() string {
	names := make([]string, len(f.Entities))
	for i, e := range f.Entities {
		names[i] = string(e)
	}
	return strings.Join(names, "_")
}

func (f TaskFailure) Error() string {
	return fmt.Sprintf("%s task %s/%s: %v", f.Kind, f.Phase, f.EntityList(), f.Err)
}

func (f TaskFailure) Unwrap() error {
	return f.Err
}

// task is one independent unit of work. raw holds private copies of the
// intervals of each entity in entities.
type task struct {
	kind     TaskKind
	phase    occupancy.Phase
	entities []occupancy.EntityID
	raw      [][]occupancy.RawInterval
}

type outcome struct {
	residency []occupancy.ResidencyRecord
	meetings  []occupancy.MeetingRecord
	err       error
}

// buildEntity validates and indexes one entity's intervals for the task phase.
func buildEntity(phase occupancy.Phase, entity occupancy.EntityID, raw []occupancy.RawInterval) ([]occupancy.Visit, []occupancy.Event, error) {
	starts, ends, zones := columns(raw)
	visits, events, err := occupancy.BuildVisits(entity, starts, ends, zones)
	if err != nil {
		var malformed *occupancy.MalformedIntervalError
		if errors.As(err, &malformed) {
			malformed.Phase = phase.Name
		}
		return nil, nil, err
	}
	return visits, events, nil
}

func runResidency(t task) outcome {
	entity := t.entities[0]
	visits, _, err := buildEntity(t.phase, entity, t.raw[0])
	if err != nil {
		return outcome{err: err}
	}
	return outcome{residency: occupancy.ResidencyRecords(entity, t.phase.Name, visits)}
}

func runMeeting(t task, policy occupancy.TransitionPolicy) outcome {
	pair := occupancy.Pair{A: t.entities[0], B: t.entities[1]}
	_, a, err := buildEntity(t.phase, pair.A, t.raw[0])
	if err != nil {
		return outcome{err: err}
	}
	_, b, err := buildEntity(t.phase, pair.B, t.raw[1])
	if err != nil {
		return outcome{err: err}
	}
	return outcome{meetings: occupancy.PairMeetings(pair, t.phase.Name, a, b, policy)}
}

// Pairs returns every unordered pair of distinct entities, each pair ordered
// as in entities. entities should already be sorted and deduplicated.
func Pairs(entities []occupancy.EntityID) []occupancy.Pair {
	var pairs []occupancy.Pair
	for i := range entities {
		for j := i + 1; j < len(entities); j++ {
			pairs = append(pairs, occupancy.Pair{A: entities[i], B: entities[j]})
		}
	}
	return pairs
}
