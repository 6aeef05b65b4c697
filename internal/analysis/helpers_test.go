package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/habitat.report/internal/occupancy"
)

var epoch = time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

// sec is epoch-relative seconds as a raw interval timecode.
func sec(s float64) float64 {
	return float64(epoch.Unix()) + s
}

func iv(start, end float64, zone occupancy.Zone) occupancy.RawInterval {
	return occupancy.RawInterval{Start: sec(start), End: sec(end), Zone: zone}
}

func hourPhase(name string, hour int) occupancy.Phase {
	start := epoch.Add(time.Duration(hour) * time.Hour)
	return occupancy.Phase{Name: name, Start: start, End: start.Add(time.Hour)}
}

// fakeSource is an in-memory VisitSource that counts fetches.
type fakeSource struct {
	phases   map[string]occupancy.Phase
	visits   map[occupancy.EntityID][]occupancy.RawInterval
	fetchErr map[occupancy.EntityID]error

	mu      sync.Mutex
	fetches map[string]int
}

func newFakeSource(phases ...occupancy.Phase) *fakeSource {
	s := &fakeSource{
		phases:   make(map[string]occupancy.Phase),
		visits:   make(map[occupancy.EntityID][]occupancy.RawInterval),
		fetchErr: make(map[occupancy.EntityID]error),
		fetches:  make(map[string]int),
	}
	for _, p := range phases {
		s.phases[p.Name] = p
	}
	return s
}

func (s *fakeSource) FetchVisits(_ context.Context, entity occupancy.EntityID, phase string) ([]occupancy.RawInterval, error) {
	s.mu.Lock()
	s.fetches[string(entity)+"/"+phase]++
	s.mu.Unlock()
	if err := s.fetchErr[entity]; err != nil {
		return nil, err
	}
	return s.visits[entity], nil
}

func (s *fakeSource) PhaseBounds(_ context.Context, phase string) (occupancy.Phase, error) {
	p, ok := s.phases[phase]
	if !ok {
		return occupancy.Phase{}, fmt.Errorf("no phase %q", phase)
	}
	return p, nil
}
