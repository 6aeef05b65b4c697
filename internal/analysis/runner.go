package analysis

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/habitat.report/internal/monitoring"
	"github.com/banshee-data/habitat.report/internal/occupancy"
	"github.com/banshee-data/habitat.report/internal/timeutil"
)

var logf = monitoring.Logger("analysis")

// Runner executes analysis runs against a VisitSource.
type Runner struct {
	Source      VisitSource
	Policy      occupancy.TransitionPolicy
	Workers     int
	ClipToPhase bool
	Clock       timeutil.Clock
}

// Request selects what a run covers. Phases run in the given order.
type Request struct {
	Phases   []string
	Entities []occupancy.EntityID
}

// RunResult holds every record produced by a run plus the tasks that failed.
type RunResult struct {
	Started   time.Time
	Finished  time.Time
	Phases    []occupancy.Phase
	Residency []occupancy.ResidencyRecord
	Meetings  []occupancy.MeetingRecord
	Failures  []TaskFailure
}

// Failed reports whether any task failed.
func (r *RunResult) Failed() bool {
	return len(r.Failures) > 0
}

func (r *Runner) clock() timeutil.Clock {
	if r.Clock == nil {
		return timeutil.RealClock{}
	}
	return r.Clock
}

func (r *Runner) workers() int {
	if r.Workers < 1 {
		return runtime.NumCPU()
	}
	return r.Workers
}

// Run analyses every requested phase. Only a phase that cannot be resolved
// or a cancelled ctx aborts the run; anything else is recorded per task.
func (r *Runner) Run(ctx context.Context, req Request) (*RunResult, error) {
	if r.Source == nil {
		return nil, fmt.Errorf("analysis runner has no visit source")
	}
	res := &RunResult{Started: r.clock().Now()}

	entities := slices.Clone(req.Entities)
	slices.Sort(entities)
	entities = slices.Compact(entities)

	for _, name := range req.Phases {
		phase, err := r.Source.PhaseBounds(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve phase %q: %w", name, err)
		}
		res.Phases = append(res.Phases, phase)

		tasks, failures, err := r.planPhase(ctx, phase, entities)
		if err != nil {
			return nil, err
		}
		res.Failures = append(res.Failures, failures...)

		outcomes, err := r.execute(ctx, tasks)
		if err != nil {
			return nil, err
		}
		for i, o := range outcomes {
			if o.err != nil {
				f := TaskFailure{Kind: tasks[i].kind, Phase: phase.Name, Entities: tasks[i].entities, Err: o.err}
				logf("%v", f)
				res.Failures = append(res.Failures, f)
				continue
			}
			res.Residency = append(res.Residency, o.residency...)
			res.Meetings = append(res.Meetings, o.meetings...)
		}
		logf("phase %q: %d tasks, %d entities", phase.Name, len(tasks), len(entities))
	}

	res.Finished = r.clock().Now()
	return res, nil
}

// planPhase fetches each entity once and builds the phase's tasks. Entities
// whose fetch fails are reported and left out of every task.
func (r *Runner) planPhase(ctx context.Context, phase occupancy.Phase, entities []occupancy.EntityID) ([]task, []TaskFailure, error) {
	var (
		failures []TaskFailure
		fetched  []occupancy.EntityID
		raw      = make(map[occupancy.EntityID][]occupancy.RawInterval, len(entities))
	)
	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		intervals, err := r.Source.FetchVisits(ctx, e, phase.Name)
		if err != nil {
			f := TaskFailure{Kind: KindFetch, Phase: phase.Name, Entities: []occupancy.EntityID{e}, Err: err}
			logf("%v", f)
			failures = append(failures, f)
			continue
		}
		raw[e] = FilterToPhase(intervals, phase, r.ClipToPhase)
		fetched = append(fetched, e)
	}

	tasks := make([]task, 0, len(fetched)*(len(fetched)+1)/2)
	for _, e := range fetched {
		tasks = append(tasks, task{
			kind:     KindResidency,
			phase:    phase,
			entities: []occupancy.EntityID{e},
			raw:      [][]occupancy.RawInterval{slices.Clone(raw[e])},
		})
	}
	for _, p := range Pairs(fetched) {
		tasks = append(tasks, task{
			kind:     KindMeeting,
			phase:    phase,
			entities: []occupancy.EntityID{p.A, p.B},
			raw:      [][]occupancy.RawInterval{slices.Clone(raw[p.A]), slices.Clone(raw[p.B])},
		})
	}
	return tasks, failures, nil
}

// execute runs tasks on at most r.workers() goroutines. Outcomes are returned
// in task order.
func (r *Runner) execute(ctx context.Context, tasks []task) ([]outcome, error) {
	outcomes := make([]outcome, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i, t := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.runTask(t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// runTask turns a panic inside one task into that task's failure.
func (r *Runner) runTask(t task) (o outcome) {
	defer func() {
		if p := recover(); p != nil {
			o = outcome{err: fmt.Errorf("panic: %v", p)}
		}
	}()
	switch t.kind {
	case KindResidency:
		return runResidency(t)
	case KindMeeting:
		return runMeeting(t, r.Policy)
	default:
		return outcome{err: fmt.Errorf("unknown task kind %v", t.kind)}
	}
}
