package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/banshee-data/habitat.report/internal/analysis"
	"github.com/banshee-data/habitat.report/internal/config"
	"github.com/banshee-data/habitat.report/internal/db"
	"github.com/banshee-data/habitat.report/internal/fsutil"
	"github.com/banshee-data/habitat.report/internal/occupancy"
	"github.com/banshee-data/habitat.report/internal/report"
	"github.com/banshee-data/habitat.report/internal/timeutil"
	"github.com/banshee-data/habitat.report/internal/version"
)

var (
	configPath  = flag.String("config", config.DefaultConfigPath, "analysis config JSON")
	dbPath      = flag.String("db-path", "", "path to sqlite database (overrides config)")
	phaseList   = flag.String("phases", "", "comma-separated phase names (default: all stored phases)")
	entityList  = flag.String("entities", "", "comma-separated entities (default: all stored entities)")
	outputDir   = flag.String("out", "", "output directory (overrides config)")
	noPersist   = flag.Bool("no-persist", false, "do not store results in the database")
	showVersion = flag.Bool("version", false, "print version and exit")
)

type analyseOptions struct {
	cfg      *config.AnalysisConfig
	dbPath   string
	outDir   string
	phases   []string
	entities []occupancy.EntityID
	persist  bool
	clock    timeutil.Clock
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("habitat-analyse"))
		return
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	opts := analyseOptions{
		cfg:     cfg,
		dbPath:  cfg.GetDBPath(),
		outDir:  cfg.GetOutputDir(),
		phases:  splitList(*phaseList),
		persist: !*noPersist,
		clock:   timeutil.RealClock{},
	}
	if *dbPath != "" {
		opts.dbPath = *dbPath
	}
	if *outputDir != "" {
		opts.outDir = *outputDir
	}
	for _, e := range splitList(*entityList) {
		opts.entities = append(opts.entities, occupancy.EntityID(e))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, opts)
	if err != nil {
		log.Fatalf("analyse: %v", err)
	}
	if res.Failed() {
		log.Printf("%d task(s) failed", len(res.Failures))
		os.Exit(1)
	}
}

// run analyses the requested phases and writes the result tables.
func run(ctx context.Context, opts analyseOptions) (*analysis.RunResult, error) {
	store, err := db.NewDB(opts.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	// Phases from the config file take precedence over stored bounds.
	configured, err := opts.cfg.ResolvePhases()
	if err != nil {
		return nil, err
	}
	for _, p := range configured {
		if err := store.UpsertPhase(ctx, p); err != nil {
			return nil, err
		}
	}

	phases := opts.phases
	if len(phases) == 0 {
		stored, err := store.Phases(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range stored {
			phases = append(phases, p.Name)
		}
	}
	if len(phases) == 0 {
		return nil, fmt.Errorf("no phases to analyse")
	}

	entities := opts.entities
	if len(entities) == 0 {
		if entities, err = store.Entities(ctx); err != nil {
			return nil, err
		}
	}

	policy := opts.cfg.GetTransitionPolicy()
	runner := &analysis.Runner{
		Source:      store,
		Policy:      policy,
		Workers:     opts.cfg.GetWorkers(),
		ClipToPhase: opts.cfg.GetClipToPhase(),
		Clock:       opts.clock,
	}

	var runID string
	if opts.persist {
		if runID, err = store.StartRun(ctx, opts.clock.Now(), policy, phases); err != nil {
			return nil, err
		}
	}

	log.Printf("analysing %d phases, %d entities, policy %s", len(phases), len(entities), policy)
	res, err := runner.Run(ctx, analysis.Request{Phases: phases, Entities: entities})
	if err != nil {
		return nil, abortRun(ctx, store, runID, opts.clock, err)
	}

	if opts.persist {
		if err := persist(ctx, store, runID, res); err != nil {
			return nil, abortRun(ctx, store, runID, opts.clock, err)
		}
		log.Printf("stored run %s", runID)
	}

	if _, err := report.WriteTables(fsutil.OSFileSystem{}, opts.outDir, opts.cfg.GetDelimiter(), res); err != nil {
		return nil, err
	}
	return res, nil
}

// abortRun records why a started run stopped and returns cause. The update
// runs without ctx's cancellation so an interrupted run is still marked.
func abortRun(ctx context.Context, store *db.DB, runID string, clock timeutil.Clock, cause error) error {
	if runID == "" {
		return cause
	}
	if err := store.AbortRun(context.WithoutCancel(ctx), runID, clock.Now(), cause); err != nil {
		log.Printf("mark run %s aborted: %v", runID, err)
	}
	return cause
}

func persist(ctx context.Context, store *db.DB, runID string, res *analysis.RunResult) error {
	if err := store.SaveResidency(ctx, runID, res.Residency); err != nil {
		return err
	}
	if err := store.SaveMeetings(ctx, runID, res.Meetings); err != nil {
		return err
	}
	failures := make([]db.FailureRow, len(res.Failures))
	for i, f := range res.Failures {
		failures[i] = db.FailureRow{
			Kind:     f.Kind.String(),
			Phase:    f.Phase,
			Entities: f.EntityList(),
			Error:    f.Err.Error(),
		}
	}
	if err := store.SaveFailures(ctx, runID, failures); err != nil {
		return err
	}
	return store.FinishRun(ctx, runID, res.Finished, len(res.Residency), len(res.Meetings), len(res.Failures))
}
