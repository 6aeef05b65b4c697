package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/banshee-data/habitat.report/internal/config"
	"github.com/banshee-data/habitat.report/internal/db"
	"github.com/banshee-data/habitat.report/internal/units"
	"github.com/banshee-data/habitat.report/internal/version"
)

var (
	configPath  = flag.String("config", config.DefaultConfigPath, "analysis config JSON with the experiment phases")
	dbPath      = flag.String("db-path", "", "path to sqlite database (overrides config)")
	delimiter   = flag.String("delimiter", ",", "field separator of the interval files")
	showVersion = flag.Bool("version", false, "print version and exit")
)

type importOptions struct {
	cfg       *config.AnalysisConfig
	dbPath    string
	delimiter rune
	files     []string
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: habitat-import [flags] <intervals.csv>...\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("habitat-import"))
		return
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	r, size := utf8.DecodeRuneInString(*delimiter)
	if size == 0 || size != len(*delimiter) {
		log.Fatalf("delimiter must be a single character, got %q", *delimiter)
	}

	opts := importOptions{cfg: cfg, dbPath: cfg.GetDBPath(), delimiter: r, files: flag.Args()}
	if *dbPath != "" {
		opts.dbPath = *dbPath
	}
	if err := run(context.Background(), opts); err != nil {
		log.Fatalf("import: %v", err)
	}
}

// run stores the configured phases and every interval file in the database.
func run(ctx context.Context, opts importOptions) error {
	loc, err := units.Location(opts.cfg.GetTimezone())
	if err != nil {
		return err
	}
	phases, err := opts.cfg.ResolvePhases()
	if err != nil {
		return err
	}

	store, err := db.NewDB(opts.dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	for _, p := range phases {
		if err := store.UpsertPhase(ctx, p); err != nil {
			return err
		}
	}
	log.Printf("stored %d phases", len(phases))

	for _, path := range opts.files {
		if err := importFile(ctx, store, path, loc, opts.delimiter); err != nil {
			return err
		}
	}
	return nil
}

func importFile(ctx context.Context, store *db.DB, path string, loc *time.Location, delim rune) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = store.ImportCSV(ctx, f, db.ImportOptions{
		Delimiter: delim,
		Location:  loc,
		Source:    filepath.Base(path),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
