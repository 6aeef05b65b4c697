package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/habitat.report/internal/config"
	"github.com/banshee-data/habitat.report/internal/db"
	"github.com/banshee-data/habitat.report/internal/version"
)

var (
	configPath  = flag.String("config", "", "analysis config JSON (optional)")
	dbPath      = flag.String("db-path", "", "path to sqlite database (overrides config)")
	showVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Usage = func() {
		db.PrintMigrateHelp(flag.CommandLine.Output())
		fmt.Fprintln(flag.CommandLine.Output(), "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("habitat-migrate"))
		return
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("[migrate] load config: %v", err)
	}
	path := cfg.GetDBPath()
	if *dbPath != "" {
		path = *dbPath
	}

	if err := db.RunMigrateCommand(flag.Args(), path, os.Stdout); err != nil {
		log.Fatalf("[migrate] %v", err)
	}
}
