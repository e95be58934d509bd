// Command pfreco-trainpdf drives photon reconstruction in training
// mode across a directory of event JSON files, accumulating truth-
// labelled discriminant histograms into one PDF table, then saves the
// normalised table to the run database. Grounded on cmd/pfreco's CLI
// shape (package-level flags, log.Printf diagnostics).
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/caloflow/pfreco/internal/config"
	"github.com/caloflow/pfreco/internal/photonid"
	"github.com/caloflow/pfreco/internal/plugin"
	"github.com/caloflow/pfreco/internal/store"
)

var (
	eventGlob    = flag.String("events", "", "Glob pattern matching training event JSON files (required)")
	configPath   = flag.String("config", "", "Path to a PipelineConfig JSON file (defaults built in if omitted)")
	dbPath       = flag.String("db", "pfreco.db", "Path to the sqlite database to write the trained table to")
	pdfTableName = flag.String("pdf-table", "default", "Name to save the trained PDF table under")
)

func main() {
	flag.Parse()
	if *eventGlob == "" {
		log.Fatal("pfreco-trainpdf: -events is required")
	}
	if err := run(); err != nil {
		log.Fatalf("pfreco-trainpdf: %v", err)
	}
}

func run() error {
	pc := config.EmptyPipelineConfig()
	if *configPath != "" {
		loaded, err := config.LoadPipelineConfig(*configPath, "")
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		pc = loaded
	}

	paths, err := filepath.Glob(*eventGlob)
	if err != nil {
		return fmt.Errorf("glob %s: %w", *eventGlob, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no event files matched %s", *eventGlob)
	}

	table := photonid.NewTable(defaultEnergyBinEdges())
	profile := plugin.TransverseProfilePlugin{NFitLayers: 5, ShellWidth: 5}

	for _, path := range paths {
		ev, err := loadEventFile(path)
		if err != nil {
			log.Printf("pfreco-trainpdf: skipping %s: %v", path, err)
			continue
		}
		r := &photonid.Reconstructor{
			Mode:         photonid.ModeTraining,
			Cfg:          photonid.NewConfig(pc),
			Table:        table,
			Profile:      profile,
			TrackMgr:     ev.TrackMgr,
			IsTruePhoton: isTruePhoton,
		}
		if err := r.Run(ev.ClusterMgr, ev.HitMgr); err != nil {
			log.Printf("pfreco-trainpdf: training pass over %s failed: %v", path, err)
			continue
		}
		log.Printf("pfreco-trainpdf: accumulated %s", path)
	}

	table.Normalize()

	db, err := store.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.SavePDFTable(*pdfTableName, table, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("save trained table: %w", err)
	}
	log.Printf("pfreco-trainpdf: saved trained table %q from %d event files", *pdfTableName, len(paths))
	return nil
}

func defaultEnergyBinEdges() []float64 {
	return []float64{0, 1, 2, 5, 10, 20, 50, 100}
}
