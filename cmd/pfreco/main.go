// Command pfreco runs the cluster-refinement pipeline over one
// pre-clustered event: merging, reclustering, photon reconstruction,
// and track recovery, in that fixed order. Grounded on cmd/lidar's
// flag-based CLI shape (package-level flag.* vars, log.Printf
// diagnostics), adapted from a long-running packet-receive server to a
// single-pass batch driver since an event file has a beginning and an
// end.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	_ "modernc.org/sqlite"

	"github.com/caloflow/pfreco/internal/config"
	"github.com/caloflow/pfreco/internal/diagnostics"
	"github.com/caloflow/pfreco/internal/photonid"
	"github.com/caloflow/pfreco/internal/pipeline"
	"github.com/caloflow/pfreco/internal/plugin"
	"github.com/caloflow/pfreco/internal/store"
)

var (
	eventPath    = flag.String("event", "", "Path to the input event JSON file (required)")
	configPath   = flag.String("config", "", "Path to a PipelineConfig JSON file (defaults built in if omitted)")
	dbPath       = flag.String("db", "pfreco.db", "Path to the sqlite run/PDF-table database")
	pdfTableName = flag.String("pdf-table", "default", "Name of the trained PDF table to load for photon reconstruction")
	reportPath   = flag.String("report", "", "If set, write an HTML run-history report to this path after the run")
	maxCaloLayer = flag.Int("max-calo-layer", 60, "Pseudo-layer at or beyond which a cluster is treated as leaving the calorimeter")
)

func main() {
	flag.Parse()
	if *eventPath == "" {
		fmt.Fprintln(os.Stderr, "pfreco: -event is required")
		os.Exit(2)
	}

	if err := run(); err != nil {
		log.Fatalf("pfreco: %v", err)
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

	ev, err := loadEventFile(*eventPath)
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}

	db, err := store.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	table, err := db.LoadPDFTable(*pdfTableName)
	if err != nil {
		log.Printf("pfreco: no trained PDF table %q found, reconstructing with an untrained table: %v", *pdfTableName, err)
		table = photonid.NewTable(defaultEnergyBinEdges())
	}

	rc := &runContext{
		pc:       pc,
		ev:       ev,
		classify: detectorClassifier{maxCaloPseudoLayer: *maxCaloLayer},
		profile:  plugin.TransverseProfilePlugin{NFitLayers: 5, ShellWidth: 5},
		table:    table,
	}

	passes := rc.buildPasses()
	results := pipeline.Run(passes)
	for _, failure := range pipeline.Failures(results) {
		log.Printf("pfreco: step %q failed: %v", failure.Name, failure.Err)
	}

	_, clusters := ev.ClusterMgr.GetCurrentList()
	photonCount := 0
	for _, c := range clusters {
		if c.IsFixedPhoton {
			photonCount++
		}
	}
	recoveredCount := 0
	for _, t := range ev.TrackMgr.All() {
		if _, ok := t.AssociatedCluster(); ok {
			recoveredCount++
		}
	}

	if _, err := db.RecordRun(store.RunSummary{
		ClusterCount:        len(clusters),
		PhotonCount:         photonCount,
		TrackRecoveredCount: recoveredCount,
		Notes:               fmt.Sprintf("event=%s failedSteps=%d", *eventPath, len(pipeline.Failures(results))),
	}); err != nil {
		log.Printf("pfreco: failed to record run summary: %v", err)
	}

	log.Printf("pfreco: reconstructed %d clusters (%d photons, %d recovered tracks)", len(clusters), photonCount, recoveredCount)

	if *reportPath != "" {
		if err := writeReport(db, *reportPath); err != nil {
			log.Printf("pfreco: failed to write report: %v", err)
		}
	}
	return nil
}

func writeReport(db *store.DB, path string) error {
	runs, err := db.ListRuns(50)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	return diagnostics.RenderRunHistory(runs, f)
}

func defaultEnergyBinEdges() []float64 {
	return []float64{0, 1, 2, 5, 10, 20, 50, 100}
}
