package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"pick-ledger-go/config"
	"pick-ledger-go/database"
	"pick-ledger-go/logging"
	"pick-ledger-go/models"
	"pick-ledger-go/services"
)

func main() {
	var (
		snapPath = flag.String("snapshots", "", "CSV snapshot file or directory of them (required)")
		outPath  = flag.String("out", "", "write the merged ledger CSV here as well")
		fromFlag = flag.String("from", "", "reconcile only picks dated on or after, YYYY-MM-DD")
		toFlag   = flag.String("to", "", "reconcile only picks dated on or before, YYYY-MM-DD")
		dryRun   = flag.Bool("dry-run", false, "report disagreements without persisting anything")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Configure(logging.Config{
		Level:       cfg.Logging.Level,
		Prefix:      cfg.Logging.Prefix,
		EnableColor: cfg.Logging.EnableColor,
	})
	logger := logging.WithPrefix("Reconcile")

	if *snapPath == "" {
		flag.Usage()
		logger.Fatal("missing required -snapshots path")
	}
	if !cfg.Database.Enabled() {
		logger.Fatal("reconcile needs a stored ledger; set DB_HOST, or pass -snapshots to the grade tool instead")
	}

	db, err := database.NewMongoConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
	})
	if err != nil {
		logger.Fatalf("connect to Mongo: %v", err)
	}
	defer db.Close()
	if err := db.TestConnection(); err != nil {
		logger.Fatalf("Mongo ping: %v", err)
	}

	ledgerRepo := database.NewMongoLedgerRepository(db)
	computed, err := loadComputed(ledgerRepo, *fromFlag, *toFlag)
	if err != nil {
		logger.Fatalf("load stored ledger: %v", err)
	}
	logger.Infof("Loaded %d stored ledger rows", len(computed))

	snapshots, err := readSnapshots(*snapPath)
	if err != nil {
		logger.Fatalf("read snapshots: %v", err)
	}
	logger.Infof("Read %d snapshot rows from %s", len(snapshots), *snapPath)

	merged, disagreements := services.NewReconcileService().Reconcile(computed, snapshots)
	for _, d := range disagreements {
		logger.Warnf("disagreement %s: computed %s, snapshot %s (%s) %q",
			d.PickID, d.Computed, d.Snapshot, d.Source, d.RawText)
	}
	logger.Infof("Merged ledger has %d rows, %d disagreements", len(merged), len(disagreements))

	if *dryRun {
		logger.Info("Dry run, nothing persisted")
		return
	}

	if err := ledgerRepo.UpsertAll(merged); err != nil {
		logger.Fatalf("persist merged ledger: %v", err)
	}

	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Fatalf("create %s: %v", *outPath, err)
		}
		if err := services.WriteLedgerCSV(f, merged); err != nil {
			f.Close()
			logger.Fatalf("write ledger: %v", err)
		}
		if err := f.Close(); err != nil {
			logger.Fatalf("close %s: %v", *outPath, err)
		}
		logger.Infof("Wrote merged ledger to %s", *outPath)
	}
}

// loadComputed fetches the stored ledger, scoped to the date window when one
// is given
func loadComputed(repo *database.MongoLedgerRepository, fromStr, toStr string) ([]models.GradedPick, error) {
	if fromStr == "" && toStr == "" {
		return repo.GetAll()
	}

	from := time.Time{}
	if fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return nil, fmt.Errorf("parse -from %q: %w", fromStr, err)
		}
		from = parsed
	}
	to := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	if toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return nil, fmt.Errorf("parse -to %q: %w", toStr, err)
		}
		to = parsed
	}
	if to.Before(from) {
		return nil, fmt.Errorf("-to %s is before -from %s", toStr, fromStr)
	}
	return repo.GetByDateRange(from, to)
}

func readSnapshots(path string) ([]services.SnapshotRow, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	importer := services.NewSnapshotImporter()
	if info.IsDir() {
		return importer.ReadDir(path)
	}
	return importer.ReadFile(path)
}
