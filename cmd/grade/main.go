package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"pick-ledger-go/config"
	"pick-ledger-go/database"
	"pick-ledger-go/logging"
	"pick-ledger-go/models"
	"pick-ledger-go/services"
)

func main() {
	var (
		chatPath  = flag.String("chat", "", "chat export file with dated pick lines (required)")
		snapPath  = flag.String("snapshots", "", "CSV snapshot file or directory of them")
		outPath   = flag.String("out", "", "ledger CSV output path (default OUTPUT_CSV)")
		fromFlag  = flag.String("from", "", "start of score range, YYYY-MM-DD (default: earliest pick date)")
		toFlag    = flag.String("to", "", "end of score range, YYYY-MM-DD (default: latest pick date)")
		leagueCSV = flag.String("leagues", "", "comma separated leagues to fetch (default: all)")
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
	logger := logging.WithPrefix("Grade")

	if *chatPath == "" {
		flag.Usage()
		logger.Fatal("missing required -chat file")
	}

	registry, err := services.LoadTeamRegistry(cfg.Paths.TeamsDir)
	if err != nil {
		logger.Fatalf("load team registry: %v", err)
	}
	logger.Infof("Loaded %d teams from %s", len(registry.Teams()), cfg.Paths.TeamsDir)

	lines, err := services.NewChatImporter().ReadFile(*chatPath)
	if err != nil {
		logger.Fatalf("read chat export: %v", err)
	}
	if len(lines) == 0 {
		logger.Fatal("chat export produced no dated lines")
	}

	from, to, err := scoreRange(*fromFlag, *toFlag, lines)
	if err != nil {
		logger.Fatalf("score range: %v", err)
	}
	leagues, err := parseLeagues(*leagueCSV)
	if err != nil {
		logger.Fatalf("leagues: %v", err)
	}

	// Mongo is optional; without it scores cache to local JSON files and
	// the graded ledger only lands in the output CSV.
	var db *database.MongoDB
	var cache services.GameCache
	if cfg.Database.Enabled() {
		db, err = database.NewMongoConnection(database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			Database: cfg.Database.Database,
		})
		if err != nil {
			logger.Warnf("Mongo unavailable, falling back to file cache: %v", err)
		} else if err := db.TestConnection(); err != nil {
			logger.Warnf("Mongo unreachable, falling back to file cache: %v", err)
			db.Close()
			db = nil
		} else {
			defer db.Close()
			cache = database.NewMongoGameCacheRepository(db)
		}
	}
	if cache == nil {
		fileCache, err := services.NewFileGameCache(cfg.Paths.CacheDir)
		if err != nil {
			logger.Fatalf("open file cache: %v", err)
		}
		cache = fileCache
	}

	espn := services.NewESPNService(cfg.Fetch.Timeout, cfg.Fetch.Retries)
	prefetcher := services.NewScorePrefetcher(espn, cache, cfg.Fetch.Concurrency)

	ctx := context.Background()
	games, err := prefetcher.LoadRange(ctx, leagues, from, to)
	if err != nil {
		logger.Fatalf("load scores: %v", err)
	}
	logger.Infof("Loaded %d games for %s..%s", len(games), from.Format("2006-01-02"), to.Format("2006-01-02"))

	overrides := services.NewOverrideService()
	if cfg.Paths.OverridesFile != "" {
		if err := overrides.LoadFromFile(cfg.Paths.OverridesFile); err != nil {
			logger.Fatalf("load overrides: %v", err)
		}
	}
	if db != nil {
		if err := overrides.LoadFromRepository(database.NewMongoOverrideRepository(db)); err != nil {
			logger.Warnf("load overrides from Mongo: %v", err)
		}
	}
	if overrides.Count() > 0 {
		logger.Infof("Applying %d manual overrides", overrides.Count())
	}

	schedules := services.NewScheduleSet(games, registry)
	ledger := services.NewLedgerService(
		services.NewPickParser(registry, cfg.Grading.BaseStake, cfg.Grading.DefaultOdds),
		services.NewGameResolver(schedules),
		services.NewGradingService(),
		overrides,
	)

	graded, report := ledger.GradeAll(lines)

	if *snapPath != "" {
		snapshots, err := readSnapshots(*snapPath)
		if err != nil {
			logger.Fatalf("read snapshots: %v", err)
		}
		var disagreements []services.Disagreement
		graded, disagreements = services.NewReconcileService().Reconcile(graded, snapshots)
		logger.Infof("Reconciled %d snapshot rows, %d disagreements", len(snapshots), len(disagreements))
	}

	if db != nil {
		if err := database.NewMongoLedgerRepository(db).UpsertAll(graded); err != nil {
			logger.Warnf("persist ledger: %v", err)
		}
	}

	out := cfg.Paths.OutputCSV
	if *outPath != "" {
		out = *outPath
	}
	f, err := os.Create(out)
	if err != nil {
		logger.Fatalf("create %s: %v", out, err)
	}
	if err := services.WriteLedgerCSV(f, graded); err != nil {
		f.Close()
		logger.Fatalf("write ledger: %v", err)
	}
	if err := f.Close(); err != nil {
		logger.Fatalf("close %s: %v", out, err)
	}
	logger.Infof("Wrote %d ledger rows to %s", len(graded), out)

	report.Log(logger)
}

// scoreRange picks the score fetch window, preferring explicit flags and
// falling back to the span of the imported lines.
func scoreRange(fromFlag, toFlag string, lines []services.RawLine) (time.Time, time.Time, error) {
	from, to := lines[0].Date, lines[0].Date
	for _, line := range lines[1:] {
		if line.Date.Before(from) {
			from = line.Date
		}
		if line.Date.After(to) {
			to = line.Date
		}
	}
	var err error
	if fromFlag != "" {
		if from, err = time.Parse("2006-01-02", fromFlag); err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		// The resolver checks the day before and after a pick's date, so
		// the fetch window widens to match.
		from = from.AddDate(0, 0, -1)
	}
	if toFlag != "" {
		if to, err = time.Parse("2006-01-02", toFlag); err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		to = to.AddDate(0, 0, 1)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("range end %s before start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}
	return from, to, nil
}

func parseLeagues(csv string) ([]models.League, error) {
	if csv == "" {
		return models.AllLeagues, nil
	}
	var leagues []models.League
	for _, token := range strings.Split(csv, ",") {
		league, ok := models.ParseLeague(strings.ToLower(strings.TrimSpace(token)))
		if !ok {
			return nil, fmt.Errorf("unknown league %q", token)
		}
		leagues = append(leagues, league)
	}
	return leagues, nil
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
