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
		fromFlag  = flag.String("from", "", "start date, YYYY-MM-DD (required)")
		toFlag    = flag.String("to", "", "end date, YYYY-MM-DD (default: same as -from)")
		leagueCSV = flag.String("leagues", "", "comma separated leagues to fetch (default: all)")
		force     = flag.Bool("force", false, "refetch days that are already cached")
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
	logger := logging.WithPrefix("Prefetch")

	if *fromFlag == "" {
		flag.Usage()
		logger.Fatal("missing required -from date")
	}
	from, err := time.Parse("2006-01-02", *fromFlag)
	if err != nil {
		logger.Fatalf("parse -from: %v", err)
	}
	to := from
	if *toFlag != "" {
		if to, err = time.Parse("2006-01-02", *toFlag); err != nil {
			logger.Fatalf("parse -to: %v", err)
		}
	}
	if to.Before(from) {
		logger.Fatalf("range end %s before start %s", *toFlag, *fromFlag)
	}

	leagues, err := parseLeagues(*leagueCSV)
	if err != nil {
		logger.Fatalf("leagues: %v", err)
	}

	var cache services.GameCache
	if cfg.Database.Enabled() {
		db, err := database.NewMongoConnection(database.Config{
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

	if err := prefetcher.Prefetch(context.Background(), leagues, from, to, *force); err != nil {
		logger.Fatalf("prefetch: %v", err)
	}
	logger.Infof("Prefetch complete for %s..%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
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
