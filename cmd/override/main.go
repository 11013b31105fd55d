package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pick-ledger-go/config"
	"pick-ledger-go/database"
	"pick-ledger-go/logging"
	"pick-ledger-go/models"
)

func main() {
	var (
		pickID  = flag.String("pick", "", "stable pick ID to correct (or derive one with -date/-league/-text)")
		dateStr = flag.String("date", "", "pick date, YYYY-MM-DD (with -league and -text)")
		league  = flag.String("league", "", "pick league (with -date and -text)")
		text    = flag.String("text", "", "the pick's raw text (with -date and -league)")
		result  = flag.String("result", "", "corrected result: win, loss, or push (required)")
		netStr  = flag.String("net", "", "corrected profit/loss in dollars (optional)")
		note    = flag.String("note", "", "why the grade was corrected")
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
	logger := logging.WithPrefix("Override")

	res, ok := parseResult(*result)
	if !ok {
		flag.Usage()
		logger.Fatalf("result must be win, loss, or push; got %q", *result)
	}

	id := *pickID
	if id == "" {
		id, err = deriveID(*dateStr, *league, *text)
		if err != nil {
			flag.Usage()
			logger.Fatalf("derive pick ID: %v", err)
		}
	}

	ov := &database.Override{
		PickID: id,
		Result: res,
		Note:   *note,
	}
	if *netStr != "" {
		net, err := strconv.ParseFloat(strings.TrimPrefix(*netStr, "$"), 64)
		if err != nil {
			logger.Fatalf("parse -net %q: %v", *netStr, err)
		}
		ov.ProfitLoss = &net
	}

	if !cfg.Database.Enabled() {
		logger.Fatal("overrides need Mongo; set DB_HOST")
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

	if err := database.NewMongoOverrideRepository(db).UpsertOverride(ov); err != nil {
		logger.Fatalf("store override: %v", err)
	}
	logger.Infof("Stored %s override for pick %s", ov.Result, ov.PickID)
}

func parseResult(value string) (models.PickResult, bool) {
	switch strings.ToLower(value) {
	case "win":
		return models.PickResultWin, true
	case "loss":
		return models.PickResultLoss, true
	case "push":
		return models.PickResultPush, true
	}
	return "", false
}

// deriveID rebuilds the stable pick ID the grading pass would assign, so a
// correction can be keyed from the raw chat line instead of a hash.
func deriveID(dateStr, league, text string) (string, error) {
	if dateStr == "" || text == "" {
		return "", fmt.Errorf("need -pick, or -date and -text")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return "", fmt.Errorf("parse -date %q: %w", dateStr, err)
	}
	var lg models.League
	if league != "" {
		parsed, ok := models.ParseLeague(strings.ToLower(strings.TrimSpace(league)))
		if !ok {
			return "", fmt.Errorf("unknown league %q", league)
		}
		lg = parsed
	}
	pick := models.Pick{Date: date, League: lg, RawText: text}
	return pick.StableID(), nil
}
