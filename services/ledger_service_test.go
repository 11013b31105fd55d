package services

import (
	"testing"

	"pick-ledger-go/database"
	"pick-ledger-go/models"
)

func newTestLedger(t *testing.T, overrides *OverrideService, games ...*models.Game) *LedgerService {
	t.Helper()
	registry := newTestRegistry(t)
	return NewLedgerService(
		NewPickParser(registry, 50, -110),
		NewGameResolver(NewScheduleSet(games, registry)),
		NewGradingService(),
		overrides,
	)
}

func TestGradeAll(t *testing.T) {
	day1 := testDay
	day2 := testDay.AddDate(0, 0, 1)

	game := scheduleGame("nfl1", models.LeagueNFL, day1, "San Francisco 49ers", "Seattle Seahawks")
	game.HomeScore, game.AwayScore = 27, 24

	ledger := newTestLedger(t, NewOverrideService(), game)

	lines := []RawLine{
		{Date: day1, Text: "big slate today"},
		{Date: day1, Text: "niners -2.5 $50"},
		{Date: day1, Text: "o 44.5"},
		{Date: day2, Text: "hawks o120"},
	}

	graded, report := ledger.GradeAll(lines)

	if report.Lines != 4 {
		t.Errorf("report.Lines = %d, want 4", report.Lines)
	}
	if report.Picks != 3 || len(graded) != 3 {
		t.Fatalf("graded %d picks (report %d), want 3", len(graded), report.Picks)
	}

	// niners -2.5: 27-24 covers
	if graded[0].Result != models.PickResultWin {
		t.Errorf("spread result = %q, want win", graded[0].Result)
	}
	// o 44.5 inherits the last team's game via context: total 51 over 44.5
	if graded[1].Result != models.PickResultWin {
		t.Errorf("total result = %q (reason %q), want win", graded[1].Result, graded[1].Reason)
	}
	// hawks game was never fetched
	if graded[2].Result != models.PickResultUnknown || graded[2].Reason != models.UnknownNoGame {
		t.Errorf("unscheduled pick = %q/%q, want unknown/no_game", graded[2].Result, graded[2].Reason)
	}

	if report.Wins != 2 || report.Unknowns[models.UnknownNoGame] != 1 {
		t.Errorf("report = %d wins, unknowns %v", report.Wins, report.Unknowns)
	}
	if report.Wins+report.Losses+report.Pushes+report.UnknownTotal() != report.Picks {
		t.Error("report buckets do not account for every pick")
	}
}

func TestGradeAllContextResetsAtDateBoundary(t *testing.T) {
	ledger := newTestLedger(t, NewOverrideService())

	lines := []RawLine{
		{Date: testDay, Text: "seahawks -7"},
		// New day: the previous team must not leak into this bare moneyline
		{Date: testDay.AddDate(0, 0, 1), Text: "ml"},
	}

	graded, _ := ledger.GradeAll(lines)
	if len(graded) != 1 {
		t.Fatalf("graded %d picks, want 1 (bare ml after reset must not parse)", len(graded))
	}
	if graded[0].Type != models.PickTypeSpread {
		t.Errorf("surviving pick type = %q", graded[0].Type)
	}
}

func TestGradeAllFillsLeagueFromResolvedGame(t *testing.T) {
	game := scheduleGame("nba1", models.LeagueNBA, testDay, "Minnesota Timberwolves", "LA Clippers")
	game.HomeScore, game.AwayScore = 110, 104

	ledger := newTestLedger(t, NewOverrideService(), game)

	lines := []RawLine{
		{Date: testDay, Text: "Clippers @ Timberwolves"},
		{Date: testDay, Text: "o 200"},
	}

	graded, _ := ledger.GradeAll(lines)
	if len(graded) != 1 {
		t.Fatalf("graded %d picks, want 1", len(graded))
	}
	if graded[0].League != models.LeagueNBA {
		t.Errorf("league = %q, want NBA", graded[0].League)
	}
	if graded[0].Result != models.PickResultWin {
		t.Errorf("result = %q, want win (214 over 200)", graded[0].Result)
	}
}

func TestGradeAllAppliesOverrides(t *testing.T) {
	game := scheduleGame("nfl1", models.LeagueNFL, testDay, "San Francisco 49ers", "Seattle Seahawks")
	game.HomeScore, game.AwayScore = 27, 24

	// Compute the ID the way the pipeline will
	pick := models.Pick{Date: testDay, League: models.LeagueNFL, RawText: "niners -2.5 $50"}

	overrides := NewOverrideService()
	forcedNet := -50.0
	overrides.Add(database.Override{
		PickID:     pick.StableID(),
		Result:     models.PickResultLoss,
		ProfitLoss: &forcedNet,
		Note:       "book graded this a loss on a late line move",
	})

	ledger := newTestLedger(t, overrides, game)
	graded, report := ledger.GradeAll([]RawLine{{Date: testDay, Text: "niners -2.5 $50"}})

	if len(graded) != 1 {
		t.Fatalf("graded %d picks, want 1", len(graded))
	}
	got := graded[0]
	if got.Result != models.PickResultLoss {
		t.Errorf("overridden result = %q, want loss", got.Result)
	}
	if got.Source != models.GradeCorrected {
		t.Errorf("source = %q, want corrected", got.Source)
	}
	if got.ComputedResult != models.PickResultWin {
		t.Errorf("computed result = %q, want the original win preserved", got.ComputedResult)
	}
	if net, ok := got.Net(); !ok || net != forcedNet {
		t.Errorf("net = %v, %v; want %v", net, ok, forcedNet)
	}
	if report.Losses != 1 || report.Wins != 0 {
		t.Errorf("report counted the computed grade, not the correction: %+v", report)
	}
}
