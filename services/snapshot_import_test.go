package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"pick-ledger-go/models"
)

func TestSnapshotRead(t *testing.T) {
	csvData := strings.Join([]string{
		"Date,Bet,Sport,Outcome,P&L",
		"2024-01-15,niners -3 $50,nfl,W,+45.45",
		"1/16/2024,hawks o120,nba,L,\"-$50.00\"",
		"2024-01-17,army ml,cfb,,",
		"not-a-date,junk row,,,",
	}, "\n")

	rows, err := NewSnapshotImporter().Read(strings.NewReader(csvData), "book1.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("read %d rows, want 3 (malformed row skipped)", len(rows))
	}

	first := rows[0]
	if !first.Date.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", first.Date)
	}
	if first.League != models.LeagueNFL {
		t.Errorf("league = %q, want NFL", first.League)
	}
	if first.Result != models.PickResultWin {
		t.Errorf("result = %q, want win", first.Result)
	}
	if first.ProfitLoss == nil || !approx(*first.ProfitLoss, 45.45) {
		t.Errorf("profit = %v, want 45.45", first.ProfitLoss)
	}
	if first.Source != "book1.csv" {
		t.Errorf("source = %q", first.Source)
	}
	if first.PickID == "" {
		t.Error("pick id not derived")
	}

	second := rows[1]
	if !second.Date.Equal(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("slash date = %v", second.Date)
	}
	if second.ProfitLoss == nil || !approx(*second.ProfitLoss, -50) {
		t.Errorf("dollar-formatted profit = %v, want -50", second.ProfitLoss)
	}

	third := rows[2]
	if third.Result != models.PickResultUnknown {
		t.Errorf("empty outcome = %q, want unknown", third.Result)
	}
	if third.ProfitLoss != nil {
		t.Errorf("empty profit parsed as %v", *third.ProfitLoss)
	}
}

func TestSnapshotReadDerivedIDMatchesPipeline(t *testing.T) {
	csvData := "date,pick,league\n2024-01-15,Niners -3 $50,nfl\n"

	rows, err := NewSnapshotImporter().Read(strings.NewReader(csvData), "s.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("read %d rows", len(rows))
	}

	pick := models.Pick{
		Date:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		League:  models.LeagueNFL,
		RawText: "niners -3 $50",
	}
	if rows[0].PickID != pick.StableID() {
		t.Error("derived snapshot ID does not line up with the pipeline's stable ID")
	}
}

func TestSnapshotReadExplicitID(t *testing.T) {
	csvData := "date,pick,pick_id\n2024-01-15,niners -3,abc123\n"

	rows, err := NewSnapshotImporter().Read(strings.NewReader(csvData), "s.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rows[0].PickID != "abc123" {
		t.Errorf("pick id = %q, want the explicit column value", rows[0].PickID)
	}
}

func TestSnapshotReadMissingRequiredColumns(t *testing.T) {
	csvData := "result,profit\nW,45\n"
	if _, err := NewSnapshotImporter().Read(strings.NewReader(csvData), "s.csv"); err == nil {
		t.Fatal("Read accepted a snapshot without date and pick columns")
	}
}

func TestNormalizeResult(t *testing.T) {
	tests := []struct {
		in   string
		want models.PickResult
	}{
		{"W", models.PickResultWin},
		{"won", models.PickResultWin},
		{"l", models.PickResultLoss},
		{"Lost", models.PickResultLoss},
		{"push", models.PickResultPush},
		{"tie", models.PickResultPush},
		{"", models.PickResultUnknown},
		{"pending", models.PickResultUnknown},
	}
	for _, tt := range tests {
		if got := normalizeResult(tt.in); got != tt.want {
			t.Errorf("normalizeResult(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteLedgerCSV(t *testing.T) {
	win := 45.45
	picks := []models.GradedPick{
		{
			Pick: models.Pick{
				Date: testDay, League: models.LeagueNFL, RawText: "niners -3",
				Team: "San Francisco 49ers", Type: models.PickTypeSpread,
				Segment: models.SegmentFullGame, Line: -3, Odds: -110, Risk: 50, ToWin: 45.45,
			},
			PickID: "id-1", Result: models.PickResultWin, ProfitLoss: &win,
			GameMatchup: "Seahawks @ 49ers", Source: models.GradeComputed,
		},
		{
			Pick: models.Pick{
				Date: testDay, League: models.LeagueNBA, RawText: "hawks o120",
				Team: "Atlanta Hawks", Type: models.PickTypeTeamTotal,
				Segment: models.SegmentFullGame, Line: 120, Side: models.Over,
				Odds: -110, Risk: 50, ToWin: 45.45,
			},
			PickID: "id-2", Result: models.PickResultUnknown,
			Reason: models.UnknownNoGame, Source: models.GradeComputed,
		},
	}

	var buf bytes.Buffer
	if err := WriteLedgerCSV(&buf, picks); err != nil {
		t.Fatalf("WriteLedgerCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("wrote %d lines, want header plus 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "date,league,matchup,segment,pick,odds") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "45.45") || !strings.Contains(lines[1], "win") {
		t.Errorf("win row = %q", lines[1])
	}

	// Unknown rows carry an empty profit cell, never a zero
	unknownRow := strings.Split(lines[2], ",")
	if unknownRow[9] != "" {
		t.Errorf("unknown profit cell = %q, want empty", unknownRow[9])
	}
	if unknownRow[10] != "no_game" {
		t.Errorf("reason cell = %q, want no_game", unknownRow[10])
	}
}
