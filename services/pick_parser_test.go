package services

import (
	"math"
	"testing"
	"time"

	"pick-ledger-go/models"
)

var testDay = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func newTestParser(t *testing.T) *PickParser {
	t.Helper()
	return NewPickParser(newTestRegistry(t), 50, -110)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func parseOne(t *testing.T, p *PickParser, line string, ctx ParseContext) (models.Pick, ParseContext) {
	t.Helper()
	picks, newCtx := p.ParseLine(line, ctx)
	if len(picks) != 1 {
		t.Fatalf("ParseLine(%q) produced %d picks, want 1", line, len(picks))
	}
	return picks[0], newCtx
}

func TestParseLineSingle(t *testing.T) {
	parser := newTestParser(t)

	tests := []struct {
		name    string
		line    string
		ctx     ParseContext
		team    string
		typ     models.PickType
		segment models.Segment
		line2   float64
		side    models.OverUnder
		odds    int
		risk    float64
		toWin   float64
	}{
		{
			name: "team total with price and stake",
			line: "NBA: Lac u42.5 -118 $50",
			team: "Los Angeles Clippers", typ: models.PickTypeTeamTotal,
			segment: models.SegmentFullGame, line2: 42.5, side: models.Under,
			odds: -118, risk: 50, toWin: 42.3729,
		},
		{
			name: "bare team total gets defaults",
			line: "hawks o120",
			team: "Atlanta Hawks", typ: models.PickTypeTeamTotal,
			segment: models.SegmentFullGame, line2: 120, side: models.Over,
			odds: -110, risk: 50, toWin: 45.4545,
		},
		{
			name: "spread with segment price and stake",
			line: "Niners -3 -135 $50 1h",
			team: "San Francisco 49ers", typ: models.PickTypeSpread,
			segment: models.SegmentFirstHalf, line2: -3,
			odds: -135, risk: 50, toWin: 37.037,
		},
		{
			name: "moneyline with price",
			line: "Army -255 ML",
			team: "Army Black Knights", typ: models.PickTypeMoneyline,
			segment: models.SegmentFullGame,
			odds:    -255, risk: 50, toWin: 19.6078,
		},
		{
			name: "small signed number is the line not the price",
			line: "niners -3",
			team: "San Francisco 49ers", typ: models.PickTypeSpread,
			segment: models.SegmentFullGame, line2: -3,
			odds: -110, risk: 50, toWin: 45.4545,
		},
		{
			name: "unsigned price next to a stake",
			line: "niners -3 135 $50",
			team: "San Francisco 49ers", typ: models.PickTypeSpread,
			segment: models.SegmentFullGame, line2: -3,
			odds: -135, risk: 50, toWin: 37.037,
		},
		{
			name: "explicit risk and to-win pair",
			line: "niners -3 $50 to win $100",
			team: "San Francisco 49ers", typ: models.PickTypeSpread,
			segment: models.SegmentFullGame, line2: -3,
			odds: -110, risk: 50, toWin: 100,
		},
		{
			name: "k suffix stake",
			line: "niners -3 $1.5k",
			team: "San Francisco 49ers", typ: models.PickTypeSpread,
			segment: models.SegmentFullGame, line2: -3,
			odds: -110, risk: 1500, toWin: 1363.6363,
		},
		{
			name: "league token disambiguates the team",
			line: "nfl cardinals -7",
			team: "Arizona Cardinals", typ: models.PickTypeSpread,
			segment: models.SegmentFullGame, line2: -7,
			odds: -110, risk: 50, toWin: 45.4545,
		},
		{
			name: "positive odds pay out at the quoted price",
			line: "army +140 ml",
			team: "Army Black Knights", typ: models.PickTypeMoneyline,
			segment: models.SegmentFullGame,
			odds:    140, risk: 50, toWin: 70,
		},
		{
			name: "wrapping punctuation stripped",
			line: "(Niners -3)",
			team: "San Francisco 49ers", typ: models.PickTypeSpread,
			segment: models.SegmentFullGame, line2: -3,
			odds: -110, risk: 50, toWin: 45.4545,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.ctx
			if ctx.Date.IsZero() {
				ctx = NewParseContext(testDay)
			}
			pick, _ := parseOne(t, parser, tt.line, ctx)

			if pick.Team != tt.team {
				t.Errorf("Team = %q, want %q", pick.Team, tt.team)
			}
			if pick.Type != tt.typ {
				t.Errorf("Type = %q, want %q", pick.Type, tt.typ)
			}
			if pick.Segment != tt.segment {
				t.Errorf("Segment = %q, want %q", pick.Segment, tt.segment)
			}
			if pick.Line != tt.line2 {
				t.Errorf("Line = %v, want %v", pick.Line, tt.line2)
			}
			if pick.Side != tt.side {
				t.Errorf("Side = %q, want %q", pick.Side, tt.side)
			}
			if pick.Odds != tt.odds {
				t.Errorf("Odds = %d, want %d", pick.Odds, tt.odds)
			}
			if !approx(pick.Risk, tt.risk) {
				t.Errorf("Risk = %v, want %v", pick.Risk, tt.risk)
			}
			if !approx(pick.ToWin, tt.toWin) {
				t.Errorf("ToWin = %v, want %v", pick.ToWin, tt.toWin)
			}
			if pick.RawText != tt.line {
				t.Errorf("RawText = %q, want the original line", pick.RawText)
			}
		})
	}
}

func TestParseLineNoPick(t *testing.T) {
	parser := newTestParser(t)

	lines := []string{
		"",
		"what a game lol",
		"brutal beat",
		"cardinals -7", // ambiguous across leagues without a hint
		"zebras -3",    // unknown team
	}
	for _, line := range lines {
		picks, _ := parser.ParseLine(line, NewParseContext(testDay))
		if len(picks) != 0 {
			t.Errorf("ParseLine(%q) produced %d picks, want 0", line, len(picks))
		}
	}
}

func TestParseLineMatchupContext(t *testing.T) {
	parser := newTestParser(t)
	ctx := NewParseContext(testDay)

	picks, ctx := parser.ParseLine("Clippers @ Timberwolves", ctx)
	if len(picks) != 0 {
		t.Fatalf("matchup header produced %d picks", len(picks))
	}
	if len(ctx.Matchup) != 2 {
		t.Fatalf("context matchup has %d teams, want 2", len(ctx.Matchup))
	}
	if ctx.League != models.LeagueNBA {
		t.Errorf("context league = %q, want NBA", ctx.League)
	}

	total, ctx := parseOne(t, parser, "u 220", ctx)
	if total.Type != models.PickTypeTotal || total.Side != models.Under || total.Line != 220 {
		t.Errorf("game total = %+v", total)
	}
	if len(total.MatchupTeams) != 2 ||
		total.MatchupTeams[0] != "Los Angeles Clippers" ||
		total.MatchupTeams[1] != "Minnesota Timberwolves" {
		t.Errorf("MatchupTeams = %v", total.MatchupTeams)
	}
	if total.League != models.LeagueNBA {
		t.Errorf("total league = %q, want NBA", total.League)
	}

	// A standalone segment line changes the running segment for what follows
	picks, ctx = parser.ParseLine("2h", ctx)
	if len(picks) != 0 {
		t.Fatalf("segment line produced %d picks", len(picks))
	}
	second, _ := parseOne(t, parser, "over 95", ctx)
	if second.Segment != models.SegmentSecondHalf {
		t.Errorf("segment = %q, want 2H after a 2h line", second.Segment)
	}
}

func TestParseLineTeamCarryForward(t *testing.T) {
	parser := newTestParser(t)
	ctx := NewParseContext(testDay)

	spread, ctx := parseOne(t, parser, "seahawks -7", ctx)
	if spread.Team != "Seattle Seahawks" {
		t.Fatalf("spread team = %q", spread.Team)
	}

	// "ml" with no subject inherits the last-seen team
	ml, _ := parseOne(t, parser, "ml", ctx)
	if ml.Type != models.PickTypeMoneyline || ml.Team != "Seattle Seahawks" {
		t.Errorf("inherited moneyline = %+v", ml)
	}
}

func TestParseLineNoTeamNoMoneyline(t *testing.T) {
	parser := newTestParser(t)

	// Fresh context has no last team, so a bare "ml" cannot attach
	picks, _ := parser.ParseLine("ml", NewParseContext(testDay))
	if len(picks) != 0 {
		t.Errorf("bare ml with no context produced %d picks", len(picks))
	}
}

func TestParseLineLeagueSticky(t *testing.T) {
	parser := newTestParser(t)
	ctx := NewParseContext(testDay)

	_, ctx = parser.ParseLine("nfl", ctx)
	if ctx.League != models.LeagueNFL {
		t.Fatalf("league token did not stick: %q", ctx.League)
	}

	// The sticky league now disambiguates the shared alias
	pick, _ := parseOne(t, parser, "cardinals -7", ctx)
	if pick.Team != "Arizona Cardinals" {
		t.Errorf("team = %q, want Arizona Cardinals", pick.Team)
	}
}

func TestParseLineFormerNameGatedByDate(t *testing.T) {
	parser := newTestParser(t)

	// The 2024 chat date is past the name's effective range
	picks, _ := parser.ParseLine("washington redskins -7", NewParseContext(testDay))
	if len(picks) != 0 {
		t.Fatalf("ParseLine on an expired franchise name produced %d picks, want 0", len(picks))
	}

	old := NewParseContext(time.Date(2018, 10, 7, 0, 0, 0, 0, time.UTC))
	pick, _ := parseOne(t, parser, "washington redskins -7", old)
	if pick.Team != "Washington Commanders" {
		t.Errorf("Team = %q, want %q", pick.Team, "Washington Commanders")
	}
}

func TestParseContextDateDefaults(t *testing.T) {
	ctx := NewParseContext(testDay)
	if ctx.Segment != models.SegmentFullGame {
		t.Errorf("default segment = %q, want FG", ctx.Segment)
	}
	if !ctx.Date.Equal(testDay) {
		t.Errorf("date = %v", ctx.Date)
	}
}
