package services

import (
	"testing"

	"pick-ledger-go/models"
)

func linescores(values ...float64) []ESPNLinescore {
	out := make([]ESPNLinescore, len(values))
	for i, v := range values {
		out[i].Value = v
	}
	return out
}

func TestConvertLinescores(t *testing.T) {
	t.Run("quarters", func(t *testing.T) {
		periods := convertLinescores(models.LeagueNFL,
			linescores(7, 10, 3, 7), linescores(3, 7, 14, 0))
		if len(periods) != 4 {
			t.Fatalf("got %d periods, want 4", len(periods))
		}
		if periods[models.PeriodQ2] != (models.ScorePair{Home: 10, Away: 7}) {
			t.Errorf("Q2 = %+v", periods[models.PeriodQ2])
		}
	})

	t.Run("overtime periods collapse into one", func(t *testing.T) {
		periods := convertLinescores(models.LeagueNBA,
			linescores(28, 25, 30, 27, 12, 9), linescores(25, 28, 27, 30, 12, 7))
		ot, ok := periods[models.PeriodOT]
		if !ok {
			t.Fatal("no OT entry")
		}
		if ot != (models.ScorePair{Home: 21, Away: 19}) {
			t.Errorf("OT = %+v, want both extra periods summed", ot)
		}
	})

	t.Run("half scored league", func(t *testing.T) {
		periods := convertLinescores(models.LeagueNCAAM,
			linescores(34, 41), linescores(31, 38))
		if periods[models.PeriodH1] != (models.ScorePair{Home: 34, Away: 31}) {
			t.Errorf("H1 = %+v", periods[models.PeriodH1])
		}
		if periods[models.PeriodH2] != (models.ScorePair{Home: 41, Away: 38}) {
			t.Errorf("H2 = %+v", periods[models.PeriodH2])
		}
		if _, ok := periods[models.PeriodQ1]; ok {
			t.Error("half league produced quarter labels")
		}
	})

	t.Run("college overtime goes to OT not H3", func(t *testing.T) {
		periods := convertLinescores(models.LeagueNCAAM,
			linescores(34, 41, 8), linescores(31, 44, 6))
		if periods[models.PeriodOT] != (models.ScorePair{Home: 8, Away: 6}) {
			t.Errorf("OT = %+v", periods[models.PeriodOT])
		}
	})

	t.Run("mismatched lengths use the shorter side", func(t *testing.T) {
		periods := convertLinescores(models.LeagueNFL,
			linescores(7, 10), linescores(3))
		if len(periods) != 1 {
			t.Errorf("got %d periods, want 1", len(periods))
		}
	})

	t.Run("empty linescores", func(t *testing.T) {
		if periods := convertLinescores(models.LeagueNFL, nil, nil); periods != nil {
			t.Errorf("got %v, want nil", periods)
		}
	})
}

func TestConvertState(t *testing.T) {
	tests := []struct {
		status ESPNStatusType
		want   models.GameState
	}{
		{ESPNStatusType{Completed: true, Name: "STATUS_FINAL"}, models.GameStateFinal},
		{ESPNStatusType{State: "in", Name: "STATUS_IN_PROGRESS"}, models.GameStateInPlay},
		{ESPNStatusType{Name: "STATUS_POSTPONED"}, models.GameStatePostponed},
		{ESPNStatusType{Name: "STATUS_CANCELED"}, models.GameStatePostponed},
		{ESPNStatusType{Name: "STATUS_SCHEDULED"}, models.GameStateScheduled},
	}
	for _, tt := range tests {
		if got := convertState(tt.status); got != tt.want {
			t.Errorf("convertState(%+v) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestParseESPNDate(t *testing.T) {
	for _, value := range []string{"2024-01-15T18:30Z", "2024-01-15T18:30:00Z"} {
		if _, err := parseESPNDate(value); err != nil {
			t.Errorf("parseESPNDate(%q): %v", value, err)
		}
	}
	if _, err := parseESPNDate("January 15"); err == nil {
		t.Error("parseESPNDate accepted garbage")
	}
}

func TestConvertEvent(t *testing.T) {
	svc := NewESPNService(0, 0)

	event := ESPNEvent{
		ID:     "401547417",
		Date:   "2024-01-15T18:30Z",
		Status: ESPNStatus{Type: ESPNStatusType{Completed: true, Name: "STATUS_FINAL"}},
		Competitions: []ESPNCompetition{{
			Competitors: []ESPNCompetitor{
				{HomeAway: "home", Score: "27", Team: ESPNTeam{DisplayName: "San Francisco 49ers"},
					Linescores: linescores(7, 10, 3, 7)},
				{HomeAway: "away", Score: "24", Team: ESPNTeam{DisplayName: "Seattle Seahawks"},
					Linescores: linescores(3, 7, 14, 0)},
			},
		}},
	}

	game, err := svc.convertEvent(event, models.LeagueNFL, testDay)
	if err != nil {
		t.Fatalf("convertEvent: %v", err)
	}
	if game.Home != "San Francisco 49ers" || game.Away != "Seattle Seahawks" {
		t.Errorf("sides = %q / %q", game.Home, game.Away)
	}
	if !game.IsFinal() || game.HomeScore != 27 || game.AwayScore != 24 {
		t.Errorf("score = %d-%d final=%v", game.HomeScore, game.AwayScore, game.IsFinal())
	}
	if len(game.Periods) != 4 {
		t.Errorf("periods = %v", game.Periods)
	}
}

func TestConvertEventRejectsIncomplete(t *testing.T) {
	svc := NewESPNService(0, 0)

	if _, err := svc.convertEvent(ESPNEvent{ID: "x"}, models.LeagueNFL, testDay); err == nil {
		t.Error("event with no competitions converted")
	}

	oneSided := ESPNEvent{
		ID: "y",
		Competitions: []ESPNCompetition{{
			Competitors: []ESPNCompetitor{{HomeAway: "home", Team: ESPNTeam{DisplayName: "49ers"}}},
		}},
	}
	if _, err := svc.convertEvent(oneSided, models.LeagueNFL, testDay); err == nil {
		t.Error("event missing the away side converted")
	}
}
