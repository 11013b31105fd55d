package models

import (
	"testing"
	"time"
)

func TestParseLeague(t *testing.T) {
	tests := []struct {
		token string
		want  League
		ok    bool
	}{
		{"nfl", LeagueNFL, true},
		{"NBA", LeagueNBA, true},
		{"cfb", LeagueNCAAF, true},
		{"cbb", LeagueNCAAM, true},
		{"ncaab", LeagueNCAAM, true},
		{"nhl", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseLeague(tt.token)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseLeague(%q) = %q, %v; want %q, %v", tt.token, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormerNameActive(t *testing.T) {
	day := func(year int) time.Time { return time.Date(year, 10, 1, 0, 0, 0, 0, time.UTC) }

	redskins := FormerName{Name: "Washington Redskins", ToYear: 2019}
	if !redskins.Active(day(2018)) {
		t.Error("open-start former name inactive before its end year")
	}
	if redskins.Active(day(2020)) {
		t.Error("former name active after its end year")
	}

	wft := FormerName{Name: "Washington Football Team", FromYear: 2020, ToYear: 2021}
	if wft.Active(day(2019)) || wft.Active(day(2022)) {
		t.Error("bounded former name active outside its range")
	}
	if !wft.Active(day(2021)) {
		t.Error("bounded former name inactive inside its range")
	}
}
