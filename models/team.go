package models

import "time"

// League identifies the competition a team plays in
type League string

const (
	LeagueNFL   League = "NFL"
	LeagueNBA   League = "NBA"
	LeagueNCAAF League = "NCAAF"
	LeagueNCAAM League = "NCAAM"
)

// AllLeagues lists every league the registry knows about, in resolution order
var AllLeagues = []League{LeagueNFL, LeagueNBA, LeagueNCAAF, LeagueNCAAM}

// ParseLeague maps common league tokens ("nba", "cbb", "cfb") to a League.
// Returns false for unrecognized tokens.
func ParseLeague(token string) (League, bool) {
	switch token {
	case "nfl", "NFL":
		return LeagueNFL, true
	case "nba", "NBA":
		return LeagueNBA, true
	case "ncaaf", "NCAAF", "cfb", "CFB":
		return LeagueNCAAF, true
	case "ncaam", "NCAAM", "cbb", "CBB", "ncaab", "NCAAB":
		return LeagueNCAAM, true
	}
	return "", false
}

// FormerName records a historical franchise name and the seasons it applied to,
// e.g. the St. Louis Rams before the 2016 move back to Los Angeles.
type FormerName struct {
	Name     string `yaml:"name" json:"name" bson:"name"`
	FromYear int    `yaml:"from,omitempty" json:"from_year,omitempty" bson:"from_year,omitempty"`
	ToYear   int    `yaml:"to,omitempty" json:"to_year,omitempty" bson:"to_year,omitempty"`
}

// Active reports whether the historical name was in use on the given date.
// Zero bounds are open-ended; historical picks dated inside the range should
// resolve through the old name.
func (f *FormerName) Active(on time.Time) bool {
	year := on.Year()
	if f.FromYear != 0 && year < f.FromYear {
		return false
	}
	if f.ToYear != 0 && year > f.ToYear {
		return false
	}
	return true
}

// Team is a single franchise or school within one league
type Team struct {
	Name        string       `yaml:"name" json:"name" bson:"name"`
	League      League       `yaml:"-" json:"league" bson:"league"`
	City        string       `yaml:"city,omitempty" json:"city,omitempty" bson:"city,omitempty"`
	Abbr        string       `yaml:"abbr,omitempty" json:"abbr,omitempty" bson:"abbr,omitempty"`
	Aliases     []string     `yaml:"aliases,omitempty" json:"aliases,omitempty" bson:"aliases,omitempty"`
	FormerNames []FormerName `yaml:"former_names,omitempty" json:"former_names,omitempty" bson:"former_names,omitempty"`
}

// String returns the canonical team name
func (t *Team) String() string {
	return t.Name
}
