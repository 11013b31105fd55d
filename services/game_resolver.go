package services

import (
	"time"

	"pick-ledger-go/logging"
	"pick-ledger-go/models"
)

// ResolvedGame is a provider game with both sides canonicalized through the
// team registry. Either side may be nil when the provider's name resolves to
// no known team; such games can still match on the other side's opponent.
type ResolvedGame struct {
	Game *models.Game
	Home *models.Team
	Away *models.Team
}

// HasTeam reports whether the canonical team plays in this game
func (rg *ResolvedGame) HasTeam(name string) bool {
	return (rg.Home != nil && rg.Home.Name == name) ||
		(rg.Away != nil && rg.Away.Name == name)
}

// SideScores returns (subject, opponent) segment scores for the named team,
// or false when the team is on neither side or the segment is unavailable
func (rg *ResolvedGame) SideScores(name string, seg models.Segment) (int, int, bool) {
	scores, ok := rg.Game.SegmentScore(seg)
	if !ok {
		return 0, 0, false
	}
	if rg.Home != nil && rg.Home.Name == name {
		return scores.Home, scores.Away, true
	}
	if rg.Away != nil && rg.Away.Name == name {
		return scores.Away, scores.Home, true
	}
	return 0, 0, false
}

// ScheduleSet indexes resolved games by date for the resolver. Built once
// from the prefetched schedules before the grading pass runs.
type ScheduleSet struct {
	byDate map[string][]*ResolvedGame
}

// NewScheduleSet canonicalizes every game's sides against the registry and
// indexes them by calendar date
func NewScheduleSet(games []*models.Game, registry *TeamRegistry) *ScheduleSet {
	logger := logging.WithPrefix("ScheduleSet")
	set := &ScheduleSet{byDate: make(map[string][]*ResolvedGame)}

	unresolved := 0
	for _, game := range games {
		rg := &ResolvedGame{Game: game}
		if home, ok := registry.ResolveAt(game.Home, game.League, game.Date); ok {
			rg.Home = home
		} else {
			unresolved++
		}
		if away, ok := registry.ResolveAt(game.Away, game.League, game.Date); ok {
			rg.Away = away
		} else {
			unresolved++
		}
		key := game.DateKey()
		set.byDate[key] = append(set.byDate[key], rg)
	}

	if unresolved > 0 {
		logger.Warnf("%d game sides did not resolve to a known team", unresolved)
	}
	return set
}

// GamesOn returns the resolved games for one calendar date
func (s *ScheduleSet) GamesOn(date time.Time) []*ResolvedGame {
	return s.byDate[date.Format("2006-01-02")]
}

// GameResolver maps a parsed pick to the one specific game it refers to.
// Ambiguity fails resolution rather than guessing; the caller records the
// pick as ungraded.
type GameResolver struct {
	schedules *ScheduleSet
	logger    *logging.Logger
}

// NewGameResolver creates a resolver over a prefetched schedule set
func NewGameResolver(schedules *ScheduleSet) *GameResolver {
	return &GameResolver{
		schedules: schedules,
		logger:    logging.WithPrefix("GameResolver"),
	}
}

// Resolve finds the game a pick refers to, or nil when no unambiguous match
// exists. The pick's date is tried first; when it yields nothing, the
// adjacent calendar days are each tried once, covering sources that stamp
// picks with a publish date or a different timezone's midnight.
func (r *GameResolver) Resolve(pick *models.Pick) *ResolvedGame {
	for _, offset := range []int{0, -1, 1} {
		date := pick.Date.AddDate(0, 0, offset)
		games := r.schedules.GamesOn(date)
		if len(games) == 0 {
			continue
		}
		if match := r.resolveOn(pick, games); match != nil {
			return match
		}
	}
	return nil
}

// resolveOn searches one day's games for the pick's matchup or subject team
func (r *GameResolver) resolveOn(pick *models.Pick, games []*ResolvedGame) *ResolvedGame {
	if len(pick.MatchupTeams) == 2 {
		return r.matchBoth(pick.MatchupTeams[0], pick.MatchupTeams[1], games)
	}
	if pick.Team == "" {
		return nil
	}

	// League hint first; a miss retries across all leagues, since hints are
	// sometimes wrong in the source data
	if pick.League != "" {
		if match, matched := r.matchTeam(pick.Team, pick.League, games); matched {
			return match
		}
	}
	match, _ := r.matchTeam(pick.Team, "", games)
	return match
}

// matchBoth requires both named teams to appear in the same game
func (r *GameResolver) matchBoth(a, b string, games []*ResolvedGame) *ResolvedGame {
	for _, rg := range games {
		if rg.HasTeam(a) && rg.HasTeam(b) {
			return rg
		}
	}
	return nil
}

// matchTeam returns the single game containing the team, filtered by league
// when one is given. The second return reports whether any candidate was
// found: multiple candidates are ambiguous and resolve to nil, but still
// count as "matched" so the caller doesn't retry a wider search.
func (r *GameResolver) matchTeam(team string, league models.League, games []*ResolvedGame) (*ResolvedGame, bool) {
	var found *ResolvedGame
	for _, rg := range games {
		if league != "" && rg.Game.League != league {
			continue
		}
		if !rg.HasTeam(team) {
			continue
		}
		if found != nil {
			r.logger.Debugf("Ambiguous: %s appears in multiple games on %s", team, rg.Game.DateKey())
			return nil, true
		}
		found = rg
	}
	return found, found != nil
}
