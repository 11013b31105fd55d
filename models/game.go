package models

import (
	"fmt"
	"time"
)

// GameState represents the current state of a game
type GameState string

const (
	GameStateScheduled GameState = "scheduled"
	GameStateInPlay    GameState = "in_play"
	GameStateFinal     GameState = "final"
	GameStatePostponed GameState = "postponed"
)

// Segment is the portion of a game a pick applies to
type Segment string

const (
	SegmentFullGame   Segment = "FG"
	SegmentFirstHalf  Segment = "1H"
	SegmentSecondHalf Segment = "2H"
	SegmentQ1         Segment = "1Q"
	SegmentQ2         Segment = "2Q"
	SegmentQ3         Segment = "3Q"
	SegmentQ4         Segment = "4Q"
)

// Period labels as stored in Game.Periods
const (
	PeriodQ1 = "Q1"
	PeriodQ2 = "Q2"
	PeriodQ3 = "Q3"
	PeriodQ4 = "Q4"
	PeriodH1 = "H1"
	PeriodH2 = "H2"
	PeriodOT = "OT"
)

// ScorePair holds one home/away score pair for a period or the full game
type ScorePair struct {
	Home int `json:"home" bson:"home"`
	Away int `json:"away" bson:"away"`
}

// Total returns the combined score of both sides
func (s ScorePair) Total() int {
	return s.Home + s.Away
}

// Game represents one played contest between two teams on a specific date.
// Home/Away carry the score provider's team names; canonicalization happens
// at resolution time so cached documents stay faithful to the source.
type Game struct {
	ID        string               `json:"id" bson:"id"`
	League    League               `json:"league" bson:"league"`
	Date      time.Time            `json:"date" bson:"date"`
	Home      string               `json:"home" bson:"home"`
	Away      string               `json:"away" bson:"away"`
	State     GameState            `json:"state" bson:"state"`
	HomeScore int                  `json:"homeScore" bson:"homeScore"`
	AwayScore int                  `json:"awayScore" bson:"awayScore"`
	Periods   map[string]ScorePair `json:"periods,omitempty" bson:"periods,omitempty"`
}

// IsFinal returns true if the game is finished
func (g *Game) IsFinal() bool {
	return g.State == GameStateFinal
}

// FinalScore returns the full-game score pair
func (g *Game) FinalScore() ScorePair {
	return ScorePair{Home: g.HomeScore, Away: g.AwayScore}
}

// DateKey returns the date formatted as the cache key component
func (g *Game) DateKey() string {
	return g.Date.Format("2006-01-02")
}

// Matchup returns a human-readable "AWAY @ HOME" description
func (g *Game) Matchup() string {
	return fmt.Sprintf("%s @ %s", g.Away, g.Home)
}

// period looks up one period score pair by label
func (g *Game) period(label string) (ScorePair, bool) {
	if g.Periods == nil {
		return ScorePair{}, false
	}
	p, ok := g.Periods[label]
	return p, ok
}

// firstHalf derives the first-half score. Prefers the native half entry when
// the provider scores by halves; otherwise sums Q1+Q2.
func (g *Game) firstHalf() (ScorePair, bool) {
	if h1, ok := g.period(PeriodH1); ok {
		return h1, true
	}
	q1, ok1 := g.period(PeriodQ1)
	q2, ok2 := g.period(PeriodQ2)
	if !ok1 || !ok2 {
		return ScorePair{}, false
	}
	return ScorePair{Home: q1.Home + q2.Home, Away: q1.Away + q2.Away}, true
}

// SegmentScore returns the score pair for the requested segment, or false if
// the game's period data cannot support it. The second half is defined as
// final minus first half, so overtime always counts toward the second half
// rather than its own segment.
func (g *Game) SegmentScore(seg Segment) (ScorePair, bool) {
	if !g.IsFinal() {
		return ScorePair{}, false
	}

	switch seg {
	case SegmentFullGame, "":
		return g.FinalScore(), true
	case SegmentFirstHalf:
		return g.firstHalf()
	case SegmentSecondHalf:
		h1, ok := g.firstHalf()
		if !ok {
			return ScorePair{}, false
		}
		return ScorePair{Home: g.HomeScore - h1.Home, Away: g.AwayScore - h1.Away}, true
	case SegmentQ1:
		return g.period(PeriodQ1)
	case SegmentQ2:
		return g.period(PeriodQ2)
	case SegmentQ3:
		return g.period(PeriodQ3)
	case SegmentQ4:
		return g.period(PeriodQ4)
	}
	return ScorePair{}, false
}

// ParseSegment maps segment tokens from pick text ("1h", "2q", "fg",
// "first half") to a Segment. Returns false for unrecognized tokens.
func ParseSegment(token string) (Segment, bool) {
	switch token {
	case "fg", "FG", "full game", "full":
		return SegmentFullGame, true
	case "1h", "1H", "first half", "1st half":
		return SegmentFirstHalf, true
	case "2h", "2H", "second half", "2nd half":
		return SegmentSecondHalf, true
	case "1q", "1Q", "q1", "Q1":
		return SegmentQ1, true
	case "2q", "2Q", "q2", "Q2":
		return SegmentQ2, true
	case "3q", "3Q", "q3", "Q3":
		return SegmentQ3, true
	case "4q", "4Q", "q4", "Q4":
		return SegmentQ4, true
	}
	return "", false
}
