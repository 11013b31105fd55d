package models

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"
)

// PickType represents the kind of wager
type PickType string

const (
	PickTypeSpread    PickType = "spread"
	PickTypeTotal     PickType = "total"
	PickTypeTeamTotal PickType = "team_total"
	PickTypeMoneyline PickType = "moneyline"
)

// OverUnder is the direction of a total pick
type OverUnder string

const (
	Over  OverUnder = "over"
	Under OverUnder = "under"
)

// PickResult represents the outcome of a pick
type PickResult string

const (
	PickResultPending PickResult = "pending"
	PickResultWin     PickResult = "win"
	PickResultLoss    PickResult = "loss"
	PickResultPush    PickResult = "push"
	PickResultUnknown PickResult = "unknown"
)

// UnknownReason distinguishes why a pick could not be graded. The three causes
// are numerically equivalent (no P&L) but must stay auditable.
type UnknownReason string

const (
	UnknownNoGame    UnknownReason = "no_game"
	UnknownNoSegment UnknownReason = "no_segment"
	UnknownNoSide    UnknownReason = "no_side"
)

// GradeSource records where a graded pick's result came from
type GradeSource string

const (
	GradeComputed  GradeSource = "computed"
	GradeCorrected GradeSource = "corrected"
	GradeImported  GradeSource = "imported"
)

// Pick is one wagered proposition parsed from free text
type Pick struct {
	Date    time.Time `json:"date" bson:"date"`
	League  League    `json:"league,omitempty" bson:"league,omitempty"`
	RawText string    `json:"raw_text" bson:"raw_text"`

	// Team is the canonical name of the subject team. Game totals carry the
	// context team here purely for game lookup; grading ignores it.
	Team string `json:"team,omitempty" bson:"team,omitempty"`
	// MatchupTeams holds both canonical names when the source text named a
	// matchup ("Clippers @ Timberwolves") rather than a single side.
	MatchupTeams []string `json:"matchup_teams,omitempty" bson:"matchup_teams,omitempty"`

	Type    PickType  `json:"type" bson:"type"`
	Segment Segment   `json:"segment" bson:"segment"`
	Line    float64   `json:"line,omitempty" bson:"line,omitempty"`
	Side    OverUnder `json:"side,omitempty" bson:"side,omitempty"`

	Odds  int     `json:"odds" bson:"odds"`
	Risk  float64 `json:"risk" bson:"risk"`
	ToWin float64 `json:"to_win" bson:"to_win"`
	// ExplicitStake is true when both risk and to-win appeared in the source
	// text, in which case the quoted values override the derived ones.
	ExplicitStake bool `json:"explicit_stake,omitempty" bson:"explicit_stake,omitempty"`
}

// StableID returns a deterministic identifier for the pick, used to key
// manual overrides and ledger upserts across reruns and re-imports.
func (p *Pick) StableID() string {
	norm := strings.Join(strings.Fields(strings.ToLower(p.RawText)), " ")
	seed := fmt.Sprintf("%s|%s|%s", p.Date.Format("2006-01-02"), p.League, norm)
	sum := sha1.Sum([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// Description returns a short human-readable summary of the proposition
func (p *Pick) Description() string {
	switch p.Type {
	case PickTypeSpread:
		return fmt.Sprintf("%s %+.1f", p.Team, p.Line)
	case PickTypeTotal:
		return fmt.Sprintf("%s %.1f", p.Side, p.Line)
	case PickTypeTeamTotal:
		return fmt.Sprintf("%s %s %.1f", p.Team, p.Side, p.Line)
	case PickTypeMoneyline:
		return fmt.Sprintf("%s ML", p.Team)
	}
	return p.RawText
}

// ToWinFromRisk derives the to-win amount from a risk amount and american
// odds: risk * 100/|odds| for negative odds, risk * odds/100 for positive.
func ToWinFromRisk(risk float64, odds int) float64 {
	if odds == 0 {
		return 0
	}
	if odds < 0 {
		return risk * 100 / math.Abs(float64(odds))
	}
	return risk * float64(odds) / 100
}

// RiskFromToWin is the inverse of ToWinFromRisk
func RiskFromToWin(toWin float64, odds int) float64 {
	if odds == 0 {
		return 0
	}
	if odds < 0 {
		return toWin * math.Abs(float64(odds)) / 100
	}
	return toWin * 100 / float64(odds)
}

// GradedPick is a Pick plus its resolved game reference and computed outcome.
// Unknown is a first-class terminal state, not an error.
type GradedPick struct {
	Pick `bson:",inline"`

	PickID string        `json:"pick_id" bson:"pick_id"`
	Result PickResult    `json:"result" bson:"result"`
	Reason UnknownReason `json:"reason,omitempty" bson:"reason,omitempty"`
	// ProfitLoss is nil for Unknown picks; a push is an explicit zero.
	ProfitLoss *float64 `json:"profit_loss,omitempty" bson:"profit_loss,omitempty"`

	GameID      string `json:"game_id,omitempty" bson:"game_id,omitempty"`
	GameMatchup string `json:"game_matchup,omitempty" bson:"game_matchup,omitempty"`

	// Source records grade provenance. ComputedResult preserves the automated
	// grade when a manual correction replaced it.
	Source         GradeSource `json:"source" bson:"source"`
	ComputedResult PickResult  `json:"computed_result,omitempty" bson:"computed_result,omitempty"`
	GradedAt       time.Time   `json:"graded_at" bson:"graded_at"`
}

// IsGraded returns true once the pick has a definite win/loss/push result
func (g *GradedPick) IsGraded() bool {
	return g.Result == PickResultWin || g.Result == PickResultLoss || g.Result == PickResultPush
}

// Net returns the signed profit/loss, and false for ungraded picks
func (g *GradedPick) Net() (float64, bool) {
	if g.ProfitLoss == nil {
		return 0, false
	}
	return *g.ProfitLoss, true
}
