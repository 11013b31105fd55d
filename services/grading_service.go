package services

import (
	"time"

	"pick-ledger-go/logging"
	"pick-ledger-go/models"
)

// GradingService computes Win/Loss/Push/Unknown and signed profit/loss for a
// resolved (pick, game) pair. Grading is pure: the same inputs always grade
// the same way, and Unknown is a terminal result, never an error.
type GradingService struct {
	logger *logging.Logger
}

// NewGradingService creates a new grading service
func NewGradingService() *GradingService {
	return &GradingService{
		logger: logging.WithPrefix("Grading"),
	}
}

// Grade determines the outcome of a pick against its resolved game. A nil
// game grades Unknown with reason no_game.
func (s *GradingService) Grade(pick *models.Pick, rg *ResolvedGame) models.GradedPick {
	graded := models.GradedPick{
		Pick:     *pick,
		PickID:   pick.StableID(),
		Source:   models.GradeComputed,
		GradedAt: time.Now(),
	}

	if rg == nil || rg.Game == nil {
		return unknown(graded, models.UnknownNoGame)
	}

	graded.GameID = rg.Game.ID
	graded.GameMatchup = rg.Game.Matchup()

	var result models.PickResult
	var reason models.UnknownReason

	switch pick.Type {
	case models.PickTypeSpread:
		result, reason = s.gradeSpread(pick, rg)
	case models.PickTypeTotal:
		result, reason = s.gradeTotal(pick, rg)
	case models.PickTypeTeamTotal:
		result, reason = s.gradeTeamTotal(pick, rg)
	case models.PickTypeMoneyline:
		result, reason = s.gradeMoneyline(pick, rg)
	default:
		s.logger.Warnf("Unknown pick type %q for pick %s", pick.Type, graded.PickID)
		return unknown(graded, models.UnknownNoSide)
	}

	if result == models.PickResultUnknown {
		return unknown(graded, reason)
	}

	graded.Result = result
	graded.ComputedResult = result
	graded.ProfitLoss = profitLoss(pick, result)
	return graded
}

// gradeSpread grades subject score plus line against the opponent. The line
// is signed exactly as quoted: negative for favorites, positive for dogs.
func (s *GradingService) gradeSpread(pick *models.Pick, rg *ResolvedGame) (models.PickResult, models.UnknownReason) {
	subject, opponent, ok := rg.SideScores(pick.Team, pick.Segment)
	if !ok {
		return s.sideOrSegment(pick, rg)
	}

	margin := float64(subject-opponent) + pick.Line
	switch {
	case margin > 0:
		return models.PickResultWin, ""
	case margin < 0:
		return models.PickResultLoss, ""
	default:
		return models.PickResultPush, ""
	}
}

// gradeTotal grades a game total: both sides' segment scores combined
func (s *GradingService) gradeTotal(pick *models.Pick, rg *ResolvedGame) (models.PickResult, models.UnknownReason) {
	scores, ok := rg.Game.SegmentScore(pick.Segment)
	if !ok {
		return models.PickResultUnknown, models.UnknownNoSegment
	}
	return totalResult(float64(scores.Total()), pick.Line, pick.Side), ""
}

// gradeTeamTotal grades one team's own segment score against the line
func (s *GradingService) gradeTeamTotal(pick *models.Pick, rg *ResolvedGame) (models.PickResult, models.UnknownReason) {
	subject, _, ok := rg.SideScores(pick.Team, pick.Segment)
	if !ok {
		return s.sideOrSegment(pick, rg)
	}
	return totalResult(float64(subject), pick.Line, pick.Side), ""
}

// gradeMoneyline grades purely on which side's segment score is higher; an
// exact tie pushes
func (s *GradingService) gradeMoneyline(pick *models.Pick, rg *ResolvedGame) (models.PickResult, models.UnknownReason) {
	subject, opponent, ok := rg.SideScores(pick.Team, pick.Segment)
	if !ok {
		return s.sideOrSegment(pick, rg)
	}

	switch {
	case subject > opponent:
		return models.PickResultWin, ""
	case subject < opponent:
		return models.PickResultLoss, ""
	default:
		return models.PickResultPush, ""
	}
}

// sideOrSegment distinguishes the two ways SideScores can fail: the segment
// has no score data, or the pick's team is on neither side of the game
func (s *GradingService) sideOrSegment(pick *models.Pick, rg *ResolvedGame) (models.PickResult, models.UnknownReason) {
	if _, ok := rg.Game.SegmentScore(pick.Segment); !ok {
		return models.PickResultUnknown, models.UnknownNoSegment
	}
	s.logger.Debugf("Team %q is on neither side of %s", pick.Team, rg.Game.Matchup())
	return models.PickResultUnknown, models.UnknownNoSide
}

// totalResult compares a computed total to the line in the picked direction.
// Landing exactly on the number is a push.
func totalResult(total, line float64, side models.OverUnder) models.PickResult {
	if total == line {
		return models.PickResultPush
	}
	over := total > line
	if (side == models.Over) == over {
		return models.PickResultWin
	}
	return models.PickResultLoss
}

// profitLoss converts a result to signed dollars: a win pays to-win, a loss
// costs the full risk, a push returns the stake
func profitLoss(pick *models.Pick, result models.PickResult) *float64 {
	var net float64
	switch result {
	case models.PickResultWin:
		net = pick.ToWin
	case models.PickResultLoss:
		net = -pick.Risk
	case models.PickResultPush:
		net = 0
	default:
		return nil
	}
	return &net
}

// unknown finalizes a graded pick in the Unknown state with a nil P&L
func unknown(graded models.GradedPick, reason models.UnknownReason) models.GradedPick {
	graded.Result = models.PickResultUnknown
	graded.ComputedResult = models.PickResultUnknown
	graded.Reason = reason
	graded.ProfitLoss = nil
	return graded
}
