package services

import (
	"sort"
	"time"

	"pick-ledger-go/logging"
	"pick-ledger-go/models"
)

// LedgerService runs the Parse -> Resolve -> Grade pipeline over a batch of
// raw lines and produces one ledger row per input pick. The pass is
// single-threaded on purpose: per-pick cost is trivial and the only shared
// state is the read-only registry and schedule set.
type LedgerService struct {
	parser    *PickParser
	resolver  *GameResolver
	grader    *GradingService
	overrides *OverrideService
	logger    *logging.Logger
}

// NewLedgerService wires the pipeline stages together
func NewLedgerService(parser *PickParser, resolver *GameResolver, grader *GradingService, overrides *OverrideService) *LedgerService {
	return &LedgerService{
		parser:    parser,
		resolver:  resolver,
		grader:    grader,
		overrides: overrides,
		logger:    logging.WithPrefix("Ledger"),
	}
}

// BatchReport summarizes one grading run. Every input pick lands in exactly
// one bucket; ungraded picks stay auditable through their reason counts.
type BatchReport struct {
	Lines    int
	Picks    int
	Wins     int
	Losses   int
	Pushes   int
	Unknowns map[models.UnknownReason]int
	Net      float64
	ByLeague map[models.League]float64
}

// NewBatchReport creates an empty report
func NewBatchReport() BatchReport {
	return BatchReport{
		Unknowns: make(map[models.UnknownReason]int),
		ByLeague: make(map[models.League]float64),
	}
}

// Record tallies one graded pick
func (r *BatchReport) Record(graded *models.GradedPick) {
	r.Picks++
	switch graded.Result {
	case models.PickResultWin:
		r.Wins++
	case models.PickResultLoss:
		r.Losses++
	case models.PickResultPush:
		r.Pushes++
	default:
		r.Unknowns[graded.Reason]++
	}
	if net, ok := graded.Net(); ok {
		r.Net += net
		r.ByLeague[graded.League] += net
	}
}

// UnknownTotal returns the count of picks that could not be graded
func (r *BatchReport) UnknownTotal() int {
	total := 0
	for _, count := range r.Unknowns {
		total += count
	}
	return total
}

// Log prints the report through the given logger
func (r *BatchReport) Log(logger *logging.Logger) {
	logger.Infof("Graded %d picks from %d lines: %d-%d-%d, net %+.2f",
		r.Picks, r.Lines, r.Wins, r.Losses, r.Pushes, r.Net)
	if r.UnknownTotal() > 0 {
		logger.Warnf("%d picks ungraded: no_game=%d no_segment=%d no_side=%d",
			r.UnknownTotal(),
			r.Unknowns[models.UnknownNoGame],
			r.Unknowns[models.UnknownNoSegment],
			r.Unknowns[models.UnknownNoSide])
	}
	leagues := make([]models.League, 0, len(r.ByLeague))
	for league := range r.ByLeague {
		leagues = append(leagues, league)
	}
	sort.Slice(leagues, func(i, j int) bool { return leagues[i] < leagues[j] })
	for _, league := range leagues {
		logger.Infof("  %s: net %+.2f", league, r.ByLeague[league])
	}
}

// GradeAll parses every line in original order, resolves and grades each
// pick, and applies manual overrides. The parser context resets at each
// date boundary; within a day, team/segment/matchup context carries forward
// line to line.
func (s *LedgerService) GradeAll(lines []RawLine) ([]models.GradedPick, BatchReport) {
	report := NewBatchReport()
	report.Lines = len(lines)

	var ledger []models.GradedPick
	var ctx ParseContext
	var currentDate time.Time

	for _, line := range lines {
		if !line.Date.Equal(currentDate) {
			currentDate = line.Date
			ctx = NewParseContext(line.Date)
		}

		var picks []models.Pick
		picks, ctx = s.parser.ParseLine(line.Text, ctx)

		for i := range picks {
			pick := &picks[i]
			resolved := s.resolver.Resolve(pick)
			if resolved != nil && pick.League == "" {
				pick.League = resolved.Game.League
			}

			graded := s.grader.Grade(pick, resolved)
			if s.overrides != nil {
				graded = s.overrides.Apply(graded)
			}

			report.Record(&graded)
			ledger = append(ledger, graded)
		}
	}

	return ledger, report
}
