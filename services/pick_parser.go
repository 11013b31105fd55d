package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"pick-ledger-go/logging"
	"pick-ledger-go/models"
)

// ParseContext carries the running conversation state from line to line:
// the current date, the last-seen team, segment, and matchup. ParseLine never
// mutates a context; it returns an updated copy so each call stays
// independently testable.
type ParseContext struct {
	Date    time.Time
	League  models.League
	Segment models.Segment
	// LastTeam is the most recent subject team, inherited by later lines in
	// the same conversation that omit a team.
	LastTeam *models.Team
	// Matchup holds both teams of the current matchup header, when one was
	// seen ("Clippers @ Timberwolves"). Game totals attach to it.
	Matchup []*models.Team
}

// NewParseContext returns a context for one day's lines; the segment defaults
// to full game until the text says otherwise.
func NewParseContext(date time.Time) ParseContext {
	return ParseContext{
		Date:    date,
		Segment: models.SegmentFullGame,
	}
}

// PickParser turns free-text chat lines into structured Pick records.
// Lines that match no recognizer produce zero picks; chat contains plenty of
// non-betting text and that is not an error.
type PickParser struct {
	registry    *TeamRegistry
	baseStake   float64
	defaultOdds int
	logger      *logging.Logger
}

// NewPickParser creates a pick parser. baseStake is assumed when the text
// quotes neither risk nor to-win; defaultOdds stands in when no plausible
// price appears.
func NewPickParser(registry *TeamRegistry, baseStake float64, defaultOdds int) *PickParser {
	return &PickParser{
		registry:    registry,
		baseStake:   baseStake,
		defaultOdds: defaultOdds,
		logger:      logging.WithPrefix("PickParser"),
	}
}

var (
	leagueTokenRe  = regexp.MustCompile(`\b(nfl|nba|ncaaf|ncaam|ncaab|cfb|cbb)\b`)
	segmentTokenRe = regexp.MustCompile(`\b(1st half|first half|2nd half|second half|full game|1h|2h|fh|[1-4]q|q[1-4]|fg)\b`)
	moneyRe        = regexp.MustCompile(`\$\s*(\d+(?:,\d{3})*(?:\.\d+)?)\s*(k)?`)
	signedNumRe    = regexp.MustCompile(`[+-]\d+(?:\.\d+)?`)
	bareNumRe      = regexp.MustCompile(`\b\d{2,3}\b`)

	teamTotalRe = regexp.MustCompile(`^(.+?)\s+(?:tt\s+)?(o|over|u|under)\s*(\d+(?:\.\d+)?)$`)
	gameTotalRe = regexp.MustCompile(`^(o|over|u|under)\s*(\d+(?:\.\d+)?)$`)
	moneylineRe = regexp.MustCompile(`^(.*?)\s*\bml$`)
	spreadRe    = regexp.MustCompile(`^(.+?)\s*([+-]\d+(?:\.\d+)?)$`)
	matchupRe   = regexp.MustCompile(`^(.+?)\s+(?:@|at|vs\.?|v)\s+(.+)$`)
	ouTailRe    = regexp.MustCompile(`\b(?:o|over|u|under)\s*$`)
)

// ParseLine parses one line of text into zero or more picks, returning the
// context updated with whatever the line taught us (team, segment, league,
// matchup).
func (p *PickParser) ParseLine(raw string, ctx ParseContext) ([]models.Pick, ParseContext) {
	text := cleanLine(raw)
	if text == "" {
		return nil, ctx
	}

	// Peel off the decorations first so the recognizers see only the bet
	// core: league token, segment token, dollar amounts, price.
	var lineLeague models.League
	if m := leagueTokenRe.FindString(text); m != "" {
		if league, ok := models.ParseLeague(m); ok {
			lineLeague = league
			ctx.League = league
		}
		text = collapse(leagueTokenRe.ReplaceAllString(text, " "))
	}

	segment := ctx.Segment
	if m := segmentTokenRe.FindString(text); m != "" {
		if seg, ok := parseSegmentToken(m); ok {
			segment = seg
			ctx.Segment = seg
		}
		text = collapse(segmentTokenRe.ReplaceAllString(text, " "))
	}

	var amounts []float64
	text = moneyRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := moneyRe.FindStringSubmatch(m)
		value, err := strconv.ParseFloat(strings.ReplaceAll(sub[1], ",", ""), 64)
		if err != nil {
			return " "
		}
		if sub[2] == "k" {
			value *= 1000
		}
		amounts = append(amounts, value)
		return " "
	})
	text = collapse(strings.ReplaceAll(text, "to win", " "))

	odds, text := p.extractOdds(text, len(amounts) > 0)

	// Recognizers in order; team-total must run before spread so
	// "Hawks Over 120" never parses as a team called "Hawks Over".
	if pick, newCtx, ok := p.tryTeamTotal(text, ctx, lineLeague); ok {
		return p.finish(pick, raw, segment, odds, amounts), newCtx
	}
	if pick, newCtx, ok := p.tryGameTotal(text, ctx, lineLeague); ok {
		return p.finish(pick, raw, segment, odds, amounts), newCtx
	}
	if pick, newCtx, ok := p.tryMoneyline(text, ctx, lineLeague); ok {
		return p.finish(pick, raw, segment, odds, amounts), newCtx
	}
	if pick, newCtx, ok := p.trySpread(text, ctx, lineLeague); ok {
		return p.finish(pick, raw, segment, odds, amounts), newCtx
	}

	// Not a bet. Matchup headers and bare team mentions still update the
	// context for the lines that follow.
	if newCtx, ok := p.tryMatchupHeader(text, ctx, lineLeague); ok {
		return nil, newCtx
	}
	if team, ok := p.registry.ResolveAt(text, hintFor(lineLeague, ctx), ctx.Date); ok {
		ctx.LastTeam = team
		ctx.League = team.League
		return nil, ctx
	}

	return nil, ctx
}

// extractOdds pulls the american price out of the text. Signed numbers with
// magnitude 100 or more are taken as odds; with a dollar amount present a
// bare 2-3 digit number is treated as a (negative) price rather than a typo.
// Magnitudes under 100 are implausible as odds and fall back to the default.
func (p *PickParser) extractOdds(text string, sawMoney bool) (int, string) {
	matches := signedNumRe.FindAllString(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		value, err := strconv.ParseFloat(matches[i], 64)
		if err != nil {
			continue
		}
		if value >= 100 || value <= -100 {
			return int(value), collapse(strings.Replace(text, matches[i], " ", 1))
		}
	}

	if sawMoney {
		for _, loc := range bareNumRe.FindAllStringIndex(text, -1) {
			// A number attached to an over/under token is the line, not odds
			if ouTailRe.MatchString(text[:loc[0]]) {
				continue
			}
			value, err := strconv.Atoi(text[loc[0]:loc[1]])
			if err != nil || value < 100 {
				continue
			}
			// Bare prices are quoted without the sign; favorite juice
			return -value, collapse(text[:loc[0]] + " " + text[loc[1]:])
		}
	}

	return p.defaultOdds, text
}

func (p *PickParser) tryTeamTotal(text string, ctx ParseContext, lineLeague models.League) (models.Pick, ParseContext, bool) {
	m := teamTotalRe.FindStringSubmatch(text)
	if m == nil {
		return models.Pick{}, ctx, false
	}

	team, ok := p.registry.ResolveAt(m[1], hintFor(lineLeague, ctx), ctx.Date)
	if !ok {
		return models.Pick{}, ctx, false
	}

	line, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return models.Pick{}, ctx, false
	}

	ctx.LastTeam = team
	ctx.League = team.League

	return models.Pick{
		Date:   ctx.Date,
		League: team.League,
		Team:   team.Name,
		Type:   models.PickTypeTeamTotal,
		Line:   line,
		Side:   parseDirection(m[2]),
	}, ctx, true
}

func (p *PickParser) tryGameTotal(text string, ctx ParseContext, lineLeague models.League) (models.Pick, ParseContext, bool) {
	m := gameTotalRe.FindStringSubmatch(text)
	if m == nil {
		return models.Pick{}, ctx, false
	}

	line, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return models.Pick{}, ctx, false
	}

	pick := models.Pick{
		Date:   ctx.Date,
		League: hintFor(lineLeague, ctx),
		Type:   models.PickTypeTotal,
		Line:   line,
		Side:   parseDirection(m[1]),
	}
	for _, team := range ctx.Matchup {
		pick.MatchupTeams = append(pick.MatchupTeams, team.Name)
		if pick.League == "" {
			pick.League = team.League
		}
	}
	// Without a matchup header the total still needs a handle on its game;
	// the last-seen team serves for lookup, not as a wager subject
	if len(pick.MatchupTeams) == 0 && ctx.LastTeam != nil {
		pick.Team = ctx.LastTeam.Name
		if pick.League == "" {
			pick.League = ctx.LastTeam.League
		}
	}

	return pick, ctx, true
}

func (p *PickParser) tryMoneyline(text string, ctx ParseContext, lineLeague models.League) (models.Pick, ParseContext, bool) {
	m := moneylineRe.FindStringSubmatch(text)
	if m == nil {
		return models.Pick{}, ctx, false
	}

	team := ctx.LastTeam
	if subject := strings.TrimSpace(m[1]); subject != "" {
		resolved, ok := p.registry.ResolveAt(subject, hintFor(lineLeague, ctx), ctx.Date)
		if !ok {
			return models.Pick{}, ctx, false
		}
		team = resolved
	}
	if team == nil {
		return models.Pick{}, ctx, false
	}

	ctx.LastTeam = team
	ctx.League = team.League

	return models.Pick{
		Date:   ctx.Date,
		League: team.League,
		Team:   team.Name,
		Type:   models.PickTypeMoneyline,
	}, ctx, true
}

func (p *PickParser) trySpread(text string, ctx ParseContext, lineLeague models.League) (models.Pick, ParseContext, bool) {
	m := spreadRe.FindStringSubmatch(text)
	if m == nil {
		return models.Pick{}, ctx, false
	}

	team, ok := p.registry.ResolveAt(m[1], hintFor(lineLeague, ctx), ctx.Date)
	if !ok {
		return models.Pick{}, ctx, false
	}

	line, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return models.Pick{}, ctx, false
	}

	ctx.LastTeam = team
	ctx.League = team.League

	return models.Pick{
		Date:   ctx.Date,
		League: team.League,
		Team:   team.Name,
		Type:   models.PickTypeSpread,
		Line:   line,
	}, ctx, true
}

// tryMatchupHeader recognizes "TeamA @ TeamB" lines that set the current
// matchup without placing a bet
func (p *PickParser) tryMatchupHeader(text string, ctx ParseContext, lineLeague models.League) (ParseContext, bool) {
	m := matchupRe.FindStringSubmatch(text)
	if m == nil {
		return ctx, false
	}

	hint := hintFor(lineLeague, ctx)
	away, okAway := p.registry.ResolveAt(m[1], hint, ctx.Date)
	home, okHome := p.registry.ResolveAt(m[2], hint, ctx.Date)
	if !okAway || !okHome {
		return ctx, false
	}

	ctx.Matchup = []*models.Team{away, home}
	ctx.LastTeam = nil
	if away.League == home.League {
		ctx.League = away.League
	}
	return ctx, true
}

// finish fills in the shared pick fields: raw text, segment, odds, and the
// risk/to-win pair derived from the american-odds payout formula. Explicitly
// quoted amounts always beat derived ones.
func (p *PickParser) finish(pick models.Pick, raw string, segment models.Segment, odds int, amounts []float64) []models.Pick {
	pick.RawText = strings.TrimSpace(raw)
	pick.Segment = segment
	pick.Odds = odds

	switch {
	case len(amounts) >= 2:
		pick.Risk = amounts[0]
		pick.ToWin = amounts[1]
		pick.ExplicitStake = true
	case len(amounts) == 1:
		pick.Risk = amounts[0]
		pick.ToWin = models.ToWinFromRisk(pick.Risk, odds)
	default:
		pick.Risk = p.baseStake
		pick.ToWin = models.ToWinFromRisk(pick.Risk, odds)
	}

	return []models.Pick{pick}
}

// hintFor picks the strongest league hint available for this line
func hintFor(lineLeague models.League, ctx ParseContext) models.League {
	if lineLeague != "" {
		return lineLeague
	}
	return ctx.League
}

func parseDirection(token string) models.OverUnder {
	if strings.HasPrefix(token, "o") {
		return models.Over
	}
	return models.Under
}

func parseSegmentToken(token string) (models.Segment, bool) {
	switch token {
	case "fh":
		return models.SegmentFirstHalf, true
	case "q1", "q2", "q3", "q4":
		return models.ParseSegment(string(token[1]) + "q")
	}
	return models.ParseSegment(token)
}

// cleanLine lowercases and strips the punctuation chat text wraps prices in
func cleanLine(raw string) string {
	text := strings.ToLower(raw)
	text = strings.NewReplacer("(", " ", ")", " ", "[", " ", "]", " ", ":", " ", ";", " ").Replace(text)
	return collapse(text)
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
