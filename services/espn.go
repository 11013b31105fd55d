package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"pick-ledger-go/logging"
	"pick-ledger-go/models"
)

// ESPNService fetches schedules and box scores from the ESPN site API, one
// (league, date) scoreboard at a time
type ESPNService struct {
	client  *http.Client
	baseURL string
	retries int
	logger  *logging.Logger
}

// NewESPNService creates a new ESPN service with the given request timeout
// and retry budget
func NewESPNService(timeout time.Duration, retries int) *ESPNService {
	return &ESPNService{
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://site.api.espn.com/apis/site/v2/sports",
		retries: retries,
		logger:  logging.WithPrefix("ESPN"),
	}
}

// leaguePaths maps our leagues to ESPN's sport/league URL path segments
var leaguePaths = map[models.League]string{
	models.LeagueNFL:   "football/nfl",
	models.LeagueNBA:   "basketball/nba",
	models.LeagueNCAAF: "football/college-football",
	models.LeagueNCAAM: "basketball/mens-college-basketball",
}

// halvesLeagues score by halves rather than quarters
var halvesLeagues = map[models.League]bool{
	models.LeagueNCAAM: true,
}

// ESPN API response structures
type ESPNResponse struct {
	Events []ESPNEvent `json:"events"`
}

type ESPNEvent struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Status       ESPNStatus        `json:"status"`
	Competitions []ESPNCompetition `json:"competitions"`
}

type ESPNStatus struct {
	Type ESPNStatusType `json:"type"`
}

type ESPNStatusType struct {
	Name      string `json:"name"`
	State     string `json:"state"`
	Completed bool   `json:"completed"`
}

type ESPNCompetition struct {
	Competitors []ESPNCompetitor `json:"competitors"`
}

type ESPNCompetitor struct {
	HomeAway   string          `json:"homeAway"`
	Score      string          `json:"score"`
	Team       ESPNTeam        `json:"team"`
	Linescores []ESPNLinescore `json:"linescores,omitempty"`
}

type ESPNTeam struct {
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"displayName"`
	Location     string `json:"location"`
	Name         string `json:"name"`
}

type ESPNLinescore struct {
	Value float64 `json:"value"`
}

// Scoreboard fetches all games for one league on one date. Providers are
// inconsistent about period granularity; whatever linescores they return are
// mapped to quarter or half labels per the league's scoring convention.
func (e *ESPNService) Scoreboard(ctx context.Context, league models.League, date time.Time) ([]*models.Game, error) {
	path, ok := leaguePaths[league]
	if !ok {
		return nil, fmt.Errorf("no ESPN path for league %s", league)
	}

	url := fmt.Sprintf("%s/%s/scoreboard?dates=%s&limit=500", e.baseURL, path, date.Format("20060102"))
	if league == models.LeagueNCAAM {
		// groups=50 covers all of division I rather than the top-25 slate
		url += "&groups=50"
	}

	body, err := e.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	var response ESPNResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse scoreboard response: %w", err)
	}

	var games []*models.Game
	for _, event := range response.Events {
		game, err := e.convertEvent(event, league, date)
		if err != nil {
			e.logger.Warnf("Skipping event %s: %v", event.ID, err)
			continue
		}
		games = append(games, game)
	}

	e.logger.Debugf("Fetched %d %s games for %s", len(games), league, date.Format("2006-01-02"))
	return games, nil
}

// fetch performs one GET with bounded retries and backoff
func (e *ESPNService) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= e.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			e.logger.Debugf("Retry %d for %s after %v", attempt, url, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("ESPN returned status %d", resp.StatusCode)
			continue
		}

		return body, nil
	}
	return nil, fmt.Errorf("fetch failed after %d attempts: %w", e.retries+1, lastErr)
}

// convertEvent maps one ESPN event to a Game
func (e *ESPNService) convertEvent(event ESPNEvent, league models.League, date time.Time) (*models.Game, error) {
	if len(event.Competitions) == 0 {
		return nil, fmt.Errorf("event has no competitions")
	}

	var home, away *ESPNCompetitor
	for i := range event.Competitions[0].Competitors {
		competitor := &event.Competitions[0].Competitors[i]
		switch competitor.HomeAway {
		case "home":
			home = competitor
		case "away":
			away = competitor
		}
	}
	if home == nil || away == nil {
		return nil, fmt.Errorf("event is missing a home or away competitor")
	}

	game := &models.Game{
		ID:     event.ID,
		League: league,
		Date:   date,
		Home:   home.Team.DisplayName,
		Away:   away.Team.DisplayName,
		State:  convertState(event.Status.Type),
	}

	if gameTime, err := parseESPNDate(event.Date); err == nil {
		game.Date = gameTime
	}

	if game.State == models.GameStateFinal || game.State == models.GameStateInPlay {
		game.HomeScore, _ = strconv.Atoi(home.Score)
		game.AwayScore, _ = strconv.Atoi(away.Score)
		game.Periods = convertLinescores(league, home.Linescores, away.Linescores)
	}

	return game, nil
}

// parseESPNDate tolerates ESPN's two date formats: RFC3339 and a shortened
// form without seconds
func parseESPNDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04Z", value)
}

func convertState(status ESPNStatusType) models.GameState {
	switch {
	case status.Completed:
		return models.GameStateFinal
	case status.State == "in":
		return models.GameStateInPlay
	case status.Name == "STATUS_POSTPONED" || status.Name == "STATUS_CANCELED":
		return models.GameStatePostponed
	default:
		return models.GameStateScheduled
	}
}

// convertLinescores maps ordered period values to labeled period scores.
// Quarter leagues get Q1..Q4, half leagues get H1/H2; anything beyond the
// regulation count is summed into a single OT entry.
func convertLinescores(league models.League, home, away []ESPNLinescore) map[string]models.ScorePair {
	count := len(home)
	if len(away) < count {
		count = len(away)
	}
	if count == 0 {
		return nil
	}

	var labels []string
	if halvesLeagues[league] {
		labels = []string{models.PeriodH1, models.PeriodH2}
	} else {
		labels = []string{models.PeriodQ1, models.PeriodQ2, models.PeriodQ3, models.PeriodQ4}
	}

	periods := make(map[string]models.ScorePair)
	for i := 0; i < count; i++ {
		pair := models.ScorePair{Home: int(home[i].Value), Away: int(away[i].Value)}
		if i < len(labels) {
			periods[labels[i]] = pair
			continue
		}
		// Overtime periods collapse into one OT entry
		ot := periods[models.PeriodOT]
		ot.Home += pair.Home
		ot.Away += pair.Away
		periods[models.PeriodOT] = ot
	}

	return periods
}
