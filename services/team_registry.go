package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pick-ledger-go/logging"
	"pick-ledger-go/models"

	"gopkg.in/yaml.v3"
)

// TeamRegistry resolves free-text team tokens to canonical team identities.
// Loaded once at startup from per-league reference files; immutable and safe
// for concurrent lookups thereafter.
type TeamRegistry struct {
	// exact maps normalized alias -> entry, per league. Within one league an
	// alias maps to at most one team; collisions across leagues are resolved
	// by the league hint at lookup time.
	exact map[models.League]map[string]aliasEntry
	teams []*models.Team
}

// aliasEntry binds one normalized alias to its team. Aliases sourced from a
// historical franchise name keep the name's effective range so dated lookups
// can reject them outside it.
type aliasEntry struct {
	team   *models.Team
	former *models.FormerName
}

// active reports whether the alias applies on the given date. A zero date
// means the caller has no date and every alias applies.
func (e aliasEntry) active(on time.Time) bool {
	return e.former == nil || on.IsZero() || e.former.Active(on)
}

// teamFile is the on-disk shape of one league's reference data
type teamFile struct {
	League string        `yaml:"league"`
	Teams  []models.Team `yaml:"teams"`
}

// NewTeamRegistry builds a registry from teams, validating that no alias
// maps to two different teams within the same league.
func NewTeamRegistry(teams []*models.Team) (*TeamRegistry, error) {
	r := &TeamRegistry{
		exact: make(map[models.League]map[string]aliasEntry),
		teams: teams,
	}

	for _, team := range teams {
		names := append([]string{team.Name}, team.Aliases...)
		if team.City != "" {
			names = append(names, team.City)
		}
		if team.Abbr != "" {
			names = append(names, team.Abbr)
		}
		for _, name := range names {
			if err := r.addAlias(team, name, nil); err != nil {
				return nil, err
			}
		}
		for i := range team.FormerNames {
			fn := &team.FormerNames[i]
			if err := r.addAlias(team, fn.Name, fn); err != nil {
				return nil, err
			}
		}
	}

	return r, nil
}

func (r *TeamRegistry) addAlias(team *models.Team, name string, former *models.FormerName) error {
	alias := NormalizeTeamToken(name)
	if alias == "" {
		return nil
	}

	byAlias, ok := r.exact[team.League]
	if !ok {
		byAlias = make(map[string]aliasEntry)
		r.exact[team.League] = byAlias
	}

	if existing, dup := byAlias[alias]; dup {
		if existing.team != team {
			return fmt.Errorf("alias %q maps to both %q and %q in %s",
				name, existing.team.Name, team.Name, team.League)
		}
		// A current alias beats the same team's dated historical one
		if existing.former == nil {
			return nil
		}
	}
	byAlias[alias] = aliasEntry{team: team, former: former}
	return nil
}

// LoadTeamRegistry reads every per-league YAML file in dir and builds the
// registry from their combined contents.
func LoadTeamRegistry(dir string) (*TeamRegistry, error) {
	logger := logging.WithPrefix("TeamRegistry")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read teams dir %s: %w", dir, err)
	}

	var teams []*models.Team
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var file teamFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		league, ok := models.ParseLeague(file.League)
		if !ok {
			return nil, fmt.Errorf("%s: unknown league %q", path, file.League)
		}

		for i := range file.Teams {
			team := file.Teams[i]
			team.League = league
			teams = append(teams, &team)
		}
		logger.Debugf("Loaded %d %s teams from %s", len(file.Teams), league, entry.Name())
	}

	if len(teams) == 0 {
		return nil, fmt.Errorf("no team reference data found in %s", dir)
	}

	logger.Infof("Loaded %d teams across %d leagues", len(teams), len(models.AllLeagues))
	return NewTeamRegistry(teams)
}

// Teams returns every registered team
func (r *TeamRegistry) Teams() []*models.Team {
	return r.teams
}

// Resolve maps a free-text token to a canonical team with no date context,
// so historical names match regardless of their effective range.
func (r *TeamRegistry) Resolve(text string, hint models.League) (*models.Team, bool) {
	return r.ResolveAt(text, hint, time.Time{})
}

// ResolveAt maps a free-text token to a canonical team. The league hint
// scopes the search when given; the date gates historical names to their
// effective range. Matching order: exact alias in the hinted league, exact
// alias across all leagues (unique match only), containment in the hinted
// league, containment across all leagues. Ambiguity returns no match rather
// than a guess.
func (r *TeamRegistry) ResolveAt(text string, hint models.League, on time.Time) (*models.Team, bool) {
	token := NormalizeTeamToken(text)
	if token == "" {
		return nil, false
	}

	if hint != "" {
		if entry, ok := r.exact[hint][token]; ok && entry.active(on) {
			return entry.team, true
		}
	}

	if team, ok := r.exactAnyLeague(token, on); ok {
		return team, true
	}

	// Containment needs a few characters to be meaningful
	if len(token) < 3 {
		return nil, false
	}

	if hint != "" {
		if team, ok := r.containsUnique(token, []models.League{hint}, on); ok {
			return team, true
		}
	}

	return r.containsUnique(token, models.AllLeagues, on)
}

// exactAnyLeague returns the exact alias match when exactly one league
// contains the token
func (r *TeamRegistry) exactAnyLeague(token string, on time.Time) (*models.Team, bool) {
	var found *models.Team
	for _, league := range models.AllLeagues {
		if entry, ok := r.exact[league][token]; ok && entry.active(on) {
			if found != nil && found != entry.team {
				return nil, false
			}
			found = entry.team
		}
	}
	return found, found != nil
}

// containsUnique performs bidirectional containment matching across the
// given leagues, succeeding only when all matching aliases belong to one
// team. Containment is word-aligned: "hawks" must not fire inside
// "seahawks".
func (r *TeamRegistry) containsUnique(token string, leagues []models.League, on time.Time) (*models.Team, bool) {
	var found *models.Team
	for _, league := range leagues {
		for alias, entry := range r.exact[league] {
			if len(alias) < 3 || !entry.active(on) {
				continue
			}
			if !containsWords(alias, token) && !containsWords(token, alias) {
				continue
			}
			if found != nil && found != entry.team {
				return nil, false
			}
			found = entry.team
		}
	}
	return found, found != nil
}

// containsWords reports whether needle occurs in haystack aligned on word
// boundaries. Both strings are already normalized, so the only separator
// is a single space.
func containsWords(haystack, needle string) bool {
	for from := 0; ; {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		if (start == 0 || haystack[start-1] == ' ') &&
			(end == len(haystack) || haystack[end] == ' ') {
			return true
		}
		from = start + 1
	}
}

// NormalizeTeamToken lowercases, strips periods and apostrophes, and
// collapses whitespace so "St. Mary's" and "st marys" compare equal.
func NormalizeTeamToken(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch r {
		case '.', '\'', '’':
			// dropped entirely so abbreviation dots don't block matching
		case ',', '-', '_', '/':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
