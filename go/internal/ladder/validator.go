package ladder

import (
	"fmt"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/purplehaze/glorynews/go/clients"
	"github.com/purplehaze/glorynews/go/internal/models"
	"github.com/purplehaze/glorynews/go/internal/sources"
)

// MinEntries is the smallest table accepted from any source
const MinEntries = 10

// LogoPath is where the site serves a team's badge
func LogoPath(slug string) string {
	return "/images/teams/" + slug + ".png"
}

// Season labels the season in progress at now. Seasons start in October, so
// October 2025 and March 2026 are both "2025-26".
func Season(now time.Time) string {
	start := sources.SeasonStartYear(now)
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// Validator checks tables from sources and the cache and repairs what it can
type Validator struct {
	team  *sources.TeamMatcher
	form  *sources.FormFiller
	clock clockwork.Clock
}

func NewValidator(team *sources.TeamMatcher, form *sources.FormFiller, clock clockwork.Clock) *Validator {
	return &Validator{team: team, form: form, clock: clock}
}

// Check runs the hard checks only. A non-nil error means the table must not be used.
func (v *Validator) Check(table *models.StandingsTable) error {
	if table == nil || table.Entries == nil {
		return clients.ValidationError.New("table has no entries")
	}
	if len(table.Entries) < MinEntries {
		return clients.ValidationError.New("table has %d entries, need %d", len(table.Entries), MinEntries)
	}

	followed := false
	for i, e := range table.Entries {
		if e.ID == "" || e.Name == "" {
			return clients.ValidationError.New("entry %d is missing id or name", i)
		}
		if e.Position < 0 || e.Played < 0 || e.Won < 0 || e.Drawn < 0 || e.Lost < 0 || e.Points < 0 {
			return clients.ValidationError.New("entry %q has negative counts", e.Name)
		}
		if e.IsFollowedTeam || v.team.Matches(e.Name) {
			followed = true
		}
	}
	if !followed {
		return clients.ValidationError.New("followed team not found")
	}
	return nil
}

// Validate never fails: a table that fails Check is replaced by the backup table,
// otherwise a repaired copy is returned. The input is not modified.
func (v *Validator) Validate(table *models.StandingsTable) *models.StandingsTable {
	now := v.clock.Now()
	if err := v.Check(table); err != nil {
		log.Warn().Err(err).Msg("standings failed validation, serving backup")
		return BackupTable(now)
	}

	out := table.Clone()
	v.repairEntries(out)

	if out.LeagueName == "" {
		out.LeagueName = DefaultLeagueName
	}
	if out.Season == "" {
		out.Season = Season(now)
	}
	if out.LastUpdated.IsZero() {
		out.LastUpdated = now
	}
	if out.Source.Name == "" {
		out.Source.Name = "Unknown"
	}
	return out
}

func (v *Validator) repairEntries(t *models.StandingsTable) {
	followed := v.followedIndex(t.Entries)
	for i := range t.Entries {
		e := &t.Entries[i]

		e.Form = v.form.Normalize(e.Form)
		if e.Logo == "" {
			e.Logo = LogoPath(sources.Slugify(e.Name))
		}
		if e.HasGoals() {
			e.GoalDifference = e.GoalsFor - e.GoalsAgainst
		}
		if e.Position == 0 {
			e.Position = i + 1
		}
		e.IsFollowedTeam = i == followed
	}

	sort.SliceStable(t.Entries, func(i, j int) bool {
		return t.Entries[i].Position < t.Entries[j].Position
	})
	if hasDuplicatePositions(t.Entries) {
		for i := range t.Entries {
			t.Entries[i].Position = i + 1
		}
	}
}

// hasDuplicatePositions expects entries sorted by position
func hasDuplicatePositions(entries []models.StandingsEntry) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i].Position == entries[i-1].Position {
			return true
		}
	}
	return false
}

// followedIndex prefers an entry a source flagged over one matched by alias
func (v *Validator) followedIndex(entries []models.StandingsEntry) int {
	for i, e := range entries {
		if e.IsFollowedTeam {
			return i
		}
	}
	for i, e := range entries {
		if v.team.Matches(e.Name) {
			return i
		}
	}
	return -1
}
