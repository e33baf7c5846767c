package models

import (
	"strings"
	"time"
)

// FormResult is a single match outcome in a team's recent form
type FormResult string

const (
	FormWin  FormResult = "W"
	FormDraw FormResult = "D"
	FormLoss FormResult = "L"
)

// FormLength is the number of recent results every entry carries
const FormLength = 5

// Valid reports whether r is one of W, D or L
func (r FormResult) Valid() bool {
	switch r {
	case FormWin, FormDraw, FormLoss:
		return true
	}
	return false
}

// ParseFormResult maps a provider token ("W", "win", "Draw", "l") onto a FormResult
func ParseFormResult(token string) (FormResult, bool) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if t == "" {
		return "", false
	}
	switch t[0] {
	case 'W':
		return FormWin, true
	case 'D':
		return FormDraw, true
	case 'L':
		return FormLoss, true
	}
	return "", false
}

// StandingsEntry represents one team's row in the ladder
type StandingsEntry struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Position       int          `json:"position"`
	Played         int          `json:"played"`
	Won            int          `json:"won"`
	Drawn          int          `json:"drawn"`
	Lost           int          `json:"lost"`
	GoalsFor       int          `json:"goals_for"`
	GoalsAgainst   int          `json:"goals_against"`
	GoalDifference int          `json:"goal_difference"`
	Points         int          `json:"points"`
	Form           []FormResult `json:"form"`
	Logo           string       `json:"logo,omitempty"`
	IsFollowedTeam bool         `json:"is_followed_team"`
}

// HasGoals reports whether both goal tallies carry real values
func (e StandingsEntry) HasGoals() bool {
	return e.GoalsFor > 0 || e.GoalsAgainst > 0
}

// Provenance describes where a table came from
type Provenance struct {
	Name   string `json:"name"`
	URL    string `json:"url,omitempty"`
	Author string `json:"author,omitempty"`
}

// StandingsTable is the full ladder plus its metadata
type StandingsTable struct {
	LeagueName  string           `json:"league_name"`
	Season      string           `json:"season"`
	LastUpdated time.Time        `json:"last_updated"`
	Source      Provenance       `json:"source"`
	Entries     []StandingsEntry `json:"entries"`
}

// FollowedTeam returns the flagged entry, if any
func (t *StandingsTable) FollowedTeam() (StandingsEntry, bool) {
	if t == nil {
		return StandingsEntry{}, false
	}
	for _, e := range t.Entries {
		if e.IsFollowedTeam {
			return e, true
		}
	}
	return StandingsEntry{}, false
}

// IsDegraded reports whether the table was served from a fallback path
func (t *StandingsTable) IsDegraded() bool {
	if t == nil {
		return true
	}
	name := strings.ToLower(t.Source.Name)
	return strings.Contains(name, "fallback") || strings.Contains(name, "backup")
}

// Clone returns a deep copy so callers can repair a table without touching the original
func (t *StandingsTable) Clone() *StandingsTable {
	if t == nil {
		return nil
	}
	out := *t
	out.Entries = make([]StandingsEntry, len(t.Entries))
	for i, e := range t.Entries {
		e.Form = append([]FormResult(nil), e.Form...)
		out.Entries[i] = e
	}
	return &out
}
