package sources

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purplehaze/glorynews/go/internal/models"
)

type ladderRow struct {
	pos                                   int
	team                                  string
	played, won, drawn, lost, gf, ga, pts int
}

var communityLadder = []ladderRow{
	{1, "Wellington Phoenix", 27, 16, 5, 6, 43, 24, 53},
	{2, "Central Coast Mariners", 27, 17, 1, 9, 51, 36, 52},
	{3, "Melbourne Victory", 27, 10, 12, 5, 42, 31, 42},
	{4, "Sydney FC", 27, 12, 5, 10, 52, 35, 41},
	{5, "Macarthur FC", 27, 11, 6, 10, 41, 45, 39},
	{6, "Melbourne City", 27, 10, 8, 9, 53, 42, 38},
	{7, "Western Sydney Wanderers", 27, 11, 4, 12, 46, 48, 37},
	{8, "Brisbane Roar", 27, 9, 5, 13, 42, 51, 32},
	{9, "Newcastle Jets", 27, 7, 8, 12, 43, 48, 29},
	{10, "Adelaide United", 27, 8, 5, 14, 47, 55, 29},
	{11, "Western United", 27, 7, 6, 14, 34, 52, 27},
	{12, "Perth Glory", 27, 5, 7, 15, 44, 71, 22},
}

func testNormalizer() *Normalizer {
	return &Normalizer{
		Team:  NewTeamMatcher(),
		Form:  NewFormFiller(42),
		Clock: clockwork.NewFakeClock(),
	}
}

func renderPipeTable(columns []string, rows []ladderRow) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	b.WriteString(strings.Repeat("|---", len(columns)) + "|\n")
	for _, r := range rows {
		values := map[string]string{
			"Pos":  fmt.Sprint(r.pos),
			"Team": r.team,
			"P":    fmt.Sprint(r.played),
			"W":    fmt.Sprint(r.won),
			"D":    fmt.Sprint(r.drawn),
			"L":    fmt.Sprint(r.lost),
			"GF":   fmt.Sprint(r.gf),
			"GA":   fmt.Sprint(r.ga),
			"GD":   fmt.Sprint(r.gf - r.ga),
			"Pts":  fmt.Sprint(r.pts),
		}
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = values[c]
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

func assertLadder(t *testing.T, entries []models.StandingsEntry) {
	t.Helper()
	require.Len(t, entries, len(communityLadder))
	for i, want := range communityLadder {
		got := entries[i]
		assert.Equal(t, want.team, got.Name)
		assert.Equal(t, want.pos, got.Position)
		assert.Equal(t, want.played, got.Played)
		assert.Equal(t, want.won, got.Won)
		assert.Equal(t, want.drawn, got.Drawn)
		assert.Equal(t, want.lost, got.Lost)
		assert.Equal(t, want.gf, got.GoalsFor)
		assert.Equal(t, want.ga, got.GoalsAgainst)
		assert.Equal(t, want.gf-want.ga, got.GoalDifference)
		assert.Equal(t, want.pts, got.Points)
		assert.Len(t, got.Form, models.FormLength)
		assert.Equal(t, want.team == "Perth Glory", got.IsFollowedTeam)
	}
}

func TestParsePipeTable(t *testing.T) {
	n := testNormalizer()

	t.Run("standard column order", func(t *testing.T) {
		text := "Weekly ladder below\n\n" +
			renderPipeTable([]string{"Pos", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts"}, communityLadder) +
			"\nThoughts?"
		assertLadder(t, n.ParsePipeTable(text))
	})

	t.Run("reordered columns parse identically", func(t *testing.T) {
		text := renderPipeTable([]string{"Team", "Pts", "GD", "GA", "GF", "L", "D", "W", "P", "Pos"}, communityLadder)
		assertLadder(t, n.ParsePipeTable(text))
	})

	t.Run("markdown in team cells is stripped", func(t *testing.T) {
		rows := append([]ladderRow(nil), communityLadder...)
		text := renderPipeTable([]string{"Pos", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts"}, rows)
		text = strings.Replace(text, "Perth Glory", "**[Perth Glory](/r/PerthGlory)**", 1)
		entries := n.ParsePipeTable(text)
		require.Len(t, entries, 12)
		assert.Equal(t, "Perth Glory", entries[11].Name)
		assert.True(t, entries[11].IsFollowedTeam)
	})

	t.Run("short table is skipped for a later complete one", func(t *testing.T) {
		columns := []string{"Pos", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts"}
		text := renderPipeTable(columns, communityLadder[:4]) + "\n" + renderPipeTable(columns, communityLadder)
		assertLadder(t, n.ParsePipeTable(text))
	})

	t.Run("fewer than ten rows yields nothing", func(t *testing.T) {
		text := renderPipeTable([]string{"Pos", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts"}, communityLadder[:9])
		assert.Empty(t, n.ParsePipeTable(text))
	})

	t.Run("tables without team column are ignored", func(t *testing.T) {
		text := "| Player | Goals |\n|---|---|\n| Someone | 12 |\n"
		assert.Empty(t, n.ParsePipeTable(text))
	})
}
