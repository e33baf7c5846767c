package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/purplehaze/glorynews/go/clients"
	"github.com/purplehaze/glorynews/go/internal/models"
)

func TestTeamMatcher(t *testing.T) {
	m := NewTeamMatcher()
	assert.True(t, m.Matches("Perth Glory"))
	assert.True(t, m.Matches("PERTH"))
	assert.True(t, m.Matches("Glory FC"))
	assert.False(t, m.Matches("Sydney FC"))

	custom := NewTeamMatcher("Mariners")
	assert.True(t, custom.Matches("Central Coast Mariners"))
	assert.False(t, custom.Matches("Perth Glory"))
}

func TestFormFillerNormalize(t *testing.T) {
	f := NewFormFiller(7)

	got := f.Normalize([]models.FormResult{models.FormWin, models.FormDraw})
	assert.Len(t, got, models.FormLength)
	assert.Equal(t, models.FormWin, got[0])
	assert.Equal(t, models.FormDraw, got[1])
	for _, r := range got {
		assert.True(t, r.Valid())
	}

	long := ParseFormString("WWWWWLL")
	assert.Equal(t, ParseFormString("WWWWW"), f.Normalize(long))

	mixed := f.Normalize([]models.FormResult{"X", models.FormLoss})
	assert.True(t, mixed[0].Valid())
	assert.Equal(t, models.FormLoss, mixed[1])

	again := NewFormFiller(7).Normalize(nil)
	assert.Equal(t, NewFormFiller(7).Normalize(nil), again, "same seed pads identically")
}

func TestParseInt(t *testing.T) {
	cases := map[string]int{
		"12":     12,
		"+5":     5,
		"-3":     -3,
		"−7":     -7,
		"42 pts": 42,
		"1,024":  1024,
	}
	for in, want := range cases {
		got, ok := ParseInt(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseInt("n/a")
	assert.False(t, ok)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "western-sydney-wanderers", Slugify("Western Sydney Wanderers"))
	assert.Equal(t, "macarthur-fc", Slugify("  Macarthur FC! "))
}

func TestFormFromCell(t *testing.T) {
	hinted := clients.Cell{Hints: []string{
		"form-guide",
		"form__item form__item--win",
		"form__item form__item--draw",
		"result L",
		"icon",
	}}
	assert.Equal(t, []models.FormResult{models.FormWin, models.FormDraw, models.FormLoss}, FormFromCell(hinted))

	titled := clients.Cell{Hints: []string{"badge Won 2-1", "badge Lost 0-3"}}
	assert.Equal(t, []models.FormResult{models.FormWin, models.FormLoss}, FormFromCell(titled))

	text := clients.Cell{Text: "W D L W W"}
	assert.Equal(t, ParseFormString("WDLWW"), FormFromCell(text))

	compact := clients.Cell{Text: "WWDLW"}
	assert.Equal(t, ParseFormString("WWDLW"), FormFromCell(compact))
}

func TestFromRowsFallbackColumns(t *testing.T) {
	n := testNormalizer()
	row := clients.TableRow{
		Headers: []string{"#", "club", "pld", "w", "d", "l", "goals for", "goals against", "points", "last 5"},
		Cells: map[string]clients.Cell{
			"#":             {Text: "12"},
			"club":          {Text: "12 Perth Glory PER", Image: "/logos/perth.png"},
			"pld":           {Text: "27"},
			"w":             {Text: "5"},
			"d":             {Text: "7"},
			"l":             {Text: "15"},
			"goals for":     {Text: "44"},
			"goals against": {Text: "71"},
			"points":        {Text: "22"},
			"last 5":        {Hints: []string{"result loss", "result loss", "result win"}},
		},
	}

	entries := n.FromRows([]clients.TableRow{row, {Headers: []string{"club"}, Cells: map[string]clients.Cell{}}})
	assert.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "perth-glory", e.ID)
	assert.Equal(t, "Perth Glory", e.Name)
	assert.Equal(t, 12, e.Position)
	assert.Equal(t, 27, e.Played)
	assert.Equal(t, -27, e.GoalDifference)
	assert.Equal(t, 22, e.Points)
	assert.Equal(t, "/logos/perth.png", e.Logo)
	assert.True(t, e.IsFollowedTeam)
	assert.Equal(t, []models.FormResult{models.FormLoss, models.FormLoss, models.FormWin}, e.Form[:3])
}

func TestCleanTeamName(t *testing.T) {
	assert.Equal(t, "Wellington Phoenix", cleanTeamName("1 Wellington Phoenix WEL"))
	assert.Equal(t, "Sydney FC", cleanTeamName("4. Sydney FC"))
	assert.Equal(t, "Macarthur FC", cleanTeamName("Macarthur FC"))
}

func TestSeasonStartYear(t *testing.T) {
	assert.Equal(t, 2025, SeasonStartYear(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2024, SeasonStartYear(time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2024, SeasonStartYear(time.Date(2025, time.September, 30, 0, 0, 0, 0, time.UTC)))
}

func TestGoalDifference(t *testing.T) {
	provided := 5
	assert.Equal(t, 19, goalDifference(43, 24, &provided), "tallies win over a disagreeing column")
	assert.Equal(t, 5, goalDifference(0, 0, &provided))
	assert.Equal(t, -3, goalDifference(2, 5, nil))
	assert.Equal(t, 0, goalDifference(0, 0, nil))
}
