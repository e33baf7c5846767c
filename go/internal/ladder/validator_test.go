package ladder

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purplehaze/glorynews/go/clients"
	"github.com/purplehaze/glorynews/go/internal/models"
	"github.com/purplehaze/glorynews/go/internal/sources"
)

var testNow = time.Date(2025, time.November, 2, 9, 0, 0, 0, time.UTC)

func testValidator() *Validator {
	return NewValidator(sources.NewTeamMatcher(), sources.NewFormFiller(1), clockwork.NewFakeClockAt(testNow))
}

// wellFormed returns a complete table that needs no repair
func wellFormed() *models.StandingsTable {
	t := BackupTable(testNow)
	t.Source = models.Provenance{Name: "aleagues.com.au", URL: "https://www.aleagues.com.au/ladders"}
	return t
}

func TestSeason(t *testing.T) {
	cases := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2099, time.November, 1, 0, 0, 0, 0, time.UTC), "2099-00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Season(tc.now), tc.now.String())
	}
}

func TestBackupTable(t *testing.T) {
	table := BackupTable(testNow)
	require.Len(t, table.Entries, 12)
	assert.Equal(t, FallbackSourceName, table.Source.Name)
	assert.True(t, table.IsDegraded())
	assert.Equal(t, "2025-26", table.Season)

	followed, ok := table.FollowedTeam()
	require.True(t, ok)
	assert.Equal(t, "Perth Glory", followed.Name)
	assert.Equal(t, 12, followed.Position)

	for _, e := range table.Entries {
		assert.Equal(t, 27, e.Played, e.Name)
		assert.Equal(t, 3*e.Won+e.Drawn, e.Points, e.Name)
		assert.Len(t, e.Form, models.FormLength)
	}
	require.NoError(t, testValidator().Check(table))
}

func TestCheck(t *testing.T) {
	v := testValidator()

	assert.True(t, clients.ValidationError.Has(v.Check(nil)))
	assert.Error(t, v.Check(&models.StandingsTable{}))

	short := wellFormed()
	short.Entries = short.Entries[:9]
	assert.ErrorContains(t, v.Check(short), "9 entries")

	missingName := wellFormed()
	missingName.Entries[3].Name = ""
	assert.ErrorContains(t, v.Check(missingName), "missing id or name")

	negative := wellFormed()
	negative.Entries[0].Points = -1
	assert.ErrorContains(t, v.Check(negative), "negative")

	noFollowed := wellFormed()
	noFollowed.Entries = noFollowed.Entries[:11]
	assert.ErrorContains(t, v.Check(noFollowed), "followed team")

	aliasOnly := wellFormed()
	aliasOnly.Entries[11].IsFollowedTeam = false
	assert.NoError(t, v.Check(aliasOnly), "alias detection counts as followed")
}

func TestValidateLeavesWellFormedTablesUnchanged(t *testing.T) {
	in := wellFormed()
	want := in.Clone()

	out := testValidator().Validate(in)
	assert.Equal(t, want, out)
	assert.Equal(t, want, in, "input is not modified")
}

func TestValidateFallsBackOnFailedCheck(t *testing.T) {
	in := wellFormed()
	in.Entries = in.Entries[:5]

	out := testValidator().Validate(in)
	assert.Equal(t, FallbackSourceName, out.Source.Name)
	assert.Len(t, out.Entries, 12)
}

func TestValidateRepairs(t *testing.T) {
	in := wellFormed()
	in.LeagueName = ""
	in.Season = ""
	in.LastUpdated = time.Time{}
	in.Source = models.Provenance{}

	// scramble positions and drop derived fields
	in.Entries[0].Position = 0
	in.Entries[0].Logo = ""
	in.Entries[0].Form = []models.FormResult{"W", "?"}
	in.Entries[1].GoalDifference = 0
	in.Entries[2], in.Entries[5] = in.Entries[5], in.Entries[2]
	in.Entries[4].IsFollowedTeam = true // second flag; first flagged entry wins
	in.Entries[11].IsFollowedTeam = false

	out := testValidator().Validate(in)

	assert.Equal(t, DefaultLeagueName, out.LeagueName)
	assert.Equal(t, "2025-26", out.Season)
	assert.Equal(t, testNow, out.LastUpdated)
	assert.Equal(t, "Unknown", out.Source.Name)

	for i, e := range out.Entries {
		assert.Equal(t, i+1, e.Position, "sorted by position")
		assert.Len(t, e.Form, models.FormLength)
		for _, r := range e.Form {
			assert.True(t, r.Valid())
		}
		assert.NotEmpty(t, e.Logo)
	}

	first := out.Entries[0]
	assert.Equal(t, "Wellington Phoenix", first.Name)
	assert.Equal(t, "/images/teams/wellington-phoenix.png", first.Logo)
	assert.Equal(t, models.FormWin, first.Form[0])

	assert.Equal(t, 15, out.Entries[1].GoalDifference)

	followed := 0
	for _, e := range out.Entries {
		if e.IsFollowedTeam {
			followed++
			assert.Equal(t, "Macarthur FC", e.Name)
		}
	}
	assert.Equal(t, 1, followed)
}

func TestValidateProperties(t *testing.T) {
	v := testValidator()
	rng := rand.New(rand.NewPCG(3, 4))
	names := []string{"Perth Glory", "Sydney FC", "Adelaide United", "Brisbane Roar", "Melbourne City"}

	for size := 0; size <= 50; size++ {
		in := &models.StandingsTable{Source: models.Provenance{Name: "test"}}
		for i := 0; i < size; i++ {
			name := fmt.Sprintf("%s %d", names[rng.IntN(len(names))], i)
			e := models.StandingsEntry{
				ID:             sources.Slugify(name),
				Name:           name,
				Position:       rng.IntN(size + 1),
				Played:         rng.IntN(30),
				Points:         rng.IntN(60),
				GoalsFor:       rng.IntN(50),
				GoalsAgainst:   rng.IntN(50),
				Form:           sources.ParseFormString("WDLXWDL"[:rng.IntN(7)]),
				IsFollowedTeam: rng.IntN(10) == 0,
			}
			in.Entries = append(in.Entries, e)
		}

		out := v.Validate(in)
		require.NotNil(t, out, "size %d", size)
		assert.GreaterOrEqual(t, len(out.Entries), MinEntries, "size %d", size)
		assert.NoError(t, v.Check(out), "size %d", size)

		followed := 0
		for i, e := range out.Entries {
			assert.Len(t, e.Form, models.FormLength)
			if e.IsFollowedTeam {
				followed++
			}
			if i > 0 {
				assert.Less(t, out.Entries[i-1].Position, e.Position)
			}
			if e.HasGoals() {
				assert.Equal(t, e.GoalsFor-e.GoalsAgainst, e.GoalDifference)
			}
		}
		assert.Equal(t, 1, followed, "size %d", size)

		again := v.Validate(out)
		assert.Equal(t, out, again, "validation is idempotent (size %d)", size)
	}
}

func TestValidateRecomputesInconsistentGoalDifference(t *testing.T) {
	in := wellFormed()
	in.Entries[0].GoalsFor = 43
	in.Entries[0].GoalsAgainst = 24
	in.Entries[0].GoalDifference = 5

	out := testValidator().Validate(in)

	assert.Equal(t, "Wellington Phoenix", out.Entries[0].Name)
	assert.Equal(t, 19, out.Entries[0].GoalDifference)
	assert.Equal(t, 5, in.Entries[0].GoalDifference, "input untouched")
}

func TestValidateKeepsGoalDifferenceWithoutTallies(t *testing.T) {
	in := wellFormed()
	in.Entries[3].GoalsFor = 0
	in.Entries[3].GoalsAgainst = 0
	in.Entries[3].GoalDifference = 7

	out := testValidator().Validate(in)
	assert.Equal(t, 7, out.Entries[3].GoalDifference)
}

func TestValidateRenumbersDuplicatePositions(t *testing.T) {
	in := wellFormed()
	// a rank-less entry at the top takes position 1 from its index, same as Wellington
	in.Entries[2].Position = 0
	in.Entries[2], in.Entries[0] = in.Entries[0], in.Entries[2]

	out := testValidator().Validate(in)

	require.Len(t, out.Entries, 12)
	for i, e := range out.Entries {
		assert.Equal(t, i+1, e.Position, e.Name)
	}
	assert.Equal(t, "Melbourne Victory", out.Entries[0].Name)
}
