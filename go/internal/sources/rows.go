package sources

import (
	"regexp"
	"strings"

	"github.com/purplehaze/glorynews/go/clients"
	"github.com/purplehaze/glorynews/go/internal/models"
)

// Column names tried in order for each field. Single-letter names only match a
// header exactly; longer ones also match as a substring.
var (
	colTeam     = []string{"team", "club", "name"}
	colPosition = []string{"pos", "position", "rank", "#"}
	colPlayed   = []string{"played", "pld", "gp", "mp", "p"}
	colWon      = []string{"won", "wins", "w"}
	colDrawn    = []string{"drawn", "draws", "draw", "d"}
	colLost     = []string{"lost", "losses", "loss", "l"}
	colFor      = []string{"goals for", "gf", "f"}
	colAgainst  = []string{"goals against", "ga", "against", "a"}
	colDiff     = []string{"goal difference", "goal diff", "gd", "+/-", "diff"}
	colPoints   = []string{"points", "pts", "pt"}
	colForm     = []string{"form", "last 5", "last five", "recent"}
)

// FromRows maps scraped table rows onto standings entries. Rows without a team
// name are skipped; missing numeric fields stay zero for the validator to repair.
func (n *Normalizer) FromRows(rows []clients.TableRow) []models.StandingsEntry {
	entries := make([]models.StandingsEntry, 0, len(rows))
	for _, row := range rows {
		entry, ok := n.fromRow(row)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func (n *Normalizer) fromRow(row clients.TableRow) (models.StandingsEntry, bool) {
	teamCell, ok := row.Lookup(colTeam...)
	name := cleanTeamName(teamCell.Text)
	if !ok || name == "" {
		return models.StandingsEntry{}, false
	}

	entry := models.StandingsEntry{
		ID:             Slugify(name),
		Name:           name,
		Logo:           teamCell.Image,
		IsFollowedTeam: n.Team.Matches(name),
	}
	entry.Position, _ = intCell(row, colPosition)
	entry.Played, _ = intCell(row, colPlayed)
	entry.Won, _ = intCell(row, colWon)
	entry.Drawn, _ = intCell(row, colDrawn)
	entry.Lost, _ = intCell(row, colLost)
	entry.GoalsFor, _ = intCell(row, colFor)
	entry.GoalsAgainst, _ = intCell(row, colAgainst)
	entry.Points, _ = intCell(row, colPoints)
	if gd, ok := intCell(row, colDiff); ok {
		entry.GoalDifference = goalDifference(entry.GoalsFor, entry.GoalsAgainst, &gd)
	} else {
		entry.GoalDifference = entry.GoalsFor - entry.GoalsAgainst
	}

	formCell, hasForm := row.Lookup(colForm...)
	var form []models.FormResult
	if hasForm {
		form = FormFromCell(formCell)
	}
	if len(form) == 0 {
		form = formFromText(row.Text)
	}
	entry.Form = n.Form.Normalize(form)

	return entry, true
}

func intCell(row clients.TableRow, keys []string) (int, bool) {
	c, ok := row.Lookup(keys...)
	if !ok {
		return 0, false
	}
	return ParseInt(c.Text)
}

var leadingPosition = regexp.MustCompile(`^\d+\s*[.)]?\s+`)

// cleanTeamName strips rank prefixes and repeated short names that some
// providers render inside the team cell ("1 Wellington Phoenix WEL")
func cleanTeamName(s string) string {
	s = strings.TrimSpace(leadingPosition.ReplaceAllString(strings.TrimSpace(s), ""))
	fields := strings.Fields(s)
	if len(fields) > 1 {
		last := fields[len(fields)-1]
		if len(last) == 3 && last != "AFC" && last == strings.ToUpper(last) && strings.ToLower(last) != last {
			fields = fields[:len(fields)-1]
		}
	}
	return strings.Join(fields, " ")
}

var hintSplit = regexp.MustCompile(`[^a-z]+`)

// FormFromCell reads results from element class names and titles first, then from
// W/D/L letters in the cell text
func FormFromCell(c clients.Cell) []models.FormResult {
	var out []models.FormResult
	for _, hint := range c.Hints {
		if r, ok := formFromHint(hint); ok {
			out = append(out, r)
		}
	}
	if len(out) > 0 {
		return out
	}
	return formFromText(c.Text)
}

func formFromHint(hint string) (models.FormResult, bool) {
	tokens := hintSplit.Split(strings.ToLower(hint), -1)
	formContext := false
	for _, t := range tokens {
		switch t {
		case "form", "result", "outcome", "match":
			formContext = true
		}
	}
	for _, t := range tokens {
		switch t {
		case "win", "won", "victory":
			return models.FormWin, true
		case "draw", "drawn", "tie":
			return models.FormDraw, true
		case "loss", "lose", "lost", "defeat":
			return models.FormLoss, true
		case "w", "d", "l":
			if formContext {
				r, _ := models.ParseFormResult(t)
				return r, true
			}
		}
	}
	return "", false
}

var formToken = regexp.MustCompile(`^[WDL]+$`)

// formFromText picks upper-case W/D/L tokens out of free text ("W W D L W", "WWDLW")
func formFromText(text string) []models.FormResult {
	var out []models.FormResult
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '-' || r == '|' || r == '/'
	}) {
		if formToken.MatchString(f) {
			out = append(out, ParseFormString(f)...)
		}
	}
	return out
}
