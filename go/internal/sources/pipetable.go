package sources

import (
	"regexp"
	"strings"

	"github.com/purplehaze/glorynews/go/clients"
	"github.com/purplehaze/glorynews/go/internal/models"
)

// MinCommunityRows is how many valid rows a pasted table needs before it is trusted
const MinCommunityRows = 10

var (
	separatorLine = regexp.MustCompile(`^\|?\s*:?-{2,}:?\s*(\|\s*:?-{2,}:?\s*)*\|?$`)
	markdownLink  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	markdownStyle = strings.NewReplacer("**", "", "__", "", "*", "", "~~", "", "`", "")
)

// ParsePipeTable finds a pipe-delimited ladder in free text. Every header line is
// tried in turn; the first one followed by at least MinCommunityRows valid rows
// wins. Column order is discovered from the header, so tables with reordered or
// extra columns parse the same way.
func (n *Normalizer) ParsePipeTable(text string) []models.StandingsEntry {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	for i := 0; i < len(lines); i++ {
		headers, ok := pipeHeader(lines[i])
		if !ok {
			continue
		}

		rows, next := pipeRows(lines, i+1, headers)
		entries := n.validCommunityRows(rows)
		if len(entries) >= MinCommunityRows {
			return entries
		}
		i = next - 1
	}
	return nil
}

func pipeHeader(line string) ([]string, bool) {
	if !strings.Contains(line, "|") || separatorLine.MatchString(strings.TrimSpace(line)) {
		return nil, false
	}
	cells := splitPipe(line)
	headers := make([]string, len(cells))
	for i, c := range cells {
		headers[i] = strings.ToLower(c)
	}

	row := clients.TableRow{Headers: headers, Cells: make(map[string]clients.Cell)}
	for _, h := range headers {
		row.Cells[h] = clients.Cell{}
	}
	_, hasTeam := row.Lookup(colTeam...)
	_, hasPoints := row.Lookup(colPoints...)
	_, hasPlayed := row.Lookup(colPlayed...)
	return headers, hasTeam && (hasPoints || hasPlayed)
}

// pipeRows reads data lines after a header until a blank or non-table line.
// It returns the rows and the index of the first line it did not consume.
func pipeRows(lines []string, start int, headers []string) ([]clients.TableRow, int) {
	i := start
	if i < len(lines) && separatorLine.MatchString(strings.TrimSpace(lines[i])) {
		i++
	}

	var rows []clients.TableRow
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || !strings.Contains(line, "|") {
			break
		}
		cells := splitPipe(line)
		row := clients.TableRow{
			Headers: headers,
			Cells:   make(map[string]clients.Cell, len(headers)),
			Text:    strings.Join(cells, " "),
		}
		for j, h := range headers {
			if j >= len(cells) || h == "" {
				continue
			}
			if _, dup := row.Cells[h]; dup {
				continue
			}
			row.Cells[h] = clients.Cell{Text: cells[j]}
		}
		rows = append(rows, row)
	}
	return rows, i
}

func (n *Normalizer) validCommunityRows(rows []clients.TableRow) []models.StandingsEntry {
	var entries []models.StandingsEntry
	for _, row := range rows {
		if _, ok := intCell(row, colPoints); !ok {
			if _, ok := intCell(row, colPlayed); !ok {
				continue
			}
		}
		entry, ok := n.fromRow(row)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func splitPipe(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		p = markdownLink.ReplaceAllString(p, "$1")
		parts[i] = strings.TrimSpace(markdownStyle.Replace(p))
	}
	return parts
}
