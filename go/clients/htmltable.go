package clients

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Cell is one table cell as scraped from a provider page
type Cell struct {
	Text  string   `json:"text"`
	Hints []string `json:"hints,omitempty"` // class and title of each descendant element, one entry per element in document order
	Href  string   `json:"href,omitempty"`
	Image string   `json:"image,omitempty"`
}

// TableRow is a scraped row keyed by lower-cased column header
type TableRow struct {
	Headers []string        `json:"headers"`
	Cells   map[string]Cell `json:"cells"`
	Text    string          `json:"text"` // full row text, used as a last resort for form letters
}

// Lookup returns the first cell whose header contains one of keys (case-insensitive).
// Keys are tried in order, so callers list their preferred column names first.
// Single-letter keys only match exactly ("w" must not match "draw").
func (r TableRow) Lookup(keys ...string) (Cell, bool) {
	for _, key := range keys {
		key = strings.ToLower(key)
		if c, ok := r.Cells[key]; ok {
			return c, true
		}
		if len(key) < 2 {
			continue
		}
		for _, h := range r.Headers {
			if h != "" && strings.Contains(h, key) {
				return r.Cells[h], true
			}
		}
	}
	return Cell{}, false
}

// NewDocument parses raw HTML
func NewDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, ParseError.New("failed to parse html: %v", err)
	}
	return doc, nil
}

// ParseTable reads a <table> element into rows keyed by header text. Header text
// falls back to the abbr/title/data-header attributes when a th is an icon only.
func ParseTable(table *goquery.Selection) []TableRow {
	headers := tableHeaders(table)
	if len(headers) == 0 {
		return nil
	}

	var rows []TableRow
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.ChildrenFiltered("td")
		if tds.Length() == 0 {
			return
		}
		rows = append(rows, readRow(tds, headers, tr))
	})
	return rows
}

// ParseRows reads a row selection against an explicit header list. Some providers
// render the header separately from the body, so the caller supplies it.
func ParseRows(trs *goquery.Selection, headers []string) []TableRow {
	var rows []TableRow
	trs.Each(func(_ int, tr *goquery.Selection) {
		tds := tr.ChildrenFiltered("td")
		if tds.Length() == 0 {
			return
		}
		rows = append(rows, readRow(tds, headers, tr))
	})
	return rows
}

// HeaderText returns normalised header names for the given th selection
func HeaderText(ths *goquery.Selection) []string {
	var headers []string
	ths.Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, headerName(th))
	})
	return headers
}

func tableHeaders(table *goquery.Selection) []string {
	ths := table.Find("thead th")
	if ths.Length() == 0 {
		ths = table.Find("tr").First().ChildrenFiltered("th")
	}
	return HeaderText(ths)
}

func headerName(th *goquery.Selection) string {
	name := normalise(th.Text())
	if name != "" {
		return name
	}
	for _, attr := range []string{"abbr", "title", "data-header", "aria-label"} {
		if v, ok := th.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return normalise(v)
		}
	}
	return ""
}

func readRow(tds *goquery.Selection, headers []string, tr *goquery.Selection) TableRow {
	row := TableRow{
		Headers: headers,
		Cells:   make(map[string]Cell, len(headers)),
		Text:    strings.Join(strings.Fields(tr.Text()), " "),
	}
	tds.Each(func(i int, td *goquery.Selection) {
		if i >= len(headers) {
			return
		}
		key := headers[i]
		if key == "" {
			return
		}
		if _, dup := row.Cells[key]; dup {
			return
		}
		row.Cells[key] = readCell(td)
	})
	return row
}

func readCell(td *goquery.Selection) Cell {
	cell := Cell{Text: strings.Join(strings.Fields(td.Text()), " ")}
	td.Find("*").Each(func(_ int, el *goquery.Selection) {
		class, _ := el.Attr("class")
		title, _ := el.Attr("title")
		if hint := strings.TrimSpace(class + " " + title); hint != "" {
			cell.Hints = append(cell.Hints, hint)
		}
	})
	if href, ok := td.Find("a").First().Attr("href"); ok {
		cell.Href = href
	}
	img := td.Find("img").First()
	if src, ok := img.Attr("src"); ok && src != "" {
		cell.Image = src
	} else if src, ok := img.Attr("data-src"); ok {
		cell.Image = src
	}
	return cell
}

func normalise(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
