package fbref

import (
	"html"
	"regexp"
	"strings"

	"github.com/tolgakurt/footlake/internal/platform/tabular"
)

var (
	commentOpenRegex  = regexp.MustCompile(`<!--\s*`)
	commentCloseRegex = regexp.MustCompile(`\s*-->`)
	tableRegex        = regexp.MustCompile(`(?s)<table[^>]*\bid="([^"]*)"[^>]*>.*?</table>`)
	theadRegex        = regexp.MustCompile(`(?s)<thead[^>]*>(.*?)</thead>`)
	rowRegex          = regexp.MustCompile(`(?s)<tr[^>]*>(.*?)</tr>`)
	headerRowRegex    = regexp.MustCompile(`(?s)<tr[^>]*class="[^"]*thead[^"]*"[^>]*>`)
	cellRegex         = regexp.MustCompile(`(?s)<t([hd])([^>]*)>(.*?)</t[hd]>`)
	dataStatRegex     = regexp.MustCompile(`data-stat="([^"]+)"`)
	tagRegex          = regexp.MustCompile(`<[^>]+>`)
)

// parseTable extracts the first table whose id starts with idPrefix,
// looking both in the live markup and inside HTML comments. Column names
// come from cell data-stat attributes when present, otherwise from the
// flattened multi-row header.
func parseTable(body []byte, idPrefix string) (*tabular.Table, bool) {
	markup := uncomment(string(body))

	for _, tableMatch := range tableRegex.FindAllStringSubmatch(markup, -1) {
		if !strings.HasPrefix(tableMatch[1], idPrefix) {
			continue
		}
		return buildTable(tableMatch[0]), true
	}
	return nil, false
}

// uncomment strips HTML comment markers so commented-out tables become
// parseable like any other markup.
func uncomment(markup string) string {
	markup = commentOpenRegex.ReplaceAllString(markup, "")
	return commentCloseRegex.ReplaceAllString(markup, "")
}

func buildTable(markup string) *tabular.Table {
	headerNames := flattenedHeader(markup)

	bodyMarkup := markup
	if idx := strings.Index(markup, "<tbody"); idx >= 0 {
		bodyMarkup = markup[idx:]
	}

	type parsedRow struct {
		stats map[string]string
		order []string
	}

	rows := make([]parsedRow, 0, 32)
	columns := make([]string, 0, 16)
	seen := make(map[string]bool, 16)

	for _, rowMatch := range rowRegex.FindAllString(bodyMarkup, -1) {
		// fbref repeats the header mid-table every ~25 rows.
		if headerRowRegex.MatchString(rowMatch) {
			continue
		}

		row := parsedRow{stats: make(map[string]string, 16)}
		for i, cellMatch := range cellRegex.FindAllStringSubmatch(rowMatch, -1) {
			name := ""
			if stat := dataStatRegex.FindStringSubmatch(cellMatch[2]); stat != nil {
				name = stat[1]
			} else if i < len(headerNames) {
				name = headerNames[i]
			}
			if name == "" {
				continue
			}
			if _, dup := row.stats[name]; dup {
				continue
			}
			row.stats[name] = cellText(cellMatch[3])
			row.order = append(row.order, name)
		}
		if len(row.stats) == 0 {
			continue
		}
		rows = append(rows, row)
		for _, name := range row.order {
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
		}
	}

	tbl := tabular.New(columns...)
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, name := range columns {
			cells[i] = row.stats[name]
		}
		tbl.AppendRow(cells...)
	}
	return tbl
}

// flattenedHeader derives positional column names from the table head,
// joining stacked header rows ("Performance" over "Gls") with an
// underscore and lower-casing the result.
func flattenedHeader(markup string) []string {
	head := theadRegex.FindStringSubmatch(markup)
	if head == nil {
		return nil
	}

	levels := make([][]string, 0, 2)
	for _, rowMatch := range rowRegex.FindAllStringSubmatch(head[1], -1) {
		level := make([]string, 0, 16)
		for _, cellMatch := range cellRegex.FindAllStringSubmatch(rowMatch[1], -1) {
			level = append(level, cellText(cellMatch[3]))
		}
		levels = append(levels, level)
	}
	if len(levels) == 0 {
		return nil
	}

	flat := tabular.FlattenHeader(levels, "_")
	for i := range flat {
		flat[i] = strings.ToLower(strings.ReplaceAll(flat[i], " ", "_"))
	}
	return flat
}

func cellText(markup string) string {
	text := tagRegex.ReplaceAllString(markup, "")
	return strings.TrimSpace(html.UnescapeString(text))
}
