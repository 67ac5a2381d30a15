// Package cameras implements the camera lookup engine over one or two
// site sheets (PPK1, PPK2) merged into a single table.
package cameras

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Barry1701/AutoAgent/internal/cache"
	"github.com/Barry1701/AutoAgent/internal/config"
	"github.com/Barry1701/AutoAgent/internal/observability"
	"github.com/Barry1701/AutoAgent/internal/source"
	"github.com/Barry1701/AutoAgent/internal/tabular"
)

// siteColumn tags each row with its source tab. The name is reserved so
// it cannot collide with a real sheet header.
const siteColumn = "__site__"

// DefaultLimit caps the number of returned matches.
const DefaultLimit = 10

var (
	// Camera-like numbers embedded in text: "#204", "(204)", bare "204".
	camNumberRe = regexp.MustCompile(`(?:^|[^0-9])(#[ ]*\d{1,4}|\(\s*\d{1,4}\s*\)|\b\d{1,4}\b)`)
	digitsRe    = regexp.MustCompile(`\b(\d{1,6})\b`)
	nonDigitRe  = regexp.MustCompile(`[^\d]`)
)

// numberColumnCandidates and nameColumnCandidates drive column
// inference, exact header match first, then substring.
var (
	numberColumnCandidates = []string{
		"Camera Number", "Number", "#", "ID",
		"Cam Number", "Cam No", "Camera #", "Camera ID",
	}
	nameColumnCandidates = []string{
		"Camera Name", "Name", "Description", "Camera Description",
		"Cam Name", "Cam Description", "Title",
	}
)

// Hit is one matched camera.
type Hit struct {
	Site   string
	Number string
	Name   string
	Row    tabular.Row
}

// Engine answers camera queries against the merged site sheets.
type Engine struct {
	cfg    config.CamerasConfig
	reader source.SheetReader
	cache  *cache.TableCache[tabular.Table]
	logger *observability.Logger
	limit  int
}

// NewEngine creates the camera engine.
func NewEngine(cfg config.CamerasConfig, reader source.SheetReader, client cache.Client, ttl time.Duration, logger *observability.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		reader: reader,
		cache:  cache.NewTableCache[tabular.Table](client, "table:cameras", ttl),
		logger: logger.WithAgent("camera_agent"),
		limit:  DefaultLimit,
	}
}

// Name identifies the engine to the CLI and router.
func (e *Engine) Name() string { return "camera_agent" }

// Invalidate drops the cached table so the next query reloads the sheets.
func (e *Engine) Invalidate(ctx context.Context) error {
	return e.cache.Invalidate(ctx)
}

// Answer resolves a camera query to formatted text. The boolean reports
// whether anything matched.
func (e *Engine) Answer(ctx context.Context, query string) (string, bool, error) {
	hits, err := e.Search(ctx, query, e.limit)
	if err != nil {
		return "", false, err
	}
	if len(hits) == 0 {
		return "No matching cameras.", false, nil
	}

	lines := make([]string, 0, len(hits))
	for _, h := range hits {
		lines = append(lines, fmt.Sprintf("[%s] #%s — %s", h.Site, h.Number, h.Name))
	}
	return strings.Join(lines, "\n"), true, nil
}

// Search matches cameras by number or name/description fragment.
//
// A site mention (PPK1/PPK2) narrows the table first. When the query
// contains digits, the reported camera number is always those digits:
// descriptive cells often embed unrelated numbers and the user's own
// input is the trustworthy one.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	table, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	if table.Empty() {
		return nil, nil
	}

	rows := table.Rows
	if site := parseSite(q); site != "" {
		filtered := rows[:0:0]
		for _, row := range rows {
			if row.Get(siteColumn) == site {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
		// The site mention is a filter, not a search term.
		q = stripSite(q)
	}

	colNum := pickColumn(table.Columns, numberColumnCandidates)
	colName := pickColumn(table.Columns, nameColumnCandidates)
	ql := strings.ToLower(q)
	wantedDigits := digitsFromQuery(q)

	// A bare site mention lists that site's cameras.
	if ql == "" {
		out := make([]Hit, 0, limit)
		for _, row := range rows {
			out = append(out, e.rowToHit(row, colNum, colName, ""))
			if len(out) >= limit {
				break
			}
		}
		return out, nil
	}

	var matched []tabular.Row
	if colNum != "" || colName != "" {
		for _, row := range rows {
			if colNum != "" && strings.Contains(strings.ToLower(row.Get(colNum)), ql) {
				matched = append(matched, row)
				continue
			}
			if colName != "" && strings.Contains(strings.ToLower(row.Get(colName)), ql) {
				matched = append(matched, row)
			}
		}
	}

	// Fallback: scan every cell when the number/name columns missed.
	if len(matched) == 0 {
		for _, row := range rows {
			for _, col := range table.Columns {
				if strings.Contains(strings.ToLower(row.Get(col)), ql) {
					matched = append(matched, row)
					break
				}
			}
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	var out []Hit
	seen := make(map[[3]string]bool)

	if colNum != "" || colName != "" {
		for _, row := range matched {
			hit := e.rowToHit(row, colNum, colName, wantedDigits)
			key := [3]string{hit.Site, hit.Number, hit.Name}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, hit)
			if len(out) >= limit {
				break
			}
		}
		return out, nil
	}

	// Unusual layout: headers may themselves be camera titles. Treat any
	// matching header or cell text as a potential camera entry.
	for _, row := range matched {
		for _, header := range table.Columns {
			if header == siteColumn {
				continue
			}
			h := strings.TrimSpace(header)
			v := strings.TrimSpace(row.Get(header))
			if h == "" && v == "" {
				continue
			}
			if !strings.Contains(strings.ToLower(h), ql) && !strings.Contains(strings.ToLower(v), ql) {
				continue
			}

			number := wantedDigits
			if number == "" {
				number = extractCamNumber(h)
				if number == "" {
					number = extractCamNumber(v)
				}
			}

			display := h
			if len(v) > len(h) {
				display = v
			}

			key := [3]string{row.Get(siteColumn), number, display}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Hit{Site: row.Get(siteColumn), Number: number, Name: display, Row: row})
			if len(out) >= limit {
				break
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// load merges the configured site tabs through the table cache.
func (e *Engine) load(ctx context.Context) (tabular.Table, error) {
	if e.cfg.PPK1SheetID == "" {
		return tabular.Table{}, fmt.Errorf("cameras ppk1 sheet id: %w", config.ErrMissingValue)
	}

	return e.cache.GetOrLoad(ctx, func(ctx context.Context) (tabular.Table, error) {
		type tab struct {
			sheetID string
			name    string
			site    string
		}
		tabs := []tab{{e.cfg.PPK1SheetID, e.cfg.PPK1Tab, "PPK1"}}
		if e.cfg.PPK2SheetID != "" {
			tabs = append(tabs, tab{e.cfg.PPK2SheetID, e.cfg.PPK2Tab, "PPK2"})
		}

		merged := tabular.Table{Name: "cameras"}
		colSeen := map[string]bool{}
		for _, t := range tabs {
			values, err := e.reader.ReadTab(ctx, t.sheetID, t.name)
			if err != nil {
				// Only an unavailable tab is skippable; a credentials or
				// configuration problem is fatal.
				if !errors.Is(err, source.ErrUnavailable) {
					return tabular.Table{}, err
				}
				e.logger.Warn().Err(err).Str("tab", t.name).Msg("Skipping camera tab")
				continue
			}
			table := sheetToTable(values, t.site)
			for _, c := range table.Columns {
				if !colSeen[c] {
					colSeen[c] = true
					merged.Columns = append(merged.Columns, c)
				}
			}
			merged.Rows = append(merged.Rows, table.Rows...)
		}
		if !merged.HasColumn(siteColumn) && len(merged.Rows) > 0 {
			merged.Columns = append(merged.Columns, siteColumn)
		}

		e.logger.Debug().Int("rows", len(merged.Rows)).Msg("Loaded camera sheets")
		return merged, nil
	})
}

// sheetToTable converts raw tab values to a table, tagging each row with
// the site label.
func sheetToTable(values [][]string, site string) tabular.Table {
	if len(values) == 0 {
		return tabular.Table{}
	}

	headers := make([]string, 0, len(values[0]))
	for _, h := range values[0] {
		headers = append(headers, tabular.CleanCell(h))
	}

	rows := make([]tabular.Row, 0, len(values)-1)
	for _, rec := range values[1:] {
		row := make(tabular.Row, len(headers)+1)
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = tabular.CleanCell(rec[i])
			} else {
				row[h] = ""
			}
		}
		row[siteColumn] = site
		rows = append(rows, row)
	}

	return tabular.Table{Columns: headers, Rows: rows}
}

// rowToHit builds a hit from a normal-layout row. Digits typed by the
// user override whatever the cells embed.
func (e *Engine) rowToHit(row tabular.Row, colNum, colName, wantedDigits string) Hit {
	number := wantedDigits
	if number == "" {
		if colNum != "" {
			number = extractCamNumber(row.Get(colNum))
		}
		if number == "" && colName != "" {
			number = extractCamNumber(row.Get(colName))
		}
	}

	name := ""
	if colName != "" {
		name = strings.TrimSpace(row.Get(colName))
	}
	if name == "" && colNum != "" {
		name = strings.TrimSpace(row.Get(colNum))
	}

	return Hit{Site: row.Get(siteColumn), Number: number, Name: name, Row: row}
}

// pickColumn returns the first column matching any candidate, exact
// (case-insensitive) first, then substring.
func pickColumn(columns []string, candidates []string) string {
	folded := make(map[string]string, len(columns))
	for _, c := range columns {
		if _, ok := folded[tabular.FoldHeader(c)]; !ok {
			folded[tabular.FoldHeader(c)] = c
		}
	}
	for _, cand := range candidates {
		if real, ok := folded[tabular.FoldHeader(cand)]; ok {
			return real
		}
	}
	for _, c := range columns {
		cl := tabular.FoldHeader(c)
		for _, cand := range candidates {
			if strings.Contains(cl, tabular.FoldHeader(cand)) {
				return c
			}
		}
	}
	return ""
}

// parseSite returns the site label mentioned in the query, or "".
func parseSite(q string) string {
	t := strings.ToLower(q)
	if strings.Contains(t, "ppk1") || strings.Contains(t, "ppk 1") {
		return "PPK1"
	}
	if strings.Contains(t, "ppk2") || strings.Contains(t, "ppk 2") {
		return "PPK2"
	}
	return ""
}

var siteMentionRe = regexp.MustCompile(`(?i)\bppk\s?[12]\b`)

// stripSite removes site mentions from the query text.
func stripSite(q string) string {
	q = siteMentionRe.ReplaceAllString(q, " ")
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(q, " "))
}

var spaceRunRe = regexp.MustCompile(`\s+`)

// extractCamNumber pulls a camera-like number out of text, e.g.
// "(204)" or "#204".
func extractCamNumber(text string) string {
	m := camNumberRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return nonDigitRe.ReplaceAllString(m[1], "")
}

// digitsFromQuery returns the first bare number in the query, or "".
func digitsFromQuery(q string) string {
	m := digitsRe.FindStringSubmatch(q)
	if m == nil {
		return ""
	}
	return m[1]
}
