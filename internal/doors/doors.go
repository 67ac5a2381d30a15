// Package doors implements the door / access-control lookup engine.
// Three sheet tabs are merged into one table with canonical fields; the
// engine distinguishes "where is X" location queries from general text
// search.
package doors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Barry1701/AutoAgent/internal/cache"
	"github.com/Barry1701/AutoAgent/internal/config"
	"github.com/Barry1701/AutoAgent/internal/observability"
	"github.com/Barry1701/AutoAgent/internal/retrieval"
	"github.com/Barry1701/AutoAgent/internal/source"
	"github.com/Barry1701/AutoAgent/internal/tabular"
)

// Door is one access-controlled door with its canonical fields. Header
// text varies across tabs; it is reconciled to this shape at load time.
type Door struct {
	Site        string `json:"site"`
	ID          string `json:"door_id"`
	Description string `json:"description"`
	Location    string `json:"location"`
	CamerasIn   string `json:"cameras_in"`
	CamerasOut  string `json:"cameras_out"`
}

// DefaultLimit caps the number of returned matches.
const DefaultLimit = 10

// headerAliases maps normalized source headers to canonical fields. The
// "description per ccure" variants cover the spelling drift between tabs.
var headerAliases = map[string]string{
	"door id": "door_id",

	"description per ccure":  "description",
	"description percure":    "description",
	"description per cure":   "description",
	"description per c cure": "description",
	"description":            "description",

	"location description": "location",
	"location":             "location",

	"cameras in":  "cameras_in",
	"cameras out": "cameras_out",
}

// locationStopwords are dropped before token matching on "where is"
// queries.
var locationStopwords = map[string]bool{
	"where": true, "is": true, "the": true, "a": true, "an": true,
	"door": true, "located": true, "location": true, "of": true,
	"in": true, "at": true, "to": true, "for": true, "what": true,
	"which": true,
}

// locationPhrases mark a location-intent query.
var locationPhrases = []string{"where is", "where's", "where are", "locate"}

// Engine answers door queries against the merged sheet tabs.
type Engine struct {
	cfg    config.DoorsConfig
	reader source.SheetReader
	cache  *cache.TableCache[[]Door]
	logger *observability.Logger
	limit  int
}

// NewEngine creates the doors engine.
func NewEngine(cfg config.DoorsConfig, reader source.SheetReader, client cache.Client, ttl time.Duration, logger *observability.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		reader: reader,
		cache:  cache.NewTableCache[[]Door](client, "table:doors", ttl),
		logger: logger.WithAgent("doors_agent"),
		limit:  DefaultLimit,
	}
}

// Name identifies the engine to the CLI and router.
func (e *Engine) Name() string { return "doors_agent" }

// Invalidate drops the cached table so the next query reloads the sheets.
func (e *Engine) Invalidate(ctx context.Context) error {
	return e.cache.Invalidate(ctx)
}

// Answer resolves a door query to formatted text. The boolean reports
// whether anything matched.
func (e *Engine) Answer(ctx context.Context, query string) (string, bool, error) {
	var (
		rows []Door
		err  error
	)
	if isLocationQuery(query) {
		rows, err = e.FindByLocation(ctx, query, e.limit)
	} else {
		rows, err = e.FindByText(ctx, query, e.limit)
	}
	if err != nil {
		return "", false, err
	}
	if len(rows) == 0 {
		return "No matching doors.", false, nil
	}

	lines := make([]string, 0, len(rows))
	for _, d := range rows {
		lines = append(lines, formatDoor(d))
	}
	return strings.Join(lines, "\n"), true, nil
}

// FindByText searches by substring across id, description, and location,
// case-insensitive.
func (e *Engine) FindByText(ctx context.Context, query string, limit int) ([]Door, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	doors, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	ql := strings.ToLower(q)
	var out []Door
	for _, d := range doors {
		if strings.Contains(strings.ToLower(d.ID), ql) ||
			strings.Contains(strings.ToLower(d.Description), ql) ||
			strings.Contains(strings.ToLower(d.Location), ql) {
			out = append(out, d)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// FindByID returns doors whose id equals doorID exactly (case-insensitive).
func (e *Engine) FindByID(ctx context.Context, doorID string, limit int) ([]Door, error) {
	id := strings.TrimSpace(doorID)
	if id == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	doors, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	var out []Door
	for _, d := range doors {
		if strings.EqualFold(d.ID, id) {
			out = append(out, d)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// FindByLocation answers a "where is X" query. A door matches when:
//
//   - the normalized query phrase occurs in a normalized field, or
//   - every extracted token occurs within a single field, or
//   - at least max(2, n-1) of the n extracted tokens occur across the
//     concatenation of id, description, and location.
//
// The rule is deliberately lenient: stored identifiers use underscore,
// space, and case variants of what people type.
func (e *Engine) FindByLocation(ctx context.Context, query string, limit int) ([]Door, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	tokens := extractLocationTokens(query)
	if len(tokens) == 0 {
		return e.FindByText(ctx, query, limit)
	}
	phrase := strings.Join(tokens, " ")

	doors, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	need := len(tokens) - 1
	if need < 2 {
		need = 2
	}

	var out []Door
	for _, d := range doors {
		fields := []string{d.ID, d.Description, d.Location}
		if matchesLocation(phrase, tokens, fields, need) {
			out = append(out, d)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// matchesLocation applies the OR-of-conditions location rule to one door.
func matchesLocation(phrase string, tokens []string, fields []string, need int) bool {
	normFields := make([]string, len(fields))
	for i, f := range fields {
		normFields[i] = strings.Join(retrieval.Tokenize(f), " ")
	}

	for _, nf := range normFields {
		if nf != "" && strings.Contains(nf, phrase) {
			return true
		}
	}

	for _, nf := range normFields {
		set := retrieval.TokenSet(nf)
		all := true
		for _, tok := range tokens {
			if !set[tok] {
				all = false
				break
			}
		}
		if all && nf != "" {
			return true
		}
	}

	combined := retrieval.TokenSet(strings.Join(normFields, " "))
	found := 0
	for _, tok := range tokens {
		if combined[tok] {
			found++
		}
	}
	return found >= need
}

// extractLocationTokens tokenizes the query and drops stopwords.
func extractLocationTokens(query string) []string {
	var out []string
	for _, tok := range retrieval.Tokenize(query) {
		if locationStopwords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// isLocationQuery reports whether the query asks where something is.
func isLocationQuery(query string) bool {
	t := strings.ToLower(query)
	for _, p := range locationPhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

// load merges the three configured tabs through the table cache: header
// aliasing to canonical fields, noise-row filtering, exact-duplicate
// removal keeping the first occurrence.
func (e *Engine) load(ctx context.Context) ([]Door, error) {
	if e.cfg.SheetID == "" {
		return nil, fmt.Errorf("doors sheet id: %w", config.ErrMissingValue)
	}

	return e.cache.GetOrLoad(ctx, func(ctx context.Context) ([]Door, error) {
		tabs := []struct{ name, site string }{
			{e.cfg.TabPPK1, "PPK1"},
			{e.cfg.TabPPK2, "PPK2"},
			{e.cfg.TabExpansion, "Expansion"},
		}

		var merged []Door
		failed := 0
		for _, t := range tabs {
			values, err := e.reader.ReadTab(ctx, e.cfg.SheetID, t.name)
			if err != nil {
				// Only an unavailable tab is skippable; a credentials or
				// configuration problem is fatal.
				if !errors.Is(err, source.ErrUnavailable) {
					return nil, err
				}
				failed++
				e.logger.Warn().Err(err).Str("tab", t.name).Msg("Skipping doors tab")
				continue
			}
			merged = append(merged, tabToDoors(values, t.site)...)
		}
		if failed == len(tabs) {
			// An all-tabs failure still yields an empty table ("no
			// matches" downstream), but loudly.
			e.logger.Warn().Msg("All doors tabs failed to load")
		}

		merged = dedupe(merged)
		e.logger.Debug().Int("rows", len(merged)).Msg("Loaded doors sheets")
		return merged, nil
	})
}

// tabToDoors converts one tab's raw values into canonical door rows.
func tabToDoors(values [][]string, site string) []Door {
	if len(values) == 0 {
		return nil
	}

	// Resolve each source column to its canonical field, if any.
	canonical := make([]string, len(values[0]))
	for i, h := range values[0] {
		canonical[i] = headerAliases[tabular.NormalizeHeader(h)]
	}

	var out []Door
	for _, rec := range values[1:] {
		var d Door
		d.Site = site
		for i, field := range canonical {
			if field == "" || i >= len(rec) {
				continue
			}
			val := tabular.CleanCell(rec[i])
			switch field {
			case "door_id":
				d.ID = val
			case "description":
				d.Description = val
			case "location":
				d.Location = val
			case "cameras_in":
				d.CamerasIn = val
			case "cameras_out":
				d.CamerasOut = val
			}
		}
		// Rows with no identity at all are noise.
		if d.ID == "" && d.Description == "" && d.Location == "" {
			continue
		}
		out = append(out, d)
	}
	return out
}

// dedupe removes exact duplicates across all fields, keeping the first.
func dedupe(doors []Door) []Door {
	seen := make(map[Door]bool, len(doors))
	out := doors[:0]
	for _, d := range doors {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// formatDoor renders one door as a compact single line.
func formatDoor(d Door) string {
	var cams []string
	if d.CamerasIn != "" && !strings.EqualFold(d.CamerasIn, "n/a") {
		cams = append(cams, "IN: "+d.CamerasIn)
	}
	if d.CamerasOut != "" && !strings.EqualFold(d.CamerasOut, "n/a") {
		cams = append(cams, "OUT: "+d.CamerasOut)
	}
	camsLabel := "No cameras listed"
	if len(cams) > 0 {
		camsLabel = strings.Join(cams, " | ")
	}

	line := fmt.Sprintf("[%s] %s — %s", d.Site, d.ID, d.Description)
	if d.Location != "" {
		line += fmt.Sprintf(" (Location: %s)", d.Location)
	}
	return line + " — " + camsLabel
}
