// Package staff implements the staff directory lookup engine: fuzzy
// name resolution over a CSV-backed employee table plus field-alias
// inference for the requested columns.
package staff

import (
	"context"
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

// nameColumn is the display-name column in the staff tracker sheet.
const nameColumn = "Name"

// psaPair is the default field pair returned for a bare "psa" request.
var psaPair = []string{"PSA Licence", "PSA Licence exp. DD/MM/YYYY"}

// fieldSuggestions seeds the clarification prompt when no field could be
// inferred from the query.
var fieldSuggestions = []string{
	"PSA Licence",
	"PSA Licence exp. DD/MM/YYYY",
	"Contact Number",
	"Contact Number in case of Emergency",
	"Date of first Aid expire",
}

// vocabulary maps natural-language phrases to the tracker's literal
// column headers. Order matters: resolution follows this list, not the
// query.
var vocabulary = retrieval.Vocabulary{
	Singles: []retrieval.FieldAlias{
		{Phrase: "psa licence expiry date", Field: "PSA Licence exp. DD/MM/YYYY"},
		{Phrase: "psa licence expiry", Field: "PSA Licence exp. DD/MM/YYYY"},
		{Phrase: "psa license expiry", Field: "PSA Licence exp. DD/MM/YYYY"},
		{Phrase: "psa expiry", Field: "PSA Licence exp. DD/MM/YYYY"},
		{Phrase: "first aid expiry", Field: "Date of first Aid expire"},
		{Phrase: "expiry", Field: "PSA Licence exp. DD/MM/YYYY"},
		{Phrase: "expiration", Field: "PSA Licence exp. DD/MM/YYYY"},
		{Phrase: "psa licence", Field: "PSA Licence"},
		{Phrase: "psa license", Field: "PSA Licence"},
		{Phrase: "psa number", Field: "PSA Licence"},
		{Phrase: "psa no", Field: "PSA Licence"},
		{Phrase: "psa id", Field: "PSA Licence"},
		{Phrase: "psa", Field: "PSA Licence"},
		{Phrase: "contact number", Field: "Contact Number"},
		{Phrase: "emergency contact", Field: "Contact Number in case of Emergency"},
		{Phrase: "first aid", Field: "First Aid Certified"},
		{Phrase: "badge", Field: "Received Access Badge"},
		{Phrase: "radio earpiece", Field: "Radio Earpiece Received"},
		{Phrase: "safepass", Field: "Safepass"},
		{Phrase: "ert training", Field: "Emergency Response Team (ERT) Training"},
		{Phrase: "manual handling", Field: "Manual Handling Training"},
		{Phrase: "navy coat", Field: "Navy Blue winter Coat Received 2024"},
		{Phrase: "bgu sign off", Field: "BGU Sign Off"},
		{Phrase: "l-dap", Field: "L-Dap"},
		{Phrase: "ldap", Field: "L-Dap"},
		{Phrase: "employee pin", Field: "Employee PIN (0****)"},
		{Phrase: "pin", Field: "Employee PIN (0****)"},
	},
	Groups: []retrieval.GroupAlias{
		{Phrase: "psa licence", Fields: psaPair},
		{Phrase: "psa license", Fields: psaPair},
		{Phrase: "psa", Fields: psaPair},
	},
	Fallbacks: []string{"expiry", "exp"},
}

// Directory answers staff queries against the tracker CSV, loaded
// through the shared table cache.
type Directory struct {
	csvPath string
	cache   *cache.TableCache[tabular.Table]
	matcher *retrieval.Matcher
	logger  *observability.Logger

	// readCSV is swapped in tests.
	readCSV func(path string) (tabular.Table, error)
}

// NewDirectory creates the staff engine. csvPath may be empty; the
// configuration error then surfaces on first query, not silently as an
// empty directory.
func NewDirectory(csvPath string, client cache.Client, ttl time.Duration, logger *observability.Logger) *Directory {
	return &Directory{
		csvPath: csvPath,
		cache:   cache.NewTableCache[tabular.Table](client, "table:staff", ttl),
		matcher: retrieval.NewMatcher(),
		logger:  logger.WithAgent("staff_directory_agent"),
		readCSV: source.ReadCSV,
	}
}

// Name identifies the engine to the CLI and router.
func (d *Directory) Name() string { return "staff_directory_agent" }

// Invalidate drops the cached table so the next query reloads the CSV.
func (d *Directory) Invalidate(ctx context.Context) error {
	return d.cache.Invalidate(ctx)
}

// Answer resolves a staff query to formatted text. The boolean reports
// whether an employee name was found, which the operations router uses
// to decide whether to keep trying other engines.
func (d *Directory) Answer(ctx context.Context, query string) (string, bool, error) {
	table, err := d.load(ctx)
	if err != nil {
		return "", false, err
	}

	candidates := make([]retrieval.Candidate, 0, len(table.Rows))
	for _, row := range table.Rows {
		clean := tabular.CleanName(row.Get(nameColumn))
		if clean == "" {
			continue
		}
		candidates = append(candidates, retrieval.Candidate{
			Key:     clean,
			Display: row.Get(nameColumn),
		})
	}

	match := d.matcher.FindBest(query, candidates)
	switch match.Kind {
	case retrieval.MatchNone:
		return "I couldn't find a matching employee name in your question. " +
			"Try e.g. 'psa John Smith' or 'What is the PSA Licence expiry date for Jane Doe?'.", false, nil
	case retrieval.MatchAmbiguous:
		names := make([]string, 0, len(match.Candidates))
		for _, c := range match.Candidates {
			names = append(names, c.Display)
		}
		return "Several employees match. Please specify one of: " + strings.Join(names, "; "), true, nil
	}

	record, display := d.recordByCleanName(table, match.Key)
	if record == nil {
		return "No entry found for that employee.", false, nil
	}

	fields := retrieval.ResolveFields(query, vocabulary, table)

	// A bare "psa" mention with nothing resolved still means the licence pair.
	if len(fields) == 0 && strings.Contains(strings.ToLower(query), "psa") {
		fields = presentColumns(table, psaPair)
	}

	if len(fields) == 0 {
		quoted := make([]string, 0, len(fieldSuggestions))
		for _, s := range fieldSuggestions {
			quoted = append(quoted, "'"+s+"'")
		}
		return "Tell me which field you want. Examples: " + strings.Join(quoted, "; "), true, nil
	}

	d.logger.Debug().
		Str("employee", display).
		Strs("fields", fields).
		Msg("Resolved staff query")

	pairs := fieldValues(record, fields)
	if len(pairs) == 1 {
		return fmt.Sprintf("%s for %s: %s", pairs[0][0], display, pairs[0][1]), true, nil
	}

	lines := []string{display + ":"}
	for _, p := range pairs {
		lines = append(lines, fmt.Sprintf("- %s: %s", p[0], p[1]))
	}
	return strings.Join(lines, "\n"), true, nil
}

// load reads the tracker through the table cache.
func (d *Directory) load(ctx context.Context) (tabular.Table, error) {
	if d.csvPath == "" {
		return tabular.Table{}, fmt.Errorf("staff csv path: %w", config.ErrMissingValue)
	}
	return d.cache.GetOrLoad(ctx, func(ctx context.Context) (tabular.Table, error) {
		table, err := d.readCSV(d.csvPath)
		if err != nil {
			return tabular.Table{}, err
		}
		d.logger.Debug().Int("rows", len(table.Rows)).Msg("Loaded staff tracker")
		return table, nil
	})
}

// recordByCleanName returns the first row whose clean name equals key,
// plus its display name.
func (d *Directory) recordByCleanName(table tabular.Table, key string) (tabular.Row, string) {
	for _, row := range table.Rows {
		if tabular.CleanName(row.Get(nameColumn)) == key {
			return row, row.Get(nameColumn)
		}
	}
	return nil, ""
}

// fieldValues renders (field, value-or-N/A) pairs for the record.
func fieldValues(record tabular.Row, fields []string) [][2]string {
	out := make([][2]string, 0, len(fields))
	for _, f := range fields {
		val := strings.TrimSpace(record.Get(f))
		if val == "" {
			val = "N/A"
		}
		out = append(out, [2]string{f, val})
	}
	return out
}

// presentColumns filters wanted to the columns the table actually has.
func presentColumns(table tabular.Table, wanted []string) []string {
	var out []string
	for _, w := range wanted {
		if real := table.ResolveColumn(w); real != "" {
			out = append(out, real)
		}
	}
	return out
}
