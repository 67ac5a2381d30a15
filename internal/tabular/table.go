// Package tabular provides the normalized table model shared by all
// lookup engines. A table is an ordered sequence of rows loaded wholesale
// from an external source; rows are never mutated after load.
package tabular

// Row maps a column name to a cell value. Empty string means "no data",
// never a null marker.
type Row map[string]string

// Get returns the trimmed-as-loaded cell value for a column, or "" when
// the column is absent.
func (r Row) Get(column string) string {
	return r[column]
}

// Table is a named, ordered sequence of rows sharing a column set.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Empty reports whether the table holds no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// HasColumn reports whether the table has the given column, matched
// case-insensitively against the loaded headers.
func (t Table) HasColumn(name string) bool {
	return t.ResolveColumn(name) != ""
}

// ResolveColumn returns the real header for a case-insensitively matched
// column name, or "" when absent.
func (t Table) ResolveColumn(name string) string {
	want := FoldHeader(name)
	for _, c := range t.Columns {
		if FoldHeader(c) == want {
			return c
		}
	}
	return ""
}
