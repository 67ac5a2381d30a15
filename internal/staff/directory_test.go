package staff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Barry1701/AutoAgent/internal/cache"
	"github.com/Barry1701/AutoAgent/internal/config"
	"github.com/Barry1701/AutoAgent/internal/observability"
	"github.com/Barry1701/AutoAgent/internal/tabular"
)

func trackerFixture() tabular.Table {
	return tabular.Table{
		Name: "staff.csv",
		Columns: []string{
			"Name",
			"PSA Licence",
			"PSA Licence exp. DD/MM/YYYY",
			"Contact Number",
			"Date of first Aid expire",
		},
		Rows: []tabular.Row{
			{
				"Name":                        "Jane Doe",
				"PSA Licence":                 "PSA1234",
				"PSA Licence exp. DD/MM/YYYY": "31/12/2026",
				"Contact Number":              "0851234567",
				"Date of first Aid expire":    "01/03/2027",
			},
			{
				"Name":                        "John Smith (Supervisor)",
				"PSA Licence":                 "PSA5678",
				"PSA Licence exp. DD/MM/YYYY": "30/06/2026",
				"Contact Number":              "",
				"Date of first Aid expire":    "",
			},
			{
				"Name":                        "John Smythe",
				"PSA Licence":                 "PSA9012",
				"PSA Licence exp. DD/MM/YYYY": "15/01/2027",
				"Contact Number":              "0869999999",
				"Date of first Aid expire":    "20/05/2026",
			},
		},
	}
}

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	d := NewDirectory("staff.csv", cache.NewMemoryClient(), time.Minute, observability.Nop())
	d.readCSV = func(path string) (tabular.Table, error) {
		return trackerFixture(), nil
	}
	return d
}

func TestDirectory_Answer_ExpiryQuestion(t *testing.T) {
	d := newTestDirectory(t)

	answer, matched, err := d.Answer(context.Background(), "What is the PSA Licence expiry date for Jane Doe?")

	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, "PSA Licence exp. DD/MM/YYYY for Jane Doe: 31/12/2026", answer)
}

func TestDirectory_Answer_BarePSAReturnsPair(t *testing.T) {
	d := newTestDirectory(t)

	answer, matched, err := d.Answer(context.Background(), "psa jane doe")

	require.NoError(t, err)
	assert.True(t, matched)
	assert.Contains(t, answer, "Jane Doe:")
	assert.Contains(t, answer, "- PSA Licence: PSA1234")
	assert.Contains(t, answer, "- PSA Licence exp. DD/MM/YYYY: 31/12/2026")
}

func TestDirectory_Answer_ParentheticalNameStillMatches(t *testing.T) {
	d := newTestDirectory(t)

	answer, matched, err := d.Answer(context.Background(), "psa licence for john smith")

	require.NoError(t, err)
	assert.True(t, matched)
	assert.Contains(t, answer, "John Smith (Supervisor)")
	assert.Contains(t, answer, "PSA5678")
}

func TestDirectory_Answer_EmptyCellRendersNA(t *testing.T) {
	d := newTestDirectory(t)

	answer, matched, err := d.Answer(context.Background(), "contact number for john smith")

	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, "Contact Number for John Smith (Supervisor): N/A", answer)
}

func TestDirectory_Answer_AmbiguousName(t *testing.T) {
	d := newTestDirectory(t)

	answer, matched, err := d.Answer(context.Background(), "psa for john")

	require.NoError(t, err)
	assert.True(t, matched)
	assert.Contains(t, answer, "Several employees match")
	assert.Contains(t, answer, "John Smith (Supervisor)")
	assert.Contains(t, answer, "John Smythe")
}

func TestDirectory_Answer_NoNameFound(t *testing.T) {
	d := newTestDirectory(t)

	answer, matched, err := d.Answer(context.Background(), "what is the psa number")

	require.NoError(t, err)
	assert.False(t, matched)
	assert.Contains(t, answer, "couldn't find a matching employee name")
}

func TestDirectory_Answer_FirstAidExpiryBeatsPSAExpiry(t *testing.T) {
	d := newTestDirectory(t)

	answer, matched, err := d.Answer(context.Background(), "first aid expiry for Jane Doe")

	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, "Date of first Aid expire for Jane Doe: 01/03/2027", answer)
}

func TestDirectory_Answer_NoFieldFallsBackToExpiry(t *testing.T) {
	d := newTestDirectory(t)

	// No field alias resolves, so the expiry-like column answers.
	answer, matched, err := d.Answer(context.Background(), "tell me about Jane Doe")

	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, "PSA Licence exp. DD/MM/YYYY for Jane Doe: 31/12/2026", answer)
}

func TestDirectory_Answer_NoFieldPromptsWithSuggestions(t *testing.T) {
	d := NewDirectory("staff.csv", cache.NewMemoryClient(), time.Minute, observability.Nop())
	d.readCSV = func(path string) (tabular.Table, error) {
		return tabular.Table{
			Name:    "staff.csv",
			Columns: []string{"Name", "Contact Number"},
			Rows: []tabular.Row{
				{"Name": "Jane Doe", "Contact Number": "0851234567"},
			},
		}, nil
	}

	answer, matched, err := d.Answer(context.Background(), "tell me about Jane Doe")

	require.NoError(t, err)
	assert.True(t, matched)
	assert.Contains(t, answer, "Tell me which field you want")
	assert.Contains(t, answer, "'PSA Licence'")
}

func TestDirectory_Answer_MissingCSVPath(t *testing.T) {
	d := NewDirectory("", cache.NewMemoryClient(), time.Minute, observability.Nop())

	_, _, err := d.Answer(context.Background(), "psa jane doe")

	assert.ErrorIs(t, err, config.ErrMissingValue)
}

func TestDirectory_Answer_SourceErrorPropagates(t *testing.T) {
	d := newTestDirectory(t)
	boom := errors.New("disk gone")
	d.readCSV = func(path string) (tabular.Table, error) {
		return tabular.Table{}, boom
	}

	_, _, err := d.Answer(context.Background(), "psa jane doe")

	assert.ErrorIs(t, err, boom)
}

func TestDirectory_Invalidate_ForcesReload(t *testing.T) {
	d := newTestDirectory(t)
	calls := 0
	d.readCSV = func(path string) (tabular.Table, error) {
		calls++
		return trackerFixture(), nil
	}

	ctx := context.Background()
	_, _, err := d.Answer(ctx, "psa jane doe")
	require.NoError(t, err)
	_, _, err = d.Answer(ctx, "psa jane doe")
	require.NoError(t, err)
	require.Equal(t, 1, calls, "second query within TTL must use the cache")

	require.NoError(t, d.Invalidate(ctx))

	_, _, err = d.Answer(ctx, "psa jane doe")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
