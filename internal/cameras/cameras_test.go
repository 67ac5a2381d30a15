package cameras

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Barry1701/AutoAgent/internal/cache"
	"github.com/Barry1701/AutoAgent/internal/config"
	"github.com/Barry1701/AutoAgent/internal/observability"
	"github.com/Barry1701/AutoAgent/internal/source"
)

// fakeSheets serves canned tab values keyed by "sheetID/tab".
type fakeSheets struct {
	tabs  map[string][][]string
	errs  map[string]error
	reads int
}

func (f *fakeSheets) ReadTab(ctx context.Context, sheetID, tab string) ([][]string, error) {
	f.reads++
	key := sheetID + "/" + tab
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	values, ok := f.tabs[key]
	if !ok {
		return nil, errors.New("unknown tab " + key)
	}
	return values, nil
}

func camerasConfig() config.CamerasConfig {
	return config.CamerasConfig{
		PPK1SheetID: "sheet1",
		PPK1Tab:     "PPK1",
		PPK2SheetID: "sheet2",
		PPK2Tab:     "PPK2",
	}
}

func newTestEngine(t *testing.T, reader *fakeSheets) *Engine {
	t.Helper()
	return NewEngine(camerasConfig(), reader, cache.NewMemoryClient(), time.Minute, observability.Nop())
}

func standardSheets() *fakeSheets {
	return &fakeSheets{tabs: map[string][][]string{
		"sheet1/PPK1": {
			{"Camera Number", "Camera Name"},
			{"204", "Lobby North"},
			{"389", "Yard (389) South"},
			{"710", "Gate (204) rear"},
		},
		"sheet2/PPK2": {
			{"Camera Number", "Camera Name"},
			{"204", "Warehouse Door"},
		},
	}}
}

func TestEngine_Search_ByNumber(t *testing.T) {
	e := newTestEngine(t, standardSheets())

	hits, err := e.Search(context.Background(), "389", 10)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "PPK1", hits[0].Site)
	assert.Equal(t, "389", hits[0].Number)
	assert.Equal(t, "Yard (389) South", hits[0].Name)
}

func TestEngine_Search_QueryDigitsOverrideCellNumbers(t *testing.T) {
	e := newTestEngine(t, standardSheets())

	hits, err := e.Search(context.Background(), "204", 10)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	for _, h := range hits {
		assert.Equal(t, "204", h.Number, "the number typed by the user is authoritative")
	}
}

func TestEngine_Search_SiteMentionNarrowsRows(t *testing.T) {
	e := newTestEngine(t, standardSheets())

	hits, err := e.Search(context.Background(), "ppk2 204", 10)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "PPK2", hits[0].Site)
	assert.Equal(t, "Warehouse Door", hits[0].Name)
}

func TestEngine_Search_ByNameFragment(t *testing.T) {
	e := newTestEngine(t, standardSheets())

	hits, err := e.Search(context.Background(), "lobby", 10)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Lobby North", hits[0].Name)
	assert.Equal(t, "204", hits[0].Number)
}

func TestEngine_Search_LimitRespected(t *testing.T) {
	e := newTestEngine(t, standardSheets())

	hits, err := e.Search(context.Background(), "204", 2)

	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestEngine_Search_WeirdLayoutFallsBackToHeaderScan(t *testing.T) {
	reader := &fakeSheets{tabs: map[string][][]string{
		"sheet1/PPK1": {
			{"PTZ dome 7 north gate", "fixed 12 canteen"},
			{"PTZ dome 7 north gate close-up", "fixed 12 canteen wide"},
		},
		"sheet2/PPK2": {
			{"x"},
		},
	}}
	e := newTestEngine(t, reader)

	hits, err := e.Search(context.Background(), "canteen wide", 10)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "fixed 12 canteen wide", hits[0].Name)
	assert.Equal(t, "12", hits[0].Number)
}

func TestEngine_Answer_FormatsHits(t *testing.T) {
	e := newTestEngine(t, standardSheets())

	answer, matched, err := e.Answer(context.Background(), "lobby")

	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, "[PPK1] #204 — Lobby North", answer)
}

func TestEngine_Answer_NoMatches(t *testing.T) {
	e := newTestEngine(t, standardSheets())

	answer, matched, err := e.Answer(context.Background(), "submarine")

	require.NoError(t, err)
	assert.False(t, matched)
	assert.Equal(t, "No matching cameras.", answer)
}

func TestEngine_Search_UnavailableTabIsSkipped(t *testing.T) {
	reader := standardSheets()
	reader.errs = map[string]error{"sheet2/PPK2": fmt.Errorf("api quota: %w", source.ErrUnavailable)}
	e := newTestEngine(t, reader)

	hits, err := e.Search(context.Background(), "204", 10)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Equal(t, "PPK1", h.Site)
	}
}

func TestEngine_Search_CredentialsErrorIsFatal(t *testing.T) {
	reader := standardSheets()
	reader.errs = map[string]error{"sheet1/PPK1": fmt.Errorf("google credentials file: %w", config.ErrMissingValue)}
	e := newTestEngine(t, reader)

	_, err := e.Search(context.Background(), "204", 10)

	require.ErrorIs(t, err, config.ErrMissingValue, "configuration failures must not degrade to an empty table")
}

func TestEngine_Search_MissingSheetID(t *testing.T) {
	e := NewEngine(config.CamerasConfig{}, standardSheets(), cache.NewMemoryClient(), time.Minute, observability.Nop())

	_, err := e.Search(context.Background(), "204", 10)

	assert.ErrorIs(t, err, config.ErrMissingValue)
}

func TestEngine_Search_SecondQueryUsesCache(t *testing.T) {
	reader := standardSheets()
	e := newTestEngine(t, reader)

	ctx := context.Background()
	_, err := e.Search(ctx, "204", 10)
	require.NoError(t, err)
	_, err = e.Search(ctx, "lobby", 10)
	require.NoError(t, err)

	assert.Equal(t, 2, reader.reads, "both tabs read exactly once")
}

func TestExtractCamNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Yard (389) South", "389"},
		{"#204 lobby", "204"},
		{"710", "710"},
		{"no digits here", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractCamNumber(tt.input), tt.input)
	}
}
