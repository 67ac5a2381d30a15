package source

import (
	"context"
	"fmt"
	"os"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetReader reads all rows of one tab of a spreadsheet. The first row
// is the header row.
type SheetReader interface {
	ReadTab(ctx context.Context, sheetID, tab string) ([][]string, error)
}

// GoogleSheets implements SheetReader against the Google Sheets API with
// a service-account credentials file, read-only scope.
type GoogleSheets struct {
	svc *sheets.Service
}

// NewGoogleSheets creates a Sheets client. A missing credentials file is
// a configuration error, surfaced immediately.
func NewGoogleSheets(ctx context.Context, credentialsFile string) (*GoogleSheets, error) {
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("google credentials file %s: %w", credentialsFile, err)
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &GoogleSheets{svc: svc}, nil
}

// ReadTab reads every populated row of a named tab.
func (g *GoogleSheets) ReadTab(ctx context.Context, sheetID, tab string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(sheetID, fmt.Sprintf("'%s'", tab)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read tab %q of %s: %w: %v", tab, sheetID, ErrUnavailable, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LazySheets defers Google client construction until the first read, so
// agents that never touch a spreadsheet (staff lookups) work without
// credentials configured.
type LazySheets struct {
	credentials func() (string, error)

	once sync.Once
	gs   *GoogleSheets
	err  error
}

// NewLazySheets creates a lazily-initialized sheet reader. credentials is
// called once, on first use.
func NewLazySheets(credentials func() (string, error)) *LazySheets {
	return &LazySheets{credentials: credentials}
}

// ReadTab initializes the underlying client on first call, then delegates.
func (l *LazySheets) ReadTab(ctx context.Context, sheetID, tab string) ([][]string, error) {
	l.once.Do(func() {
		path, err := l.credentials()
		if err != nil {
			l.err = err
			return
		}
		l.gs, l.err = NewGoogleSheets(ctx, path)
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.gs.ReadTab(ctx, sheetID, tab)
}
