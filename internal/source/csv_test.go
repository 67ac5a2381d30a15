package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staff.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeTempCSV(t, "Name,PSA Licence,Contact Number\nJane Doe,PSA1234,0851234567\nJohn Smith,PSA5678,0867654321\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, "staff.csv", table.Name)
	assert.Equal(t, []string{"Name", "PSA Licence", "Contact Number"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Jane Doe", table.Rows[0].Get("Name"))
	assert.Equal(t, "PSA5678", table.Rows[1].Get("PSA Licence"))
}

func TestReadCSV_PadsShortRows(t *testing.T) {
	path := writeTempCSV(t, "Name,PSA Licence,Contact Number\nJane Doe,PSA1234\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "", table.Rows[0].Get("Contact Number"))
}

func TestReadCSV_TrimsHeaders(t *testing.T) {
	path := writeTempCSV(t, " Name , PSA Licence \nJane Doe,PSA1234\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "PSA Licence"}, table.Columns)
	assert.Equal(t, "Jane Doe", table.Rows[0].Get("Name"))
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadCSV_EmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")

	table, err := ReadCSV(path)
	require.NoError(t, err)
	assert.True(t, table.Empty())
}
