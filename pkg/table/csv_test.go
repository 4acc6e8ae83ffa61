package table

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHeader []string
		wantRows   int
	}{
		{
			name:       "comma separated",
			input:      "vehicle_id,lap,timestamp\nGR86-002,1,2025-09-05T00:28:20.593Z\nGR86-002,2,2025-09-05T00:30:01.000Z\n",
			wantHeader: []string{"vehicle_id", "lap", "timestamp"},
			wantRows:   2,
		},
		{
			name:       "semicolon separated with bom",
			input:      "\ufeffPOSITION;NUMBER;FL_TIME\n1;13;1:37.428\n",
			wantHeader: []string{"POSITION", "NUMBER", "FL_TIME"},
			wantRows:   1,
		},
		{
			name:       "blank lines are skipped",
			input:      "a,b\n1,2\n\n3,4\n",
			wantHeader: []string{"a", "b"},
			wantRows:   2,
		},
		{
			name:       "empty input",
			input:      "",
			wantHeader: nil,
			wantRows:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, got.Header)
			assert.Equal(t, tt.wantRows, got.Len())
		})
	}
}

func TestReadCSVFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/x.csv", []byte("a,b\n1,2\n"), 0o644))

	got, err := ReadCSVFile(fs, "/data/x.csv")
	require.NoError(t, err)
	assert.Equal(t, "2", got.Value(0, "b"))

	_, err = ReadCSVFile(fs, "/data/missing.csv")
	assert.Error(t, err)
}

func TestTable_Accessors(t *testing.T) {
	tbl := New([]string{"car", "lap", "value", "ts"}, [][]string{
		{"A", "3", " 95.5 ", "2025-09-05 00:28:20.5"},
		{"B", "4.0", "x"},
	})
	assert.True(t, tbl.Has("lap"))
	assert.False(t, tbl.Has("Lap"))
	assert.Equal(t, 4, len(tbl.Fields()))

	f, err := tbl.Float(0, "value")
	require.NoError(t, err)
	assert.InDelta(t, 95.5, f, 1e-9)

	_, err = tbl.Float(1, "value")
	assert.Error(t, err)
	_, err = tbl.Float(1, "ts")
	assert.ErrorIs(t, err, ErrMissingColumn)

	i, err := tbl.Int(1, "lap")
	require.NoError(t, err)
	assert.Equal(t, 4, i)

	ts, err := tbl.Time(0, "ts")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 5, 0, 28, 20, 500_000_000, time.UTC), ts)

	assert.Equal(t, "", tbl.Value(5, "car"))
	assert.Equal(t, "", tbl.Value(0, "unknown"))
}

func TestParseTime(t *testing.T) {
	ts, err := ParseTime("2025-09-05T00:28:20.593Z")
	require.NoError(t, err)
	assert.Equal(t, 593_000_000, ts.Nanosecond())

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
	_, err = ParseTime("")
	assert.Error(t, err)
}
