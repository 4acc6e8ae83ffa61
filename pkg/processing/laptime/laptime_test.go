//nolint:funlen,lll // ok for tests
package laptime

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/race-strategy-engine/pkg/model"
	"github.com/mpapenbr/race-strategy-engine/pkg/table"
)

var eventHeader = []string{"vehicle_id", "lap", "timestamp"}

func ts(sec float64) time.Time {
	base := time.Date(2025, 9, 5, 14, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(sec * float64(time.Second)))
}

func tsStr(sec float64) string {
	return ts(sec).Format(time.RFC3339Nano)
}

func TestDerive(t *testing.T) {
	starts := table.New(eventHeader, [][]string{
		{"GR86-002", "1", tsStr(0)},
		{"GR86-002", "2", tsStr(100)},
		{"GR86-002", "3", tsStr(200)},
		{"GR86-013", "1", tsStr(1)},
		{"GR86-013", "2", tsStr(95)},
		{"GR86-099", "1", tsStr(0)}, // no end event
	})
	ends := table.New(eventHeader, [][]string{
		{"GR86-013", "2", tsStr(190)},
		{"GR86-002", "1", tsStr(100)},
		{"GR86-002", "2", tsStr(200)},
		{"GR86-002", "3", tsStr(200.5)}, // 0.5s lap, artifact
		{"GR86-013", "1", tsStr(95)},
		{"GR86-042", "1", tsStr(95)}, // no start event
		{"GR86-002", "4", tsStr(900)},
	})

	got, err := Derive(starts, ends)
	require.NoError(t, err)

	want := []model.LapRecord{
		{CarID: "GR86-013", Lap: 2, LapTime: 95, Timestamp: ts(190), HasLap: true},
		{CarID: "GR86-002", Lap: 1, LapTime: 100, Timestamp: ts(100), HasLap: true},
		{CarID: "GR86-002", Lap: 2, LapTime: 100, Timestamp: ts(200), HasLap: true},
		{CarID: "GR86-013", Lap: 1, LapTime: 94, Timestamp: ts(95), HasLap: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Derive() mismatch (-want +got):\n%s", diff)
	}
	for _, r := range got {
		assert.Greater(t, r.LapTime, model.MinPlausibleLapTime)
		assert.Less(t, r.LapTime, model.MaxPlausibleLapTime)
	}
}

func TestDerive_BandIsExclusive(t *testing.T) {
	starts := table.New(eventHeader, [][]string{
		{"A", "1", tsStr(0)},
		{"A", "2", tsStr(1000)},
		{"A", "3", tsStr(2000)},
	})
	ends := table.New(eventHeader, [][]string{
		{"A", "1", tsStr(30)},
		{"A", "2", tsStr(1300)},
		{"A", "3", tsStr(2030.001)},
	})
	got, err := Derive(starts, ends)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Lap)
}

func TestDerive_SkipsUnparsableRows(t *testing.T) {
	starts := table.New(eventHeader, [][]string{
		{"A", "x", tsStr(0)},
		{"A", "2", "not a time"},
		{"A", "3", tsStr(200)},
	})
	ends := table.New(eventHeader, [][]string{
		{"A", "3", tsStr(290)},
	})
	got, err := Derive(starts, ends)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 90.0, got[0].LapTime, 1e-9)
}

func TestDerive_MissingColumns(t *testing.T) {
	good := table.New(eventHeader, nil)
	bad := table.New([]string{"vehicle_id", "timestamp"}, nil)

	_, err := Derive(bad, good)
	assert.ErrorIs(t, err, table.ErrMissingColumn)
	_, err = Derive(good, bad)
	assert.ErrorIs(t, err, table.ErrMissingColumn)
}

func TestFromTable(t *testing.T) {
	tbl := table.New([]string{"CarId", "Lap", "LapTime"}, [][]string{
		{"7", "1", "1:37.500"},
		{"7", "2", "96.25"},
		{"7", "x", "96.25"},
		{"8", "1", ""},
	})
	got, ok := FromTable(tbl)
	require.True(t, ok)
	want := []model.LapRecord{
		{CarID: "7", Lap: 1, LapTime: 97.5, HasLap: true},
		{CarID: "7", Lap: 2, LapTime: 96.25, HasLap: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromTable() mismatch (-want +got):\n%s", diff)
	}

	_, ok = FromTable(table.New([]string{"vehicle_id", "lap", "value"}, nil))
	assert.False(t, ok)
}

func TestParseLapTime(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"97.428", 97.428, false},
		{"1:37.428", 97.428, false},
		{"0:01:37.5", 97.5, false},
		{"", 0, true},
		{"1:xx", 0, true},
		{"1:2:3:4", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLapTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLapTime() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
