//nolint:funlen // ok for tests
package schema

import (
	"testing"

	"github.com/aarondl/opt/omit"
	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/race-strategy-engine/pkg/table"
)

func fields(names ...string) *table.Table {
	return table.New(names, nil)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		fs         FieldSet
		candidates []string
		want       omit.Val[string]
	}{
		{"first match wins", fields("Car", "vehicle_id"), CarIDCandidates, omit.From("vehicle_id")},
		{"candidate order not column order", fields("elapsed", "lap_time"), LapTimeCandidates, omit.From("lap_time")},
		{"no match", fields("a", "b"), LapTimeCandidates, omit.Val[string]{}},
		{"case sensitive", fields("LAP"), LapNumberCandidates, omit.Val[string]{}},
		{"nil field set", nil, LapNumberCandidates, omit.Val[string]{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.fs, tt.candidates))
		})
	}
}

func TestCarIDColumn_FallbackToFirstColumn(t *testing.T) {
	assert.Equal(t, omit.From("NUMBER"), CarIDColumn(fields("NUMBER", "lap_time")))
	assert.Equal(t, omit.From("CarId"), CarIDColumn(fields("NUMBER", "CarId")))
	assert.True(t, CarIDColumn(fields()).IsUnset())
}

func TestResolveLapColumns(t *testing.T) {
	tests := []struct {
		name string
		fs   FieldSet
		want omit.Val[LapColumns]
	}{
		{
			name: "derived layout",
			fs:   fields("vehicle_id", "lap", "lap_time", "timestamp"),
			want: omit.From(LapColumns{CarID: "vehicle_id", LapTime: "lap_time", Lap: omit.From("lap")}),
		},
		{
			name: "without lap number",
			fs:   fields("Car", "LapTime"),
			want: omit.From(LapColumns{CarID: "Car", LapTime: "LapTime"}),
		},
		{
			name: "fallback car column",
			fs:   fields("NUMBER", "Lap Time", "LapNumber"),
			want: omit.From(LapColumns{CarID: "NUMBER", LapTime: "Lap Time", Lap: omit.From("LapNumber")}),
		},
		{
			name: "no lap time column",
			fs:   fields("vehicle_id", "lap", "value"),
			want: omit.Val[LapColumns]{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLapColumns(tt.fs))
		})
	}
}

func TestResolveEventColumns(t *testing.T) {
	got := ResolveEventColumns(fields("meta_time", "vehicle_id", "lap", "timestamp"))
	assert.Equal(t, omit.From(EventColumns{CarID: "vehicle_id", Lap: "lap", Timestamp: "timestamp"}), got)

	assert.True(t, ResolveEventColumns(fields("vehicle_id", "timestamp")).IsUnset())
	assert.True(t, ResolveEventColumns(fields("NUMBER", "lap", "timestamp")).IsUnset())
}
