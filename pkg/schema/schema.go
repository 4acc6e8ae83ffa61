// Package schema maps the inconsistent column names of the timing exports
// onto the logical columns used by the analysis.
//
// All lookups probe a fixed, ordered candidate list. The first candidate present
// in the field set wins, so the order of the lists must not be changed.
package schema

import (
	"github.com/aarondl/opt/omit"
)

// FieldSet is the set of column names a table provides.
type FieldSet interface {
	Has(name string) bool
	Fields() []string
}

var (
	CarIDCandidates     = []string{"CarId", "vehicle_id", "Car", "Vehicle", "vehicle_number"}
	LapTimeCandidates   = []string{"lap_time", "LapTime", "laptime", "time", "Lap Time", "elapsed"}
	LapNumberCandidates = []string{"Lap", "lap", "LapNumber", "lap_number"}
	TimestampCandidates = []string{"timestamp", "Timestamp", "meta_time"}
)

// telemetry long format columns
var (
	MetricNameCandidates  = []string{"telemetry_name", "TelemetryName", "metric_name", "name"}
	MetricValueCandidates = []string{"telemetry_value", "TelemetryValue", "metric_value", "value"}
)

// telemetry metric names
var (
	SpeedMetrics    = []string{"Speed", "speed"}
	ThrottleMetrics = []string{"ath", "aps", "Throttle", "throttle"}
	BrakeMetrics    = []string{"pbrake_f", "Brake", "brake"}
	GearMetrics     = []string{"Gear", "gear"}
	DistanceMetrics = []string{"Distance", "distance", "Laptrigger_lapdist_dls", "lapdist"}
)

// weather export columns
var AirTempCandidates = []string{"AIR_TEMP", "air_temp", "AirTemp"}

// LapColumns are the resolved column names of a lap time table.
type LapColumns struct {
	CarID   string
	LapTime string
	Lap     omit.Val[string]
}

// EventColumns are the resolved column names of a lap start/end table.
type EventColumns struct {
	CarID     string
	Lap       string
	Timestamp string
}

// Resolve returns the first candidate contained in fs.
func Resolve(fs FieldSet, candidates []string) omit.Val[string] {
	if fs == nil {
		return omit.Val[string]{}
	}
	for _, c := range candidates {
		if fs.Has(c) {
			return omit.From(c)
		}
	}
	return omit.Val[string]{}
}

// CarIDColumn resolves the car identifier column, falling back to the first column.
func CarIDColumn(fs FieldSet) omit.Val[string] {
	if col := Resolve(fs, CarIDCandidates); col.IsSet() {
		return col
	}
	if fs == nil || len(fs.Fields()) == 0 {
		return omit.Val[string]{}
	}
	return omit.From(fs.Fields()[0])
}

// ResolveLapColumns resolves the columns of a lap time table.
// The result is unset if no lap time column can be found.
func ResolveLapColumns(fs FieldSet) omit.Val[LapColumns] {
	carID, ok := CarIDColumn(fs).Get()
	if !ok {
		return omit.Val[LapColumns]{}
	}
	lapTime, ok := Resolve(fs, LapTimeCandidates).Get()
	if !ok {
		return omit.Val[LapColumns]{}
	}
	return omit.From(LapColumns{
		CarID:   carID,
		LapTime: lapTime,
		Lap:     Resolve(fs, LapNumberCandidates),
	})
}

// ResolveEventColumns resolves the columns of a lap start or lap end table.
// No first-column fallback is applied here, all three columns are required to join.
func ResolveEventColumns(fs FieldSet) omit.Val[EventColumns] {
	carID, ok := Resolve(fs, CarIDCandidates).Get()
	if !ok {
		return omit.Val[EventColumns]{}
	}
	lap, ok := Resolve(fs, LapNumberCandidates).Get()
	if !ok {
		return omit.Val[EventColumns]{}
	}
	ts, ok := Resolve(fs, TimestampCandidates).Get()
	if !ok {
		return omit.Val[EventColumns]{}
	}
	return omit.From(EventColumns{CarID: carID, Lap: lap, Timestamp: ts})
}
