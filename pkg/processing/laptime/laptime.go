// Package laptime builds lap records either from a direct lap time table
// or by joining lap start and lap end events.
package laptime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mpapenbr/race-strategy-engine/log"
	"github.com/mpapenbr/race-strategy-engine/pkg/model"
	"github.com/mpapenbr/race-strategy-engine/pkg/schema"
	"github.com/mpapenbr/race-strategy-engine/pkg/table"
)

type (
	lapKey struct {
		carID string
		lap   int
	}
	event struct {
		key lapKey
		ts  time.Time
	}
)

// Derive joins lap end and lap start events on car and lap number and
// computes the lap time as end minus start.
// Events without counterpart are dropped, as are laps outside the plausible band.
// The result follows the order of the lap end events.
func Derive(starts, ends *table.Table) ([]model.LapRecord, error) {
	l := log.Default().Named("laptime")
	startCols, ok := schema.ResolveEventColumns(starts).Get()
	if !ok {
		return nil, fmt.Errorf("lap start events: %w", table.ErrMissingColumn)
	}
	endCols, ok := schema.ResolveEventColumns(ends).Get()
	if !ok {
		return nil, fmt.Errorf("lap end events: %w", table.ErrMissingColumn)
	}

	startEvents := collectEvents(starts, startCols)
	endEvents := collectEvents(ends, endCols)

	byKey := make(map[lapKey][]time.Time)
	for _, e := range startEvents {
		byKey[e.key] = append(byKey[e.key], e.ts)
	}

	ret := make([]model.LapRecord, 0, len(endEvents))
	joined := 0
	for _, e := range endEvents {
		for _, startTS := range byKey[e.key] {
			joined++
			lapTime := e.ts.Sub(startTS).Seconds()
			if !Plausible(lapTime) {
				continue
			}
			ret = append(ret, model.LapRecord{
				CarID:     e.key.carID,
				Lap:       e.key.lap,
				LapTime:   lapTime,
				Timestamp: e.ts,
				HasLap:    true,
			})
		}
	}
	l.Info("Merged lap events",
		log.Int("starts", starts.Len()),
		log.Int("ends", ends.Len()),
		log.Int("joined", joined),
		log.Int("laps", len(ret)))
	return ret, nil
}

// Plausible reports whether a derived lap time lies strictly inside the plausible band.
func Plausible(lapTime float64) bool {
	return lapTime > model.MinPlausibleLapTime && lapTime < model.MaxPlausibleLapTime
}

// rows with unparsable lap number or timestamp are skipped
func collectEvents(t *table.Table, cols schema.EventColumns) []event {
	ret := make([]event, 0, t.Len())
	skipped := 0
	for i := range t.Rows {
		lap, err := t.Int(i, cols.Lap)
		if err != nil {
			skipped++
			continue
		}
		ts, err := t.Time(i, cols.Timestamp)
		if err != nil {
			skipped++
			continue
		}
		ret = append(ret, event{
			key: lapKey{carID: t.Value(i, cols.CarID), lap: lap},
			ts:  ts,
		})
	}
	if skipped > 0 {
		log.Default().Named("laptime").Debug("skipped unparsable events", log.Int("count", skipped))
	}
	return ret
}

// FromTable converts a direct lap time table into lap records.
// The second return value is false if no lap time column could be resolved.
// Rows with unparsable lap times are skipped. Values are not filtered by the
// plausibility band, implausible direct values are reported by the integrity check.
func FromTable(t *table.Table) ([]model.LapRecord, bool) {
	cols, ok := schema.ResolveLapColumns(t).Get()
	if !ok {
		return nil, false
	}
	lapCol, hasLap := cols.Lap.Get()
	tsCol, hasTS := schema.Resolve(t, schema.TimestampCandidates).Get()

	ret := make([]model.LapRecord, 0, t.Len())
	for i := range t.Rows {
		lapTime, err := ParseLapTime(t.Value(i, cols.LapTime))
		if err != nil {
			continue
		}
		rec := model.LapRecord{
			CarID:   t.Value(i, cols.CarID),
			LapTime: lapTime,
			HasLap:  hasLap,
		}
		if hasLap {
			if rec.Lap, err = t.Int(i, lapCol); err != nil {
				continue
			}
		}
		if hasTS {
			rec.Timestamp, _ = t.Time(i, tsCol)
		}
		ret = append(ret, rec)
	}
	return ret, true
}

// ParseLapTime accepts plain seconds ("97.428") and clock notation ("1:37.428", "0:01:37.428").
func ParseLapTime(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("empty lap time")
	}
	parts := strings.Split(v, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid lap time: %q", v)
	}
	total := 0.0
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid lap time: %q", v)
		}
		total = total*60 + f
	}
	return total, nil
}
