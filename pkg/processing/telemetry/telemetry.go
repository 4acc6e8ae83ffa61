// Package telemetry converts the long format telemetry exports (one row per
// car, lap, timestamp and metric) into samples carrying all metrics of a timestamp.
package telemetry

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/mpapenbr/race-strategy-engine/log"
	"github.com/mpapenbr/race-strategy-engine/pkg/model"
	"github.com/mpapenbr/race-strategy-engine/pkg/schema"
	"github.com/mpapenbr/race-strategy-engine/pkg/table"
)

var ErrNotLongFormat = errors.New("telemetry table is not in long format")

// Frame holds either the reshaped samples or, if reshaping failed,
// the original long format table.
type Frame struct {
	Samples []model.TelemetrySample
	Raw     *table.Table
}

func (f *Frame) Wide() bool {
	return f != nil && f.Raw == nil
}

func (f *Frame) Len() int {
	switch {
	case f == nil:
		return 0
	case f.Wide():
		return len(f.Samples)
	default:
		return f.Raw.Len()
	}
}

// MetricNames returns the distinct metric names of a wide frame in sorted order.
func (f *Frame) MetricNames() []string {
	if !f.Wide() {
		return nil
	}
	seen := make(map[string]struct{})
	for i := range f.Samples {
		for k := range f.Samples[i].Metrics {
			seen[k] = struct{}{}
		}
	}
	ret := make([]string, 0, len(seen))
	for k := range seen {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}

type sampleKey struct {
	carID string
	lap   int
	ts    time.Time
}

// Reshape pivots the long format table. For each key and metric the first
// value encountered is kept, later duplicates are ignored.
// Any error during the transformation returns the raw table unchanged.
func Reshape(raw *table.Table) *Frame {
	l := log.Default().Named("telemetry")
	samples, err := reshape(raw)
	if err != nil {
		l.Warn("Error pivoting telemetry, keeping long format", log.ErrorField(err))
		return &Frame{Raw: raw}
	}
	l.Info("Telemetry pivoted",
		log.Int("rows", raw.Len()),
		log.Int("samples", len(samples)))
	return &Frame{Samples: samples}
}

type longColumns struct {
	carID, lap, ts, name, value string
}

func resolveLongColumns(raw *table.Table) (longColumns, error) {
	var ret longColumns
	var ok bool
	lookups := []struct {
		dst        *string
		candidates []string
	}{
		{&ret.carID, schema.CarIDCandidates},
		{&ret.lap, schema.LapNumberCandidates},
		{&ret.ts, schema.TimestampCandidates},
		{&ret.name, schema.MetricNameCandidates},
		{&ret.value, schema.MetricValueCandidates},
	}
	for _, lu := range lookups {
		if *lu.dst, ok = schema.Resolve(raw, lu.candidates).Get(); !ok {
			return ret, fmt.Errorf("%w: none of %v", ErrNotLongFormat, lu.candidates)
		}
	}
	return ret, nil
}

//nolint:cyclop // by design
func reshape(raw *table.Table) ([]model.TelemetrySample, error) {
	if raw == nil {
		return nil, ErrNotLongFormat
	}
	cols, err := resolveLongColumns(raw)
	if err != nil {
		return nil, err
	}
	lookup := make(map[sampleKey]int)
	ret := make([]model.TelemetrySample, 0)
	for i := range raw.Rows {
		valStr := raw.Value(i, cols.value)
		if valStr == "" {
			// missing values do not count as first occurrence
			continue
		}
		value, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		lap, err := raw.Int(i, cols.lap)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		ts, err := raw.Time(i, cols.ts)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		key := sampleKey{carID: raw.Value(i, cols.carID), lap: lap, ts: ts.UTC()}
		idx, ok := lookup[key]
		if !ok {
			idx = len(ret)
			lookup[key] = idx
			ret = append(ret, model.TelemetrySample{
				CarID:     key.carID,
				Lap:       key.lap,
				Timestamp: key.ts,
				Metrics:   make(map[string]float64),
			})
		}
		name := raw.Value(i, cols.name)
		if _, exists := ret[idx].Metrics[name]; !exists {
			ret[idx].Metrics[name] = value
		}
	}
	// same ordering as a grouped pivot: car, lap, timestamp
	slices.SortStableFunc(ret, func(a, b model.TelemetrySample) int {
		return cmp.Or(
			cmp.Compare(a.CarID, b.CarID),
			cmp.Compare(a.Lap, b.Lap),
			a.Timestamp.Compare(b.Timestamp),
		)
	})
	return ret, nil
}
