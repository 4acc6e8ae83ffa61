// Package stats computes lap time statistics per car.
package stats

import (
	"github.com/aarondl/opt/omit"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/mpapenbr/race-strategy-engine/pkg/model"
)

// Analyze computes lap statistics over all records or, if carID is set,
// over the laps of that car. The result is unset if no laps remain.
func Analyze(records []model.LapRecord, carID omit.Val[string]) omit.Val[model.LapStats] {
	laps := records
	id, filtered := carID.Get()
	if filtered {
		laps = ForCar(records, id)
	}
	if len(laps) == 0 {
		return omit.Val[model.LapStats]{}
	}
	times := LapTimes(laps)
	mean, std := MeanStdDev(times)
	return omit.From(model.LapStats{
		CarID:            id,
		TotalLaps:        len(times),
		BestLap:          lo.Min(times),
		WorstLap:         lo.Max(times),
		AvgLap:           mean,
		StdDev:           std,
		ConsistencyScore: ConsistencyScore(mean, std, len(times)),
	})
}

// Compare computes best, average and standard deviation for two cars and their deltas.
// The result is unset if one of the cars has no laps.
func Compare(records []model.LapRecord, carID1, carID2 string) omit.Val[model.Comparison] {
	laps1 := LapTimes(ForCar(records, carID1))
	laps2 := LapTimes(ForCar(records, carID2))
	if len(laps1) == 0 || len(laps2) == 0 {
		return omit.Val[model.Comparison]{}
	}
	entry := func(id string, times []float64) model.CarComparisonEntry {
		mean, std := MeanStdDev(times)
		return model.CarComparisonEntry{
			ID:          id,
			BestLap:     lo.Min(times),
			AvgLap:      mean,
			Consistency: std,
		}
	}
	c1 := entry(carID1, laps1)
	c2 := entry(carID2, laps2)
	return omit.From(model.Comparison{
		Car1: c1,
		Car2: c2,
		Delta: model.ComparisonDelta{
			BestLap:     c1.BestLap - c2.BestLap,
			AvgLap:      c1.AvgLap - c2.AvgLap,
			Consistency: c2.Consistency - c1.Consistency,
		},
	})
}

// MeanStdDev returns the arithmetic mean and the sample standard deviation.
// With less than two values the standard deviation is 0.
func MeanStdDev(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}

// ConsistencyScore is 100 - (std/mean*100). A single lap scores exactly 100.
func ConsistencyScore(mean, std float64, n int) float64 {
	if n < 2 || std == 0 || mean == 0 {
		return 100
	}
	return 100 - (std / mean * 100)
}

func ForCar(records []model.LapRecord, carID string) []model.LapRecord {
	return lo.Filter(records, func(r model.LapRecord, _ int) bool {
		return r.CarID == carID
	})
}

func LapTimes(records []model.LapRecord) []float64 {
	return lo.Map(records, func(r model.LapRecord, _ int) float64 {
		return r.LapTime
	})
}

// CarIDs returns the distinct car ids in order of first appearance.
func CarIDs(records []model.LapRecord) []string {
	return lo.Uniq(lo.Map(records, func(r model.LapRecord, _ int) string {
		return r.CarID
	}))
}
