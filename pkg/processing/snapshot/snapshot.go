// Package snapshot assembles the ranked race state consumed by the dashboard.
package snapshot

import (
	"cmp"
	"slices"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/samber/lo"

	"github.com/mpapenbr/race-strategy-engine/pkg/model"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/insight"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/pit"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/stats"
)

type Params struct {
	Track      string
	CurrentLap int
	Timestamp  time.Time
	PitOptions []pit.Option
}

// Export creates the race snapshot for the current lap.
// Every car with a lap record for the current lap (or, without lap numbers,
// with any record) is included. Cars are ordered by best lap, positions start at 1.
// The result is unset if there are no records.
func Export(records []model.LapRecord, p Params) omit.Val[model.RaceSnapshot] {
	if len(records) == 0 {
		return omit.Val[model.RaceSnapshot]{}
	}
	withLaps := records[0].HasLap

	cars := make([]model.CarSummary, 0)
	for _, carID := range stats.CarIDs(records) {
		carLaps := stats.ForCar(records, carID)
		var current []model.LapRecord
		if withLaps {
			current = lo.Filter(carLaps, func(r model.LapRecord, _ int) bool {
				return r.Lap == p.CurrentLap
			})
		} else {
			current = carLaps[len(carLaps)-1:]
		}
		if len(current) == 0 {
			continue
		}
		times := stats.LapTimes(carLaps)
		mean, _ := stats.MeanStdDev(times)
		cars = append(cars, model.CarSummary{
			CarID:             carID,
			LastLap:           current[0].LapTime,
			BestLap:           lo.Min(times),
			AvgLap:            mean,
			PitRecommendation: pit.Predict(carID, p.CurrentLap, p.PitOptions...),
		})
	}
	slices.SortStableFunc(cars, func(a, b model.CarSummary) int {
		return cmp.Compare(a.BestLap, b.BestLap)
	})
	for i := range cars {
		cars[i].Position = i + 1
	}

	return omit.From(model.RaceSnapshot{
		Timestamp:  p.Timestamp,
		CurrentLap: p.CurrentLap,
		Track:      p.Track,
		Cars:       cars,
		Insights:   insight.Generate(records, p.CurrentLap, p.PitOptions...),
	})
}
