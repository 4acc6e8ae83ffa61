// Package insight derives prioritized race control messages from pit
// predictions and short term lap time trends.
package insight

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/mpapenbr/race-strategy-engine/pkg/model"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/pit"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/stats"
)

const (
	pitCars   = 5 // number of cars checked for pit urgency
	trendCars = 3 // number of cars checked for lap time trends

	trendWindow     = 5 // laps before the current lap taken into account
	trendMinLaps    = 3
	degradeDelta    = 0.5 // seconds
	improvementDiff = 0.3 // seconds
)

// Generate creates insights for the current lap. Cars are taken in order of
// their first appearance in records, not by ranking.
// Pit insights are emitted before trend insights. Trend insights require lap numbers.
func Generate(records []model.LapRecord, currentLap int, opts ...pit.Option) []model.Insight {
	ret := make([]model.Insight, 0)
	if len(records) == 0 {
		return ret
	}
	carIDs := stats.CarIDs(records)

	for _, carID := range lo.Slice(carIDs, 0, pitCars) {
		if in, ok := pitInsight(pit.Predict(carID, currentLap, opts...), currentLap); ok {
			ret = append(ret, in)
		}
	}

	if !hasLapNumbers(records) {
		return ret
	}
	for _, carID := range lo.Slice(carIDs, 0, trendCars) {
		if in, ok := trendInsight(records, carID, currentLap); ok {
			ret = append(ret, in)
		}
	}
	return ret
}

func pitInsight(rec model.PitRecommendation, currentLap int) (model.Insight, bool) {
	switch rec.Urgency {
	case model.UrgencyCritical:
		return model.Insight{
			Priority: model.PriorityHigh,
			Type:     model.InsightPitStrategy,
			Message: fmt.Sprintf("%s: PIT NOW - %s critical (%.1f laps remaining)",
				rec.CarID, rec.CriticalFactor, rec.LapsUntilCritical),
			CarID: rec.CarID,
		}, true
	case model.UrgencyHigh:
		return model.Insight{
			Priority: model.PriorityMedium,
			Type:     model.InsightPitStrategy,
			Message: fmt.Sprintf("%s: Pit window opening in %d laps",
				rec.CarID, rec.OptimalPitLap-currentLap),
			CarID: rec.CarID,
		}, true
	case model.UrgencyMedium:
		return model.Insight{}, false
	}
	return model.Insight{}, false
}

// compares the last lap of the recent window with the first one
func trendInsight(records []model.LapRecord, carID string, currentLap int) (model.Insight, bool) {
	recent := lo.Filter(records, func(r model.LapRecord, _ int) bool {
		return r.CarID == carID && r.Lap >= currentLap-trendWindow && r.Lap <= currentLap
	})
	if len(recent) < trendMinLaps {
		return model.Insight{}, false
	}
	slices.SortStableFunc(recent, func(a, b model.LapRecord) int {
		return a.Lap - b.Lap
	})
	first := recent[0].LapTime
	last := recent[len(recent)-1].LapTime
	switch {
	case last > first+degradeDelta:
		return model.Insight{
			Priority: model.PriorityMedium,
			Type:     model.InsightPerformance,
			Message:  fmt.Sprintf("%s: Lap times degrading - possible tire wear", carID),
			CarID:    carID,
		}, true
	case last < first-improvementDiff:
		return model.Insight{
			Priority: model.PriorityLow,
			Type:     model.InsightPerformance,
			Message:  fmt.Sprintf("%s: Improving pace - excellent tire management", carID),
			CarID:    carID,
		}, true
	}
	return model.Insight{}, false
}

func hasLapNumbers(records []model.LapRecord) bool {
	return len(records) > 0 && records[0].HasLap
}
