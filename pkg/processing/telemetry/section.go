package telemetry

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aarondl/opt/omit"
	"github.com/samber/lo"

	"github.com/mpapenbr/race-strategy-engine/pkg/model"
	"github.com/mpapenbr/race-strategy-engine/pkg/schema"
)

// front brake pressure above this value counts as braking
const brakingThreshold = 50.0

// AnalyzeSection computes speed, throttle, braking and gear statistics for one car
// within the lap distance range [start, end].
// The result is unset if the frame is not reshaped or no sample lies in the section.
func AnalyzeSection(f *Frame, carID string, start, end float64) omit.Val[model.SectionStats] {
	if !f.Wide() {
		return omit.Val[model.SectionStats]{}
	}
	section := lo.Filter(f.Samples, func(s model.TelemetrySample, _ int) bool {
		if s.CarID != carID {
			return false
		}
		d, ok := s.Metric(schema.DistanceMetrics...)
		return ok && d >= start && d <= end
	})
	if len(section) == 0 {
		return omit.Val[model.SectionStats]{}
	}

	speeds := metricValues(section, schema.SpeedMetrics)
	throttle := metricValues(section, schema.ThrottleMetrics)
	brakes := metricValues(section, schema.BrakeMetrics)

	ret := model.SectionStats{
		CarID:       carID,
		Section:     fmt.Sprintf("%s-%sm", formatDist(start), formatDist(end)),
		AvgSpeed:    mean(speeds),
		AvgThrottle: mean(throttle),
		BrakingPoints: lo.CountBy(brakes, func(v float64) bool {
			return v > brakingThreshold
		}),
		GearChanges: gearChanges(section),
	}
	if len(speeds) > 0 {
		ret.MaxSpeed = lo.Max(speeds)
		ret.MinSpeed = lo.Min(speeds)
	}
	return omit.From(ret)
}

func metricValues(samples []model.TelemetrySample, candidates []string) []float64 {
	return lo.FilterMap(samples, func(s model.TelemetrySample, _ int) (float64, bool) {
		return s.Metric(candidates...)
	})
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return lo.Sum(values) / float64(len(values))
}

// sum of absolute gear differences between consecutive samples carrying a gear value
func gearChanges(samples []model.TelemetrySample) float64 {
	gears := metricValues(samples, schema.GearMetrics)
	sum := 0.0
	for i := 1; i < len(gears); i++ {
		sum += math.Abs(gears[i] - gears[i-1])
	}
	return sum
}

func formatDist(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}
