package model

import "time"

// TelemetrySample aggregates all metrics of one car recorded at the same
// lap and timestamp.
type TelemetrySample struct {
	CarID     string             `json:"car_id"`
	Lap       int                `json:"lap"`
	Timestamp time.Time          `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Metric returns the value of the first metric name found in candidates.
func (s *TelemetrySample) Metric(candidates ...string) (float64, bool) {
	for _, name := range candidates {
		if v, ok := s.Metrics[name]; ok {
			return v, true
		}
	}
	return 0, false
}

type SectionStats struct {
	CarID         string  `json:"car_id"`
	Section       string  `json:"section"`
	AvgSpeed      float64 `json:"avg_speed"`
	MaxSpeed      float64 `json:"max_speed"`
	MinSpeed      float64 `json:"min_speed"`
	AvgThrottle   float64 `json:"avg_throttle"`
	BrakingPoints int     `json:"braking_points"`
	GearChanges   float64 `json:"gear_changes"`
}
