package model

import "time"

// LapRecord holds one completed lap of one car.
type LapRecord struct {
	CarID     string    `json:"car_id"`
	Lap       int       `json:"lap_number"`
	LapTime   float64   `json:"lap_time_seconds"`
	Timestamp time.Time `json:"timestamp"`
	// HasLap is false if the source table did not provide a lap number column
	HasLap bool `json:"-"`
}

// lap time band (seconds) used to drop artifacts of derived laps
const (
	MinPlausibleLapTime = 30.0
	MaxPlausibleLapTime = 300.0
)

// LapStats is the result of the lap statistics analysis.
// CarID is empty when the analysis ran over all cars.
type LapStats struct {
	CarID            string  `json:"car_id,omitempty"`
	TotalLaps        int     `json:"total_laps"`
	BestLap          float64 `json:"best_lap"`
	WorstLap         float64 `json:"worst_lap"`
	AvgLap           float64 `json:"avg_lap"`
	StdDev           float64 `json:"std_dev"`
	ConsistencyScore float64 `json:"consistency_score"`
}

type CarComparisonEntry struct {
	ID          string  `json:"id"`
	BestLap     float64 `json:"best_lap"`
	AvgLap      float64 `json:"avg_lap"`
	Consistency float64 `json:"consistency"`
}

type ComparisonDelta struct {
	BestLap     float64 `json:"best_lap"`
	AvgLap      float64 `json:"avg_lap"`
	Consistency float64 `json:"consistency"`
}

type Comparison struct {
	Car1  CarComparisonEntry `json:"car_1"`
	Car2  CarComparisonEntry `json:"car_2"`
	Delta ComparisonDelta    `json:"delta"`
}
