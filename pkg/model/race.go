package model

import "time"

type Weather struct {
	Temperature *float64 `json:"temperature"`
	Conditions  string   `json:"conditions"`
}

type TopPerformer struct {
	Position int     `json:"position"`
	CarID    string  `json:"car_id"`
	BestLap  float64 `json:"best_lap"`
}

// RaceCar is the per car entry of a RaceReport
type RaceCar struct {
	CarID             string            `json:"car_id"`
	TotalLaps         int               `json:"total_laps"`
	BestLapTime       float64           `json:"best_lap_time"`
	AvgLapTime        float64           `json:"avg_lap_time"`
	ConsistencyScore  float64           `json:"consistency_score"`
	PitRecommendation PitRecommendation `json:"pit_recommendation"`
	Status            string            `json:"status"`
	Position          int               `json:"position"`
}

// RaceReport is the result of processing one track/race pair in a batch run.
type RaceReport struct {
	Track              string         `json:"track"`
	Race               int            `json:"race"`
	Timestamp          time.Time      `json:"timestamp"`
	CurrentLap         int            `json:"current_lap"`
	TotalLapsCompleted int            `json:"total_laps_completed"`
	Cars               []RaceCar      `json:"cars"`
	Insights           []Insight      `json:"insights"`
	Weather            *Weather       `json:"weather"`
	TopPerformers      []TopPerformer `json:"top_performers"`
	Valid              bool           `json:"valid"`
	Issues             []string       `json:"issues,omitempty"`
}

type BatchSummary struct {
	TotalTracks      int `json:"total_tracks"`
	SuccessfulTracks int `json:"successful_tracks"`
	TotalRaces       int `json:"total_races"`
	TotalCars        int `json:"total_cars"`
	TotalInsights    int `json:"total_insights"`
}

type BatchResult struct {
	RunID     string        `json:"run_id"`
	Timestamp time.Time     `json:"timestamp"`
	Summary   BatchSummary  `json:"summary"`
	Tracks    []*RaceReport `json:"tracks"`
}
