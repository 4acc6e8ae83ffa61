package model

import "time"

// CarSummary is the per car entry of a RaceSnapshot
type CarSummary struct {
	CarID             string            `json:"car_id"`
	Position          int               `json:"position"`
	LastLap           float64           `json:"last_lap"`
	BestLap           float64           `json:"best_lap"`
	AvgLap            float64           `json:"avg_lap"`
	PitRecommendation PitRecommendation `json:"pit_recommendation"`
}

// RaceSnapshot is the race state handed to the dashboard.
type RaceSnapshot struct {
	Timestamp  time.Time    `json:"timestamp"`
	CurrentLap int          `json:"current_lap"`
	Track      string       `json:"track"`
	Cars       []CarSummary `json:"cars"`
	Insights   []Insight    `json:"insights"`
}
