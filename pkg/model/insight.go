package model

type (
	Priority    string
	InsightType string
)

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

const (
	InsightPitStrategy InsightType = "pit_strategy"
	InsightPerformance InsightType = "performance"
)

type Insight struct {
	Priority Priority    `json:"priority"`
	Type     InsightType `json:"type"`
	Message  string      `json:"message"`
	CarID    string      `json:"car_id"`
}
