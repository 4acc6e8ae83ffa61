package model

type (
	CriticalFactor string
	Urgency        string
)

const (
	CriticalFuel  CriticalFactor = "fuel"
	CriticalTires CriticalFactor = "tires"
)

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
)

// PitWindow is serialized as [low, high]
type PitWindow [2]int

func (w PitWindow) Low() int  { return w[0] }
func (w PitWindow) High() int { return w[1] }

type PitRecommendation struct {
	CarID             string         `json:"car_id"`
	CurrentLap        int            `json:"current_lap"`
	FuelRemainingPct  float64        `json:"fuel_remaining_pct"`
	TireConditionPct  float64        `json:"tire_condition_pct"`
	CriticalFactor    CriticalFactor `json:"critical_factor"`
	LapsUntilCritical float64        `json:"laps_until_critical"`
	OptimalPitLap     int            `json:"optimal_pit_lap"`
	PitWindow         PitWindow      `json:"pit_window"`
	Urgency           Urgency        `json:"urgency"`
}
