// Package pit predicts pit windows from a linear fuel and tire depletion model.
package pit

import (
	"math"

	"github.com/mpapenbr/race-strategy-engine/pkg/model"
)

const (
	DefaultFuelPerLap  = 2.5 // percent per lap
	DefaultTireDegRate = 3.2 // percent per lap

	initialFuel = 100.0
	initialTire = 100.0
	// pit this many laps before the critical resource runs out
	exhaustionBias = 2.5
	// pit window is optimal lap +/- this value
	windowHalfWidth = 2

	criticalLaps = 3.0
	highLaps     = 6.0
)

type (
	Params struct {
		FuelPerLap  float64
		TireDegRate float64
	}
	Option func(p *Params)
)

func WithFuelPerLap(v float64) Option {
	return func(p *Params) {
		p.FuelPerLap = v
	}
}

func WithTireDegRate(v float64) Option {
	return func(p *Params) {
		p.TireDegRate = v
	}
}

func NewParams(opts ...Option) Params {
	p := Params{FuelPerLap: DefaultFuelPerLap, TireDegRate: DefaultTireDegRate}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Predict computes the pit recommendation for a car at currentLap.
// Fuel and tire percentages are not clamped at zero, negative remaining laps
// keep the urgency at critical.
func Predict(carID string, currentLap int, opts ...Option) model.PitRecommendation {
	p := NewParams(opts...)

	fuelRemaining := initialFuel - float64(currentLap)*p.FuelPerLap
	tireCondition := initialTire - float64(currentLap)*p.TireDegRate

	lapsOnFuel := fuelRemaining / p.FuelPerLap
	lapsOnTires := tireCondition / p.TireDegRate

	// fuel is checked first and wins ties
	critical := model.CriticalFuel
	lapsRemaining := lapsOnFuel
	if lapsOnTires < lapsOnFuel {
		critical = model.CriticalTires
		lapsRemaining = lapsOnTires
	}

	optimal := currentLap + max(1, int(math.Floor(lapsRemaining-exhaustionBias)))

	return model.PitRecommendation{
		CarID:             carID,
		CurrentLap:        currentLap,
		FuelRemainingPct:  fuelRemaining,
		TireConditionPct:  tireCondition,
		CriticalFactor:    critical,
		LapsUntilCritical: lapsRemaining,
		OptimalPitLap:     optimal,
		PitWindow:         model.PitWindow{optimal - windowHalfWidth, optimal + windowHalfWidth},
		Urgency:           urgency(lapsRemaining),
	}
}

func urgency(lapsRemaining float64) model.Urgency {
	switch {
	case lapsRemaining < criticalLaps:
		return model.UrgencyCritical
	case lapsRemaining < highLaps:
		return model.UrgencyHigh
	default:
		return model.UrgencyMedium
	}
}
