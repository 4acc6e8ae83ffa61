//nolint:funlen // ok for tests
package pit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/race-strategy-engine/pkg/model"
)

func TestPredict(t *testing.T) {
	tests := []struct {
		name          string
		lap           int
		opts          []Option
		wantFuel      float64
		wantTire      float64
		wantFactor    model.CriticalFactor
		wantRemaining float64
		wantOptimal   int
		wantUrgency   model.Urgency
	}{
		{
			name: "race start", lap: 0,
			wantFuel: 100, wantTire: 100,
			wantFactor: model.CriticalTires, wantRemaining: 31.25,
			wantOptimal: 28, wantUrgency: model.UrgencyMedium,
		},
		{
			name: "lap 15", lap: 15,
			wantFuel: 62.5, wantTire: 52.0,
			wantFactor: model.CriticalTires, wantRemaining: 16.25,
			wantOptimal: 28, wantUrgency: model.UrgencyMedium,
		},
		{
			name: "lap 27 high", lap: 27,
			wantFuel: 32.5, wantTire: 13.6,
			wantFactor: model.CriticalTires, wantRemaining: 4.25,
			wantOptimal: 28, wantUrgency: model.UrgencyHigh,
		},
		{
			name: "lap 36 beyond exhaustion", lap: 36,
			wantFuel: 10.0, wantTire: -15.2,
			wantFactor: model.CriticalTires, wantRemaining: -4.75,
			wantOptimal: 37, wantUrgency: model.UrgencyCritical,
		},
		{
			name: "fuel bound", lap: 10, opts: []Option{WithFuelPerLap(5), WithTireDegRate(1)},
			wantFuel: 50, wantTire: 90,
			wantFactor: model.CriticalFuel, wantRemaining: 10,
			wantOptimal: 17, wantUrgency: model.UrgencyMedium,
		},
		{
			name: "tie resolves to fuel", lap: 10, opts: []Option{WithFuelPerLap(3), WithTireDegRate(3)},
			wantFuel: 70, wantTire: 70,
			wantFactor: model.CriticalFuel, wantRemaining: 23.333333333333332,
			wantOptimal: 30, wantUrgency: model.UrgencyMedium,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Predict("GR86-002", tt.lap, tt.opts...)
			assert.Equal(t, "GR86-002", got.CarID)
			assert.Equal(t, tt.lap, got.CurrentLap)
			assert.InDelta(t, tt.wantFuel, got.FuelRemainingPct, 1e-9)
			assert.InDelta(t, tt.wantTire, got.TireConditionPct, 1e-9)
			assert.Equal(t, tt.wantFactor, got.CriticalFactor)
			assert.InDelta(t, tt.wantRemaining, got.LapsUntilCritical, 1e-9)
			assert.Equal(t, tt.wantOptimal, got.OptimalPitLap)
			assert.Equal(t, model.PitWindow{tt.wantOptimal - 2, tt.wantOptimal + 2}, got.PitWindow)
			assert.Equal(t, tt.wantOptimal-2, got.PitWindow.Low())
			assert.Equal(t, tt.wantOptimal+2, got.PitWindow.High())
			assert.Equal(t, tt.wantUrgency, got.Urgency)
		})
	}
}

func TestPredict_IsPure(t *testing.T) {
	a := Predict("X", 10, WithFuelPerLap(2.5), WithTireDegRate(3.2))
	b := Predict("X", 10, WithFuelPerLap(2.5), WithTireDegRate(3.2))
	assert.Equal(t, a, b)
	assert.Equal(t, a, Predict("X", 10))
}

func TestPredict_OptimalLapAtLeastOneAhead(t *testing.T) {
	for lap := 0; lap <= 60; lap++ {
		got := Predict("X", lap)
		assert.GreaterOrEqual(t, got.OptimalPitLap, lap+1, "lap %d", lap)
	}
}

func TestUrgencyThresholds(t *testing.T) {
	assert.Equal(t, model.UrgencyCritical, urgency(2.999))
	assert.Equal(t, model.UrgencyHigh, urgency(3))
	assert.Equal(t, model.UrgencyHigh, urgency(5.999))
	assert.Equal(t, model.UrgencyMedium, urgency(6))
}
