package batch

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"github.com/aarondl/opt/omit"
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/race-strategy-engine/log"
	"github.com/mpapenbr/race-strategy-engine/pkg/engine"
	"github.com/mpapenbr/race-strategy-engine/pkg/model"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/snapshot"
)

const (
	statusActive     = "Active"
	maxTopPerformers = 5
)

// processRace returns nil if the race yields no result.
// A panic during processing is logged and treated the same way.
func (r *Runner) processRace(j job) (rep *model.RaceReport) {
	l := r.l.With(log.String("track", j.track), log.Int("race", j.race))
	defer func() {
		if p := recover(); p != nil {
			l.Error("Error processing race", log.Any("panic", p), log.Stack("stack"))
			rep = nil
		}
	}()

	a := engine.New(strings.ToLower(j.track), j.race,
		engine.WithFs(r.fs),
		engine.WithDataDir(j.dir),
		engine.WithLogger(l.Named("engine")),
		engine.WithClock(r.now),
		engine.WithPitOptions(r.pitOpts...),
	)
	if err := a.Load(); err != nil {
		l.Error("Failed to load data", log.ErrorField(err))
		return nil
	}
	currentLap, err := a.CurrentLap()
	if err != nil {
		if errors.Is(err, engine.ErrNoLapData) {
			l.Warn("No lap data")
		} else {
			l.Error("Error determining current lap", log.ErrorField(err))
		}
		return nil
	}
	rep = BuildReport(a, currentLap)
	if !rep.Valid {
		l.Warn("Data integrity issues", log.Strings("issues", rep.Issues))
	}
	l.Info("Race processed", log.Int("cars", len(rep.Cars)), log.Int("insights", len(rep.Insights)))
	return rep
}

// BuildReport assembles the race report of a loaded race at currentLap.
func BuildReport(a *engine.Analytics, currentLap int) *model.RaceReport {
	ret := &model.RaceReport{
		Track:              strings.ToUpper(a.Track()),
		Race:               a.Race(),
		Timestamp:          a.Now(),
		CurrentLap:         currentLap,
		TotalLapsCompleted: currentLap,
		Cars:               make([]model.RaceCar, 0),
		TopPerformers:      make([]model.TopPerformer, 0),
	}
	if w, ok := a.Weather().Get(); ok {
		ret.Weather = &w
	}

	for _, carID := range a.CarIDs() {
		st, ok := a.LapStats(omit.From(carID)).Get()
		if !ok {
			continue
		}
		ret.Cars = append(ret.Cars, model.RaceCar{
			CarID:             carID,
			TotalLaps:         st.TotalLaps,
			BestLapTime:       round(st.BestLap, 3),
			AvgLapTime:        round(st.AvgLap, 3),
			ConsistencyScore:  round(st.ConsistencyScore, 1),
			PitRecommendation: a.PredictPitWindow(carID, currentLap),
			Status:            statusActive,
		})
	}
	slices.SortStableFunc(ret.Cars, func(x, y model.RaceCar) int {
		return cmp.Compare(x.BestLapTime, y.BestLapTime)
	})
	for i := range ret.Cars {
		ret.Cars[i].Position = i + 1
		if i < maxTopPerformers {
			ret.TopPerformers = append(ret.TopPerformers, model.TopPerformer{
				Position: i + 1,
				CarID:    ret.Cars[i].CarID,
				BestLap:  ret.Cars[i].BestLapTime,
			})
		}
	}
	ret.Insights = a.Insights(currentLap)
	ret.Valid, ret.Issues = snapshot.VerifyReport(ret)
	return ret
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
