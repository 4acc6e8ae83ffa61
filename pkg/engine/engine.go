// Package engine provides the analysis of a single track/race pair.
package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/mpapenbr/race-strategy-engine/log"
	"github.com/mpapenbr/race-strategy-engine/pkg/loader"
	"github.com/mpapenbr/race-strategy-engine/pkg/model"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/insight"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/laptime"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/pit"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/snapshot"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/stats"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/telemetry"
	"github.com/mpapenbr/race-strategy-engine/pkg/schema"
)

var ErrNoLapData = errors.New("no lap data")

// used as current lap if the lap records carry no lap numbers
const DefaultCurrentLap = 50

type (
	Analytics struct {
		track   string
		raceNum int
		dataDir string
		fs      afero.Fs
		l       *log.Logger
		now     func() time.Time
		pitOpts []pit.Option
		cache   *loader.TableCache

		dataset   *loader.Dataset
		laps      []model.LapRecord
		telemetry *telemetry.Frame
	}
	Option func(*Analytics)
)

func WithFs(fs afero.Fs) Option {
	return func(a *Analytics) {
		a.fs = fs
	}
}

// WithDataDir sets the directory containing the race exports.
// Default is ./<track>
func WithDataDir(dir string) Option {
	return func(a *Analytics) {
		a.dataDir = dir
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *Analytics) {
		a.l = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Analytics) {
		a.now = now
	}
}

// WithPitOptions sets the depletion rates used by pit predictions, insights and snapshots.
func WithPitOptions(opts ...pit.Option) Option {
	return func(a *Analytics) {
		a.pitOpts = opts
	}
}

// WithTableCache keeps parsed exports in c for repeated loads.
func WithTableCache(c *loader.TableCache) Option {
	return func(a *Analytics) {
		a.cache = c
	}
}

func New(track string, raceNum int, opts ...Option) *Analytics {
	ret := &Analytics{
		track:   track,
		raceNum: raceNum,
		dataDir: filepath.Join(".", track),
		fs:      afero.NewOsFs(),
		l:       log.Default().Named("engine"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (a *Analytics) Track() string { return a.track }
func (a *Analytics) Race() int     { return a.raceNum }

// Now returns the current time of the configured clock.
func (a *Analytics) Now() time.Time { return a.now() }

// Load reads the exports of the race. Missing files reduce the available
// analysis but are no error. An error is returned if a found file cannot be read.
//
// If lap start and lap end events are present the derived lap times replace
// the ones from a direct lap time export.
func (a *Analytics) Load() error {
	l := a.l.With(log.String("track", a.track), log.Int("race", a.raceNum))
	lOpts := []loader.Option{loader.WithFs(a.fs), loader.WithLogger(a.l.Named("loader"))}
	if a.cache != nil {
		lOpts = append(lOpts, loader.WithCache(a.cache))
	}
	ds, err := loader.New(a.dataDir, a.track, a.raceNum, lOpts...).Load()
	if err != nil {
		l.Error("Error loading data", log.ErrorField(err))
		return fmt.Errorf("load %s race %d: %w", a.track, a.raceNum, err)
	}
	a.dataset = ds
	a.laps = nil
	a.telemetry = nil

	if ds.LapTimes != nil {
		if recs, ok := laptime.FromTable(ds.LapTimes); ok {
			a.laps = recs
		} else {
			l.Warn("No lap time column in lap time export",
				log.Strings("columns", ds.LapTimes.Fields()))
		}
	}
	if ds.LapStarts != nil && ds.LapEnds != nil {
		derived, err := laptime.Derive(ds.LapStarts, ds.LapEnds)
		if err != nil {
			l.Warn("Error calculating lap times", log.ErrorField(err))
		} else {
			l.Info("Calculated lap times", log.Int("records", len(derived)))
		}
		a.laps = derived
	}
	if ds.Telemetry != nil {
		a.telemetry = telemetry.Reshape(ds.Telemetry)
	}
	l.Info("Loaded race data",
		log.Int("laps", len(a.laps)),
		log.Int("telemetry", a.telemetry.Len()))
	return nil
}

func (a *Analytics) Dataset() *loader.Dataset {
	return a.dataset
}

// Laps returns the lap records in source order.
func (a *Analytics) Laps() []model.LapRecord {
	return a.laps
}

func (a *Analytics) HasLaps() bool {
	return len(a.laps) > 0
}

func (a *Analytics) Telemetry() *telemetry.Frame {
	return a.telemetry
}

// CurrentLap returns the highest lap number of the lap records.
// DefaultCurrentLap is used if the records have no lap numbers.
func (a *Analytics) CurrentLap() (int, error) {
	if !a.HasLaps() {
		return 0, ErrNoLapData
	}
	if !a.laps[0].HasLap {
		return DefaultCurrentLap, nil
	}
	return lo.MaxBy(a.laps, func(x, m model.LapRecord) bool {
		return x.Lap > m.Lap
	}).Lap, nil
}

// CarIDs returns the distinct car ids in order of appearance.
func (a *Analytics) CarIDs() []string {
	return stats.CarIDs(a.laps)
}

// LapStats returns the statistics of one car or, if carID is unset, of all cars.
func (a *Analytics) LapStats(carID omit.Val[string]) omit.Val[model.LapStats] {
	return stats.Analyze(a.laps, carID)
}

func (a *Analytics) TelemetrySection(carID string, start, end float64) omit.Val[model.SectionStats] {
	return telemetry.AnalyzeSection(a.telemetry, carID, start, end)
}

func (a *Analytics) CompareCars(carID1, carID2 string) omit.Val[model.Comparison] {
	return stats.Compare(a.laps, carID1, carID2)
}

// PredictPitWindow uses the rates configured with WithPitOptions unless opts are given.
func (a *Analytics) PredictPitWindow(carID string, currentLap int, opts ...pit.Option) model.PitRecommendation {
	if len(opts) == 0 {
		opts = a.pitOpts
	}
	return pit.Predict(carID, currentLap, opts...)
}

func (a *Analytics) Insights(currentLap int) []model.Insight {
	return insight.Generate(a.laps, currentLap, a.pitOpts...)
}

func (a *Analytics) ExportSnapshot(currentLap int) omit.Val[model.RaceSnapshot] {
	return snapshot.Export(a.laps, snapshot.Params{
		Track:      a.track,
		CurrentLap: currentLap,
		Timestamp:  a.now(),
		PitOptions: a.pitOpts,
	})
}

// Weather returns the conditions from the first row of the weather export.
func (a *Analytics) Weather() omit.Val[model.Weather] {
	if a.dataset == nil || a.dataset.Weather.Empty() {
		return omit.Val[model.Weather]{}
	}
	w := a.dataset.Weather
	ret := model.Weather{Conditions: "Mixed"}
	col, ok := schema.Resolve(w, schema.AirTempCandidates).Get()
	if !ok && len(w.Fields()) > 2 {
		col, ok = w.Fields()[2], true
	}
	if ok {
		if v, err := w.Float(0, col); err == nil {
			ret.Temperature = &v
		}
	}
	return omit.From(ret)
}

// Name returns the display name of the race, e.g. "BARBER Race 1"
func (a *Analytics) Name() string {
	return fmt.Sprintf("%s Race %d", strings.ToUpper(a.track), a.raceNum)
}
