// Package loader discovers and reads the CSV exports of one track/race pair.
package loader

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mpapenbr/race-strategy-engine/log"
	"github.com/mpapenbr/race-strategy-engine/pkg/table"
)

type Kind string

const (
	KindLapTime   Kind = "lap times"
	KindLapStart  Kind = "lap starts"
	KindLapEnd    Kind = "lap ends"
	KindTelemetry Kind = "telemetry"
	KindResults   Kind = "results"
	KindWeather   Kind = "weather"
	KindBestLaps  Kind = "best laps"
)

// Dataset holds the tables found for a race. Missing tables are nil.
type Dataset struct {
	LapTimes  *table.Table
	LapStarts *table.Table
	LapEnds   *table.Table
	Telemetry *table.Table
	Results   *table.Table
	Weather   *table.Table
	BestLaps  *table.Table
	// Files maps the kind of table to the file it was read from
	Files map[Kind]string
}

type (
	Loader struct {
		fs      afero.Fs
		dir     string
		track   string
		raceNum int
		cache   *TableCache
		l       *log.Logger
	}
	Option func(*Loader)
)

func WithFs(fs afero.Fs) Option {
	return func(l *Loader) {
		l.fs = fs
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		l.l = logger
	}
}

// WithCache reads the tables through c.
func WithCache(c *TableCache) Option {
	return func(l *Loader) {
		l.cache = c
	}
}

func New(dir, track string, raceNum int, opts ...Option) *Loader {
	ret := &Loader{
		fs:      afero.NewOsFs(),
		dir:     dir,
		track:   track,
		raceNum: raceNum,
		l:       log.Default().Named("loader"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Patterns returns the ordered glob patterns used to find a table of the given kind.
func Patterns(kind Kind, track string, n int) []string {
	switch kind {
	case KindLapTime:
		return []string{
			fmt.Sprintf("R%d_%s_lap_time.csv", n, track),
			fmt.Sprintf("%s*lap_time_R%d.csv", track, n),
			fmt.Sprintf("R%d_%s*lap_time.csv", n, track),
			fmt.Sprintf("*lap_time*R%d*.csv", n),
		}
	case KindLapStart:
		return []string{
			fmt.Sprintf("R%d_%s*lap_start.csv", n, track),
			fmt.Sprintf("%s*lap_start_time_R%d.csv", track, n),
			fmt.Sprintf("*lap_start*R%d*.csv", n),
		}
	case KindLapEnd:
		return []string{
			fmt.Sprintf("R%d_%s*lap_end.csv", n, track),
			fmt.Sprintf("%s*lap_end_time_R%d.csv", track, n),
			fmt.Sprintf("*lap_end*R%d*.csv", n),
		}
	case KindTelemetry:
		return []string{fmt.Sprintf("R%d_%s*telemetry*.csv", n, track)}
	case KindResults:
		return []string{
			"*Official*Anonymized.CSV",
			fmt.Sprintf("*Results*Race*%d*Anonymized.CSV", n),
		}
	case KindWeather:
		return []string{fmt.Sprintf("*Weather*Race*%d*.CSV", n)}
	case KindBestLaps:
		return []string{fmt.Sprintf("*Best*10*Race*%d*.CSV", n)}
	}
	return nil
}

// Find returns the first file matching the patterns of kind.
// Patterns are tried in order, the first pattern with a match wins.
func (l *Loader) Find(kind Kind) (string, bool) {
	for _, p := range Patterns(kind, l.track, l.raceNum) {
		matches, err := afero.Glob(l.fs, filepath.Join(l.dir, p))
		if err != nil {
			l.l.Debug("invalid pattern", log.String("pattern", p), log.ErrorField(err))
			continue
		}
		if len(matches) > 0 {
			return matches[0], true
		}
	}
	return "", false
}

// Load reads all tables available for the race. A missing file is logged
// and leaves the table nil. An error is returned only if a found file
// cannot be read.
func (l *Loader) Load() (*Dataset, error) {
	ds := &Dataset{Files: make(map[Kind]string)}
	targets := []struct {
		kind Kind
		dst  **table.Table
	}{
		{KindLapTime, &ds.LapTimes},
		{KindLapStart, &ds.LapStarts},
		{KindLapEnd, &ds.LapEnds},
		{KindTelemetry, &ds.Telemetry},
		{KindResults, &ds.Results},
		{KindWeather, &ds.Weather},
		{KindBestLaps, &ds.BestLaps},
	}
	for _, t := range targets {
		file, ok := l.Find(t.kind)
		if !ok {
			l.l.Warn("File not found", log.String("kind", string(t.kind)))
			continue
		}
		tbl, err := l.read(file)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", t.kind, err)
		}
		*t.dst = tbl
		ds.Files[t.kind] = file
		l.l.Info("Loaded",
			log.String("kind", string(t.kind)),
			log.String("file", file),
			log.Int("records", tbl.Len()))
	}
	return ds, nil
}

func (l *Loader) read(file string) (*table.Table, error) {
	if l.cache != nil {
		return l.cache.Get(l.fs, file)
	}
	return table.ReadCSVFile(l.fs, file)
}
