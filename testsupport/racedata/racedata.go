// Package racedata provides sample timing exports on an in-memory filesystem.
package racedata

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	Track = "barber"
	// DataDir is the base directory of the sample data
	DataDir = "/data"
)

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2025-09-05T15:00:00Z")
	return t
}

// SampleLapTimes returns the lap times per car. All cars complete the same number of laps.
func SampleLapTimes() map[string][]float64 {
	return map[string][]float64{
		"GR86-002-2":  {99.5, 98.25, 98.0, 98.5, 98.75},
		"GR86-004-78": {100.0, 99.0, 99.5, 100.5, 101.5},
		"GR86-010-16": {101.25, 100.5, 100.0, 99.75, 99.5},
	}
}

// SampleCars returns the car ids in the order they appear in the exports.
func SampleCars() []string {
	return []string{"GR86-002-2", "GR86-004-78", "GR86-010-16"}
}

// SampleTelemetry contains one lap of car GR86-002-2 in long format.
// The sample at 1.5s has a duplicate speed entry which must be ignored.
const SampleTelemetry = `vehicle_id,lap,timestamp,telemetry_name,telemetry_value
GR86-002-2,1,2025-09-05T15:00:01Z,speed,120
GR86-002-2,1,2025-09-05T15:00:01Z,ath,90
GR86-002-2,1,2025-09-05T15:00:01Z,pbrake_f,0
GR86-002-2,1,2025-09-05T15:00:01Z,gear,3
GR86-002-2,1,2025-09-05T15:00:01Z,Laptrigger_lapdist_dls,100
GR86-002-2,1,2025-09-05T15:00:01.5Z,speed,140
GR86-002-2,1,2025-09-05T15:00:01.5Z,speed,999
GR86-002-2,1,2025-09-05T15:00:01.5Z,ath,100
GR86-002-2,1,2025-09-05T15:00:01.5Z,pbrake_f,0
GR86-002-2,1,2025-09-05T15:00:01.5Z,gear,4
GR86-002-2,1,2025-09-05T15:00:01.5Z,Laptrigger_lapdist_dls,150
GR86-002-2,1,2025-09-05T15:00:02Z,speed,100
GR86-002-2,1,2025-09-05T15:00:02Z,ath,0
GR86-002-2,1,2025-09-05T15:00:02Z,pbrake_f,80
GR86-002-2,1,2025-09-05T15:00:02Z,gear,2
GR86-002-2,1,2025-09-05T15:00:02Z,Laptrigger_lapdist_dls,200
GR86-002-2,1,2025-09-05T15:00:03Z,speed,90
GR86-002-2,1,2025-09-05T15:00:03Z,ath,20
GR86-002-2,1,2025-09-05T15:00:03Z,pbrake_f,60
GR86-002-2,1,2025-09-05T15:00:03Z,gear,2
GR86-002-2,1,2025-09-05T15:00:03Z,Laptrigger_lapdist_dls,400
`

const SampleWeather = `TIME_UTC_SECONDS;TIME_UTC_STR;AIR_TEMP;TRACK_TEMP;HUMIDITY;PRESSURE;WIND_SPEED;WIND_DIRECTION;RAIN
1757084400;9/5/2025 3:00:00 PM;29.6;0;58.2;992.1;7.2;350;0
1757084460;9/5/2025 3:01:00 PM;29.7;0;58.0;992.1;6.8;345;0
`

const SampleResults = `POSITION;NUMBER;STATUS;LAPS;TOTAL_TIME;GAP_FIRST;FL_TIME
1;2;Classified;5;8:12.000;;1:38.000
2;78;Classified;5;8:20.500;+8.500;1:39.000
3;16;Classified;5;8:21.000;+9.000;1:39.500
`

const SampleBestLaps = `NUMBER;VEHICLE;BESTLAP_1;BESTLAP_1_LAPNUM
2;GR86-002-2;1:38.000;3
78;GR86-004-78;1:39.000;2
16;GR86-010-16;1:39.500;5
`

type (
	raceOptions struct {
		direct    bool
		events    bool
		telemetry bool
		lapTimes  map[string][]float64
	}
	RaceOption func(*raceOptions)
)

// WithoutEvents omits the lap start and lap end exports.
func WithoutEvents() RaceOption {
	return func(o *raceOptions) { o.events = false }
}

// WithoutDirect omits the direct lap time export.
func WithoutDirect() RaceOption {
	return func(o *raceOptions) { o.direct = false }
}

func WithoutTelemetry() RaceOption {
	return func(o *raceOptions) { o.telemetry = false }
}

func WithLapTimes(lapTimes map[string][]float64) RaceOption {
	return func(o *raceOptions) { o.lapTimes = lapTimes }
}

// WriteRace writes the exports of race n for track into dir.
func WriteRace(fs afero.Fs, dir, track string, n int, opts ...RaceOption) error {
	o := &raceOptions{direct: true, events: true, telemetry: true, lapTimes: SampleLapTimes()}
	for _, opt := range opts {
		opt(o)
	}
	starts, ends, direct := lapExports(o.lapTimes)
	files := make(map[string]string)
	files[fmt.Sprintf("26_Weather_Race %d_Anonymized.CSV", n)] = SampleWeather
	files[fmt.Sprintf("03_Provisional Results_Race %d_Anonymized.CSV", n)] = SampleResults
	files[fmt.Sprintf("99_Best 10 Laps By Driver_Race %d_Anonymized.CSV", n)] = SampleBestLaps
	if o.direct {
		files[fmt.Sprintf("R%d_%s_lap_time.csv", n, track)] = direct
	}
	if o.events {
		files[fmt.Sprintf("R%d_%s_lap_start.csv", n, track)] = starts
		files[fmt.Sprintf("R%d_%s_lap_end.csv", n, track)] = ends
	}
	if o.telemetry {
		files[fmt.Sprintf("R%d_%s_telemetry_data.csv", n, track)] = SampleTelemetry
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, content := range files {
		if err := afero.WriteFile(fs, filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// NewFs returns a filesystem with race 1 of the sample track in DataDir/Track.
func NewFs(opts ...RaceOption) afero.Fs {
	fs := afero.NewMemMapFs()
	if err := WriteRace(fs, filepath.Join(DataDir, Track), Track, 1, opts...); err != nil {
		panic(err)
	}
	return fs
}

// lapExports creates the lap start, lap end and direct lap time exports.
// Rows are written lap by lap, cars in SampleCars order first.
func lapExports(lapTimes map[string][]float64) (starts, ends, direct string) {
	var sb, eb, db strings.Builder
	sb.WriteString("vehicle_id,lap,timestamp\n")
	eb.WriteString("vehicle_id,lap,timestamp\n")
	db.WriteString("vehicle_id,lap,lap_time,timestamp\n")

	cars := orderedCars(lapTimes)
	maxLaps := 0
	for _, c := range cars {
		maxLaps = max(maxLaps, len(lapTimes[c]))
	}
	elapsed := make(map[string]float64)
	for lap := 1; lap <= maxLaps; lap++ {
		for _, c := range cars {
			if lap > len(lapTimes[c]) {
				continue
			}
			lt := lapTimes[c][lap-1]
			start := TestTime().Add(seconds(elapsed[c]))
			end := TestTime().Add(seconds(elapsed[c] + lt))
			elapsed[c] += lt
			fmt.Fprintf(&sb, "%s,%d,%s\n", c, lap, start.Format(time.RFC3339Nano))
			fmt.Fprintf(&eb, "%s,%d,%s\n", c, lap, end.Format(time.RFC3339Nano))
			fmt.Fprintf(&db, "%s,%d,%g,%s\n", c, lap, lt, end.Format(time.RFC3339Nano))
		}
	}
	return sb.String(), eb.String(), db.String()
}

func orderedCars(lapTimes map[string][]float64) []string {
	ret := make([]string, 0, len(lapTimes))
	for _, c := range SampleCars() {
		if _, ok := lapTimes[c]; ok {
			ret = append(ret, c)
		}
	}
	extra := make([]string, 0)
	for c := range lapTimes {
		if !slices.Contains(ret, c) {
			extra = append(extra, c)
		}
	}
	slices.Sort(extra)
	return append(ret, extra...)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
