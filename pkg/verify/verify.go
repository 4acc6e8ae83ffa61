// Package verify checks persisted result files for unrealistic lap times.
package verify

import (
	"errors"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/afero"

	"github.com/mpapenbr/race-strategy-engine/pkg/processing/snapshot"
)

var ErrUnknownDocument = errors.New("neither batch result nor race snapshot")

type RaceResult struct {
	Track   string
	Race    int
	Cars    int
	BestLap float64
	Valid   bool
	Issues  []string
}

var (
	tracksPath   = jp.MustParseString("$.tracks[*]")
	carsPath     = jp.MustParseString("$.cars[*]")
	trackPath    = jp.MustParseString("$.track")
	racePath     = jp.MustParseString("$.race")
	carIDPath    = jp.MustParseString("$.car_id")
	hasTracks    = jp.MustParseString("$.tracks")
	hasCars      = jp.MustParseString("$.cars")
	batchBest    = jp.MustParseString("$.best_lap_time")
	snapshotBest = jp.MustParseString("$.best_lap")
)

func CheckFile(fs afero.Fs, file string) ([]RaceResult, error) {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return nil, err
	}
	return Check(string(data))
}

// Check verifies a batch result (all_tracks_results.json) or a single
// race snapshot (live_data.json).
func Check(jsonData string) ([]RaceResult, error) {
	obj, err := oj.ParseString(jsonData)
	if err != nil {
		return nil, err
	}
	switch {
	case len(hasTracks.Get(obj)) > 0:
		races := tracksPath.Get(obj)
		ret := make([]RaceResult, 0, len(races))
		for _, race := range races {
			ret = append(ret, checkRace(race, batchBest))
		}
		return ret, nil
	case len(hasCars.Get(obj)) > 0:
		return []RaceResult{checkRace(obj, snapshotBest)}, nil
	default:
		return nil, ErrUnknownDocument
	}
}

func checkRace(race any, bestPath jp.Expr) RaceResult {
	ret := RaceResult{
		Track: str(trackPath.First(race)),
		Race:  int(num(racePath.First(race))),
	}
	cars := carsPath.Get(race)
	best := make([]snapshot.CarBestLap, 0, len(cars))
	for i, c := range cars {
		v := num(bestPath.First(c))
		best = append(best, snapshot.CarBestLap{CarID: str(carIDPath.First(c)), BestLap: v})
		if i == 0 || v < ret.BestLap {
			ret.BestLap = v
		}
	}
	ret.Cars = len(best)
	ret.Valid, ret.Issues = snapshot.VerifyBestLaps(best)
	return ret
}

func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// num converts the numbers produced by the parser. Missing values count as 0.
func num(v any) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	default:
		return 0
	}
}
