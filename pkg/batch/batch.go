// Package batch processes all races of a list of tracks and aggregates the results.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/mpapenbr/race-strategy-engine/log"
	"github.com/mpapenbr/race-strategy-engine/pkg/model"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/pit"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/snapshot"
)

// DefaultTracks is the track list used if none is configured.
var DefaultTracks = []string{
	"barber", "COTA", "indianapolis", "Road America", "sebring", "Sonoma", "VIR",
}

// races attempted per track
var raceNumbers = []int{1, 2}

type (
	Runner struct {
		fs      afero.Fs
		baseDir string
		tracks  []string
		workers int
		now     func() time.Time
		pitOpts []pit.Option
		l       *log.Logger
	}
	Option func(*Runner)
)

type job struct {
	idx   int
	track string
	race  int
	dir   string
}

func WithFs(fs afero.Fs) Option {
	return func(r *Runner) {
		r.fs = fs
	}
}

func WithBaseDir(dir string) Option {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

func WithTracks(tracks []string) Option {
	return func(r *Runner) {
		r.tracks = tracks
	}
}

// WithWorkers limits the number of races processed in parallel.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = max(1, n)
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func WithPitOptions(opts ...pit.Option) Option {
	return func(r *Runner) {
		r.pitOpts = opts
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		r.l = l
	}
}

func New(opts ...Option) *Runner {
	ret := &Runner{
		fs:      afero.NewOsFs(),
		baseDir: ".",
		tracks:  DefaultTracks,
		workers: 4,
		now:     time.Now,
		l:       log.Default().Named("batch"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Run processes all races of the configured tracks. A race that cannot be
// processed is logged and left out of the result.
// The reports are ordered by track list and race number.
func (r *Runner) Run(ctx context.Context) (*model.BatchResult, error) {
	jobs := r.collectJobs()
	reports := make([]*model.RaceReport, len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			reports[j.idx] = r.processRace(j)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ret := &model.BatchResult{
		RunID:     uuid.NewString(),
		Timestamp: r.now(),
		Tracks:    make([]*model.RaceReport, 0, len(jobs)),
	}
	successful := make(map[string]struct{})
	for i, rep := range reports {
		if rep == nil {
			continue
		}
		ret.Tracks = append(ret.Tracks, rep)
		successful[jobs[i].track] = struct{}{}
		ret.Summary.TotalRaces++
		ret.Summary.TotalCars += len(rep.Cars)
		ret.Summary.TotalInsights += len(rep.Insights)
	}
	ret.Summary.TotalTracks = len(r.tracks)
	ret.Summary.SuccessfulTracks = len(successful)

	r.l.Info("Batch finished",
		log.String("runId", ret.RunID),
		log.Int("races", ret.Summary.TotalRaces),
		log.Int("cars", ret.Summary.TotalCars),
		log.Int("insights", ret.Summary.TotalInsights))
	return ret, nil
}

// collectJobs determines the race directories. Tracks with a "Race 1"
// subdirectory keep each race in its own directory.
func (r *Runner) collectJobs() []job {
	ret := make([]job, 0)
	add := func(track string, race int, dir string) {
		ret = append(ret, job{idx: len(ret), track: track, race: race, dir: dir})
	}
	for _, track := range r.tracks {
		trackDir := filepath.Join(r.baseDir, track)
		if ok, _ := afero.DirExists(r.fs, trackDir); !ok {
			r.l.Warn("Track directory not found", log.String("dir", trackDir))
			continue
		}
		if ok, _ := afero.DirExists(r.fs, filepath.Join(trackDir, "Race 1")); ok {
			r.l.Debug("Multi race structure", log.String("track", track))
			for _, n := range raceNumbers {
				raceDir := filepath.Join(trackDir, fmt.Sprintf("Race %d", n))
				if ok, _ := afero.DirExists(r.fs, raceDir); ok {
					add(track, n, raceDir)
				}
			}
			continue
		}
		for _, n := range raceNumbers {
			add(track, n, trackDir)
		}
	}
	return ret
}

// Verify checks every report of res and logs the outcome.
// It returns false if at least one race failed the check.
func (r *Runner) Verify(res *model.BatchResult) bool {
	allValid := true
	for _, rep := range res.Tracks {
		l := r.l.With(log.String("track", rep.Track), log.Int("race", rep.Race))
		if valid, issues := snapshot.VerifyReport(rep); !valid {
			allValid = false
			l.Error("Race failed verification", log.Strings("issues", issues))
			continue
		}
		best := 0.0
		for i, c := range rep.Cars {
			if i == 0 || c.BestLapTime < best {
				best = c.BestLapTime
			}
		}
		l.Info("Race verified", log.Int("cars", len(rep.Cars)), log.Float64("bestLap", best))
	}
	if allValid {
		r.l.Info("All data passed integrity checks")
	} else {
		r.l.Warn("Some data failed integrity checks")
	}
	return allValid
}
