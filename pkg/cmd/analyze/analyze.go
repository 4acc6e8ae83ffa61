package analyze

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/race-strategy-engine/log"
	"github.com/mpapenbr/race-strategy-engine/pkg/cmd/util"
	"github.com/mpapenbr/race-strategy-engine/pkg/config"
	"github.com/mpapenbr/race-strategy-engine/pkg/engine"
	"github.com/mpapenbr/race-strategy-engine/pkg/loader"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/pit"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/snapshot"
	"github.com/mpapenbr/race-strategy-engine/pkg/publish"
)

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "analyzes a single race and exports the race snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&config.Track, "track", "vir",
		"track name as used in the export file names")
	cmd.Flags().IntVar(&config.Race, "race", 1,
		"race number")
	cmd.Flags().StringVar(&config.DataDir, "data-dir", "",
		"directory containing the race exports (default ./<track>)")
	cmd.Flags().IntVar(&config.Lap, "lap", -1,
		"current lap of the analysis, negative values use the last lap in data")
	cmd.Flags().StringVar(&config.Car, "car", "",
		"print lap statistics and pit prediction for this car")
	cmd.Flags().StringSliceVar(&config.CompareCars, "compare", nil,
		"print comparison of two cars (car1,car2)")
	cmd.Flags().Float64Var(&config.SectionStart, "section-start", 0,
		"lap distance where the telemetry section starts")
	cmd.Flags().Float64Var(&config.SectionEnd, "section-end", 0,
		"lap distance where the telemetry section ends (requires --car)")
	cmd.Flags().Float64Var(&config.FuelPerLap, "fuel-per-lap", pit.DefaultFuelPerLap,
		"fuel consumption in percent per lap")
	cmd.Flags().Float64Var(&config.TireDegRate, "tire-deg-rate", pit.DefaultTireDegRate,
		"tire degradation in percent per lap")
	cmd.Flags().StringVarP(&config.OutputFile, "output", "o", "live_data.json",
		"file the race snapshot is written to")
	cmd.Flags().StringVar(&config.NatsURL, "nats-url", "",
		"if set, the race snapshot is also published to this NATS server")
	cmd.Flags().StringVar(&config.NatsSubjectPrefix, "nats-subject-prefix",
		publish.DefaultSubjectPrefix,
		"subject prefix for published snapshots")
	cmd.Flags().StringVar(&config.WaitForServices, "wait-for-services", "15s",
		"duration to wait for the NATS server to be ready")
	cmd.Flags().BoolVar(&config.Watch, "watch", false,
		"watch the data directory and re-export on changes")
	cmd.Flags().StringVar(&config.WatchDebounce, "watch-debounce", "1s",
		"duration to wait for further changes before re-exporting")
	return cmd
}

func runAnalyze(ctx context.Context) error {
	logger, err := util.SetupLogger()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.AddToContext(ctx, logger)

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(".", config.Track)
	}
	logger.Debug("Config",
		log.String("track", config.Track),
		log.Int("race", config.Race),
		log.String("dataDir", dataDir),
		log.String("output", config.OutputFile),
		log.Float64("fuelPerLap", config.FuelPerLap),
		log.Float64("tireDegRate", config.TireDegRate))

	pub, err := newPublisher()
	if err != nil {
		return err
	}
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Warn("Error closing publisher", log.ErrorField(err))
		}
	}()

	a := &analyzer{
		fs:      afero.NewOsFs(),
		dataDir: dataDir,
		pub:     pub,
		out:     os.Stdout,
		cache:   loader.NewTableCache(loader.WithCacheLogger(logger.Named("cache"))),
	}
	if err := a.run(ctx); err != nil {
		return err
	}
	if !config.Watch {
		return nil
	}
	w, err := newWatcher(ctx, dataDir, config.WatchDebounce)
	if err != nil {
		return err
	}
	return w.run(func() {
		if err := a.run(ctx); err != nil {
			logger.Error("Error re-exporting race snapshot", log.ErrorField(err))
		}
	})
}

func newPublisher() (publish.Publisher, error) {
	pubs := publish.Multi{publish.NewFilePublisher(afero.NewOsFs(), config.OutputFile)}
	if config.NatsURL != "" {
		wait, err := time.ParseDuration(config.WaitForServices)
		if err != nil {
			return nil, fmt.Errorf("invalid wait-for-services: %w", err)
		}
		nc, err := publish.Connect(config.NatsURL, wait)
		if err != nil {
			return nil, fmt.Errorf("connecting to nats: %w", err)
		}
		pubs = append(pubs, publish.NewNatsPublisher(nc,
			publish.Subject(config.NatsSubjectPrefix, config.Track, config.Race)))
	}
	return pubs, nil
}

type analyzer struct {
	fs      afero.Fs
	dataDir string
	pub     publish.Publisher
	out     io.Writer
	cache   *loader.TableCache // optional, keeps unchanged exports between runs
}

// run loads the race, prints the requested queries and publishes the snapshot.
func (a *analyzer) run(ctx context.Context) error {
	logger := log.GetFromContext(ctx).Named("analyze")
	eOpts := []engine.Option{
		engine.WithFs(a.fs),
		engine.WithDataDir(a.dataDir),
		engine.WithLogger(logger.Named("engine")),
		engine.WithPitOptions(util.PitOptions()...),
	}
	if a.cache != nil {
		eOpts = append(eOpts, engine.WithTableCache(a.cache))
	}
	e := engine.New(config.Track, config.Race, eOpts...)
	if err := e.Load(); err != nil {
		return err
	}
	currentLap := config.Lap
	if currentLap < 0 {
		lap, err := e.CurrentLap()
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		currentLap = lap
	}
	if err := a.queries(e, currentLap); err != nil {
		return err
	}

	snap, ok := e.ExportSnapshot(currentLap).Get()
	if !ok {
		logger.Warn("No snapshot available", log.String("race", e.Name()))
		return nil
	}
	if valid, issues := snapshot.Verify(&snap); !valid {
		logger.Warn("Data integrity issues", log.Strings("issues", issues))
	}
	if err := a.pub.Publish(ctx, &snap); err != nil {
		return err
	}
	logger.Info("Race snapshot exported",
		log.String("race", e.Name()),
		log.Int("lap", currentLap),
		log.Int("cars", len(snap.Cars)),
		log.Int("insights", len(snap.Insights)))
	return nil
}

func (a *analyzer) queries(e *engine.Analytics, currentLap int) error {
	if config.Car != "" {
		if err := printVal(a.out, "lapStats", e.LapStats(omit.From(config.Car))); err != nil {
			return err
		}
		if err := writeJSON(a.out, "pitWindow", e.PredictPitWindow(config.Car, currentLap)); err != nil {
			return err
		}
		if config.SectionEnd > config.SectionStart {
			section := e.TelemetrySection(config.Car, config.SectionStart, config.SectionEnd)
			if err := printVal(a.out, "section", section); err != nil {
				return err
			}
		}
	}
	if len(config.CompareCars) == 2 {
		cmp := e.CompareCars(config.CompareCars[0], config.CompareCars[1])
		if err := printVal(a.out, "comparison", cmp); err != nil {
			return err
		}
	}
	return nil
}

// printVal writes the value of v as json. Unset values are written as null.
func printVal[T any](w io.Writer, name string, v omit.Val[T]) error {
	if val, ok := v.Get(); ok {
		return writeJSON(w, name, val)
	}
	return writeJSON(w, name, nil)
}

func writeJSON(w io.Writer, name string, v any) error {
	data, err := publish.Marshal(map[string]any{name: v})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
