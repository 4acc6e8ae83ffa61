package batch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/race-strategy-engine/log"
	"github.com/mpapenbr/race-strategy-engine/pkg/batch"
	"github.com/mpapenbr/race-strategy-engine/pkg/cmd/util"
	"github.com/mpapenbr/race-strategy-engine/pkg/config"
	"github.com/mpapenbr/race-strategy-engine/pkg/model"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/pit"
	"github.com/mpapenbr/race-strategy-engine/pkg/publish"
	"github.com/mpapenbr/race-strategy-engine/pkg/report"
)

func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "processes all races of all tracks and writes the aggregated results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), afero.NewOsFs())
		},
	}
	cmd.Flags().StringVar(&config.BaseDir, "base-dir", ".",
		"directory containing one directory per track")
	cmd.Flags().StringSliceVar(&config.Tracks, "tracks", batch.DefaultTracks,
		"tracks to process")
	cmd.Flags().StringVar(&config.TracksFile, "tracks-file", "",
		"yaml file with the tracks to process (overrides --tracks)")
	cmd.Flags().IntVar(&config.Workers, "workers", 4,
		"number of races processed in parallel")
	cmd.Flags().StringVarP(&config.ResultFile, "output", "o", "all_tracks_results.json",
		"file the aggregated results are written to")
	cmd.Flags().StringVar(&config.ReportFile, "report", "race_report.html",
		"file the html report is written to (empty disables the report)")
	cmd.Flags().StringVar(&config.ReportAssetsHost, "report-assets-host", "",
		"location of the echarts assets used by the report (default: echarts CDN)")
	cmd.Flags().Float64Var(&config.FuelPerLap, "fuel-per-lap", pit.DefaultFuelPerLap,
		"fuel consumption in percent per lap")
	cmd.Flags().Float64Var(&config.TireDegRate, "tire-deg-rate", pit.DefaultTireDegRate,
		"tire degradation in percent per lap")
	return cmd
}

func runBatch(ctx context.Context, fs afero.Fs) error {
	logger, err := util.SetupLogger()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.AddToContext(ctx, logger)
	return process(ctx, fs)
}

func process(ctx context.Context, fs afero.Fs) error {
	logger := log.GetFromContext(ctx).Named("batch")
	tracks := config.Tracks
	if config.TracksFile != "" {
		var err error
		if tracks, err = batch.LoadTracks(fs, config.TracksFile); err != nil {
			return err
		}
	}
	runner := batch.New(
		batch.WithFs(fs),
		batch.WithBaseDir(config.BaseDir),
		batch.WithTracks(tracks),
		batch.WithWorkers(config.Workers),
		batch.WithPitOptions(util.PitOptions()...),
		batch.WithLogger(logger))

	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if err := writeResult(fs, config.ResultFile, res); err != nil {
		return err
	}
	logger.Info("Results written",
		log.String("file", config.ResultFile),
		log.Int("tracks", res.Summary.SuccessfulTracks),
		log.Int("races", res.Summary.TotalRaces),
		log.Int("cars", res.Summary.TotalCars),
		log.Int("insights", res.Summary.TotalInsights))

	if !runner.Verify(res) {
		logger.Warn("Some races failed the integrity check")
	}
	if config.ReportFile == "" {
		return nil
	}
	if err := writeReport(fs, config.ReportFile, res); err != nil {
		return err
	}
	logger.Info("Report written", log.String("file", config.ReportFile))
	return nil
}

func writeResult(fs afero.Fs, file string, res *model.BatchResult) error {
	data, err := publish.Marshal(res)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fs, file, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}
	return nil
}

func writeReport(fs afero.Fs, file string, res *model.BatchResult) error {
	f, err := fs.Create(file)
	if err != nil {
		return fmt.Errorf("creating %s: %w", file, err)
	}
	defer f.Close()

	opts := []report.Option{}
	if config.ReportAssetsHost != "" {
		opts = append(opts, report.WithAssetsHost(config.ReportAssetsHost))
	}
	return report.New(opts...).Render(f, res)
}
