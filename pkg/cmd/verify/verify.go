package verify

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/race-strategy-engine/log"
	"github.com/mpapenbr/race-strategy-engine/pkg/cmd/util"
	"github.com/mpapenbr/race-strategy-engine/pkg/verify"
)

var ErrInvalidData = errors.New("data integrity check failed")

func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "checks a result file for unrealistic lap times",
		Long: `Checks either a batch result (all_tracks_results.json) or a race
snapshot (live_data.json). The command fails if any race contains a best lap
time below the realistic minimum.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := util.SetupLogger()
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			return checkFile(afero.NewOsFs(), args[0], logger)
		},
	}
	return cmd
}

func checkFile(fs afero.Fs, file string, logger *log.Logger) error {
	results, err := verify.CheckFile(fs, file)
	if err != nil {
		return fmt.Errorf("checking %s: %w", file, err)
	}
	invalid := 0
	for i := range results {
		r := &results[i]
		fields := []log.Field{
			log.String("track", r.Track),
			log.Int("race", r.Race),
			log.Int("cars", r.Cars),
			log.Float64("bestLap", r.BestLap),
		}
		if r.Valid {
			logger.Info("OK", fields...)
			continue
		}
		invalid++
		logger.Error("CRITICAL", append(fields, log.Strings("issues", r.Issues))...)
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d races: %w", invalid, len(results), ErrInvalidData)
	}
	logger.Info("All races verified", log.Int("races", len(results)))
	return nil
}
