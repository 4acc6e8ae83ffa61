//nolint:funlen // ok for tests
package analyze

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/race-strategy-engine/log"
	"github.com/mpapenbr/race-strategy-engine/pkg/config"
	"github.com/mpapenbr/race-strategy-engine/pkg/model"
	"github.com/mpapenbr/race-strategy-engine/pkg/processing/pit"
	"github.com/mpapenbr/race-strategy-engine/testsupport/racedata"
)

type recorder struct {
	snaps []*model.RaceSnapshot
}

func (r *recorder) Publish(ctx context.Context, snap *model.RaceSnapshot) error {
	r.snaps = append(r.snaps, snap)
	return nil
}

func (r *recorder) Close() error { return nil }

func testContext() context.Context {
	return log.AddToContext(context.Background(), log.New(os.Stderr, log.ErrorLevel))
}

func setConfig(t *testing.T) {
	t.Helper()
	config.Track = racedata.Track
	config.Race = 1
	config.Lap = -1
	config.Car = ""
	config.CompareCars = nil
	config.SectionStart = 0
	config.SectionEnd = 0
	config.FuelPerLap = pit.DefaultFuelPerLap
	config.TireDegRate = pit.DefaultTireDegRate
}

func TestAnalyzerRun(t *testing.T) {
	setConfig(t)
	rec := &recorder{}
	var buf bytes.Buffer
	a := &analyzer{
		fs:      racedata.NewFs(),
		dataDir: filepath.Join(racedata.DataDir, racedata.Track),
		pub:     rec,
		out:     &buf,
	}
	require.NoError(t, a.run(testContext()))
	require.Len(t, rec.snaps, 1)
	assert.Equal(t, 5, rec.snaps[0].CurrentLap)
	assert.Len(t, rec.snaps[0].Cars, 3)
	assert.Empty(t, buf.String(), "no queries requested")
}

func TestAnalyzerRun_Queries(t *testing.T) {
	setConfig(t)
	config.Lap = 3
	config.Car = "GR86-002-2"
	config.CompareCars = []string{"GR86-002-2", "GR86-004-78"}
	config.SectionStart = 100
	config.SectionEnd = 250

	rec := &recorder{}
	var buf bytes.Buffer
	a := &analyzer{
		fs:      racedata.NewFs(),
		dataDir: filepath.Join(racedata.DataDir, racedata.Track),
		pub:     rec,
		out:     &buf,
	}
	require.NoError(t, a.run(testContext()))
	require.Len(t, rec.snaps, 1)
	assert.Equal(t, 3, rec.snaps[0].CurrentLap)

	out := buf.String()
	assert.Contains(t, out, `"lapStats"`)
	assert.Contains(t, out, `"pitWindow"`)
	assert.Contains(t, out, `"section": {`)
	assert.Contains(t, out, `"comparison"`)
}

func TestAnalyzerRun_LapZero(t *testing.T) {
	setConfig(t)
	config.Lap = 0
	config.Car = "GR86-002-2"
	rec := &recorder{}
	var buf bytes.Buffer
	a := &analyzer{
		fs:      racedata.NewFs(),
		dataDir: filepath.Join(racedata.DataDir, racedata.Track),
		pub:     rec,
		out:     &buf,
	}
	require.NoError(t, a.run(testContext()))
	require.Len(t, rec.snaps, 1)
	assert.Equal(t, 0, rec.snaps[0].CurrentLap)
	assert.Contains(t, buf.String(), `"current_lap": 0`)
}

func TestAnalyzerRun_UnknownCar(t *testing.T) {
	setConfig(t)
	config.Car = "nope"
	var buf bytes.Buffer
	a := &analyzer{
		fs:      racedata.NewFs(),
		dataDir: filepath.Join(racedata.DataDir, racedata.Track),
		pub:     &recorder{},
		out:     &buf,
	}
	require.NoError(t, a.run(testContext()))
	assert.Contains(t, buf.String(), `"lapStats": null`)
}

func TestAnalyzerRun_NoLapData(t *testing.T) {
	setConfig(t)
	rec := &recorder{}
	a := &analyzer{
		fs:      racedata.NewFs(),
		dataDir: "/somewhere/else",
		pub:     rec,
		out:     &bytes.Buffer{},
	}
	assert.Error(t, a.run(testContext()))
	assert.Empty(t, rec.snaps)
}

func TestRelevant(t *testing.T) {
	assert.True(t, relevant("/data/R1_vir_lap_time.csv"))
	assert.True(t, relevant("26_Weather_Race 1_Anonymized.CSV"))
	assert.False(t, relevant("live_data.json"))
	assert.False(t, relevant("R1_vir_lap_time.csv.swp"))
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(testContext())
	defer cancel()

	w, err := newWatcher(ctx, dir, "50ms")
	require.NoError(t, err)

	called := make(chan struct{}, 10)
	done := make(chan error)
	go func() {
		done <- w.run(func() { called <- struct{}{} })
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "R1_vir_lap_time.csv"), []byte("a,b\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "R1_vir_lap_end.csv"), []byte("a,b\n"), 0o600))

	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange not called")
	}
	cancel()
	require.NoError(t, <-done)
}

func TestNewWatcher_InvalidDebounce(t *testing.T) {
	_, err := newWatcher(testContext(), t.TempDir(), "soon")
	assert.Error(t, err)
}
