//nolint:funlen // ok for tests
package loader

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/race-strategy-engine/testsupport/racedata"
)

func touch(t *testing.T, fs afero.Fs, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, n), []byte("a,b\n1,2\n"), 0o644))
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		kind  Kind
		want  string
		found bool
	}{
		{
			name:  "exact name wins over later patterns",
			files: []string{"aaa_lap_time_R1.csv", "R1_vir_lap_time.csv"},
			kind:  KindLapTime,
			want:  "R1_vir_lap_time.csv",
			found: true,
		},
		{
			name:  "track prefixed",
			files: []string{"vir_lap_time_R1.csv"},
			kind:  KindLapTime,
			want:  "vir_lap_time_R1.csv",
			found: true,
		},
		{
			name:  "generic fallback",
			files: []string{"xx_lap_time_R1_final.csv"},
			kind:  KindLapTime,
			want:  "xx_lap_time_R1_final.csv",
			found: true,
		},
		{
			name:  "other race is ignored",
			files: []string{"R2_vir_lap_time.csv"},
			kind:  KindLapTime,
			found: false,
		},
		{
			name:  "official results first",
			files: []string{"05_Results GR Cup Race 1 Official_Anonymized.CSV", "03_Provisional Results_Race 1_Anonymized.CSV"},
			kind:  KindResults,
			want:  "05_Results GR Cup Race 1 Official_Anonymized.CSV",
			found: true,
		},
		{
			name:  "weather",
			files: []string{"26_Weather_Race 1_Anonymized.CSV", "26_Weather_Race 2_Anonymized.CSV"},
			kind:  KindWeather,
			want:  "26_Weather_Race 1_Anonymized.CSV",
			found: true,
		},
		{
			name:  "telemetry",
			files: []string{"R1_vir_telemetry_data.csv"},
			kind:  KindTelemetry,
			want:  "R1_vir_telemetry_data.csv",
			found: true,
		},
		{
			name:  "lap end",
			files: []string{"vir_lap_end_time_R1.csv"},
			kind:  KindLapEnd,
			want:  "vir_lap_end_time_R1.csv",
			found: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			touch(t, fs, "/vir", tt.files...)
			l := New("/vir", "vir", 1, WithFs(fs))
			got, ok := l.Find(tt.kind)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, filepath.Join("/vir", tt.want), got)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	fs := racedata.NewFs()
	ds, err := New(filepath.Join(racedata.DataDir, racedata.Track), racedata.Track, 1, WithFs(fs)).Load()
	require.NoError(t, err)

	require.NotNil(t, ds.LapTimes)
	require.NotNil(t, ds.LapStarts)
	require.NotNil(t, ds.LapEnds)
	require.NotNil(t, ds.Telemetry)
	require.NotNil(t, ds.Results)
	require.NotNil(t, ds.Weather)
	require.NotNil(t, ds.BestLaps)

	assert.Equal(t, 15, ds.LapTimes.Len())
	assert.Equal(t, "29.6", ds.Weather.Value(0, "AIR_TEMP"), "semicolon separated")
	assert.Len(t, ds.Files, 7)
}

func TestLoad_MissingFiles(t *testing.T) {
	fs := racedata.NewFs(racedata.WithoutEvents(), racedata.WithoutTelemetry())
	ds, err := New(filepath.Join(racedata.DataDir, racedata.Track), racedata.Track, 1, WithFs(fs)).Load()
	require.NoError(t, err)
	assert.NotNil(t, ds.LapTimes)
	assert.Nil(t, ds.LapStarts)
	assert.Nil(t, ds.LapEnds)
	assert.Nil(t, ds.Telemetry)
	assert.NotContains(t, ds.Files, KindTelemetry)
}

func TestLoad_EmptyDir(t *testing.T) {
	ds, err := New("/nothing", "vir", 1, WithFs(afero.NewMemMapFs())).Load()
	require.NoError(t, err)
	assert.Nil(t, ds.LapTimes)
	assert.Empty(t, ds.Files)
}
