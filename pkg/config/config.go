package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	LogLevel          string   // sets the log level (zap log level values)
	LogFormat         string   // text vs json
	LogFilter         string   // zapfilter rules, e.g. "debug:engine.* info:*"
	Track             string   // track name used in file patterns
	Race              int      // race number
	DataDir           string   // directory containing the race exports (default ./<track>)
	Lap               int      // current lap for analysis, negative means last lap in data
	Car               string   // car id for lap statistics and pit prediction
	CompareCars       []string // two car ids to compare
	SectionStart      float64  // lap distance where the telemetry section starts
	SectionEnd        float64  // lap distance where the telemetry section ends
	FuelPerLap        float64  // fuel consumption in percent per lap
	TireDegRate       float64  // tire degradation in percent per lap
	OutputFile        string   // file the snapshot is written to
	NatsURL           string   // if set, snapshots are published via NATS
	NatsSubjectPrefix string   // subject prefix for published snapshots
	WaitForServices   string   // duration to wait for the NATS server to become available
	Watch             bool     // re-export on changes in the data directory
	WatchDebounce     string   // duration to wait for further changes before re-export
	BaseDir           string   // batch: directory containing the track directories
	Tracks            []string // batch: tracks to process
	TracksFile        string   // batch: yaml file containing the tracks to process
	Workers           int      // batch: number of races processed in parallel
	ResultFile        string   // batch: aggregated result file
	ReportFile        string   // batch: html report file
	ReportAssetsHost  string   // batch: location of the echarts javascript assets
)
