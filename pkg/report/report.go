// Package report renders a static HTML overview of a batch result.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/samber/lo"

	"github.com/mpapenbr/race-strategy-engine/pkg/model"
)

const pageTitle = "GR Cup Race Intelligence Report"

type (
	Renderer struct {
		assetsHost string
		maxCars    int
	}
	Option func(*Renderer)
)

// WithAssetsHost sets the location the echarts javascript is loaded from.
func WithAssetsHost(host string) Option {
	return func(r *Renderer) {
		r.assetsHost = host
	}
}

// WithMaxCars limits the number of cars shown per race chart.
func WithMaxCars(n int) Option {
	return func(r *Renderer) {
		r.maxCars = n
	}
}

func New(opts ...Option) *Renderer {
	ret := &Renderer{maxCars: 5}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Render writes the summary chart followed by one best lap chart per race.
func (r *Renderer) Render(w io.Writer, res *model.BatchResult) error {
	page := components.NewPage()
	page.PageTitle = pageTitle
	if r.assetsHost != "" {
		page.SetAssetsHost(r.assetsHost)
	}
	page.AddCharts(r.summaryChart(res))
	for _, rep := range res.Tracks {
		page.AddCharts(r.raceChart(rep))
	}
	return page.Render(w)
}

func (r *Renderer) initOpts() opts.Initialization {
	ret := opts.Initialization{PageTitle: pageTitle, Width: "100%", Height: "420px"}
	if r.assetsHost != "" {
		ret.AssetsHost = r.assetsHost
	}
	return ret
}

func (r *Renderer) summaryChart(res *model.BatchResult) *charts.Bar {
	x := []string{"Tracks", "Races", "Cars", "Insights"}
	y := []opts.BarData{
		{Value: res.Summary.TotalTracks},
		{Value: res.Summary.TotalRaces},
		{Value: res.Summary.TotalCars},
		{Value: res.Summary.TotalInsights},
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(r.initOpts()),
		charts.WithTitleOpts(opts.Title{
			Title:    "Executive Summary",
			Subtitle: fmt.Sprintf("Generated %s", res.Timestamp.Format("2006-01-02 15:04:05")),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("summary", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func (r *Renderer) raceChart(rep *model.RaceReport) *charts.Bar {
	cars := lo.Slice(rep.Cars, 0, r.maxCars)
	x := lo.Map(cars, func(c model.RaceCar, _ int) string {
		return fmt.Sprintf("P%d %s", c.Position, c.CarID)
	})
	y := lo.Map(cars, func(c model.RaceCar, _ int) opts.BarData {
		return opts.BarData{Value: c.BestLapTime}
	})
	subtitle := fmt.Sprintf("Current lap %d, %d drivers, %d insights",
		rep.CurrentLap, len(rep.Cars), len(rep.Insights))
	if !rep.Valid {
		subtitle += " [failed integrity check]"
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(r.initOpts()),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s - Race %d", rep.Track, rep.Race),
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Best lap (s)"}),
	)
	bar.SetXAxis(x).
		AddSeries("best lap", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
