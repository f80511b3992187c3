// Package plot renders diagnostic charts of an aggregation run with gonum/plot.
// The charts are for a quick visual check of a layer; their appearance is not
// part of any contract, only the file names are.
package plot

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/secchi-etl/internal/domain"
)

const (
	// RegionYearChart is the per-region line chart of yearly means.
	RegionYearChart = "region_year_means.png"
	// MonthlyHistogram is the distribution of monthly means.
	MonthlyHistogram = "monthly_means_hist.png"

	histogramBins = 20
)

// Renderer writes PNG charts into a directory.
// It implements pipeline.ChartRenderer.
type Renderer struct {
	dir    string
	logger *slog.Logger
}

func NewRenderer(dir string, logger *slog.Logger) *Renderer {
	return &Renderer{dir: dir, logger: logger}
}

// Render writes both charts. A chart with no non-null values to draw is
// skipped rather than written empty.
func (r *Renderer) Render(monthly []domain.MonthlyMean, annual []domain.RegionYearMean) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create plots directory: %w", err)
	}

	series := regionSeries(annual)
	if len(series) == 0 {
		r.logger.Warn("chart skipped, no yearly means", "chart", RegionYearChart)
	} else if err := r.renderRegionYear(series); err != nil {
		return err
	}

	values := monthlyValues(monthly)
	if len(values) == 0 {
		r.logger.Warn("chart skipped, no monthly means", "chart", MonthlyHistogram)
	} else if err := r.renderHistogram(values); err != nil {
		return err
	}
	return nil
}

func (r *Renderer) renderRegionYear(series map[int]plotter.XYs) error {
	p := plot.New()
	p.Title.Text = "Mean summer Secchi depth by region"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Secchi depth (m)"
	p.Add(plotter.NewGrid())

	regions := make([]int, 0, len(series))
	for id := range series {
		regions = append(regions, id)
	}
	sort.Ints(regions)

	for i, id := range regions {
		line, points, err := plotter.NewLinePoints(series[id])
		if err != nil {
			return fmt.Errorf("region %d series: %w", id, err)
		}
		line.Color = plotutil.Color(i)
		points.GlyphStyle.Color = plotutil.Color(i)
		points.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add("region "+strconv.Itoa(id), line, points)
	}

	return r.save(p, RegionYearChart, 10*vg.Inch, 6*vg.Inch)
}

func (r *Renderer) renderHistogram(values plotter.Values) error {
	p := plot.New()
	p.Title.Text = "Distribution of monthly means"
	p.X.Label.Text = "Secchi depth (m)"
	p.Y.Label.Text = "Groups"

	h, err := plotter.NewHist(values, histogramBins)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	p.Add(h)

	return r.save(p, MonthlyHistogram, 8*vg.Inch, 5*vg.Inch)
}

func (r *Renderer) save(p *plot.Plot, name string, w, h vg.Length) error {
	path := filepath.Join(r.dir, name)
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	r.logger.Info("chart written", "path", path)
	return nil
}

// regionSeries groups non-null yearly means into one XY series per region,
// ordered by year.
func regionSeries(annual []domain.RegionYearMean) map[int]plotter.XYs {
	series := make(map[int]plotter.XYs)
	for _, a := range annual {
		if !a.Mean.Valid {
			continue
		}
		series[a.RegionID] = append(series[a.RegionID], plotter.XY{X: float64(a.Year), Y: a.Mean.Value})
	}
	for id, xys := range series {
		sort.Slice(xys, func(i, j int) bool { return xys[i].X < xys[j].X })
		series[id] = xys
	}
	return series
}

func monthlyValues(monthly []domain.MonthlyMean) plotter.Values {
	var values plotter.Values
	for _, m := range monthly {
		if m.Mean.Valid {
			values = append(values, m.Mean.Value)
		}
	}
	return values
}
