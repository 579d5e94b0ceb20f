package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/liftlab-data/barpath.report/internal/motion/paths"
	"github.com/liftlab-data/barpath.report/internal/session"
)

// RenderChart writes an HTML page with two charts: the bar path of every
// rep (height over time, one series per rep) and a bar chart of the
// per-rep quality scores.
func RenderChart(w io.Writer, sum session.Summary) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Bar Path — %s", sum.Session.Exercise)

	page.AddCharts(pathChart(sum), scoreChart(sum))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render session chart: %w", err)
	}
	return nil
}

// pathChart plots bar height against time offset for each rep. Frame y
// grows downward, so height is plotted as 1-y to read the natural way up.
func pathChart(sum session.Summary) components.Charter {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Bar Path",
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Bar Height over Time",
			Subtitle: fmt.Sprintf("exercise=%s tempo=%s reps=%d elapsed=%s",
				sum.Session.Exercise, sum.Session.Tempo, len(sum.Reps), sum.Stats.Elapsed),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Height (normalized)", Min: 0, Max: 1}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	byID := make(map[int64]paths.Path, len(sum.Paths))
	for _, p := range sum.Paths {
		byID[p.ID] = p
	}

	for _, rec := range sum.Reps {
		p, ok := byID[rec.PathID]
		if !ok || len(p.Points) == 0 {
			continue
		}
		start := p.Points[0].TimestampMs
		data := make([]opts.LineData, 0, len(p.Points))
		for _, pt := range p.Points {
			t := float64(pt.TimestampMs-start) / 1000.0
			data = append(data, opts.LineData{Value: []interface{}{t, 1 - pt.Y}})
		}
		line.AddSeries(fmt.Sprintf("rep %d", rec.RepNumber), data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	}
	return line
}

// scoreChart shows per-rep quality scores with the sub-scores alongside.
func scoreChart(sum session.Summary) components.Charter {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "900px",
			Height: "400px",
		}),
		charts.WithTitleOpts(opts.Title{Title: "Rep Quality Scores"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Score", Min: 0, Max: 100}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	labels := make([]string, 0, len(sum.Reps))
	scores := make([]opts.BarData, 0, len(sum.Reps))
	completeness := make([]opts.BarData, 0, len(sum.Reps))
	efficiency := make([]opts.BarData, 0, len(sum.Reps))
	for _, rec := range sum.Reps {
		labels = append(labels, fmt.Sprintf("rep %d", rec.RepNumber))
		scores = append(scores, opts.BarData{Value: rec.Score})
		completeness = append(completeness, opts.BarData{Value: rec.Completeness})
		efficiency = append(efficiency, opts.BarData{Value: rec.Efficiency})
	}

	bar.SetXAxis(labels).
		AddSeries("score", scores).
		AddSeries("completeness", completeness).
		AddSeries("efficiency", efficiency)
	return bar
}
