// Package report turns training runs into HTML learning-curve charts.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/wricardo/mcp-training/tilemerge/game/service"
)

// DefaultWindow is the moving-average window of the score curve
const DefaultWindow = 20

// MovingAverage averages each value with up to window-1 values before it.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// ScoreChart plots the score of every episode and its moving average.
func ScoreChart(r *service.TrainingReport, window int) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s: score per episode", r.ConfigName),
			Subtitle: fmt.Sprintf("run %s, %d episodes, %d wins", r.RunID, len(r.Episodes), r.Wins),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     "shine",
			PageTitle: "Training report",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "score"}),
	)

	episodes := make([]string, len(r.Episodes))
	scores := make([]float64, len(r.Episodes))
	for i, ep := range r.Episodes {
		episodes[i] = fmt.Sprintf("%d", ep.Episode)
		scores[i] = float64(ep.Score)
	}

	line.SetXAxis(episodes).
		AddSeries("score", lineData(scores)).
		AddSeries(fmt.Sprintf("mean of %d", window), lineData(MovingAverage(scores, window)))
	return line
}

// TileChart plots the largest tile reached in every episode.
func TileChart(r *service.TrainingReport) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "largest tile per episode"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "tile", Type: "log"}),
	)

	episodes := make([]string, len(r.Episodes))
	tiles := make([]float64, len(r.Episodes))
	for i, ep := range r.Episodes {
		episodes[i] = fmt.Sprintf("%d", ep.Episode)
		tiles[i] = float64(ep.MaxTile)
	}
	line.SetXAxis(episodes).AddSeries("max tile", lineData(tiles))
	return line
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.LineData{Value: v})
	}
	return items
}

// Render writes a page with the score and tile charts.
func Render(w io.Writer, r *service.TrainingReport, window int) error {
	page := components.NewPage()
	page.AddCharts(
		ScoreChart(r, window),
		TileChart(r),
	)
	return page.Render(w)
}

// WriteHTML renders the report to path, creating parent directories.
func WriteHTML(path string, r *service.TrainingReport, window int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	defer f.Close()

	if err := Render(f, r, window); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return f.Close()
}
