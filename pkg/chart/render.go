package chart

import (
	"fmt"
	"io"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
)

type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

func ParseFormat(format string) (Format, error) {
	switch Format(format) {
	case PNG, SVG:
		return Format(format), nil
	}
	return "", fmt.Errorf("unknown chart format '%s'", format)
}

func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

type RenderOptions struct {
	Width  int
	Height int
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Width:  1024,
		Height: 400,
	}
}

// Render draws the configuration with the primary axis on the left and the
// secondary axis on the right.
func Render(config *Config, format Format, w io.Writer, opts RenderOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultRenderOptions()
	}

	layout := "2006-01-02 15:04"
	location := config.X.TimeLocation()

	series := make([]gochart.Series, 0, len(config.Series))
	var times []time.Time
	var primary, secondary []float64
	for _, s := range config.Series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]time.Time, len(s.Points))
		ys := make([]float64, len(s.Points))
		for i, p := range s.Points {
			xs[i] = p.Time
			ys[i] = p.Value
		}
		times = append(times, xs...)

		ts := gochart.TimeSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
		}
		if s.Axis == AxisSecondary {
			ts.YAxis = gochart.YAxisSecondary
			secondary = append(secondary, ys...)
		} else {
			primary = append(primary, ys...)
		}
		series = append(series, ts)
	}

	graph := gochart.Chart{
		Title:      config.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 24}},
		XAxis: gochart.XAxis{
			Name: config.X.Label,
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return gochart.TimeFromFloat64(f).In(location).Format(layout)
				}
				return ""
			},
			Range: timeRange(times),
		},
		YAxis: gochart.YAxis{
			Name:  config.Y.Label,
			Range: valueRange(primary),
		},
		YAxisSecondary: gochart.YAxis{
			Name:  config.Y2.Label,
			Range: valueRange(secondary),
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	var provider gochart.RendererProvider = gochart.PNG
	if format == SVG {
		provider = gochart.SVG
	}

	if err := graph.Render(provider, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// timeRange pads a degenerate x range so a single timestamp still renders.
func timeRange(times []time.Time) gochart.Range {
	if len(times) == 0 {
		now := time.Now()
		return &gochart.ContinuousRange{
			Min: gochart.TimeToFloat64(now.Add(-time.Minute)),
			Max: gochart.TimeToFloat64(now),
		}
	}

	min, max := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	if !max.After(min) {
		return &gochart.ContinuousRange{
			Min: gochart.TimeToFloat64(min.Add(-time.Minute)),
			Max: gochart.TimeToFloat64(max.Add(time.Minute)),
		}
	}
	return nil
}

// valueRange returns nil to let the chart fit the data, or a fixed range when
// the data alone would give a zero-height axis.
func valueRange(values []float64) gochart.Range {
	if len(values) == 0 {
		return &gochart.ContinuousRange{Min: 0, Max: 1}
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if max > min {
		return nil
	}
	return &gochart.ContinuousRange{Min: min - 1, Max: max + 1}
}
