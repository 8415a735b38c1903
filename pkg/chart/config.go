package chart

import (
	"time"
)

type AxisID string

const (
	AxisX         AxisID = "x"
	AxisPrimary   AxisID = "y"
	AxisSecondary AxisID = "y2"
)

const DefaultSeparator = ", "

// Config is a renderable dual-axis chart description. Hosts may decorate it
// (title, sizes) before rendering.
type Config struct {
	Title  string   `json:"title,omitempty"`
	X      XAxis    `json:"x"`
	Y      YAxis    `json:"y"`
	Y2     YAxis    `json:"y2"`
	Series []Series `json:"series"`
}

type XAxis struct {
	Column   string         `json:"column"`
	Label    string         `json:"label"`
	Location string         `json:"location"`
	location *time.Location `json:"-"`
}

// TimeLocation returns the zone the x values are expressed in.
func (x XAxis) TimeLocation() *time.Location {
	if x.location == nil {
		return time.UTC
	}
	return x.location
}

type YAxis struct {
	ID      AxisID   `json:"id"`
	Label   string   `json:"label"`
	Columns []string `json:"columns"`
}

type Series struct {
	Name   string  `json:"name"`
	Axis   AxisID  `json:"axis"`
	Points []Point `json:"points"`
}

type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// SeriesOn returns the series bound to the given axis, in configuration order.
func (c *Config) SeriesOn(axis AxisID) []Series {
	var series []Series
	for _, s := range c.Series {
		if s.Axis == axis {
			series = append(series, s)
		}
	}
	return series
}

type Options struct {
	Title     string
	Separator string
	// DefaultLocation applies to time columns that carry no explicit zone.
	DefaultLocation *time.Location
}

func DefaultOptions() Options {
	return Options{
		Separator:       DefaultSeparator,
		DefaultLocation: time.UTC,
	}
}
