package chart

import (
	"strings"
	"time"

	"github.com/spiceai/dualaxis/pkg/classify"
	"github.com/spiceai/dualaxis/pkg/controls"
	"github.com/spiceai/dualaxis/pkg/table"
	"github.com/spiceai/dualaxis/pkg/validation"
)

// Validate re-checks a selection against the table it is about to be drawn
// from. Controls may still hold picks from a previous table, so nothing about
// them is assumed.
func Validate(t *table.Table, sel controls.Selection) error {
	if t == nil {
		return validation.New(validation.NotTabular)
	}

	if len(sel.Time) != 1 {
		return validation.New(validation.TimeMissing)
	}
	timeColumn, ok := t.Column(sel.Time[0])
	if !ok || classify.ClassOf(timeColumn.Kind()) != classify.TimeColumn {
		return validation.Newf(validation.TimeMissing, "Time column '%s' is not available", sel.Time[0])
	}

	if len(sel.Y1) == 0 && len(sel.Y2) == 0 {
		return validation.New(validation.NoYSeries)
	}
	for _, names := range [][]string{sel.Y1, sel.Y2} {
		for _, name := range names {
			column, ok := t.Column(name)
			if !ok || classify.ClassOf(column.Kind()) != classify.NumericColumn {
				return validation.Newf(validation.NoYSeries, "Series '%s' is not available", name)
			}
		}
	}

	return nil
}

// Build validates the selection and produces a fresh chart configuration.
func Build(t *table.Table, sel controls.Selection, opts Options) (*Config, error) {
	if err := Validate(t, sel); err != nil {
		return nil, err
	}

	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	if opts.DefaultLocation == nil {
		opts.DefaultLocation = time.UTC
	}

	timeColumn, _ := t.Column(sel.Time[0])
	location := timeColumn.Location()
	if location == nil {
		location = opts.DefaultLocation
	}

	config := &Config{
		Title: opts.Title,
		X: XAxis{
			Column:   timeColumn.Name(),
			Label:    timeColumn.Name(),
			Location: location.String(),
			location: location,
		},
		Y: YAxis{
			ID:      AxisPrimary,
			Label:   strings.Join(sel.Y1, opts.Separator),
			Columns: append([]string{}, sel.Y1...),
		},
		Y2: YAxis{
			ID:      AxisSecondary,
			Label:   strings.Join(sel.Y2, opts.Separator),
			Columns: append([]string{}, sel.Y2...),
		},
		Series: make([]Series, 0, len(sel.Y1)+len(sel.Y2)),
	}

	for _, name := range sel.Y1 {
		column, _ := t.Column(name)
		config.Series = append(config.Series, newSeries(timeColumn, column, AxisPrimary, location))
	}
	for _, name := range sel.Y2 {
		column, _ := t.Column(name)
		config.Series = append(config.Series, newSeries(timeColumn, column, AxisSecondary, location))
	}

	return config, nil
}

func newSeries(timeColumn *table.Column, column *table.Column, axis AxisID, location *time.Location) Series {
	series := Series{
		Name:   column.Name(),
		Axis:   axis,
		Points: make([]Point, 0, column.Len()),
	}

	for i := 0; i < column.Len(); i++ {
		ts, ok := timeColumn.Time(i)
		if !ok {
			continue
		}
		value, ok := column.Float(i)
		if !ok {
			continue
		}
		series.Points = append(series.Points, Point{Time: ts.In(location), Value: value})
	}

	return series
}
