package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	dualaxis_time "github.com/spiceai/dualaxis/pkg/time"
)

// ParseOptions control how untyped cells are read.
type ParseOptions struct {
	// TimeFormat is a Go layout or "unix"; empty tries the default layouts.
	TimeFormat string
	// Location is the zone of time values without an offset. It also becomes
	// the explicit zone of parsed time columns.
	Location *time.Location
}

// ParseOptionsFromParams reads the "time_format" and "location" processor
// params.
func ParseOptionsFromParams(params map[string]string) (ParseOptions, error) {
	location, err := dualaxis_time.LoadLocation(params["location"])
	if err != nil {
		return ParseOptions{}, err
	}

	return ParseOptions{
		TimeFormat: params["time_format"],
		Location:   location,
	}, nil
}

// FromRecords builds a table from a header row and string records, inferring
// each column's kind from its non-empty cells. Empty cells become missing
// values. Short records are padded.
func FromRecords(headers []string, records [][]string, opts ParseOptions) (*Table, error) {
	for i, header := range headers {
		if strings.TrimSpace(header) == "" {
			return nil, fmt.Errorf("column %d has no name", i+1)
		}
	}

	cells := make([][]string, len(headers))
	for col := range cells {
		cells[col] = make([]string, len(records))
	}
	for row, record := range records {
		if len(record) > len(headers) {
			return nil, fmt.Errorf("row %d has %d fields, expected %d", row+1, len(record), len(headers))
		}
		for col, cell := range record {
			cells[col][row] = strings.TrimSpace(cell)
		}
	}

	columns := make([]*Column, len(headers))
	for col, header := range headers {
		column, err := InferColumn(strings.TrimSpace(header), cells[col], opts)
		if err != nil {
			return nil, err
		}
		columns[col] = column
	}

	return New(columns...)
}

// InferColumn picks the narrowest kind every non-empty cell satisfies, in the
// order time, integer, double, boolean, falling back to string.
func InferColumn(name string, cells []string, opts ParseOptions) (*Column, error) {
	kinds := []Kind{KindTime, KindInteger, KindDouble, KindBoolean}

	nonEmpty := 0
	for _, cell := range cells {
		if cell != "" {
			nonEmpty++
		}
	}

	if nonEmpty > 0 {
		for _, kind := range kinds {
			values, ok := parseCells(kind, cells, opts)
			if !ok {
				continue
			}
			column, err := NewColumn(name, kind, values)
			if err != nil {
				return nil, err
			}
			if kind == KindTime && opts.Location != nil {
				column = column.WithLocation(opts.Location)
			}
			return column, nil
		}
	}

	values, _ := parseCells(KindString, cells, opts)
	return NewColumn(name, KindString, values)
}

func parseCells(kind Kind, cells []string, opts ParseOptions) ([]interface{}, bool) {
	values := make([]interface{}, len(cells))
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		v, err := parseCell(kind, cell, opts)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

func parseCell(kind Kind, cell string, opts ParseOptions) (interface{}, error) {
	switch kind {
	case KindTime:
		return dualaxis_time.ParseTime(cell, opts.TimeFormat, opts.Location)
	case KindInteger:
		return strconv.ParseInt(cell, 10, 64)
	case KindDouble:
		return cast.ToFloat64E(cell)
	case KindBoolean:
		return strconv.ParseBool(cell)
	}
	return cell, nil
}

// Coerce converts a decoded value (JSON number, string, bool) to the Go type a
// column of kind holds. nil stays nil.
func Coerce(kind Kind, value interface{}, opts ParseOptions) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	switch kind {
	case KindTime:
		switch v := value.(type) {
		case string:
			return dualaxis_time.ParseTime(v, opts.TimeFormat, opts.Location)
		case time.Time:
			return v, nil
		}
		seconds, err := cast.ToInt64E(value)
		if err != nil {
			return nil, fmt.Errorf("cannot read %v as time: %w", value, err)
		}
		return time.Unix(seconds, 0).UTC(), nil
	case KindDouble:
		return cast.ToFloat64E(value)
	case KindInteger:
		return cast.ToInt64E(value)
	case KindBoolean:
		return cast.ToBoolE(value)
	case KindString:
		return cast.ToStringE(value)
	}
	return value, nil
}
