package classify

import (
	"github.com/spiceai/dualaxis/pkg/table"
	"github.com/spiceai/dualaxis/pkg/validation"
)

// Class is the role a column can play in the chart.
type Class int

const (
	OtherColumn Class = iota
	TimeColumn
	NumericColumn
)

func (c Class) String() string {
	switch c {
	case TimeColumn:
		return "time"
	case NumericColumn:
		return "numeric"
	}
	return "other"
}

func ClassOf(kind table.Kind) Class {
	switch kind {
	case table.KindTime:
		return TimeColumn
	case table.KindDouble, table.KindInteger:
		return NumericColumn
	}
	return OtherColumn
}

// Classification holds the time and numeric column names of one snapshot,
// in table order.
type Classification struct {
	Generation uint64
	Time       []string
	Numeric    []string
	classes    map[string]Class
}

func Classify(snapshot *table.Snapshot) *Classification {
	c := &Classification{
		Time:    []string{},
		Numeric: []string{},
		classes: make(map[string]Class),
	}
	if snapshot == nil || snapshot.Table == nil {
		return c
	}

	c.Generation = snapshot.Generation
	for _, column := range snapshot.Table.Columns() {
		class := ClassOf(column.Kind())
		c.classes[column.Name()] = class
		switch class {
		case TimeColumn:
			c.Time = append(c.Time, column.Name())
		case NumericColumn:
			c.Numeric = append(c.Numeric, column.Name())
		}
	}

	return c
}

// ClassOf returns the class of a column, OtherColumn if unknown.
func (c *Classification) ClassOf(name string) Class {
	return c.classes[name]
}

func (c *Classification) RequireTime() error {
	if len(c.Time) == 0 {
		return validation.New(validation.NoTimeColumns)
	}
	return nil
}

func (c *Classification) RequireNumeric() error {
	if len(c.Numeric) == 0 {
		return validation.New(validation.NoNumericColumns)
	}
	return nil
}
