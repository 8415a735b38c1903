package table

import (
	"fmt"
	"time"
)

type Kind int

const (
	KindOther Kind = iota
	KindTime
	KindDouble
	KindInteger
	KindString
	KindBoolean
)

var kindNames = map[Kind]string{
	KindOther:   "other",
	KindTime:    "time",
	KindDouble:  "double",
	KindInteger: "integer",
	KindString:  "string",
	KindBoolean: "boolean",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a kind name (as used in JSON column declarations) to a Kind.
// Unknown names map to KindOther.
func ParseKind(name string) Kind {
	switch name {
	case "time", "datetime", "dateTime", "timestamp", "date":
		return KindTime
	case "double", "float", "number", "numeric":
		return KindDouble
	case "integer", "int", "long", "unsignedLong":
		return KindInteger
	case "string", "text":
		return KindString
	case "boolean", "bool":
		return KindBoolean
	}
	return KindOther
}

// Column is an immutable, named sequence of values of one declared kind.
// Values are time.Time, float64, int64, string or bool according to the kind;
// nil marks a missing value.
type Column struct {
	name     string
	kind     Kind
	values   []interface{}
	location *time.Location
}

func NewColumn(name string, kind Kind, values []interface{}) (*Column, error) {
	if name == "" {
		return nil, fmt.Errorf("column name must not be empty")
	}

	copied := make([]interface{}, len(values))
	for i, v := range values {
		if v != nil && !kindAccepts(kind, v) {
			return nil, fmt.Errorf("column '%s' of kind %s cannot hold %T at row %d", name, kind, v, i)
		}
		copied[i] = v
	}

	return &Column{
		name:   name,
		kind:   kind,
		values: copied,
	}, nil
}

func NewTimeColumn(name string, values []time.Time) *Column {
	c := &Column{name: name, kind: KindTime, values: make([]interface{}, len(values))}
	for i, v := range values {
		c.values[i] = v
	}
	return c
}

func NewDoubleColumn(name string, values []float64) *Column {
	c := &Column{name: name, kind: KindDouble, values: make([]interface{}, len(values))}
	for i, v := range values {
		c.values[i] = v
	}
	return c
}

func NewIntegerColumn(name string, values []int64) *Column {
	c := &Column{name: name, kind: KindInteger, values: make([]interface{}, len(values))}
	for i, v := range values {
		c.values[i] = v
	}
	return c
}

func NewStringColumn(name string, values []string) *Column {
	c := &Column{name: name, kind: KindString, values: make([]interface{}, len(values))}
	for i, v := range values {
		c.values[i] = v
	}
	return c
}

// WithLocation returns a copy of the column carrying an explicit time zone.
func (c *Column) WithLocation(location *time.Location) *Column {
	return &Column{
		name:     c.name,
		kind:     c.kind,
		values:   c.values,
		location: location,
	}
}

func (c *Column) Name() string {
	return c.name
}

func (c *Column) Kind() Kind {
	return c.kind
}

func (c *Column) Len() int {
	return len(c.values)
}

// Location returns the explicit zone of a time column, or nil if none was declared.
func (c *Column) Location() *time.Location {
	return c.location
}

func (c *Column) Value(i int) interface{} {
	if i < 0 || i >= len(c.values) {
		return nil
	}
	return c.values[i]
}

func (c *Column) Time(i int) (time.Time, bool) {
	t, ok := c.Value(i).(time.Time)
	return t, ok
}

// Float returns the numeric value at row i widened to float64.
func (c *Column) Float(i int) (float64, bool) {
	switch v := c.Value(i).(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func kindAccepts(kind Kind, v interface{}) bool {
	switch kind {
	case KindTime:
		_, ok := v.(time.Time)
		return ok
	case KindDouble:
		_, ok := v.(float64)
		return ok
	case KindInteger:
		_, ok := v.(int64)
		return ok
	case KindString:
		_, ok := v.(string)
		return ok
	case KindBoolean:
		_, ok := v.(bool)
		return ok
	}
	return true
}
