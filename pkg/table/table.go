package table

import (
	"fmt"
	"time"
)

// Table is an ordered set of uniquely named columns of equal length.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}

	for i, c := range columns {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, ok := t.index[c.Name()]; ok {
			return nil, fmt.Errorf("duplicate column '%s'", c.Name())
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column '%s' has %d rows, expected %d", c.Name(), c.Len(), t.rows)
		}
		t.index[c.Name()] = i
		t.columns = append(t.columns, c)
	}

	return t, nil
}

// Columns returns the columns in table order.
func (t *Table) Columns() []*Column {
	columns := make([]*Column, len(t.columns))
	copy(columns, t.columns)
	return columns
}

func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name()
	}
	return names
}

func (t *Table) NumColumns() int {
	return len(t.columns)
}

func (t *Table) NumRows() int {
	return t.rows
}

// Snapshot is one immutable table value observed at a point in time.
type Snapshot struct {
	Table      *Table
	Generation uint64
	Time       time.Time
}

func NewSnapshot(t *Table, generation uint64) *Snapshot {
	return &Snapshot{
		Table:      t,
		Generation: generation,
		Time:       time.Now(),
	}
}
