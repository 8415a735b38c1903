package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cast"
	"github.com/spiceai/dualaxis/pkg/table"
	"github.com/spiceai/dualaxis/pkg/util"
)

const (
	JsonProcessorName string = "json"
)

// Document is the columnar JSON shape: declared columns and positional rows.
// A column without a kind has it inferred from its values.
type Document struct {
	Columns []ColumnSpec    `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

type ColumnSpec struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

type JsonProcessor struct {
	options   table.ParseOptions
	data      []byte
	dataMutex sync.RWMutex
	dataHash  []byte
}

func NewJsonProcessor() *JsonProcessor {
	return &JsonProcessor{}
}

func (p *JsonProcessor) Init(params map[string]string) error {
	options, err := table.ParseOptionsFromParams(params)
	if err != nil {
		return err
	}
	p.options = options
	return nil
}

func (p *JsonProcessor) OnData(data []byte) ([]byte, error) {
	p.dataMutex.Lock()
	defer p.dataMutex.Unlock()

	if newDataHash := util.ComputeNewHash(p.dataHash, data); newDataHash != nil {
		// Only update data if new
		p.data = data
		p.dataHash = newDataHash
	}

	return data, nil
}

func (p *JsonProcessor) GetTable() (*table.Table, error) {
	p.dataMutex.Lock()
	defer p.dataMutex.Unlock()

	if p.data == nil {
		return nil, nil
	}

	var doc Document
	decoder := json.NewDecoder(bytes.NewReader(p.data))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to process json: %w", err)
	}

	t, err := doc.Table(p.options)
	if err != nil {
		return nil, fmt.Errorf("failed to process json: %w", err)
	}

	p.data = nil
	return t, nil
}

// Table converts the document, coercing values to declared kinds.
func (d *Document) Table(opts table.ParseOptions) (*table.Table, error) {
	if len(d.Columns) == 0 {
		return nil, errors.New("no columns declared")
	}

	for row, values := range d.Rows {
		if len(values) != len(d.Columns) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", row+1, len(values), len(d.Columns))
		}
	}

	columns := make([]*table.Column, len(d.Columns))
	for col, spec := range d.Columns {
		column, err := d.column(col, spec, opts)
		if err != nil {
			return nil, err
		}
		columns[col] = column
	}

	return table.New(columns...)
}

func (d *Document) column(col int, spec ColumnSpec, opts table.ParseOptions) (*table.Column, error) {
	if spec.Kind == "" {
		cells := make([]string, len(d.Rows))
		for row, values := range d.Rows {
			if values[col] == nil {
				continue
			}
			cell, err := cast.ToStringE(values[col])
			if err != nil {
				return nil, fmt.Errorf("column '%s' row %d: %w", spec.Name, row+1, err)
			}
			cells[row] = cell
		}
		return table.InferColumn(spec.Name, cells, opts)
	}

	kind := table.ParseKind(spec.Kind)
	if kind == table.KindOther {
		return nil, fmt.Errorf("column '%s' has unknown kind '%s'", spec.Name, spec.Kind)
	}

	values := make([]interface{}, len(d.Rows))
	for row, rowValues := range d.Rows {
		value, err := table.Coerce(kind, rowValues[col], opts)
		if err != nil {
			return nil, fmt.Errorf("column '%s' row %d: %w", spec.Name, row+1, err)
		}
		values[row] = value
	}

	column, err := table.NewColumn(spec.Name, kind, values)
	if err != nil {
		return nil, err
	}
	if kind == table.KindTime && opts.Location != nil {
		column = column.WithLocation(opts.Location)
	}
	return column, nil
}
