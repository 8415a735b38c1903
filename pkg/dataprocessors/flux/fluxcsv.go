package flux

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/influxdata/flux"
	flux_csv "github.com/influxdata/flux/csv"
	"github.com/spiceai/dualaxis/pkg/loggers"
	"github.com/spiceai/dualaxis/pkg/table"
	"github.com/spiceai/dualaxis/pkg/util"
	"go.uber.org/zap"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

const (
	FluxCsvProcessorName string = "flux-csv"

	timeLabel  = "_time"
	fieldLabel = "_field"
	valueLabel = "_value"
)

// Columns that describe the flux result rather than the data.
var skippedLabels = map[string]bool{
	"result": true,
	"table":  true,
}

type FluxCsvProcessor struct {
	location  *time.Location
	data      []byte
	dataMutex sync.RWMutex
	dataHash  []byte
}

func NewFluxCsvProcessor() *FluxCsvProcessor {
	return &FluxCsvProcessor{}
}

func (p *FluxCsvProcessor) Init(params map[string]string) error {
	options, err := table.ParseOptionsFromParams(params)
	if err != nil {
		return err
	}
	p.location = options.Location
	return nil
}

func (p *FluxCsvProcessor) OnData(data []byte) ([]byte, error) {
	p.dataMutex.Lock()
	defer p.dataMutex.Unlock()

	if newDataHash := util.ComputeNewHash(p.dataHash, data); newDataHash != nil {
		// Only update data if new
		p.data = data
		p.dataHash = newDataHash
	}

	return data, nil
}

// GetTable decodes annotated CSV into one table. Results in long form
// (_time, _field, _value) are pivoted into one column per field; anything
// else is concatenated column by column.
func (p *FluxCsvProcessor) GetTable() (*table.Table, error) {
	p.dataMutex.Lock()
	defer p.dataMutex.Unlock()

	if len(p.data) == 0 {
		return nil, nil
	}

	readCloser := io.NopCloser(bytes.NewReader(p.data))

	decoder := flux_csv.NewMultiResultDecoder(flux_csv.ResultDecoderConfig{ /* Use defaults */ })
	results, err := decoder.Decode(readCloser)
	if err != nil {
		return nil, err
	}
	defer results.Release()

	acc := newAccumulator()
	for results.More() {
		result := results.Next()

		err = result.Tables().Do(func(t flux.Table) error {
			return t.Do(func(c flux.ColReader) error {
				return acc.read(c)
			})
		})
		if err != nil {
			return nil, err
		}
	}

	err = results.Err()
	if err != nil {
		zaplog.Sugar().Warnf("error decoding flux csv result: %v", err)
		return nil, err
	}

	t, err := acc.table(p.location)
	if err != nil {
		return nil, fmt.Errorf("failed to process flux csv: %w", err)
	}

	p.data = nil
	return t, nil
}

type column struct {
	name   string
	kind   table.Kind
	values []interface{}
}

// accumulator collects rows of every flux table. Long-form rows go into the
// pivot; all others are appended to wide columns.
type accumulator struct {
	columns []*column
	index   map[string]*column
	rows    int

	fields     []string
	pivot      map[int64]map[string]float64
	pivotTimes []int64
}

func newAccumulator() *accumulator {
	return &accumulator{
		index: make(map[string]*column),
		pivot: make(map[int64]map[string]float64),
	}
}

func (a *accumulator) read(c flux.ColReader) error {
	labels := make(map[string]int, len(c.Cols()))
	for col, meta := range c.Cols() {
		labels[meta.Label] = col
	}

	timeCol, hasTime := labels[timeLabel]
	fieldCol, hasField := labels[fieldLabel]
	valueCol, hasValue := labels[valueLabel]
	if hasTime && hasField && hasValue {
		return a.readLong(c, timeCol, fieldCol, valueCol)
	}
	return a.readWide(c)
}

func (a *accumulator) readLong(c flux.ColReader, timeCol int, fieldCol int, valueCol int) error {
	times := c.Times(timeCol)
	fields := c.Strings(fieldCol)

	for i := 0; i < c.Len(); i++ {
		if times.IsNull(i) || fields.IsNull(i) {
			continue
		}
		value, ok := numericAt(c, valueCol, i)
		if !ok {
			continue
		}

		ts := times.Value(i)
		row, ok := a.pivot[ts]
		if !ok {
			row = make(map[string]float64)
			a.pivot[ts] = row
			a.pivotTimes = append(a.pivotTimes, ts)
		}

		field := fields.Value(i)
		if _, seen := a.index[field]; !seen {
			a.index[field] = &column{name: field, kind: table.KindDouble}
			a.fields = append(a.fields, field)
		}
		row[field] = value
	}

	return nil
}

func (a *accumulator) readWide(c flux.ColReader) error {
	for col, meta := range c.Cols() {
		if skippedLabels[meta.Label] {
			continue
		}

		kind := kindOf(meta.Type)
		existing, ok := a.index[meta.Label]
		if !ok {
			existing = &column{name: meta.Label, kind: kind, values: make([]interface{}, a.rows)}
			a.index[meta.Label] = existing
			a.columns = append(a.columns, existing)
		} else if existing.kind != kind {
			return fmt.Errorf("column '%s' is %s in one table and %s in another", meta.Label, existing.kind, kind)
		}

		for i := 0; i < c.Len(); i++ {
			existing.values = append(existing.values, valueAt(c, col, meta.Type, i))
		}
	}

	a.rows += c.Len()
	for _, existing := range a.columns {
		for len(existing.values) < a.rows {
			existing.values = append(existing.values, nil)
		}
	}

	return nil
}

func (a *accumulator) table(location *time.Location) (*table.Table, error) {
	if len(a.fields) > 0 && len(a.columns) > 0 {
		return nil, fmt.Errorf("cannot combine pivoted and wide results")
	}

	if len(a.fields) > 0 {
		sort.Slice(a.pivotTimes, func(i, j int) bool { return a.pivotTimes[i] < a.pivotTimes[j] })

		times := make([]interface{}, len(a.pivotTimes))
		values := make(map[string][]interface{}, len(a.fields))
		for _, field := range a.fields {
			values[field] = make([]interface{}, len(a.pivotTimes))
		}
		for i, ts := range a.pivotTimes {
			times[i] = time.Unix(0, ts).UTC()
			for field, value := range a.pivot[ts] {
				values[field][i] = value
			}
		}

		columns := make([]*table.Column, 0, len(a.fields)+1)
		timeColumn, err := table.NewColumn(timeLabel, table.KindTime, times)
		if err != nil {
			return nil, err
		}
		columns = append(columns, withLocation(timeColumn, location))
		for _, field := range a.fields {
			column, err := table.NewColumn(field, table.KindDouble, values[field])
			if err != nil {
				return nil, err
			}
			columns = append(columns, column)
		}
		return table.New(columns...)
	}

	columns := make([]*table.Column, 0, len(a.columns))
	for _, c := range a.columns {
		column, err := table.NewColumn(c.name, c.kind, c.values)
		if err != nil {
			return nil, err
		}
		if c.kind == table.KindTime {
			column = withLocation(column, location)
		}
		columns = append(columns, column)
	}
	return table.New(columns...)
}

func withLocation(column *table.Column, location *time.Location) *table.Column {
	if location == nil {
		return column
	}
	return column.WithLocation(location)
}

func kindOf(t flux.ColType) table.Kind {
	switch t {
	case flux.TTime:
		return table.KindTime
	case flux.TFloat:
		return table.KindDouble
	case flux.TInt, flux.TUInt:
		return table.KindInteger
	case flux.TString:
		return table.KindString
	case flux.TBool:
		return table.KindBoolean
	}
	return table.KindOther
}

func valueAt(c flux.ColReader, col int, t flux.ColType, i int) interface{} {
	switch t {
	case flux.TTime:
		values := c.Times(col)
		if values.IsNull(i) {
			return nil
		}
		return time.Unix(0, values.Value(i)).UTC()
	case flux.TFloat:
		values := c.Floats(col)
		if values.IsNull(i) {
			return nil
		}
		return values.Value(i)
	case flux.TInt:
		values := c.Ints(col)
		if values.IsNull(i) {
			return nil
		}
		return values.Value(i)
	case flux.TUInt:
		values := c.UInts(col)
		if values.IsNull(i) {
			return nil
		}
		return int64(values.Value(i))
	case flux.TString:
		values := c.Strings(col)
		if values.IsNull(i) {
			return nil
		}
		return values.Value(i)
	case flux.TBool:
		values := c.Bools(col)
		if values.IsNull(i) {
			return nil
		}
		return values.Value(i)
	}
	return nil
}

func numericAt(c flux.ColReader, col int, i int) (float64, bool) {
	switch c.Cols()[col].Type {
	case flux.TFloat:
		values := c.Floats(col)
		if values.IsNull(i) {
			return 0, false
		}
		return values.Value(i), true
	case flux.TInt:
		values := c.Ints(col)
		if values.IsNull(i) {
			return 0, false
		}
		return float64(values.Value(i)), true
	case flux.TUInt:
		values := c.UInts(col)
		if values.IsNull(i) {
			return 0, false
		}
		return float64(values.Value(i)), true
	}
	return 0, false
}
