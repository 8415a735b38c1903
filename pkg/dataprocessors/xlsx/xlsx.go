package xlsx

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"

	"github.com/spiceai/dualaxis/pkg/table"
	"github.com/spiceai/dualaxis/pkg/util"
	"github.com/xuri/excelize/v2"
)

const (
	XlsxProcessorName string = "xlsx"
)

// XlsxProcessor reads one sheet of a workbook. Cells are read as displayed,
// so date cells need a matching "time_format" unless they hold ISO text.
type XlsxProcessor struct {
	options   table.ParseOptions
	sheet     string
	headerRow int
	data      []byte
	dataMutex sync.RWMutex
	dataHash  []byte
}

func NewXlsxProcessor() *XlsxProcessor {
	return &XlsxProcessor{
		headerRow: 1,
	}
}

func (p *XlsxProcessor) Init(params map[string]string) error {
	options, err := table.ParseOptionsFromParams(params)
	if err != nil {
		return err
	}
	p.options = options
	p.sheet = params["sheet"]

	if headerRow, ok := params["header_row"]; ok {
		row, err := strconv.Atoi(headerRow)
		if err != nil || row < 1 {
			return fmt.Errorf("invalid header_row '%s'", headerRow)
		}
		p.headerRow = row
	}

	return nil
}

func (p *XlsxProcessor) OnData(data []byte) ([]byte, error) {
	p.dataMutex.Lock()
	defer p.dataMutex.Unlock()

	if newDataHash := util.ComputeNewHash(p.dataHash, data); newDataHash != nil {
		// Only update data if new
		p.data = data
		p.dataHash = newDataHash
	}

	return data, nil
}

func (p *XlsxProcessor) GetTable() (*table.Table, error) {
	p.dataMutex.Lock()
	defer p.dataMutex.Unlock()

	if p.data == nil {
		return nil, nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(p.data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := p.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if index, err := f.GetSheetIndex(sheet); err != nil || index < 0 {
		return nil, fmt.Errorf("sheet '%s' not found", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet '%s': %w", sheet, err)
	}
	if len(rows) < p.headerRow {
		return nil, fmt.Errorf("sheet '%s' has no header at row %d", sheet, p.headerRow)
	}

	headers := rows[p.headerRow-1]
	records := rows[p.headerRow:]

	// Trailing empty rows are still returned by some writers.
	for len(records) > 0 && isEmpty(records[len(records)-1]) {
		records = records[:len(records)-1]
	}

	t, err := table.FromRecords(headers, records, p.options)
	if err != nil {
		return nil, fmt.Errorf("failed to process sheet '%s': %w", sheet, err)
	}

	p.data = nil
	return t, nil
}

func isEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
