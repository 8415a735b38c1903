package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/spiceai/dualaxis/pkg/loggers"
	"github.com/spiceai/dualaxis/pkg/table"
	"github.com/spiceai/dualaxis/pkg/util"
	"go.uber.org/zap"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

const (
	CsvProcessorName string = "csv"
)

type CsvProcessor struct {
	options   table.ParseOptions
	delimiter rune
	data      []byte
	dataMutex sync.RWMutex
	dataHash  []byte
}

func NewCsvProcessor() *CsvProcessor {
	return &CsvProcessor{
		delimiter: ',',
	}
}

func (p *CsvProcessor) Init(params map[string]string) error {
	options, err := table.ParseOptionsFromParams(params)
	if err != nil {
		return err
	}
	p.options = options

	if delimiter, ok := params["delimiter"]; ok {
		r, size := utf8.DecodeRuneInString(delimiter)
		if size == 0 || size != len(delimiter) {
			return fmt.Errorf("delimiter '%s' must be a single character", delimiter)
		}
		p.delimiter = r
	}

	return nil
}

func (p *CsvProcessor) OnData(data []byte) ([]byte, error) {
	p.dataMutex.Lock()
	defer p.dataMutex.Unlock()

	if newDataHash := util.ComputeNewHash(p.dataHash, data); newDataHash != nil {
		// Only update data if new
		p.data = data
		p.dataHash = newDataHash
	}

	return data, nil
}

// GetTable parses the pending data. It returns nil when nothing new arrived
// since the last call.
func (p *CsvProcessor) GetTable() (*table.Table, error) {
	p.dataMutex.Lock()
	defer p.dataMutex.Unlock()

	if p.data == nil {
		return nil, nil
	}

	headers, lines, err := p.getCsvHeaderAndLines(bytes.NewReader(p.data))
	if err != nil {
		return nil, fmt.Errorf("failed to process csv: %w", err)
	}

	zaplog.Sugar().Debugf("read %d csv lines with headers %v", len(lines), headers)

	t, err := table.FromRecords(headers, lines, p.options)
	if err != nil {
		return nil, fmt.Errorf("failed to process csv: %w", err)
	}

	p.data = nil
	return t, nil
}

func (p *CsvProcessor) getCsvHeaderAndLines(input io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(input)
	reader.Comma = p.delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("no header")
		}
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read lines: %w", err)
	}

	return headers, lines, nil
}
