package dataprocessors

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spiceai/dualaxis/pkg/dataprocessors/csv"
	"github.com/spiceai/dualaxis/pkg/dataprocessors/flux"
	"github.com/spiceai/dualaxis/pkg/dataprocessors/json"
	"github.com/spiceai/dualaxis/pkg/dataprocessors/xlsx"
	"github.com/spiceai/dualaxis/pkg/table"
)

type DataProcessor interface {
	Init(params map[string]string) error
	OnData(data []byte) ([]byte, error)
	GetTable() (*table.Table, error)
}

func NewDataProcessor(name string) (DataProcessor, error) {
	switch name {
	case csv.CsvProcessorName:
		return csv.NewCsvProcessor(), nil
	case flux.FluxCsvProcessorName:
		return flux.NewFluxCsvProcessor(), nil
	case json.JsonProcessorName:
		return json.NewJsonProcessor(), nil
	case xlsx.XlsxProcessorName:
		return xlsx.NewXlsxProcessor(), nil
	}

	return nil, fmt.Errorf("unknown processor '%s'", name)
}

// ProcessorNameForPath picks a processor from a file name. Annotated CSV is
// recognized by a ".flux.csv" suffix.
func ProcessorNameForPath(path string) (string, error) {
	base := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(base, ".flux.csv") {
		return flux.FluxCsvProcessorName, nil
	}

	switch filepath.Ext(base) {
	case ".csv":
		return csv.CsvProcessorName, nil
	case ".json":
		return json.JsonProcessorName, nil
	case ".xlsx", ".xlsm":
		return xlsx.XlsxProcessorName, nil
	}

	return "", fmt.Errorf("no processor for '%s', set one explicitly", filepath.Base(path))
}
