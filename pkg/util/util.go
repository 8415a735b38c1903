package util

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
)

// MarshalAndPrintTable renders a slice of csv-tagged structs as an aligned,
// borderless table. Fields may contain commas.
func MarshalAndPrintTable(writer io.Writer, in interface{}) error {
	csvContent, err := gocsv.MarshalString(in)
	if err != nil {
		return err
	}

	records, err := csv.NewReader(strings.NewReader(csvContent)).ReadAll()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetRowLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.SetHeader(records[0])
	table.AppendBulk(records[1:])
	table.Render()

	return nil
}
