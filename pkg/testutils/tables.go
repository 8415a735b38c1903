package testutils

import (
	"testing"
	"time"

	"github.com/spiceai/dualaxis/pkg/table"
)

var WeatherEpoch = time.Date(2021, time.November, 1, 0, 0, 0, 0, time.UTC)

// WeatherTable returns a date column plus one numeric column per name, three
// hourly rows each.
func WeatherTable(t *testing.T, numeric ...string) *table.Table {
	t.Helper()

	dates := []time.Time{
		WeatherEpoch,
		WeatherEpoch.Add(time.Hour),
		WeatherEpoch.Add(2 * time.Hour),
	}
	columns := []*table.Column{table.NewTimeColumn("date", dates)}
	for i, name := range numeric {
		base := float64(10 * (i + 1))
		columns = append(columns, table.NewDoubleColumn(name, []float64{base, base + 1, base + 2}))
	}

	tbl, err := table.New(columns...)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}
