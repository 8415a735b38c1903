package component

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spiceai/dualaxis/pkg/chart"
	"github.com/spiceai/dualaxis/pkg/controls"
	"github.com/spiceai/dualaxis/pkg/table"
	"github.com/spiceai/dualaxis/pkg/testutils"
	"github.com/spiceai/dualaxis/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponent(t *testing.T) {
	t.Run("SetData() - weather table", testSetDataWeatherFunc())
	t.Run("Select() - series moves to the secondary axis", testSelectSecondaryFunc())
	t.Run("SetData() - dropped column leaves a valid chart", testSetDataDropColumnFunc())
	t.Run("SetData() - not tabular", testSetDataNotTabularFunc())
	t.Run("SetData() - no numeric columns", testSetDataNoNumericFunc())
	t.Run("Select() - clearing both axes", testSelectClearFunc())
	t.Run("Select() - unknown control", testSelectUnknownFunc())
	t.Run("Subscribe() - provider is read once per notification", testSubscribeFunc())
	t.Run("RegisterChartHandler() - handlers receive results", testChartHandlerFunc())
	t.Run("Chart() - result is cached until inputs change", testChartCacheFunc())
	t.Run("Options() - host session receives updates", testHostSessionFunc())
	t.Run("Notify() - provider outage keeps axis picks", testNotifyOutageFunc())
	t.Run("SetData() - generations keep increasing", testSetDataGenerationsFunc())
	t.Run("Current() - snapshot and classification share a generation", testCurrentFunc())
	t.Run("Live() - follows Subscribe and SetData", testLiveFunc())
}

func testSetDataWeatherFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := New(DefaultOptions())
		require.NoError(t, c.SetData(testutils.WeatherTable(t, "temp", "hum")))

		all := c.Controls()
		assert.True(t, all[controls.Time].Visible)
		assert.Equal(t, []string{"date"}, all[controls.Time].Selected)
		assert.Equal(t, []string{"temp", "hum"}, all[controls.Y1].Choices)
		assert.Equal(t, []string{"temp"}, all[controls.Y1].Selected)
		assert.Equal(t, []string{"hum"}, all[controls.Y2].Choices)
		assert.Empty(t, all[controls.Y2].Selected)

		config, err := c.Chart()
		require.NoError(t, err)
		assert.Equal(t, "date", config.X.Column)
		assert.Equal(t, "temp", config.Y.Label)
		assert.Len(t, config.SeriesOn(chart.AxisPrimary), 1)
		assert.Empty(t, config.SeriesOn(chart.AxisSecondary))
		assert.True(t, c.Ready())
	}
}

func testSelectSecondaryFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := New(DefaultOptions())
		require.NoError(t, c.SetData(testutils.WeatherTable(t, "temp", "hum")))
		require.NoError(t, c.Select(controls.Y2, []string{"hum"}))

		all := c.Controls()
		assert.Equal(t, []string{"temp"}, all[controls.Y1].Choices)
		assert.Equal(t, []string{"hum"}, all[controls.Y2].Selected)

		config, err := c.Chart()
		require.NoError(t, err)
		require.Len(t, config.Series, 2)
		assert.Equal(t, "temp", config.Series[0].Name)
		assert.Equal(t, chart.AxisPrimary, config.Series[0].Axis)
		assert.Equal(t, "hum", config.Series[1].Name)
		assert.Equal(t, chart.AxisSecondary, config.Series[1].Axis)
		assert.Equal(t, "hum", config.Y2.Label)
	}
}

func testSetDataDropColumnFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := New(DefaultOptions())
		require.NoError(t, c.SetData(testutils.WeatherTable(t, "temp", "hum")))
		require.NoError(t, c.Select(controls.Y2, []string{"hum"}))

		require.NoError(t, c.SetData(testutils.WeatherTable(t, "temp")))

		all := c.Controls()
		assert.Equal(t, []string{"temp"}, all[controls.Y1].Selected)
		assert.Empty(t, all[controls.Y2].Selected)
		assert.Empty(t, all[controls.Y2].Choices)

		config, err := c.Chart()
		require.NoError(t, err)
		assert.Len(t, config.Series, 1)
		assert.Empty(t, config.SeriesOn(chart.AxisSecondary))
	}
}

func testSetDataNotTabularFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := New(DefaultOptions())
		err := c.SetData("date,temp\n2021-11-01,3")
		assert.NoError(t, err)

		_, err = c.Chart()
		assert.True(t, validation.Is(err, validation.NotTabular))
		_, err = c.Classification()
		assert.True(t, validation.Is(err, validation.NotTabular))
		assert.False(t, c.Ready())

		for _, control := range c.Controls() {
			assert.False(t, control.Visible)
		}
	}
}

func testSetDataNoNumericFunc() func(*testing.T) {
	return func(t *testing.T) {
		tbl, err := table.New(
			table.NewTimeColumn("date", []time.Time{testutils.WeatherEpoch}),
			table.NewStringColumn("city", []string{"Seattle"}),
		)
		require.NoError(t, err)

		c := New(DefaultOptions())
		require.NoError(t, c.SetData(tbl))

		classification, err := c.Classification()
		require.NoError(t, err)
		assert.NoError(t, classification.RequireTime())
		assert.True(t, validation.Is(classification.RequireNumeric(), validation.NoNumericColumns))

		all := c.Controls()
		assert.True(t, all[controls.Time].Visible)
		assert.False(t, all[controls.Y1].Visible)

		_, err = c.Chart()
		assert.True(t, validation.Is(err, validation.NoYSeries))
	}
}

func testSelectClearFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := New(DefaultOptions())
		require.NoError(t, c.SetData(testutils.WeatherTable(t, "temp", "hum")))
		require.NoError(t, c.Select(controls.Y1, []string{}))

		_, err := c.Chart()
		assert.True(t, validation.Is(err, validation.NoYSeries))

		require.NoError(t, c.Select(controls.Y2, []string{"temp"}))
		config, err := c.Chart()
		require.NoError(t, err)
		assert.Equal(t, []string{"temp"}, config.Y2.Columns)
	}
}

func testSelectUnknownFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := New(DefaultOptions())
		err := c.Select("y3", []string{"temp"})
		assert.EqualError(t, err, "unknown control 'y3'")
	}
}

func testSubscribeFunc() func(*testing.T) {
	return func(t *testing.T) {
		tables := []*table.Table{
			testutils.WeatherTable(t, "temp", "hum"),
			testutils.WeatherTable(t, "hum"),
		}
		calls := 0
		c := New(DefaultOptions())
		err := c.Subscribe(func() (interface{}, error) {
			tbl := tables[calls%len(tables)]
			calls++
			return tbl, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, []string{"temp"}, c.Controls()[controls.Y1].Selected)

		require.NoError(t, c.Notify())
		assert.Equal(t, 2, calls)
		assert.Equal(t, []string{"hum"}, c.Controls()[controls.Y1].Selected)

		snapshot, err := c.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), snapshot.Generation)

		_, err = c.Chart()
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	}
}

func testChartHandlerFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := New(DefaultOptions())

		var mu sync.Mutex
		var results []*Result
		c.RegisterChartHandler(func(result *Result) error {
			mu.Lock()
			defer mu.Unlock()
			results = append(results, result)
			return nil
		})
		c.RegisterChartHandler(func(result *Result) error {
			if result.Err != nil {
				return errors.New("sink rejected failure")
			}
			return nil
		})

		require.NoError(t, c.SetData(testutils.WeatherTable(t, "temp")))
		err := c.Select(controls.Y1, nil)
		assert.EqualError(t, err, "sink rejected failure")

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, results, 2)
		assert.NotNil(t, results[0].Config)
		assert.True(t, validation.Is(results[1].Err, validation.NoYSeries))
		assert.Greater(t, results[1].Version, results[0].Version)
	}
}

func testChartCacheFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := New(DefaultOptions())
		require.NoError(t, c.SetData(testutils.WeatherTable(t, "temp", "hum")))

		first, err := c.Chart()
		require.NoError(t, err)
		second, err := c.Chart()
		require.NoError(t, err)
		assert.Same(t, first, second)

		require.NoError(t, c.Select(controls.Y2, []string{"hum"}))
		third, err := c.Chart()
		require.NoError(t, err)
		assert.NotSame(t, first, third)
	}
}

type recordingSession struct {
	mu      sync.Mutex
	updates []controls.Update
}

func (s *recordingSession) SendUpdate(update controls.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update)
	return nil
}

func testHostSessionFunc() func(*testing.T) {
	return func(t *testing.T) {
		host := &recordingSession{}
		options := DefaultOptions()
		options.Session = host

		c := New(options)
		require.NoError(t, c.SetData(testutils.WeatherTable(t, "temp", "hum")))

		host.mu.Lock()
		defer host.mu.Unlock()
		require.Len(t, host.updates, 3)
		assert.Equal(t, controls.Time, host.updates[0].Name)
		assert.Equal(t, c.Controls()[controls.Y1], host.updates[1])
	}
}

func testNotifyOutageFunc() func(*testing.T) {
	return func(t *testing.T) {
		weather := testutils.WeatherTable(t, "temp", "hum")
		var outage error
		c := New(DefaultOptions())
		require.NoError(t, c.Subscribe(func() (interface{}, error) {
			if outage != nil {
				return nil, outage
			}
			return weather, nil
		}))

		require.NoError(t, c.Select(controls.Y1, []string{"hum"}))
		require.NoError(t, c.Select(controls.Y2, []string{"temp"}))

		outage = errors.New("connection refused")
		require.NoError(t, c.Notify())

		_, err := c.Chart()
		assert.EqualError(t, err, "failed to read data: connection refused")
		all := c.Controls()
		for _, control := range all {
			assert.False(t, control.Visible)
		}
		assert.Equal(t, []string{"hum"}, all[controls.Y1].Selected)
		assert.Equal(t, []string{"temp"}, all[controls.Y2].Selected)

		outage = nil
		require.NoError(t, c.Notify())

		all = c.Controls()
		assert.True(t, all[controls.Y1].Visible)
		assert.Equal(t, []string{"date"}, all[controls.Time].Selected)
		assert.Equal(t, []string{"hum"}, all[controls.Y1].Selected)
		assert.Equal(t, []string{"temp"}, all[controls.Y2].Selected)

		config, err := c.Chart()
		require.NoError(t, err)
		assert.Equal(t, []string{"hum"}, config.Y.Columns)
		assert.Equal(t, []string{"temp"}, config.Y2.Columns)
	}
}

func testSetDataGenerationsFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := New(DefaultOptions())

		var mu sync.Mutex
		var generations []uint64
		c.RegisterChartHandler(func(result *Result) error {
			mu.Lock()
			defer mu.Unlock()
			generations = append(generations, result.Generation)
			return nil
		})

		for i := 0; i < 3; i++ {
			require.NoError(t, c.SetData(testutils.WeatherTable(t, "temp", "hum")))
		}
		require.NoError(t, c.Subscribe(func() (interface{}, error) {
			return testutils.WeatherTable(t, "temp"), nil
		}))
		require.NoError(t, c.Notify())

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []uint64{1, 2, 3, 4, 5}, generations)
	}
}

func testCurrentFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := New(DefaultOptions())
		_, _, err := c.Current()
		assert.True(t, validation.Is(err, validation.NotTabular))

		require.NoError(t, c.SetData(testutils.WeatherTable(t, "temp")))
		require.NoError(t, c.SetData(testutils.WeatherTable(t, "temp", "hum")))

		snapshot, classification, err := c.Current()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), snapshot.Generation)
		assert.Equal(t, snapshot.Generation, classification.Generation)
		assert.Equal(t, []string{"temp", "hum"}, classification.Numeric)
	}
}

func testLiveFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := New(DefaultOptions())
		assert.False(t, c.Live())

		require.NoError(t, c.Subscribe(func() (interface{}, error) {
			return testutils.WeatherTable(t, "temp"), nil
		}))
		assert.True(t, c.Live())

		require.NoError(t, c.SetData(testutils.WeatherTable(t, "temp")))
		assert.False(t, c.Live())
	}
}
