package runtime

import (
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/spiceai/dualaxis/pkg/component"
	"github.com/spiceai/dualaxis/pkg/config"
	"github.com/spiceai/dualaxis/pkg/controls"
	"github.com/spiceai/dualaxis/pkg/selection"
	"github.com/spiceai/dualaxis/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntime(t *testing.T) {
	t.Run("ComponentOptions() - defaults", testComponentOptionsDefaultsFunc())
	t.Run("ComponentOptions() - configured", testComponentOptionsConfiguredFunc())
	t.Run("ComponentOptions() - unknown zone", testComponentOptionsUnknownZoneFunc())
	t.Run("RenderOptions() - sizes", testRenderOptionsFunc())
	t.Run("dataChanged() - compares data sections", testDataChangedFunc())
	t.Run("processConfigEvent() - restarts the data source", testProcessConfigEventFunc())
}

func testComponentOptionsDefaultsFunc() func(*testing.T) {
	return func(t *testing.T) {
		options, err := ComponentOptions(config.LoadDefaultConfiguration())
		require.NoError(t, err)

		assert.Equal(t, controls.DefaultFallbacks(), options.Fallbacks)
		assert.Equal(t, ", ", options.Chart.Separator)
		assert.Equal(t, time.UTC, options.Chart.DefaultLocation)
	}
}

func testComponentOptionsConfiguredFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := config.LoadDefaultConfiguration()
		c.Controls = &spec.ControlsSpec{Time: 1, Y1: 2, Y2: 1}
		c.Chart = &spec.ChartSpec{Title: "Weather", Separator: " / ", DefaultLocation: "Europe/Berlin"}

		options, err := ComponentOptions(c)
		require.NoError(t, err)

		assert.Equal(t, controls.Fallbacks{Time: 1, Y1: 2, Y2: selection.Fallback(1)}, options.Fallbacks)
		assert.Equal(t, "Weather", options.Chart.Title)
		assert.Equal(t, " / ", options.Chart.Separator)
		assert.Equal(t, "Europe/Berlin", options.Chart.DefaultLocation.String())
	}
}

func testComponentOptionsUnknownZoneFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := config.LoadDefaultConfiguration()
		c.Chart.DefaultLocation = "Mars/Olympus"

		_, err := ComponentOptions(c)
		assert.Error(t, err)
	}
}

func testRenderOptionsFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := config.LoadDefaultConfiguration()
		c.Chart.Width = 640
		c.Chart.Height = 0

		opts := RenderOptions(c)
		assert.Equal(t, 640, opts.Width)
		assert.Equal(t, 400, opts.Height)

		c.Chart = nil
		assert.Equal(t, 1024, RenderOptions(c).Width)
	}
}

func testDataChangedFunc() func(*testing.T) {
	return func(t *testing.T) {
		a := &spec.DataSpec{Connector: spec.DataConnectorSpec{Name: "file", Params: map[string]string{"path": "a.csv"}}}
		b := &spec.DataSpec{Connector: spec.DataConnectorSpec{Name: "file", Params: map[string]string{"path": "a.csv"}}}

		assert.False(t, dataChanged(nil, nil))
		assert.True(t, dataChanged(nil, a))
		assert.False(t, dataChanged(a, b))

		b.Connector.Params["path"] = "b.csv"
		assert.True(t, dataChanged(a, b))
	}
}

func testProcessConfigEventFunc() func(*testing.T) {
	return func(t *testing.T) {
		v := viper.New()
		r := &DualAxisRuntime{viper: v, config: config.LoadDefaultConfiguration()}
		r.component = component.New(component.DefaultOptions())

		v.Set("data", map[string]interface{}{
			"connector": map[string]interface{}{
				"name":   "file",
				"params": map[string]string{"path": "../../test/assets/data/csv/weather.csv"},
			},
			"processor": map[string]interface{}{
				"name": "csv",
			},
		})

		err := r.processConfigEvent(fsnotify.Event{Name: "config.yaml", Op: fsnotify.Chmod})
		require.NoError(t, err)
		assert.Nil(t, r.dataSource)

		err = r.processConfigEvent(fsnotify.Event{Name: "config.yaml", Op: fsnotify.Write})
		require.NoError(t, err)
		require.NotNil(t, r.dataSource)
		defer r.dataSource.Close()

		assert.Equal(t, "file/csv", r.dataSource.Name())
		assert.True(t, r.component.Ready())
		assert.Equal(t, []string{"temp"}, r.component.Controls()[controls.Y1].Selected)
	}
}
