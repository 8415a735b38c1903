package runtime

import (
	"github.com/spiceai/dualaxis/pkg/chart"
	"github.com/spiceai/dualaxis/pkg/component"
	"github.com/spiceai/dualaxis/pkg/config"
	"github.com/spiceai/dualaxis/pkg/controls"
	"github.com/spiceai/dualaxis/pkg/selection"
	dualaxis_time "github.com/spiceai/dualaxis/pkg/time"
)

// ComponentOptions turns the controls and chart sections of a configuration
// into component options. Missing sections keep their defaults.
func ComponentOptions(c *config.ChartConfiguration) (component.Options, error) {
	options := component.DefaultOptions()

	if c.Controls != nil {
		options.Fallbacks = controls.Fallbacks{
			Time: selection.Fallback(c.Controls.Time),
			Y1:   selection.Fallback(c.Controls.Y1),
			Y2:   selection.Fallback(c.Controls.Y2),
		}
	}

	if c.Chart != nil {
		options.Chart.Title = c.Chart.Title
		if c.Chart.Separator != "" {
			options.Chart.Separator = c.Chart.Separator
		}
		location, err := dualaxis_time.LoadLocation(c.Chart.DefaultLocation)
		if err != nil {
			return options, err
		}
		if location != nil {
			options.Chart.DefaultLocation = location
		}
	}

	return options, nil
}

func RenderOptions(c *config.ChartConfiguration) chart.RenderOptions {
	opts := chart.DefaultRenderOptions()
	if c.Chart == nil {
		return opts
	}
	if c.Chart.Width > 0 {
		opts.Width = c.Chart.Width
	}
	if c.Chart.Height > 0 {
		opts.Height = c.Chart.Height
	}
	return opts
}
