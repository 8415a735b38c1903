package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spiceai/dualaxis/pkg/component"
	"github.com/spiceai/dualaxis/pkg/controls"
	"github.com/spiceai/dualaxis/pkg/dataprocessors"
	"github.com/spiceai/dualaxis/pkg/selection"
	dualaxis_time "github.com/spiceai/dualaxis/pkg/time"
)

// loadFlags are shared by every command that loads a data file.
type loadFlags struct {
	processor string
	params    map[string]string
	title     string
	separator string
	location  string
	y2Default int
	time      string
	y1        []string
	y2        []string
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.processor, "processor", "", "Data processor: csv, flux-csv, json or xlsx (default: from file extension)")
	cmd.Flags().StringToStringVar(&f.params, "param", map[string]string{}, "Processor params, e.g. --param delimiter=';'")
	cmd.Flags().StringVar(&f.title, "title", "", "Chart title")
	cmd.Flags().StringVar(&f.separator, "separator", ", ", "Separator between series names in axis labels")
	cmd.Flags().StringVar(&f.location, "location", "", "Time zone for time columns without one")
	cmd.Flags().IntVar(&f.y2Default, "y2-default", 0, "1-based numeric column selected on the secondary axis by default, 0 for none")
	cmd.Flags().StringVar(&f.time, "time", "", "Time column")
	cmd.Flags().StringSliceVar(&f.y1, "y1", nil, "Primary axis series")
	cmd.Flags().StringSliceVar(&f.y2, "y2", nil, "Secondary axis series")
}

// loadComponent reads path through a processor, feeds the table to a new
// component and applies the control flags the user set.
func (f *loadFlags) loadComponent(cmd *cobra.Command, path string) (*component.Component, error) {
	processorName := f.processor
	if processorName == "" {
		processorName = viper.GetString("processor")
	}
	if processorName == "" {
		var err error
		processorName, err = dataprocessors.ProcessorNameForPath(path)
		if err != nil {
			return nil, err
		}
	}

	processor, err := dataprocessors.NewDataProcessor(processorName)
	if err != nil {
		return nil, err
	}
	if err := processor.Init(f.params); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	if _, err := processor.OnData(data); err != nil {
		return nil, err
	}
	t, err := processor.GetTable()
	if err != nil {
		return nil, err
	}

	options := component.DefaultOptions()
	options.Fallbacks.Y2 = selection.Fallback(f.y2Default)
	options.Chart.Title = f.title
	options.Chart.Separator = f.separator
	location, err := dualaxis_time.LoadLocation(f.location)
	if err != nil {
		return nil, err
	}
	if location != nil {
		options.Chart.DefaultLocation = location
	}

	c := component.New(options)

	if err := c.SetData(t); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("time") {
		if err := c.Select(controls.Time, []string{f.time}); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("y1") {
		if err := c.Select(controls.Y1, f.y1); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("y2") {
		if err := c.Select(controls.Y2, f.y2); err != nil {
			return nil, err
		}
	}

	return c, nil
}
