package spec

type DataSpec struct {
	Connector DataConnectorSpec `json:"connector,omitempty" yaml:"connector,omitempty" mapstructure:"connector,omitempty"`
	Processor DataProcessorSpec `json:"processor,omitempty" yaml:"processor,omitempty" mapstructure:"processor,omitempty"`
}

type DataConnectorSpec struct {
	Name   string            `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name,omitempty"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params,omitempty"`
}

type DataProcessorSpec struct {
	Name   string            `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name,omitempty"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params,omitempty"`
}

// ChartSpec holds the defaults the builder and renderer start from.
type ChartSpec struct {
	Title           string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title,omitempty"`
	Separator       string `json:"separator,omitempty" yaml:"separator,omitempty" mapstructure:"separator,omitempty"`
	DefaultLocation string `json:"default_location,omitempty" yaml:"default_location,omitempty" mapstructure:"default_location,omitempty"`
	Width           int    `json:"width,omitempty" yaml:"width,omitempty" mapstructure:"width,omitempty"`
	Height          int    `json:"height,omitempty" yaml:"height,omitempty" mapstructure:"height,omitempty"`
}

// ControlsSpec holds the 1-based fallback position of each control; 0 means
// no fallback.
type ControlsSpec struct {
	Time int `json:"time" yaml:"time" mapstructure:"time"`
	Y1   int `json:"y1" yaml:"y1" mapstructure:"y1"`
	Y2   int `json:"y2" yaml:"y2" mapstructure:"y2"`
}
