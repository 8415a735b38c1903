package dataconnectors

import (
	"fmt"

	"github.com/spiceai/dualaxis/pkg/dataconnectors/file"
	"github.com/spiceai/dualaxis/pkg/dataconnectors/url"
)

// DataHandler receives raw data from a connector along with metadata
// describing where it came from.
type DataHandler func(data []byte, metadata map[string]string) error

type DataConnector interface {
	Init(params map[string]string) error
	Read(handler func(data []byte, metadata map[string]string) error) error
	Close() error
}

func NewDataConnector(name string) (DataConnector, error) {
	switch name {
	case file.FileConnectorName:
		return file.NewFileConnector(), nil
	case url.UrlConnectorName:
		return url.NewUrlConnector(), nil
	}

	return nil, fmt.Errorf("unknown data connector '%s'", name)
}
