package datasource

import (
	"context"
	"fmt"
	"sync"

	"github.com/spiceai/dualaxis/pkg/component"
	"github.com/spiceai/dualaxis/pkg/dataconnectors"
	"github.com/spiceai/dualaxis/pkg/dataprocessors"
	"github.com/spiceai/dualaxis/pkg/loggers"
	"github.com/spiceai/dualaxis/pkg/source"
	"github.com/spiceai/dualaxis/pkg/spec"
	"github.com/spiceai/dualaxis/pkg/table"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

type TableHandler func(t *table.Table, metadata map[string]string) error

// DataSource feeds raw data from a connector through a processor and keeps
// the latest table it produced.
type DataSource struct {
	spec.DataSpec
	connector     dataconnectors.DataConnector
	processor     dataprocessors.DataProcessor
	latest        *table.Table
	tableHandlers []TableHandler
	tableMutex    sync.RWMutex
}

func NewDataSource(dataSpec spec.DataSpec) (*DataSource, error) {
	connector, err := dataconnectors.NewDataConnector(dataSpec.Connector.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize data connector '%s': %w", dataSpec.Connector.Name, err)
	}

	err = connector.Init(dataSpec.Connector.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize data connector '%s': %w", dataSpec.Connector.Name, err)
	}

	processor, err := dataprocessors.NewDataProcessor(dataSpec.Processor.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize data processor '%s': %w", dataSpec.Processor.Name, err)
	}

	err = processor.Init(dataSpec.Processor.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize data processor '%s': %w", dataSpec.Processor.Name, err)
	}

	return &DataSource{
		DataSpec:  dataSpec,
		connector: connector,
		processor: processor,
	}, nil
}

func (ds *DataSource) Name() string {
	return fmt.Sprintf("%s/%s", ds.Connector.Name, ds.Processor.Name)
}

// Latest returns the most recent table, nil before any data was read.
func (ds *DataSource) Latest() *table.Table {
	ds.tableMutex.RLock()
	defer ds.tableMutex.RUnlock()

	return ds.latest
}

// Provider exposes the latest table to a component.
func (ds *DataSource) Provider() source.Provider {
	return func() (interface{}, error) {
		return ds.Latest(), nil
	}
}

func (ds *DataSource) RegisterTableHandler(handler TableHandler) {
	ds.tableMutex.Lock()
	defer ds.tableMutex.Unlock()

	ds.tableHandlers = append(ds.tableHandlers, handler)
}

// Bind subscribes c to this source and notifies it on every new table.
func (ds *DataSource) Bind(c *component.Component) error {
	ds.RegisterTableHandler(func(t *table.Table, metadata map[string]string) error {
		return c.Notify()
	})
	return c.Subscribe(ds.Provider())
}

// Start begins reading from the connector.
func (ds *DataSource) Start() error {
	return ds.connector.Read(ds.ReadData)
}

func (ds *DataSource) Close() error {
	return ds.connector.Close()
}

// ReadData processes one payload. Payloads identical to the previous one
// produce no new table.
func (ds *DataSource) ReadData(data []byte, metadata map[string]string) error {
	if data == nil {
		return nil
	}

	_, err := ds.processor.OnData(data)
	if err != nil {
		return err
	}

	t, err := ds.processor.GetTable()
	if err != nil {
		return err
	}
	if t == nil {
		zaplog.Sugar().Debugf("data source '%s' received unchanged data", ds.Name())
		return nil
	}

	ds.tableMutex.Lock()
	ds.latest = t
	handlers := make([]TableHandler, len(ds.tableHandlers))
	copy(handlers, ds.tableHandlers)
	ds.tableMutex.Unlock()

	zaplog.Sugar().Infof("data source '%s' read %d rows of %v", ds.Name(), t.NumRows(), t.Names())

	errGroup, _ := errgroup.WithContext(context.Background())

	for _, handler := range handlers {
		h := handler
		errGroup.Go(func() error {
			return h(t, metadata)
		})
	}

	return errGroup.Wait()
}
