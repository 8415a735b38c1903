package url

import (
	"context"
	"errors"
	"fmt"
	"io"
	net_http "net/http"
	"sync"
	"time"

	"github.com/spf13/cast"
	"github.com/spiceai/dualaxis/pkg/http"
	"github.com/spiceai/dualaxis/pkg/loggers"
	"go.uber.org/zap"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

const (
	UrlConnectorName string = "url"
)

// UrlConnector fetches a document over HTTP, once or every "interval".
type UrlConnector struct {
	url      string
	accept   string
	interval time.Duration
	handlers []func(data []byte, metadata map[string]string) error
	mutex    sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewUrlConnector() *UrlConnector {
	ctx, cancel := context.WithCancel(context.Background())
	return &UrlConnector{
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *UrlConnector) Init(params map[string]string) error {
	c.url = params["url"]
	if c.url == "" {
		return errors.New("missing required 'url' param")
	}
	c.accept = params["accept"]

	if interval, ok := params["interval"]; ok && interval != "" {
		d, err := cast.ToDurationE(interval)
		if err != nil {
			return fmt.Errorf("invalid interval '%s': %w", interval, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid interval '%s'", interval)
		}
		c.interval = d
	}

	return nil
}

// Read fetches the document for handler now and, with an interval, keeps
// polling for all registered handlers until Close.
func (c *UrlConnector) Read(handler func(data []byte, metadata map[string]string) error) error {
	c.mutex.Lock()
	c.handlers = append(c.handlers, handler)
	startPolling := c.interval > 0 && len(c.handlers) == 1
	c.mutex.Unlock()

	data, err := c.fetch()
	if err != nil {
		return err
	}
	if err := handler(data, c.metadata()); err != nil {
		return err
	}

	if startPolling {
		go c.poll()
	}
	return nil
}

// Close stops polling and cancels any request in flight.
func (c *UrlConnector) Close() error {
	c.cancel()
	return nil
}

func (c *UrlConnector) poll() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			data, err := c.fetch()
			if err != nil {
				zaplog.Sugar().Warnf("error fetching '%s': %v", c.url, err)
				continue
			}

			c.mutex.Lock()
			handlers := make([]func(data []byte, metadata map[string]string) error, len(c.handlers))
			copy(handlers, c.handlers)
			c.mutex.Unlock()

			for _, handler := range handlers {
				if err := handler(data, c.metadata()); err != nil {
					zaplog.Sugar().Warnf("error handling data from '%s': %v", c.url, err)
				}
			}
		}
	}
}

func (c *UrlConnector) fetch() ([]byte, error) {
	resp, err := http.Get(c.ctx, c.url, c.accept)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch '%s': %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != net_http.StatusOK {
		return nil, fmt.Errorf("failed to fetch '%s': %s", c.url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", c.url, err)
	}

	zaplog.Sugar().Debugf("fetched %d bytes from '%s'", len(data), c.url)
	return data, nil
}

func (c *UrlConnector) metadata() map[string]string {
	return map[string]string{
		"url": c.url,
	}
}
