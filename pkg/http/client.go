package http

import (
	"context"
	"fmt"
	net_http "net/http"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spiceai/dualaxis/pkg/version"
	"go.uber.org/zap"
)

var (
	clientOnce sync.Once
	client     *retryablehttp.Client
)

// RetryableClient is shared by every outbound request. Retries are logged at
// debug level through the shared zap logger.
func RetryableClient() *retryablehttp.Client {
	clientOnce.Do(func() {
		client = retryablehttp.NewClient()
		client.RetryMax = 3
		client.RetryWaitMax = 5 * time.Second
		client.Logger = &retryLogger{sugar: zaplog.Sugar()}
	})
	return client
}

// Get fetches url, retrying transient failures until ctx is done.
func Get(ctx context.Context, url string, accept string) (*net_http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, net_http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", UserAgent())
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	return RetryableClient().Do(req)
}

func UserAgent() string {
	return fmt.Sprintf("DualAxis/%s %s (%s)", version.Version(), version.Component(), runtime.GOOS)
}

// retryLogger adapts zap to retryablehttp.LeveledLogger.
type retryLogger struct {
	sugar *zap.SugaredLogger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}
