package loggers

import (
	"log"
	"sync"

	"github.com/spiceai/dualaxis/pkg/util"
	"go.uber.org/zap"
)

var (
	zapLogger *zap.Logger
	zapMutex  sync.Mutex
)

// ZapLogger returns the shared logger, creating a development logger when
// DUALAXIS_DEBUG is set and a production one otherwise.
func ZapLogger() *zap.Logger {
	zapMutex.Lock()
	defer zapMutex.Unlock()

	if zapLogger != nil {
		return zapLogger
	}

	var err error
	if util.IsDebug() {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		log.Printf("unable to create zap logger: %v", err)
		zapLogger = zap.NewNop()
	}

	return zapLogger
}

// SetZapLogger replaces the shared logger. Packages that captured the
// previous logger at init keep it.
func SetZapLogger(logger *zap.Logger) {
	if logger == nil {
		return
	}

	zapMutex.Lock()
	zapLogger = logger
	zapMutex.Unlock()
}

func ZapLoggerSync() {
	zapMutex.Lock()
	logger := zapLogger
	zapMutex.Unlock()

	if logger != nil {
		// Sync errors on stdout/stderr are expected, see https://github.com/uber-go/zap/issues/880
		_ = logger.Sync()
	}
}
