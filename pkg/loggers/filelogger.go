package loggers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spiceai/dualaxis/pkg/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const (
	logDirName    = "log"
	maxLogSizeMB  = 100
	maxLogBackups = 3
	maxLogAgeDays = 60
)

// NewFileLogger returns a JSON logger writing to a rotated file under
// <rootPath>/log. rootPath must already exist.
func NewFileLogger(name string, rootPath string) (*zap.Logger, error) {
	rootStat, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find log root path '%s': %w", rootPath, err)
	}

	logPath := filepath.Join(rootPath, logDirName)
	if err := os.MkdirAll(logPath, rootStat.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to create log path '%s': %w", logPath, err)
	}

	level := zap.InfoLevel
	if util.IsDebug() {
		level = zap.DebugLevel
	}

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logPath, FormatTimestampedLogFileName(name)),
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), w, level)

	return zap.New(core).Named(name), nil
}

func FormatTimestampedLogFileName(name string) string {
	return fmt.Sprintf("%s-%s.log", name, time.Now().UTC().Format("20060102T150405Z"))
}
