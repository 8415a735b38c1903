package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/logrusorgru/aurora"
	"github.com/spiceai/dualaxis/pkg/loggers"
	"go.uber.org/zap"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

const (
	FileConnectorName string = "file"
)

type FileConnector struct {
	path      string
	watch     bool
	fileInfo  fs.FileInfo
	data      []byte
	dataMutex sync.RWMutex
	handlers  []func(data []byte, metadata map[string]string) error
	watcher   *fsnotify.Watcher
}

func NewFileConnector() *FileConnector {
	return &FileConnector{}
}

// Init loads the file at "path". With "watch" set to "true" the file is
// reloaded and re-delivered whenever it changes.
func (c *FileConnector) Init(params map[string]string) error {
	path := params["path"]
	if path == "" {
		return errors.New("missing required 'path' param")
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve '%s': %w", path, err)
		}
		path = absPath
	}

	c.path = path
	c.watch = params["watch"] == "true"

	newFileInfo, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("failed to open file '%s': %w", c.path, err)
	}

	c.dataMutex.Lock()
	defer c.dataMutex.Unlock()

	_, err = c.loadFileData(newFileInfo)
	return err
}

// Read delivers the current contents to handler, then every reload if watching.
func (c *FileConnector) Read(handler func(data []byte, metadata map[string]string) error) error {
	c.dataMutex.Lock()
	c.handlers = append(c.handlers, handler)
	data := c.data
	startWatch := c.watch && c.watcher == nil
	c.dataMutex.Unlock()

	if startWatch {
		if err := c.watchPath(); err != nil {
			return err
		}
	}

	if data == nil {
		return nil
	}
	return handler(data, c.metadata())
}

func (c *FileConnector) Close() error {
	c.dataMutex.Lock()
	defer c.dataMutex.Unlock()

	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

func (c *FileConnector) metadata() map[string]string {
	return map[string]string{
		"path": c.path,
	}
}

func (c *FileConnector) loadFileData(newFileInfo fs.FileInfo) ([]byte, error) {
	zaplog.Sugar().Infof("loading file '%s' ...", c.path)

	loadStartTime := time.Now()

	fileData, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", c.path, err)
	}

	c.data = fileData
	c.fileInfo = newFileInfo

	duration := time.Since(loadStartTime)

	zaplog.Sugar().Info(aurora.Green(fmt.Sprintf("loaded file '%s' in %.2f seconds ...", filepath.Base(c.path), duration.Seconds())))

	return fileData, nil
}

// watchPath watches the file's directory, so files replaced by rename are
// still seen.
func (c *FileConnector) watchPath() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error starting '%s' watcher: %w", c.path, err)
	}

	if err := watcher.Add(filepath.Dir(c.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("error starting '%s' watcher: %w", c.path, err)
	}

	c.dataMutex.Lock()
	c.watcher = watcher
	c.dataMutex.Unlock()

	zaplog.Sugar().Infof("watching '%s' for updates", c.path)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != c.path {
					continue
				}
				err := c.processWatchNotifyEvent(event)
				if err != nil {
					zaplog.Sugar().Warnf("error processing '%s' event %s: %v", c.path, event, err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				zaplog.Sugar().Warnf("error processing '%s': %v", c.path, err)
			}
		}
	}()

	return nil
}

func (c *FileConnector) processWatchNotifyEvent(event fsnotify.Event) error {
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		newFileInfo, err := os.Stat(c.path)
		if err != nil {
			return fmt.Errorf("failed to open file '%s': %w", c.path, err)
		}

		c.dataMutex.Lock()
		if c.fileInfo != nil && !newFileInfo.ModTime().After(c.fileInfo.ModTime()) && newFileInfo.Size() == c.fileInfo.Size() {
			// Only load file if it's changed since last read
			c.dataMutex.Unlock()
			return nil
		}
		data, err := c.loadFileData(newFileInfo)
		handlers := make([]func(data []byte, metadata map[string]string) error, len(c.handlers))
		copy(handlers, c.handlers)
		c.dataMutex.Unlock()
		if err != nil {
			return err
		}

		for _, handler := range handlers {
			if err := handler(data, c.metadata()); err != nil {
				return err
			}
		}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		c.dataMutex.Lock()
		defer c.dataMutex.Unlock()
		c.fileInfo = nil
		c.data = nil
	}

	return nil
}
