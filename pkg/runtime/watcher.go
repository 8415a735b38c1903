package runtime

import (
	"reflect"

	"github.com/fsnotify/fsnotify"
	"github.com/spiceai/dualaxis/pkg/config"
	"github.com/spiceai/dualaxis/pkg/spec"
)

// watchConfig restarts the data source when the data section of the
// configuration file changes. Other sections apply on the next start.
func (r *DualAxisRuntime) watchConfig() {
	r.viper.OnConfigChange(func(event fsnotify.Event) {
		if err := r.processConfigEvent(event); err != nil {
			zaplog.Sugar().Errorf("error applying '%s': %v", event.Name, err)
		}
	})
}

func (r *DualAxisRuntime) processConfigEvent(event fsnotify.Event) error {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return nil
	}

	next := config.LoadDefaultConfiguration()
	if err := r.viper.Unmarshal(next); err != nil {
		return err
	}

	if !dataChanged(r.config.Data, next.Data) {
		return nil
	}

	zaplog.Sugar().Infof("data section of '%s' changed, restarting data source", event.Name)
	r.config.Data = next.Data
	if next.Data == nil {
		return nil
	}
	return r.startDataSource(next.Data)
}

func dataChanged(previous *spec.DataSpec, next *spec.DataSpec) bool {
	if previous == nil || next == nil {
		return previous != next
	}
	return !reflect.DeepEqual(*previous, *next)
}
