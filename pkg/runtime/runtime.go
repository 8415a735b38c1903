package runtime

import (
	"fmt"
	"log"
	"sync"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/spiceai/dualaxis/pkg/component"
	"github.com/spiceai/dualaxis/pkg/config"
	"github.com/spiceai/dualaxis/pkg/datasource"
	dualaxis_http "github.com/spiceai/dualaxis/pkg/http"
	"github.com/spiceai/dualaxis/pkg/loggers"
	"github.com/spiceai/dualaxis/pkg/spec"
	"github.com/spiceai/dualaxis/pkg/version"
	"go.uber.org/zap"
)

type httpServer interface {
	Start() error
	Shutdown() error
}

type DualAxisRuntime struct {
	config     *config.ChartConfiguration
	viper      *viper.Viper
	component  *component.Component
	server     httpServer
	dataSource *datasource.DataSource
	dataMutex  sync.Mutex
}

var (
	runtime *DualAxisRuntime
	zaplog  *zap.Logger = loggers.ZapLogger()
)

func GetRuntime() *DualAxisRuntime {
	if runtime == nil {
		runtime = &DualAxisRuntime{
			viper: viper.New(),
		}
	}
	return runtime
}

func (r *DualAxisRuntime) LoadConfig(appDir string) error {
	var err error
	if r.config == nil {
		r.config, err = config.LoadConfiguration(r.viper, appDir)
	}

	return err
}

func (r *DualAxisRuntime) BindFlags(portFlag *pflag.Flag) error {
	err := r.viper.BindPFlag("http_port", portFlag)
	if err != nil {
		return err
	}
	return nil
}

func (r *DualAxisRuntime) Component() *component.Component {
	return r.component
}

// Run starts the chart component, its data source and the HTTP server.
func (r *DualAxisRuntime) Run(appDir string) error {
	err := r.LoadConfig(appDir)
	if err != nil {
		return err
	}

	fmt.Println("Loading DualAxis runtime ...")

	fileLogger, err := loggers.NewFileLogger(version.Component(), r.config.LogPath(appDir))
	if err != nil {
		zaplog.Sugar().Warnf("file logging disabled: %v", err)
	} else {
		loggers.SetZapLogger(fileLogger)
		zaplog = fileLogger
	}

	options, err := ComponentOptions(r.config)
	if err != nil {
		return err
	}
	r.component = component.New(options)
	r.component.RegisterChartHandler(logChartResult)

	if r.config.Data != nil {
		if err := r.startDataSource(r.config.Data); err != nil {
			return err
		}
	}

	r.server = dualaxis_http.NewServer(r.config.HttpPort, r.component).WithRenderOptions(RenderOptions(r.config))
	err = r.server.Start()
	if err != nil {
		return err
	}

	r.watchConfig()

	r.printStartupBanner()

	return nil
}

func (r *DualAxisRuntime) Shutdown() {
	log.Println("Shutting down...")

	wg := new(sync.WaitGroup)

	if r.server != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.server.Shutdown(); err != nil {
				zaplog.Sugar().Debug(err.Error())
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.dataMutex.Lock()
		defer r.dataMutex.Unlock()
		if r.dataSource == nil {
			return
		}
		if err := r.dataSource.Close(); err != nil {
			zaplog.Sugar().Debug(err.Error())
		}
	}()

	wg.Wait()
	loggers.ZapLoggerSync()
}

// startDataSource replaces the running data source, if any, with one built
// from dataSpec and binds it to the component.
func (r *DualAxisRuntime) startDataSource(dataSpec *spec.DataSpec) error {
	ds, err := datasource.NewDataSource(*dataSpec)
	if err != nil {
		return err
	}

	r.dataMutex.Lock()
	previous := r.dataSource
	r.dataSource = ds
	r.dataMutex.Unlock()

	if previous != nil {
		if err := previous.Close(); err != nil {
			zaplog.Sugar().Warnf("failed to close data source '%s': %v", previous.Name(), err)
		}
	}

	err = ds.Bind(r.component)
	if err != nil {
		return err
	}

	err = ds.Start()
	if err != nil {
		return fmt.Errorf("failed to read from data source '%s': %w", ds.Name(), err)
	}

	fmt.Printf("Loaded data source %s\n", aurora.BrightCyan(ds.Name()))
	return nil
}

func (r *DualAxisRuntime) printStartupBanner() {
	fmt.Printf("- Runtime version: %s\n", version.Version())
	if r.config.Data == nil {
		fmt.Print("- ")
		fmt.Println(aurora.Yellow("No data source configured, POST data to /api/v0.1/data"))
	}
	fmt.Print("- ")
	fmt.Println(aurora.Green(fmt.Sprintf("Listening on %s", r.config.ServerBaseUrl())))
	fmt.Println()
	fmt.Println("Use Ctrl-C to stop")
}

func logChartResult(result *component.Result) error {
	if result.Err != nil {
		zaplog.Sugar().Infof("chart unavailable at generation %d: %v", result.Generation, result.Err)
		return nil
	}
	zaplog.Sugar().Debugf("chart updated at generation %d with %d series", result.Generation, len(result.Config.Series))
	return nil
}
