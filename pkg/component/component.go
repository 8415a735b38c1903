package component

import (
	"context"
	"sync"

	"github.com/spiceai/dualaxis/pkg/chart"
	"github.com/spiceai/dualaxis/pkg/classify"
	"github.com/spiceai/dualaxis/pkg/controls"
	"github.com/spiceai/dualaxis/pkg/loggers"
	"github.com/spiceai/dualaxis/pkg/source"
	"github.com/spiceai/dualaxis/pkg/table"
	"github.com/spiceai/dualaxis/pkg/validation"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

// Result is one evaluation of the chart for a given snapshot generation and
// control version. Exactly one of Config and Err is set.
type Result struct {
	Generation uint64
	Version    uint64
	Config     *chart.Config
	Err        error
}

type ChartHandler func(result *Result) error

type Options struct {
	Fallbacks controls.Fallbacks
	Chart     chart.Options
	// Session additionally receives every control update pushed to the
	// component's own controls.
	Session controls.Session
}

func DefaultOptions() Options {
	return Options{
		Fallbacks: controls.DefaultFallbacks(),
		Chart:     chart.DefaultOptions(),
	}
}

// Component ties the normalizer, classifier, synchronizer and chart builder
// together. All evaluation happens under one lock; chart handlers are called
// after it is released.
type Component struct {
	mu             sync.Mutex
	options        Options
	normalizer     *source.Normalizer
	live           bool
	generation     *atomic.Uint64
	controls       *controls.Set
	synchronizer   *controls.Synchronizer
	snapshot       *table.Snapshot
	classification *classify.Classification
	dataErr        error
	cached         *Result
	handlers       []ChartHandler
}

func New(options Options) *Component {
	set := controls.NewSet()

	var session controls.Session = set
	if options.Session != nil {
		session = &teeSession{set: set, host: options.Session}
	}

	return &Component{
		options:      options,
		controls:     set,
		synchronizer: controls.NewSynchronizer(set, session, options.Fallbacks),
		dataErr:      validation.New(validation.NotTabular),
		generation:   atomic.NewUint64(0),
	}
}

// SetData replaces the data with a fixed value and re-evaluates everything.
// It detaches any subscribed provider.
func (c *Component) SetData(value interface{}) error {
	return c.setNormalizer(source.NewStatic(value), false)
}

// Subscribe binds the component to a live provider. The provider is read once
// now and once per Notify.
func (c *Component) Subscribe(provider source.Provider) error {
	return c.setNormalizer(source.NewFromProvider(provider), true)
}

// Notify signals that the subscribed provider has new data.
func (c *Component) Notify() error {
	c.mu.Lock()
	if c.normalizer == nil {
		c.mu.Unlock()
		return nil
	}
	err := c.refresh()
	result, handlers := c.evaluate(), c.copyHandlers()
	c.mu.Unlock()

	return firstError(err, publish(handlers, result))
}

// Select records a user pick for one control and synchronizes the others.
func (c *Component) Select(name controls.Name, values []string) error {
	if _, err := controls.ParseName(string(name)); err != nil {
		return err
	}

	c.mu.Lock()
	c.controls.Select(name, values)
	var err error
	if c.dataErr != nil {
		_, err = c.synchronizer.Suspend()
	} else {
		_, err = c.synchronizer.Sync(c.currentClassification(), name)
	}
	result, handlers := c.evaluate(), c.copyHandlers()
	c.mu.Unlock()

	return firstError(err, publish(handlers, result))
}

// Chart returns the current chart configuration, or the validation failure
// that prevents one.
func (c *Component) Chart() (*chart.Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := c.evaluate()
	return result.Config, result.Err
}

// Classification returns the classification of the current snapshot.
func (c *Component) Classification() (*classify.Classification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dataErr != nil {
		return nil, c.dataErr
	}
	return c.currentClassification(), nil
}

func (c *Component) Snapshot() (*table.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dataErr != nil {
		return nil, c.dataErr
	}
	return c.snapshot, nil
}

// Current returns the snapshot together with its classification, both read
// under one lock so they always share a generation.
func (c *Component) Current() (*table.Snapshot, *classify.Classification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dataErr != nil {
		return nil, nil, c.dataErr
	}
	return c.snapshot, c.currentClassification(), nil
}

// Live reports whether data comes from a subscribed provider.
func (c *Component) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.live
}

// Ready reports whether the component holds a table.
func (c *Component) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot != nil
}

func (c *Component) Controls() map[controls.Name]controls.Update {
	return c.controls.All()
}

func (c *Component) Options() Options {
	return c.options
}

func (c *Component) RegisterChartHandler(handler ChartHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers = append(c.handlers, handler)
}

func (c *Component) setNormalizer(normalizer *source.Normalizer, live bool) error {
	c.mu.Lock()
	c.normalizer = normalizer.WithGeneration(c.generation)
	c.live = live
	err := c.refresh()
	result, handlers := c.evaluate(), c.copyHandlers()
	c.mu.Unlock()

	return firstError(err, publish(handlers, result))
}

// refresh resolves the normalizer once and synchronizes the controls with the
// new classification. While no table is available the controls are only
// hidden; selections are kept for the next table. Must be called with c.mu held.
func (c *Component) refresh() error {
	snapshot, err := c.normalizer.Resolve()
	c.classification = nil
	c.cached = nil

	if err != nil {
		zaplog.Sugar().Infof("data is not available: %s", err.Error())
		c.snapshot = nil
		c.dataErr = err

		_, err := c.synchronizer.Suspend()
		return err
	}

	c.snapshot = snapshot
	c.dataErr = nil

	report, err := c.synchronizer.Sync(c.currentClassification(), "")
	if err != nil {
		return err
	}
	zaplog.Sugar().Debugf("generation %d synchronized, %d control updates sent", report.Generation, len(report.Sent))
	return nil
}

// currentClassification returns a classification whose generation matches
// the current snapshot, reclassifying a stale one. Must be called with c.mu held.
func (c *Component) currentClassification() *classify.Classification {
	generation := uint64(0)
	if c.snapshot != nil {
		generation = c.snapshot.Generation
	}
	if c.classification == nil || c.classification.Generation != generation {
		c.classification = classify.Classify(c.snapshot)
	}
	return c.classification
}

// evaluate returns the chart result for the current generation and control
// version, rebuilding it when either moved. Must be called with c.mu held.
func (c *Component) evaluate() *Result {
	generation := uint64(0)
	if c.snapshot != nil {
		generation = c.snapshot.Generation
	}
	version := c.controls.Version()

	if c.cached != nil && c.cached.Generation == generation && c.cached.Version == version {
		return c.cached
	}

	result := &Result{
		Generation: generation,
		Version:    version,
	}
	if c.dataErr != nil {
		result.Err = c.dataErr
	} else {
		result.Config, result.Err = chart.Build(c.snapshot.Table, controls.SelectionOf(c.controls), c.options.Chart)
	}

	c.cached = result
	return result
}

func (c *Component) copyHandlers() []ChartHandler {
	handlers := make([]ChartHandler, len(c.handlers))
	copy(handlers, c.handlers)
	return handlers
}

func publish(handlers []ChartHandler, result *Result) error {
	errGroup, _ := errgroup.WithContext(context.Background())

	for _, handler := range handlers {
		h := handler
		errGroup.Go(func() error {
			return h(result)
		})
	}

	return errGroup.Wait()
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// teeSession applies updates to the component's controls before forwarding
// them to the host.
type teeSession struct {
	set  *controls.Set
	host controls.Session
}

func (s *teeSession) SendUpdate(update controls.Update) error {
	if err := s.set.SendUpdate(update); err != nil {
		return err
	}
	return s.host.SendUpdate(update)
}
