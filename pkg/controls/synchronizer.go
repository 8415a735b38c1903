package controls

import (
	"fmt"

	"github.com/spiceai/dualaxis/pkg/classify"
	"github.com/spiceai/dualaxis/pkg/loggers"
	"github.com/spiceai/dualaxis/pkg/selection"
	"go.uber.org/zap"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

// Fallbacks are the 1-based default positions used when a control has no
// surviving selection.
type Fallbacks struct {
	Time selection.Fallback `json:"time" yaml:"time" mapstructure:"time"`
	Y1   selection.Fallback `json:"y1" yaml:"y1" mapstructure:"y1"`
	Y2   selection.Fallback `json:"y2" yaml:"y2" mapstructure:"y2"`
}

func DefaultFallbacks() Fallbacks {
	return Fallbacks{
		Time: 1,
		Y1:   1,
		Y2:   selection.NoFallback,
	}
}

func (f Fallbacks) of(name Name) selection.Fallback {
	switch name {
	case Time:
		return f.Time
	case Y1:
		return f.Y1
	case Y2:
		return f.Y2
	}
	return selection.NoFallback
}

type SyncReport struct {
	Generation uint64
	Selection  Selection
	Sent       []Update
	Dropped    map[Name][]string
}

// Synchronizer pushes visibility, choices and reconciled selections to the
// controls. It is the only writer of the selection triple.
type Synchronizer struct {
	inputs    Inputs
	session   Session
	fallbacks Fallbacks
	last      map[Name]Update
}

func NewSynchronizer(inputs Inputs, session Session, fallbacks Fallbacks) *Synchronizer {
	return &Synchronizer{
		inputs:    inputs,
		session:   session,
		fallbacks: fallbacks,
		last:      make(map[Name]Update, len(Names)),
	}
}

// Sync reconciles all three controls against one classification. changed names
// the control the user just edited, or is empty when the table changed; the
// user's latest pick is then taken as-is and the other axis yields to it.
func (s *Synchronizer) Sync(c *classify.Classification, changed Name) (*SyncReport, error) {
	previous := SelectionOf(s.inputs)

	next := Selection{
		Time: single(selection.Reconcile(previous.Time, c.Time, s.fallbackFor(Time, changed))),
	}

	first, second := Y1, Y2
	if changed == Y2 {
		first, second = Y2, Y1
	}

	firstCandidates := c.Numeric
	if changed != first {
		firstCandidates = selection.CandidatesFor(axisOf(first), c.Numeric, previous.Of(second))
	}
	firstNew := selection.Reconcile(previous.Of(first), firstCandidates, s.fallbackFor(first, changed))
	secondNew := selection.Reconcile(
		previous.Of(second),
		selection.CandidatesFor(axisOf(second), c.Numeric, firstNew),
		s.fallbackFor(second, changed),
	)

	if first == Y1 {
		next.Y1, next.Y2 = firstNew, secondNew
	} else {
		next.Y1, next.Y2 = secondNew, firstNew
	}

	numericVisible := len(c.Numeric) > 0
	updates := []Update{
		{
			Name:     Time,
			Choices:  c.Time,
			Selected: next.Time,
			Visible:  len(c.Time) > 0,
		},
		{
			Name:     Y1,
			Choices:  selection.CandidatesFor(selection.Y1, c.Numeric, next.Y2),
			Selected: next.Y1,
			Visible:  numericVisible,
		},
		{
			Name:     Y2,
			Choices:  selection.CandidatesFor(selection.Y2, c.Numeric, next.Y1),
			Selected: next.Y2,
			Visible:  numericVisible,
		},
	}

	report := &SyncReport{
		Generation: c.Generation,
		Selection:  next,
		Dropped:    make(map[Name][]string),
	}

	for _, update := range updates {
		if dropped := selection.Dropped(previous.Of(update.Name), update.Selected); len(dropped) > 0 {
			report.Dropped[update.Name] = dropped
			zaplog.Sugar().Infof("control '%s' dropped %v, no longer offered", update.Name, dropped)
		}
	}

	return report, s.send(report, updates, previous)
}

// Suspend hides all three controls while no table is available. Choices and
// selections are left untouched, so the next Sync reconciles the user's picks
// against the recovered table.
func (s *Synchronizer) Suspend() (*SyncReport, error) {
	previous := SelectionOf(s.inputs)

	updates := make([]Update, 0, len(Names))
	for _, name := range Names {
		choices := []string{}
		if last, ok := s.last[name]; ok {
			choices = last.Choices
		}
		updates = append(updates, Update{
			Name:     name,
			Choices:  choices,
			Selected: previous.Of(name),
			Visible:  false,
		})
	}

	report := &SyncReport{
		Selection: previous,
		Dropped:   make(map[Name][]string),
	}
	return report, s.send(report, updates, previous)
}

// send pushes every update that differs from the last one pushed for its
// control. The first session error is returned after all sends were tried.
func (s *Synchronizer) send(report *SyncReport, updates []Update, previous Selection) error {
	var sendErr error
	for _, update := range updates {
		if last, ok := s.last[update.Name]; ok && last.equal(update) && stringsEqual(previous.Of(update.Name), update.Selected) {
			continue
		}

		if err := s.session.SendUpdate(update); err != nil {
			if sendErr == nil {
				sendErr = fmt.Errorf("failed to update control '%s': %w", update.Name, err)
			}
			continue
		}
		s.last[update.Name] = update
		report.Sent = append(report.Sent, update)
	}
	return sendErr
}

func (s *Synchronizer) fallbackFor(name Name, changed Name) selection.Fallback {
	if name == changed {
		return selection.NoFallback
	}
	return s.fallbacks.of(name)
}

func axisOf(name Name) selection.Axis {
	if name == Y2 {
		return selection.Y2
	}
	return selection.Y1
}

// single keeps at most one value; the time control is single-select.
func single(values []string) []string {
	if len(values) > 1 {
		return values[:1]
	}
	return values
}
