package controls

import (
	"fmt"
	"sync"
)

// Name is the logical name of one of the three chart controls.
type Name string

const (
	Time Name = "time"
	Y1   Name = "y1"
	Y2   Name = "y2"
)

var Names = []Name{Time, Y1, Y2}

func ParseName(name string) (Name, error) {
	for _, n := range Names {
		if string(n) == name {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown control '%s'", name)
}

// Update is what the synchronizer pushes to a control.
type Update struct {
	Name     Name     `json:"-"`
	Choices  []string `json:"choices"`
	Selected []string `json:"selected"`
	Visible  bool     `json:"visible"`
}

func (u Update) equal(other Update) bool {
	return u.Name == other.Name &&
		u.Visible == other.Visible &&
		stringsEqual(u.Choices, other.Choices) &&
		stringsEqual(u.Selected, other.Selected)
}

// Session receives control updates on behalf of the host.
type Session interface {
	SendUpdate(update Update) error
}

// Inputs exposes the values currently held by the host controls.
type Inputs interface {
	Selected(name Name) []string
}

// Selection is the triple of control selections.
type Selection struct {
	Time []string `json:"time"`
	Y1   []string `json:"y1"`
	Y2   []string `json:"y2"`
}

func SelectionOf(inputs Inputs) Selection {
	return Selection{
		Time: inputs.Selected(Time),
		Y1:   inputs.Selected(Y1),
		Y2:   inputs.Selected(Y2),
	}
}

func (s Selection) Of(name Name) []string {
	switch name {
	case Time:
		return s.Time
	case Y1:
		return s.Y1
	case Y2:
		return s.Y2
	}
	return nil
}

// Set is an in-memory implementation of the three controls. It serves both as
// the Inputs read by the synchronizer and as the Session it writes to.
type Set struct {
	mu       sync.RWMutex
	controls map[Name]Update
	version  uint64
}

func NewSet() *Set {
	s := &Set{
		controls: make(map[Name]Update, len(Names)),
	}
	for _, name := range Names {
		s.controls[name] = Update{Name: name, Choices: []string{}, Selected: []string{}}
	}
	return s
}

func (s *Set) Selected(name Name) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyStrings(s.controls[name].Selected)
}

// Select records a user pick. The value is held as-is until the next
// synchronization reconciles it.
func (s *Set) Select(name Name, values []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	control := s.controls[name]
	control.Name = name
	control.Selected = copyStrings(values)
	s.controls[name] = control
	s.version++
}

func (s *Set) SendUpdate(update Update) error {
	if _, err := ParseName(string(update.Name)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	update.Choices = copyStrings(update.Choices)
	update.Selected = copyStrings(update.Selected)
	s.controls[update.Name] = update
	s.version++
	return nil
}

func (s *Set) Get(name Name) Update {
	s.mu.RLock()
	defer s.mu.RUnlock()

	control := s.controls[name]
	control.Choices = copyStrings(control.Choices)
	control.Selected = copyStrings(control.Selected)
	return control
}

// All returns every control keyed by name.
func (s *Set) All() map[Name]Update {
	all := make(map[Name]Update, len(Names))
	for _, name := range Names {
		all[name] = s.Get(name)
	}
	return all
}

// Version increases on every write to any control.
func (s *Set) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

func copyStrings(values []string) []string {
	copied := make([]string, len(values))
	copy(copied, values)
	return copied
}

func stringsEqual(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
