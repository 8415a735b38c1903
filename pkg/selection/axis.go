package selection

import "fmt"

type Axis int

const (
	Y1 Axis = iota + 1
	Y2
)

func (a Axis) String() string {
	switch a {
	case Y1:
		return "y1"
	case Y2:
		return "y2"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Other returns the opposite y-axis.
func (a Axis) Other() Axis {
	if a == Y1 {
		return Y2
	}
	return Y1
}

// CandidatesFor returns the numeric columns an axis may offer: every numeric
// column not currently selected on the other axis. Each axis reads the other's
// live selection at the moment of the call; nothing is stored.
func CandidatesFor(axis Axis, numeric []string, otherSelection []string) []string {
	return Difference(numeric, otherSelection)
}
