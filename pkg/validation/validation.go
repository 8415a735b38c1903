package validation

import (
	"errors"
	"fmt"
)

// Reason identifies why a derived value could not be produced. Failures are
// expected, user-facing and clear themselves once their upstream input changes.
type Reason string

const (
	NotTabular       Reason = "not_tabular"
	NoTimeColumns    Reason = "no_time_columns"
	NoNumericColumns Reason = "no_numeric_columns"
	TimeMissing      Reason = "time_missing"
	NoYSeries        Reason = "no_y_series"
)

var defaultMessages = map[Reason]string{
	NotTabular:       "Data must be a table",
	NoTimeColumns:    "Data has no time columns",
	NoNumericColumns: "Data has no numeric columns",
	TimeMissing:      "Select a time column",
	NoYSeries:        "Select at least one series for either axis",
}

type Failure struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

func (f *Failure) Error() string {
	return f.Message
}

// New returns a failure carrying the default message for reason.
func New(reason Reason) *Failure {
	return &Failure{
		Reason:  reason,
		Message: defaultMessages[reason],
	}
}

func Newf(reason Reason, format string, args ...interface{}) *Failure {
	return &Failure{
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}

// ReasonOf returns the validation reason carried by err, or "" if err is not a
// validation failure.
func ReasonOf(err error) Reason {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Reason
	}
	return ""
}

func Is(err error, reason Reason) bool {
	return err != nil && ReasonOf(err) == reason
}

// AsFailure returns the failure carried by err, if any.
func AsFailure(err error) (*Failure, bool) {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}
