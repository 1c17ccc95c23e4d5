package report

import "fmt"

// Kind classifies a report failure for the caller.
type Kind string

const (
	// KindInvalidInput means a required date parameter is missing.
	KindInvalidInput Kind = "invalid_input"
	// KindInvalidFormat means a date parameter did not parse.
	KindInvalidFormat Kind = "invalid_format"
	// KindInvalidRange means the end date precedes the start date.
	KindInvalidRange Kind = "invalid_range"
	// KindUpstream means the record store could not be reached.
	KindUpstream Kind = "upstream_unavailable"
)

// Error is the failure type surfaced by the report engine. Validation kinds
// are caller errors; KindUpstream is an internal failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCallerError reports whether the kind maps to a 4xx response.
func (k Kind) IsCallerError() bool {
	switch k {
	case KindInvalidInput, KindInvalidFormat, KindInvalidRange:
		return true
	default:
		return false
	}
}
