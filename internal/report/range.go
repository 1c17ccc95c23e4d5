package report

import (
	"strings"

	"bilancio/internal/core"
)

// ParseRange validates the reporting window. Both bounds are required, must
// parse to calendar dates and must not be inverted. The returned range is
// truncated to date granularity and inclusive of both endpoints.
func ParseRange(start, end string) (core.DateRange, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return core.DateRange{}, &Error{Kind: KindInvalidInput, Msg: "startDate and endDate are required"}
	}

	from, err := core.ParseDate(start)
	if err != nil {
		return core.DateRange{}, &Error{Kind: KindInvalidFormat, Msg: "invalid startDate", Err: err}
	}
	to, err := core.ParseDate(end)
	if err != nil {
		return core.DateRange{}, &Error{Kind: KindInvalidFormat, Msg: "invalid endDate", Err: err}
	}

	from, to = from.Truncate(), to.Truncate()
	if to.Before(from.Time) {
		return core.DateRange{}, &Error{Kind: KindInvalidRange, Msg: "endDate precedes startDate"}
	}

	return core.DateRange{Start: from, End: to}, nil
}
