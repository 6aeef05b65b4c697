package occupancy

import (
	"errors"
	"fmt"
)

// ErrMalformedInterval is matched by every MalformedIntervalError.
var ErrMalformedInterval = errors.New("malformed interval")

// MalformedIntervalError reports raw intervals that cannot form a valid visit list.
// It is fatal for the entity/phase it belongs to and nothing else.
type MalformedIntervalError struct {
	Entity EntityID
	// Phase is filled in by callers that know which window was being built.
	Phase      string
	VisitIndex int
	Reason     string
}

func (e *MalformedIntervalError) Error() string {
	where := fmt.Sprintf("entity %q", e.Entity)
	if e.Phase != "" {
		where += fmt.Sprintf(" phase %q", e.Phase)
	}
	if e.VisitIndex != NoVisit {
		where += fmt.Sprintf(" visit %d", e.VisitIndex)
	}
	return fmt.Sprintf("malformed interval: %s: %s", where, e.Reason)
}

func (e *MalformedIntervalError) Unwrap() error {
	return ErrMalformedInterval
}
