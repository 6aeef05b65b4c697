// Package units holds the time-of-day conventions of habitat experiments:
// timezone handling and the layouts used by experiment files and raw logs.
package units

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is used when an experiment does not name one.
const DefaultTimezone = "UTC"

// IsTimezoneValid checks if the given timezone is valid by attempting to load it from the tz database
func IsTimezoneValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location loads tz, treating the empty string as DefaultTimezone.
func Location(tz string) (*time.Location, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", tz, err)
	}
	return loc, nil
}
