package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Experiment files give phase boundaries as a date plus a time of day.
const (
	PhaseDateLayout        = "02.01.2006"
	PhaseClockLayout       = "15:04"
	PhaseClockSecondLayout = "15:04:05"
)

// RawTimecodeLayout is the recorder log layout, e.g. "20240301 18:00:05.250".
const RawTimecodeLayout = "20060102 15:04:05.000"

// ParsePhaseTime combines a date ("01.03.2024") and a clock time ("18:00" or
// "18:00:30") in loc.
func ParsePhaseTime(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	layout := PhaseDateLayout + " " + PhaseClockLayout
	if strings.Count(clock, ":") == 2 {
		layout = PhaseDateLayout + " " + PhaseClockSecondLayout
	}
	t, err := time.ParseInLocation(layout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("wrong date format %q %q: %w", date, clock, err)
	}
	return t, nil
}

// ParseTimecode accepts either floating seconds since the epoch or a
// RawTimecodeLayout string interpreted in loc, and returns epoch seconds.
// NaN and infinities are rejected.
func ParseTimecode(s string, loc *time.Location) (float64, error) {
	s = strings.TrimSpace(s)
	if sec, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(sec) || math.IsInf(sec, 0) {
			return 0, fmt.Errorf("invalid timecode %q: not a finite number", s)
		}
		return sec, nil
	}
	t, err := time.ParseInLocation(RawTimecodeLayout, s, loc)
	if err != nil {
		return 0, fmt.Errorf("invalid timecode %q: %w", s, err)
	}
	return float64(t.UnixMilli()) / 1e3, nil
}
