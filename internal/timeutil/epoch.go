package timeutil

import (
	"math"
	"time"
)

// FromUnixSeconds converts floating seconds since the epoch to a UTC time,
// rounded to the microsecond. Recorders write millisecond timecodes, and
// float64 cannot carry nanoseconds at present-day epochs anyway.
func FromUnixSeconds(sec float64) time.Time {
	return time.UnixMicro(int64(math.Round(sec * 1e6))).UTC()
}

// UnixSeconds is the inverse of FromUnixSeconds.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

// Milliseconds renders d as whole milliseconds, truncating toward zero.
func Milliseconds(d time.Duration) int64 {
	return d.Milliseconds()
}
