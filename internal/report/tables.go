// Package report renders analysis results as delimited tables.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/habitat.report/internal/occupancy"
	"github.com/banshee-data/habitat.report/internal/timeutil"
)

// Column sets of the two result tables.
var (
	ResidencyHeader = []string{"entity", "phase", "zone", "total_duration_ms", "visit_count"}
	MeetingHeader   = []string{"entity_pair", "phase", "zone", "total_meeting_duration_ms", "meeting_count", "average_meeting_duration_ms"}
)

func newWriter(w io.Writer, delim rune) *csv.Writer {
	cw := csv.NewWriter(w)
	if delim != 0 {
		cw.Comma = delim
	}
	return cw
}

// WriteResidency writes the header and one row per record.
func WriteResidency(w io.Writer, delim rune, records []occupancy.ResidencyRecord) error {
	cw := newWriter(w, delim)
	if err := cw.Write(ResidencyHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			string(r.Entity),
			r.Phase,
			r.Zone.String(),
			strconv.FormatInt(timeutil.Milliseconds(r.TotalDuration), 10),
			strconv.Itoa(r.VisitCount),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write residency row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMeetings writes the header and one row per record.
func WriteMeetings(w io.Writer, delim rune, records []occupancy.MeetingRecord) error {
	cw := newWriter(w, delim)
	if err := cw.Write(MeetingHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Pair.String(),
			r.Phase,
			r.Zone.String(),
			strconv.FormatInt(timeutil.Milliseconds(r.TotalDuration), 10),
			strconv.Itoa(r.EpisodeCount),
			strconv.FormatInt(timeutil.Milliseconds(r.AverageDuration), 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write meeting row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
