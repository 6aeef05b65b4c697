package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/habitat.report/internal/analysis"
	"github.com/banshee-data/habitat.report/internal/fsutil"
	"github.com/banshee-data/habitat.report/internal/monitoring"
)

var logf = monitoring.Logger("report")

// Output file names inside the output directory.
const (
	ResidencyFile        = "residency.csv"
	MeetingFile          = "meetings.csv"
	ResidencySummaryFile = "residency_summary.csv"
	MeetingSummaryFile   = "meeting_summary.csv"
)

// WriteTables writes the result and summary tables of a run into dir on fsys
// and returns the paths written.
func WriteTables(fsys fsutil.FileSystem, dir string, delim rune, res *analysis.RunResult) ([]string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{ResidencyFile, func(w io.Writer) error { return WriteResidency(w, delim, res.Residency) }},
		{MeetingFile, func(w io.Writer) error { return WriteMeetings(w, delim, res.Meetings) }},
		{ResidencySummaryFile, func(w io.Writer) error { return WriteSummary(w, delim, SummariseResidency(res.Residency)) }},
		{MeetingSummaryFile, func(w io.Writer) error { return WriteSummary(w, delim, SummariseMeetings(res.Meetings)) }},
	}

	paths := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := writeFile(fsys, path, o.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	logf("wrote %d residency and %d meeting rows to %s", len(res.Residency), len(res.Meetings), dir)
	return paths, nil
}

func writeFile(fsys fsutil.FileSystem, path string, write func(io.Writer) error) (err error) {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
