package report

import (
	"cmp"
	"io"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/habitat.report/internal/occupancy"
	"github.com/banshee-data/habitat.report/internal/timeutil"
)

// SummaryHeader is the column set of the summary tables.
var SummaryHeader = []string{"phase", "zone", "n", "mean_ms", "std_ms", "median_ms", "min_ms", "max_ms"}

// ZoneSummary describes the spread of total durations in one (phase, zone)
// across entities or pairs.
type ZoneSummary struct {
	Phase  string
	Zone   occupancy.Zone
	N      int
	Mean   float64
	StdDev float64 // sample standard deviation, 0 when N < 2
	Median float64 // lower middle value for even N
	Min    float64
	Max    float64
}

type summaryKey struct {
	phase string
	zone  occupancy.Zone
}

// SummariseResidency summarises residency totals across entities.
func SummariseResidency(records []occupancy.ResidencyRecord) []ZoneSummary {
	keys := make([]summaryKey, len(records))
	values := make([]float64, len(records))
	for i, r := range records {
		keys[i] = summaryKey{r.Phase, r.Zone}
		values[i] = float64(timeutil.Milliseconds(r.TotalDuration))
	}
	return summarise(keys, values)
}

// SummariseMeetings summarises total meeting durations across pairs.
func SummariseMeetings(records []occupancy.MeetingRecord) []ZoneSummary {
	keys := make([]summaryKey, len(records))
	values := make([]float64, len(records))
	for i, r := range records {
		keys[i] = summaryKey{r.Phase, r.Zone}
		values[i] = float64(timeutil.Milliseconds(r.TotalDuration))
	}
	return summarise(keys, values)
}

// summarise groups values by key. Phases keep the order in which they first
// appear, zones ascend within a phase.
func summarise(keys []summaryKey, values []float64) []ZoneSummary {
	var phases []string
	groups := make(map[summaryKey][]float64)
	for i, k := range keys {
		if !slices.Contains(phases, k.phase) {
			phases = append(phases, k.phase)
		}
		groups[k] = append(groups[k], values[i])
	}

	out := make([]ZoneSummary, 0, len(groups))
	for k, xs := range groups {
		slices.Sort(xs)
		s := ZoneSummary{
			Phase:  k.phase,
			Zone:   k.zone,
			N:      len(xs),
			Median: stat.Quantile(0.5, stat.Empirical, xs, nil),
			Min:    floats.Min(xs),
			Max:    floats.Max(xs),
		}
		if len(xs) > 1 {
			s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
		} else {
			s.Mean = xs[0]
		}
		out = append(out, s)
	}

	slices.SortFunc(out, func(a, b ZoneSummary) int {
		if c := slices.Index(phases, a.Phase) - slices.Index(phases, b.Phase); c != 0 {
			return c
		}
		return cmp.Compare(a.Zone, b.Zone)
	})
	return out
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// WriteSummary writes summaries with SummaryHeader.
func WriteSummary(w io.Writer, delim rune, summaries []ZoneSummary) error {
	cw := newWriter(w, delim)
	if err := cw.Write(SummaryHeader); err != nil {
		return err
	}
	for _, s := range summaries {
		row := []string{
			s.Phase,
			s.Zone.String(),
			strconv.Itoa(s.N),
			formatMs(s.Mean),
			formatMs(s.StdDev),
			formatMs(s.Median),
			formatMs(s.Min),
			formatMs(s.Max),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
