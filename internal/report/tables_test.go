package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/habitat.report/internal/occupancy"
)

func TestWriteResidency(t *testing.T) {
	records := []occupancy.ResidencyRecord{
		{Entity: "m1", Phase: "PHASE 1 dark", Zone: 1, TotalDuration: 1500*time.Millisecond + 900*time.Microsecond, VisitCount: 2},
		{Entity: "m1", Phase: "PHASE 1 dark", Zone: 4, TotalDuration: 0, VisitCount: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteResidency(&buf, ',', records))

	want := "entity,phase,zone,total_duration_ms,visit_count\n" +
		"m1,PHASE 1 dark,1,1500,2\n" +
		"m1,PHASE 1 dark,4,0,1\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteMeetings(t *testing.T) {
	records := []occupancy.MeetingRecord{{
		Pair:            occupancy.Pair{A: "m1", B: "m2"},
		Phase:           "PHASE 2 light",
		Zone:            3,
		TotalDuration:   12 * time.Second,
		EpisodeCount:    2,
		AverageDuration: 6 * time.Second,
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteMeetings(&buf, '\t', records))

	want := "entity_pair\tphase\tzone\ttotal_meeting_duration_ms\tmeeting_count\taverage_meeting_duration_ms\n" +
		"m1_m2\tPHASE 2 light\t3\t12000\t2\t6000\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteTables_EmptyResultsKeepHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMeetings(&buf, 0, nil))
	assert.Equal(t, "entity_pair,phase,zone,total_meeting_duration_ms,meeting_count,average_meeting_duration_ms\n", buf.String())
}

func TestWriteResidency_QuotesDelimiterInNames(t *testing.T) {
	var buf bytes.Buffer
	records := []occupancy.ResidencyRecord{{Entity: "m1", Phase: "dark, day 1", Zone: 2, TotalDuration: time.Second, VisitCount: 1}}
	require.NoError(t, WriteResidency(&buf, ',', records))
	assert.Contains(t, buf.String(), `m1,"dark, day 1",2,1000,1`)
}
