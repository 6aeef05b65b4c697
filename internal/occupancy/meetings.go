package occupancy

import (
	"maps"
	"slices"
	"time"
)

// Episodes extracts the meeting episodes of a pair from its combined timeline.
//
// A row takes part in a meeting when both entities are in the same, known
// zone. Consecutive timeline rows sharing the same EpisodeKey form one
// episode spanning from the first to the last of those rows; any row in
// between that is not a meeting ends the episode.
func Episodes(pair Pair, rows []CombinedRow) []MeetingEpisode {
	var episodes []MeetingEpisode
	last := -1
	for i, row := range rows {
		if !isMeeting(row) {
			continue
		}
		key := EpisodeKey{VisitA: row.A.Visit, VisitB: row.B.Visit}
		if len(episodes) > 0 && last == i-1 && episodes[len(episodes)-1].Key == key {
			episodes[len(episodes)-1].End = row.At
			last = i
			continue
		}
		episodes = append(episodes, MeetingEpisode{
			Pair:  pair,
			Zone:  row.A.Zone,
			Start: row.At,
			End:   row.At,
			Key:   key,
		})
		last = i
	}
	return episodes
}

func isMeeting(row CombinedRow) bool {
	return row.A.Zone != Unassigned && row.A.Zone == row.B.Zone
}

// AggregateMeetings sums episodes per zone. Zones without episodes are
// omitted, so AverageDuration never divides by zero.
func AggregateMeetings(pair Pair, phase string, episodes []MeetingEpisode) []MeetingRecord {
	if len(episodes) == 0 {
		return nil
	}
	byZone := make(map[Zone]*MeetingRecord)
	for _, e := range episodes {
		r, ok := byZone[e.Zone]
		if !ok {
			r = &MeetingRecord{Pair: pair, Phase: phase, Zone: e.Zone}
			byZone[e.Zone] = r
		}
		r.TotalDuration += e.Duration()
		r.EpisodeCount++
	}

	records := make([]MeetingRecord, 0, len(byZone))
	for _, zone := range slices.Sorted(maps.Keys(byZone)) {
		r := byZone[zone]
		r.AverageDuration = r.TotalDuration / time.Duration(r.EpisodeCount)
		records = append(records, *r)
	}
	return records
}

// PairMeetings runs the merge and aggregation for one pair in one phase.
func PairMeetings(pair Pair, phase string, a, b []Event, policy TransitionPolicy) []MeetingRecord {
	rows := MergeTimelines(a, b, policy)
	return AggregateMeetings(pair, phase, Episodes(pair, rows))
}
