package occupancy

import (
	"maps"
	"slices"
	"time"
)

// ZoneResidency is the accumulated presence of one entity in one zone.
type ZoneResidency struct {
	Total  time.Duration
	Visits int
}

// Residency sums visit durations per zone. Zones without visits are absent.
// The result does not depend on the order of visits.
func Residency(visits []Visit) map[Zone]ZoneResidency {
	if len(visits) == 0 {
		return nil
	}
	totals := make(map[Zone]ZoneResidency)
	for _, v := range visits {
		r := totals[v.Zone]
		r.Total += v.Duration()
		r.Visits++
		totals[v.Zone] = r
	}
	return totals
}

// ResidencyRecords is Residency flattened into records ordered by zone.
func ResidencyRecords(entity EntityID, phase string, visits []Visit) []ResidencyRecord {
	totals := Residency(visits)
	if len(totals) == 0 {
		return nil
	}
	records := make([]ResidencyRecord, 0, len(totals))
	for _, zone := range slices.Sorted(maps.Keys(totals)) {
		r := totals[zone]
		records = append(records, ResidencyRecord{
			Entity:        entity,
			Phase:         phase,
			Zone:          zone,
			TotalDuration: r.Total,
			VisitCount:    r.Visits,
		})
	}
	return records
}
