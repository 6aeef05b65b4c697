// Package occupancy owns the temporal co-occupancy model of the habitat.
//
// Responsibilities: turning raw per-entity zone intervals into indexed visits
// and boundary events, per-zone residency totals for one entity, merging two
// entities' event streams into a combined timeline, and extracting and
// aggregating the meeting episodes found in that timeline.
//
// Dependency rule: everything here is a pure function of its arguments.
// No SQL, file I/O, logging or goroutines are allowed in this package; the
// analysis runner fans work out and the db package supplies the input.
package occupancy
