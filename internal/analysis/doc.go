// Package analysis drives occupancy computations over an experiment.
//
// A Runner resolves each requested phase through a VisitSource, fetches every
// entity's raw intervals once per phase, and fans residency and meeting tasks
// out over a bounded pool of goroutines. A failed task is reported as a
// TaskFailure and never affects the records produced by other tasks.
package analysis
