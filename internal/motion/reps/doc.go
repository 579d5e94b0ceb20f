// Package reps decides when a tracked bar path amounts to one completed
// repetition and scores the result.
//
// The package has two halves. The completion Detector inspects a path
// snapshot and classifies it as still growing, a stable candidate, or an
// accepted repetition. Acceptance requires four independent criteria to
// hold at once: enough vertical amplitude, a down-then-up or up-then-down
// shape, a duration inside the configured bounds, and enough points for
// the shape test to mean anything. The Analyzer turns an accepted path
// into an immutable Record carrying calibrated distances and a bucketed
// quality score.
//
// Dependency rule: reps may depend on internal/config, internal/motion and
// internal/motion/paths, but never on detect or pipeline. No SQL or HTTP
// code is allowed in this package.
package reps
