// Package paths owns the path layer of the bar tracking pipeline.
//
// Responsibilities: turning the per-frame bar position into continuous
// paths — noise gating against teleports, nearest-neighbor association
// into active paths, point-cap trimming, and rate-bounded cleanup of
// abandoned paths.
// Key types: Point, Path, Tracker.
//
// Dependency rule: paths may depend on internal/config and the motion
// root, but never on detect, reps or pipeline. No SQL or HTTP code is
// allowed in this package.
package paths
