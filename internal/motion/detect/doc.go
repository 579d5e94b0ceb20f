// Package detect owns the detection stage of the bar tracking pipeline.
//
// Responsibilities: screening raw detector output against the confidence
// threshold, converting center-format boxes to corner format, validity
// heuristics, non-maximum suppression, and the hold-last fallback for
// detector dropout frames.
// Key types: RawFrame, Detection, PostProcessor.
//
// Dependency rule: detect may depend on internal/config and the motion
// root, but never on paths, reps or pipeline. No SQL or HTTP code is
// allowed in this package.
package detect
