// Package pipeline provides orchestration for the bar tracking pipeline.
//
// It wires the detect, paths and reps stages plus optional sinks
// (rendering, record persistence) into one frame-processing flow shared by
// the live server and offline replay. The pipeline does not own domain
// logic — it delegates to the stage packages and enforces the concurrency
// contract: one frame in flight per pipeline, surplus frames dropped, and
// resets atomic with respect to ingestion.
package pipeline
