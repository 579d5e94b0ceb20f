// Package report turns finished session data into shareable artifacts: a
// CSV of rep metrics, an HTML chart page of bar paths and scores, and
// per-rep PNG trajectory plots. All functions operate on summary
// snapshots, so callers can generate reports while a session keeps
// ingesting frames.
package report
