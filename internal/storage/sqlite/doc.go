// Package sqlite contains the SQLite persistence layer for workout
// sessions and their rep records.
//
// All database read/write operations belong here rather than in the
// domain packages (detect, paths, reps, pipeline, session). This keeps
// domain logic free of SQL noise and makes it easier to swap storage
// backends for testing.
//
// The schema is managed by embedded golang-migrate migrations; call
// MigrateUp after Open before handing the DB to a store.
package sqlite
