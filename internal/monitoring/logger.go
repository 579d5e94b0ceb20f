package monitoring

import "log"

// Logf is the package-level operational logger used by the storage and API
// layers. It defaults to log.Printf; SetLogger swaps it out so tests and
// embedders can redirect or silence it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. A nil argument installs a no-op
// logger rather than panicking on the next call.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
