// Package logging provides a single package-level log sink used across
// pfreco so tests can capture or silence output without a logging
// framework.
package logging

import "log"

// Logf is the active log function. Replace with SetLogger to capture or
// silence output in tests.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger overrides the active log function. Passing nil installs a
// no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
