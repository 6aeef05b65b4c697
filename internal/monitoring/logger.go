package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger so tests can capture or mute analysis output.
var Logf func(format string, v ...any) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}

// Logger returns a logging function that prefixes each line with "[component] "
// and writes through whatever Logf is installed at call time.
func Logger(component string) func(format string, v ...any) {
	prefix := "[" + component + "] "
	return func(format string, v ...any) {
		Logf(prefix+format, v...)
	}
}
