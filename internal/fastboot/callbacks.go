package fastboot

// ProgressFunc is called during the payload phase of a download to report
// cumulative progress. It is observational only: it must not block for
// long and it never affects the transfer's control flow or outcome.
type ProgressFunc func(sent, total int)

// Logger is an optional logging interface for protocol diagnostics. The
// client uses it for decode anomalies and command tracing and is silent
// without one.
//
// Example with log/slog:
//
//	type slogAdapter struct{ l *slog.Logger }
//	func (a slogAdapter) Debug(msg string, kv ...interface{}) { a.l.Debug(msg, kv...) }
//	func (a slogAdapter) Error(msg string, kv ...interface{}) { a.l.Error(msg, kv...) }
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
