// Package logger defines the logging contract shared by the core packages.
// Implementations tag every entry with a component field so fleet-wide logs
// filter cleanly per subsystem (tracker, pipeline, feed client).
package logger

// Logger is the leveled logging contract.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw attaches structured fields, used for per-vessel diagnostics.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
