// Package logging assembles structured slog loggers and formatting helpers used
// across webgif.
//
// It owns the console/JSON handlers, routes interactive output to stderr while
// mirroring every record as JSON into the run log file, and exposes
// context-aware helpers so pipeline code automatically tags log lines with the
// run ID and stage. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
