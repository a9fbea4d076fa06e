// Package pipeline runs one capture session end to end.
//
// Run launches the browser, opens a page sized to the session viewport,
// navigates, captures frames through capture.Scheduler and, in GIF mode,
// encodes them. The page and browser are closed on every path. A file lock
// keyed by the output stem keeps two runs from writing the same artifact,
// and each run is recorded in the history ledger when one is supplied.
package pipeline
