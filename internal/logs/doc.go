// Package logs reads the JSON log file webgif writes under paths.log_dir.
//
// Last returns the trailing lines, Follow streams appended lines until the
// context ends, and Filter keeps records for a single capture run. The
// `webgif logs` command is built on these helpers.
package logs
