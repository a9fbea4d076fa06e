// Package failure classifies pipeline errors.
//
// Errors are tagged with one of the exported markers via Wrap so the CLI,
// the logs and the run history can tell a navigation failure from a capture,
// encode, browser or configuration failure without string matching. Nothing
// here retries; classification only.
package failure
