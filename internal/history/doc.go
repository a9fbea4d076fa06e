// Package history records capture runs in a small SQLite ledger.
//
// Each run is inserted when it starts and updated when it finishes, so an
// interrupted process leaves a row in the running state. The ledger backs
// `webgif history`.
package history
