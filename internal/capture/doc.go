// Package capture drives the timed screenshot loop.
//
// Scheduler issues one screenshot per iteration without waiting for it,
// sleeps for the frame delay, and joins every outstanding capture once the
// loop ends. Frame paths come from a framestore.Store so encode order always
// matches capture order.
package capture
