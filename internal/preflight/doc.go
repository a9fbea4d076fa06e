// Package preflight provides readiness checks for the browser and the
// filesystem paths webgif writes to.
//
// The CLI "webgif doctor" command runs RunAll and prints every result. The
// browser launch probe is opt-in because it starts a real browser.
package preflight
