// Package main hosts the webgif CLI entrypoint and command graph.
//
// The root command performs a capture: flags override the loaded
// configuration, a session is built, and the pipeline runs against headless
// Chrome. Subcommands cover configuration scaffolding, preflight checks,
// cleanup of leaked work directories and the run history.
package main
