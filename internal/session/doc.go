// Package session defines the immutable capture session every pipeline
// component receives.
//
// A Session is built once from configuration plus command-line overrides. It
// resolves the output stem to an absolute path up front so no component
// depends on the process working directory, and it derives every output
// location (GIF file, PNG directory, PNG snapshot) from that stem.
package session
