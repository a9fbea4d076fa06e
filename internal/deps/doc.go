// Package deps resolves the external binaries webgif needs, currently the
// Chrome or Chromium executable driven over the DevTools protocol.
package deps
