// Package diag writes the optional diagnostics log: a structured JSON
// file under <log dir>/diagnostics/ recording startup info, channel
// lifecycle events, errors, and periodic in-process memory samples.
//
// Diagnostics are strictly best-effort. A logger that cannot be set up
// degrades to a no-op instead of failing the session.
package diag
