// Package tui implements the interactive monitor view: a viewport of
// packet lines with per-channel connection status and a small set of
// key bindings (q quit, c clear, s pause/resume).
//
// The bubbletea program receives session events through ProgramSink,
// which adapts the monitor.Sink interface to program messages.
package tui
