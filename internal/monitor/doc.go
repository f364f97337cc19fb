// Package monitor orchestrates a sniffing session: it runs one serial
// reader per enabled channel, fans their packet and status events into a
// Sink (stdout lines or the TUI), and feeds the optional capture writer.
//
// Readers run under an errgroup sharing one context, so a fatal error on
// either channel (or a cancelled session) stops both. Capture writes are
// batched and flushed on a short ticker, keeping disk I/O off the reader
// goroutines.
package monitor
