// Package serialio provides serial port access for the monitor: port
// enumeration, parameter mapping, and the per-channel reader loop.
//
// Ports are driven through go.bug.st/serial. Each monitored channel runs
// one reader goroutine that polls its port with a short read timeout,
// feeds chunks through the channel's Framer, and emits PacketEvents and
// StatusEvents on the session's channels. Cancellation is cooperative:
// the short timeout bounds how long a reader can be blocked in Read
// before it notices a cancelled context.
package serialio
