// Package model defines the domain types and value objects for the
// comsniff CLI.
//
// This package contains pure data structures with no external dependencies:
// channel configurations (port, baud rate, framing markers), packet and
// status events emitted by the serial readers, and the parameter enums
// (Parity, StopBits, ProtocolMode) with their string parsers.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
