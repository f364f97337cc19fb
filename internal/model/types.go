package model

import (
	"fmt"
	"strings"
	"time"
)

// Parity represents the serial parity setting for a monitored channel.
type Parity string

const (
	// ParityNone disables the parity bit entirely.
	ParityNone Parity = "none"

	// ParityEven sets the parity bit so the total count of 1-bits is even.
	ParityEven Parity = "even"

	// ParityOdd sets the parity bit so the total count of 1-bits is odd.
	ParityOdd Parity = "odd"
)

// String returns the string representation of Parity.
func (p Parity) String() string {
	return string(p)
}

// IsValid checks whether the Parity value is one of the predefined settings.
func (p Parity) IsValid() bool {
	switch p {
	case ParityNone, ParityEven, ParityOdd:
		return true
	default:
		return false
	}
}

// ParseParity converts a string to a Parity value. Matching is
// case-insensitive so that both config files ("none") and UI-style values
// ("NONE") are accepted.
func ParseParity(s string) (Parity, error) {
	p := Parity(strings.ToLower(s))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid parity: %q (valid: none, even, odd)", s)
	}
	return p, nil
}

// StopBits represents the serial stop-bit setting for a monitored channel.
// It is kept as a string (rather than a float) because "1.5" is a valid
// setting that does not round-trip cleanly through numeric YAML.
type StopBits string

const (
	// StopBitsOne is a single stop bit, the most common setting.
	StopBitsOne StopBits = "1"

	// StopBitsOnePointFive is one and a half stop bits, used by some
	// legacy devices with 5 data bits.
	StopBitsOnePointFive StopBits = "1.5"

	// StopBitsTwo is two stop bits.
	StopBitsTwo StopBits = "2"
)

// String returns the string representation of StopBits.
func (s StopBits) String() string {
	return string(s)
}

// IsValid checks whether the StopBits value is one of the predefined settings.
func (s StopBits) IsValid() bool {
	switch s {
	case StopBitsOne, StopBitsOnePointFive, StopBitsTwo:
		return true
	default:
		return false
	}
}

// ParseStopBits converts a string to a StopBits value.
func ParseStopBits(s string) (StopBits, error) {
	sb := StopBits(strings.TrimSpace(s))
	if !sb.IsValid() {
		return "", fmt.Errorf("invalid stop bits: %q (valid: 1, 1.5, 2)", s)
	}
	return sb, nil
}

// ProtocolMode selects how a channel interprets the byte stream.
type ProtocolMode string

const (
	// ProtocolRaw passes bytes through with optional user-defined framing.
	ProtocolRaw ProtocolMode = "raw"

	// ProtocolGilbarco enables Gilbarco 2-Wire conventions: framing is
	// forced on with STX (0x02) / ETX (0x03) markers, and packets can be
	// verified against the protocol's LRC checksum.
	ProtocolGilbarco ProtocolMode = "gilbarco-2wire"
)

// String returns the string representation of ProtocolMode.
func (m ProtocolMode) String() string {
	return string(m)
}

// IsValid checks whether the ProtocolMode value is one of the predefined modes.
func (m ProtocolMode) IsValid() bool {
	switch m {
	case ProtocolRaw, ProtocolGilbarco:
		return true
	default:
		return false
	}
}

// ParseProtocolMode converts a string to a ProtocolMode.
func ParseProtocolMode(s string) (ProtocolMode, error) {
	m := ProtocolMode(strings.ToLower(s))
	if !m.IsValid() {
		return "", fmt.Errorf("invalid protocol mode: %q (valid: raw, gilbarco-2wire)", s)
	}
	return m, nil
}

// ValidBaudRates lists the baud rates offered by the monitor, mirroring the
// standard rates supported by common USB-serial adapters.
var ValidBaudRates = []int{
	300, 600, 1200, 2400, 4800, 9600, 14400, 19200,
	28800, 38400, 57600, 115200, 230400, 460800, 921600,
}

// ChannelConfig holds the full serial and framing configuration for one
// monitored channel. Two channels ("RX1" and "RX2") can run side by side,
// which is the typical setup when tapping both directions of a line with
// a Y-cable.
type ChannelConfig struct {
	// Label identifies the channel in output lines and logs ("RX1", "RX2").
	Label string `yaml:"label" json:"label"`

	// Enabled controls whether the channel participates in a session.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Port is the serial device name (e.g. "COM3", "/dev/ttyUSB0").
	Port string `yaml:"port" json:"port"`

	// BaudRate is the line speed in bits per second.
	BaudRate int `yaml:"baud" json:"baud"`

	// DataBits is the number of data bits per character (5-8).
	DataBits int `yaml:"dataBits" json:"dataBits"`

	// Parity is the parity setting (none/even/odd).
	Parity Parity `yaml:"parity" json:"parity"`

	// StopBits is the stop-bit setting (1/1.5/2).
	StopBits StopBits `yaml:"stopBits" json:"stopBits"`

	// ReadTimeout is the serial read timeout. Short timeouts keep the
	// reader responsive to stop requests without burning CPU.
	ReadTimeout time.Duration `yaml:"readTimeout" json:"readTimeout"`

	// Protocol selects raw pass-through or Gilbarco 2-Wire conventions.
	Protocol ProtocolMode `yaml:"protocol" json:"protocol"`

	// FramingEnabled turns on marker-based packet assembly. When false,
	// every read chunk is emitted as-is.
	FramingEnabled bool `yaml:"framing" json:"framing"`

	// StartMarker is the packet start marker spec ("STX", "0x02", "2",
	// or a literal string). Empty means no start marker.
	StartMarker string `yaml:"startMarker" json:"startMarker"`

	// EndMarker is the packet end marker spec, same formats as StartMarker.
	EndMarker string `yaml:"endMarker" json:"endMarker"`
}

// DefaultChannelConfig returns a channel configuration with the defaults
// used by the monitor: 9600 8N1, 10 ms read timeout, raw mode.
func DefaultChannelConfig(label string) ChannelConfig {
	return ChannelConfig{
		Label:       label,
		Enabled:     true,
		BaudRate:    9600,
		DataBits:    8,
		Parity:      ParityNone,
		StopBits:    StopBitsOne,
		ReadTimeout: 10 * time.Millisecond,
		Protocol:    ProtocolRaw,
	}
}

// Normalize applies protocol-mode side effects to the configuration.
// Gilbarco 2-Wire always frames on STX/ETX, so selecting that mode
// overrides any user-provided markers.
func (c *ChannelConfig) Normalize() {
	if c.Protocol == ProtocolGilbarco {
		c.FramingEnabled = true
		c.StartMarker = "0x02"
		c.EndMarker = "0x03"
	}
}

// Validate checks the channel configuration for out-of-range values.
// It does not check that the port exists — that is the serial layer's job
// at open time.
func (c *ChannelConfig) Validate() error {
	if c.Label == "" {
		return fmt.Errorf("channel: label must not be empty")
	}
	if !c.Enabled {
		// Disabled channels are never opened, so their remaining fields
		// are allowed to be incomplete (e.g. no port selected yet).
		return nil
	}
	if c.Port == "" {
		return fmt.Errorf("channel %s: no serial port selected", c.Label)
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("channel %s: invalid baud rate %d", c.Label, c.BaudRate)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("channel %s: data bits %d out of range (5-8)", c.Label, c.DataBits)
	}
	if !c.Parity.IsValid() {
		return fmt.Errorf("channel %s: invalid parity %q", c.Label, c.Parity)
	}
	if !c.StopBits.IsValid() {
		return fmt.Errorf("channel %s: invalid stop bits %q", c.Label, c.StopBits)
	}
	if c.ReadTimeout < time.Millisecond || c.ReadTimeout > time.Second {
		return fmt.Errorf("channel %s: read timeout %s out of range (1ms-1s)", c.Label, c.ReadTimeout)
	}
	if !c.Protocol.IsValid() {
		return fmt.Errorf("channel %s: invalid protocol %q", c.Label, c.Protocol)
	}
	if c.FramingEnabled && c.EndMarker == "" {
		return fmt.Errorf("channel %s: framing enabled but no end marker set", c.Label)
	}
	return nil
}

// ValidateChannels checks a set of channel configurations together.
// Beyond per-channel validation it enforces the cross-channel rules:
// at least one channel enabled, and no two enabled channels on the
// same serial port.
func ValidateChannels(channels []ChannelConfig) error {
	enabled := 0
	seen := make(map[string]string)

	for i := range channels {
		if err := channels[i].Validate(); err != nil {
			return err
		}
		if !channels[i].Enabled {
			continue
		}
		enabled++

		if owner, ok := seen[channels[i].Port]; ok {
			return fmt.Errorf("port %s is selected by both %s and %s", channels[i].Port, owner, channels[i].Label)
		}
		seen[channels[i].Port] = channels[i].Label
	}

	if enabled == 0 {
		return fmt.Errorf("no channels enabled")
	}
	return nil
}

// PacketEvent is a single captured packet (or raw chunk when framing is
// disabled) ready for display and logging.
type PacketEvent struct {
	// Channel is the label of the channel that captured the packet.
	Channel string

	// Timestamp is the read time of the chunk that completed the packet.
	Timestamp time.Time

	// Data is the packet payload, including framing markers when present.
	Data []byte

	// Partial marks a trailing buffer remainder flushed at stop time,
	// i.e. data for which no end marker was observed.
	Partial bool

	// LRCError marks a complete Gilbarco 2-Wire packet whose checksum
	// did not verify. Always false in raw mode and for partial packets.
	LRCError bool
}

// Line renders the packet as a display/log line:
//
//	[HH:MM:SS.mmm] RX1 02 31 32 33 03
//
// The hex body is space-separated uppercase bytes, matching the capture
// log format consumed by downstream analysis tools.
func (e *PacketEvent) Line() string {
	var b strings.Builder
	b.Grow(16 + len(e.Channel) + len(e.Data)*3)
	b.WriteByte('[')
	b.WriteString(e.Timestamp.Format("15:04:05.000"))
	b.WriteString("] ")
	b.WriteString(e.Channel)
	for _, by := range e.Data {
		fmt.Fprintf(&b, " %02X", by)
	}
	b.WriteByte('\n')
	return b.String()
}

// StatusEvent reports a channel lifecycle change (connected, disconnected,
// or failed) for display in the status line and the diagnostics log.
type StatusEvent struct {
	// Channel is the label of the channel the status applies to.
	Channel string

	// Connected is true while the serial port is open and being read.
	Connected bool

	// Message is a human-readable status description.
	Message string

	// Err carries the failure when the status change was caused by an
	// error (e.g. the port could not be opened).
	Err error
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
//
// Application-run failures are not listed here: `comsniff launch`
// propagates the wrapped application's own exit code.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred. It is also
	// used when the configured runtime is missing, matching the launcher
	// contract of failing fast with status 1.
	ExitGeneralError ExitCode = 1

	// ExitManifestError indicates the launch manifest was not found or
	// could not be parsed.
	ExitManifestError ExitCode = 2

	// ExitSerialError indicates a serial port could not be opened or read.
	ExitSerialError ExitCode = 3

	// ExitBuildFailed indicates the packaging tool exited non-zero.
	ExitBuildFailed ExitCode = 4

	// ExitProfileError indicates the monitor profile was invalid.
	ExitProfileError ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
