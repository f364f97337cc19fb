package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseParity verifies case-insensitive parsing of the parity values
// accepted in profiles and on the command line.
func TestParseParity(t *testing.T) {
	p, err := ParseParity("NONE")
	require.NoError(t, err)
	assert.Equal(t, ParityNone, p)

	p, err = ParseParity("even")
	require.NoError(t, err)
	assert.Equal(t, ParityEven, p)

	_, err = ParseParity("mark")
	assert.Error(t, err, "unsupported parity should be rejected")
}

// TestParseStopBits verifies that the three stop-bit settings parse and
// that arbitrary numbers are rejected.
func TestParseStopBits(t *testing.T) {
	sb, err := ParseStopBits("1.5")
	require.NoError(t, err)
	assert.Equal(t, StopBitsOnePointFive, sb)

	_, err = ParseStopBits("3")
	assert.Error(t, err)
}

// TestParseProtocolMode verifies protocol mode parsing, including the
// Gilbarco mode string used in profiles.
func TestParseProtocolMode(t *testing.T) {
	m, err := ParseProtocolMode("gilbarco-2wire")
	require.NoError(t, err)
	assert.Equal(t, ProtocolGilbarco, m)

	_, err = ParseProtocolMode("modbus")
	assert.Error(t, err)
}

// TestNormalizeGilbarco verifies that selecting Gilbarco 2-Wire forces
// framing on with STX/ETX markers, overriding whatever the user had set.
func TestNormalizeGilbarco(t *testing.T) {
	c := DefaultChannelConfig("RX1")
	c.Protocol = ProtocolGilbarco
	c.FramingEnabled = false
	c.StartMarker = "0x7E"
	c.EndMarker = ""

	c.Normalize()

	assert.True(t, c.FramingEnabled)
	assert.Equal(t, "0x02", c.StartMarker)
	assert.Equal(t, "0x03", c.EndMarker)
}

// TestChannelConfigValidate covers the per-channel range checks.
func TestChannelConfigValidate(t *testing.T) {
	c := DefaultChannelConfig("RX1")
	c.Port = "/dev/ttyUSB0"
	require.NoError(t, c.Validate())

	bad := c
	bad.DataBits = 9
	assert.Error(t, bad.Validate(), "data bits above 8 should be rejected")

	bad = c
	bad.ReadTimeout = 2 * time.Second
	assert.Error(t, bad.Validate(), "timeout above 1s should be rejected")

	bad = c
	bad.FramingEnabled = true
	bad.EndMarker = ""
	assert.Error(t, bad.Validate(), "framing without an end marker should be rejected")
}

// TestChannelConfigValidateDisabled verifies that a disabled channel with
// an incomplete configuration passes validation, since it is never opened.
func TestChannelConfigValidateDisabled(t *testing.T) {
	c := DefaultChannelConfig("RX2")
	c.Enabled = false
	c.Port = ""
	assert.NoError(t, c.Validate())
}

// TestValidateChannels_DuplicatePort verifies the cross-channel rule that
// two enabled channels must not open the same serial port.
func TestValidateChannels_DuplicatePort(t *testing.T) {
	rx1 := DefaultChannelConfig("RX1")
	rx1.Port = "COM3"
	rx2 := DefaultChannelConfig("RX2")
	rx2.Port = "COM3"

	err := ValidateChannels([]ChannelConfig{rx1, rx2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COM3")
}

// TestValidateChannels_NoneEnabled verifies that a session with every
// channel disabled is rejected up front.
func TestValidateChannels_NoneEnabled(t *testing.T) {
	rx1 := DefaultChannelConfig("RX1")
	rx1.Enabled = false
	rx2 := DefaultChannelConfig("RX2")
	rx2.Enabled = false

	err := ValidateChannels([]ChannelConfig{rx1, rx2})
	assert.Error(t, err)
}

// TestPacketEventLine verifies the display line format: bracketed
// millisecond timestamp, channel label, uppercase hex bytes.
func TestPacketEventLine(t *testing.T) {
	ts := time.Date(2025, 6, 1, 13, 45, 7, 42_000_000, time.Local)
	e := PacketEvent{
		Channel:   "RX1",
		Timestamp: ts,
		Data:      []byte{0x02, 0x31, 0xAB, 0x03},
	}

	assert.Equal(t, "[13:45:07.042] RX1 02 31 AB 03\n", e.Line())
}

// TestCLIErrorUnwrap verifies the error wrapping contract used by the
// CLI layer for exit-code translation.
func TestCLIErrorUnwrap(t *testing.T) {
	inner := assert.AnError
	err := WrapCLIError(ExitSerialError, "open failed", inner)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "open failed")
	assert.Equal(t, ExitSerialError, err.Code)
}
