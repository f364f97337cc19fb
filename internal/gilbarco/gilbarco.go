// Package gilbarco implements the checksum and framing conventions of the
// Gilbarco 2-Wire forecourt protocol, as carried by pump/dispenser links.
//
// A 2-Wire packet is framed STX (0x02) .. ETX (0x03) and protected by a
// longitudinal redundancy check (LRC) computed over the payload.
package gilbarco

import "fmt"

// Framing bytes of the 2-Wire protocol.
const (
	STX = 0x02
	ETX = 0x03
)

// LRC computes the Gilbarco longitudinal redundancy check over data:
// all bytes are XOR-ed together, then the result is two's-complemented
// via its bitwise inverse. A receiver XOR-ing payload plus LRC obtains
// a value whose complement-plus-one is zero.
func LRC(data []byte) byte {
	var lrc byte
	for _, b := range data {
		lrc ^= b
	}
	return ((lrc ^ 0xFF) + 1) & 0xFF
}

// VerifyPacket checks a framed 2-Wire packet: it must start with STX,
// end with ETX, carry at least one payload byte, and the byte preceding
// ETX must be the LRC of the payload before it.
//
// Packet layout: STX <payload...> <lrc> ETX
func VerifyPacket(packet []byte) error {
	if len(packet) < 4 {
		return fmt.Errorf("gilbarco: packet too short (%d bytes)", len(packet))
	}
	if packet[0] != STX {
		return fmt.Errorf("gilbarco: packet does not start with STX (got 0x%02X)", packet[0])
	}
	if packet[len(packet)-1] != ETX {
		return fmt.Errorf("gilbarco: packet does not end with ETX (got 0x%02X)", packet[len(packet)-1])
	}

	payload := packet[1 : len(packet)-2]
	want := LRC(payload)
	got := packet[len(packet)-2]
	if got != want {
		return fmt.Errorf("gilbarco: LRC mismatch: got 0x%02X, want 0x%02X", got, want)
	}
	return nil
}
