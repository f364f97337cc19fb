package gilbarco

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestLRC_KnownAnswers verifies the checksum against hand-computed values:
// XOR of the bytes, then two's complement of the inverted result.
func TestLRC_KnownAnswers(t *testing.T) {
	// Empty payload: xor=0x00 → (0xFF+1)&0xFF = 0x00.
	assert.Equal(t, byte(0x00), LRC(nil))

	// Single byte 0x01: xor=0x01 → (0xFE+1)&0xFF = 0xFF.
	assert.Equal(t, byte(0xFF), LRC([]byte{0x01}))

	// "12" = 0x31^0x32 = 0x03 → (0xFC+1)&0xFF = 0xFD.
	assert.Equal(t, byte(0xFD), LRC([]byte{0x31, 0x32}))

	// A byte xor-cancelling itself behaves like the empty payload.
	assert.Equal(t, byte(0x00), LRC([]byte{0x55, 0x55}))
}

// TestVerifyPacket_Valid verifies a well-formed STX/payload/LRC/ETX packet.
func TestVerifyPacket_Valid(t *testing.T) {
	payload := []byte{0x31, 0x32}
	packet := append([]byte{STX}, payload...)
	packet = append(packet, LRC(payload), ETX)

	assert.NoError(t, VerifyPacket(packet))
}

// TestVerifyPacket_Corrupt verifies detection of each framing defect:
// short packet, missing markers, and a flipped payload bit.
func TestVerifyPacket_Corrupt(t *testing.T) {
	payload := []byte{0x31, 0x32}
	good := append([]byte{STX}, payload...)
	good = append(good, LRC(payload), ETX)

	assert.Error(t, VerifyPacket([]byte{STX, ETX}), "too short")

	noStx := append([]byte{0x00}, good[1:]...)
	assert.Error(t, VerifyPacket(noStx), "missing STX")

	noEtx := append(append([]byte{}, good[:len(good)-1]...), 0x00)
	assert.Error(t, VerifyPacket(noEtx), "missing ETX")

	flipped := append([]byte{}, good...)
	flipped[1] ^= 0x01
	err := VerifyPacket(flipped)
	assert.ErrorContains(t, err, "LRC mismatch")
}
