package frame

import (
	"strconv"
	"strings"
)

// ParseMarker converts a marker spec string into the byte sequence to
// search for in the stream. Supported forms, checked in order:
//
//  1. "" → nil (no marker)
//  2. "STX" / "ETX" (case-insensitive) → 0x02 / 0x03
//  3. "0xNN" hex → single byte; invalid hex falls back to the literal form
//  4. decimal digits → single byte value
//  5. anything else → the literal UTF-8 bytes of the spec
//
// Values above 255 in the numeric forms fall back to the literal form,
// mirroring the forgiving behavior expected from a hand-typed field.
func ParseMarker(spec string) []byte {
	if spec == "" {
		return nil
	}

	trimmed := strings.TrimSpace(spec)
	switch strings.ToUpper(trimmed) {
	case "STX":
		return []byte{0x02}
	case "ETX":
		return []byte{0x03}
	}

	if strings.HasPrefix(strings.ToLower(trimmed), "0x") {
		if v, err := strconv.ParseUint(trimmed[2:], 16, 8); err == nil {
			return []byte{byte(v)}
		}
		// Not a valid hex byte — treat the spec as a literal.
		return []byte(spec)
	}

	if isAllDigits(trimmed) {
		if v, err := strconv.ParseUint(trimmed, 10, 8); err == nil {
			return []byte{byte(v)}
		}
		return []byte(spec)
	}

	return []byte(spec)
}

// isAllDigits reports whether s is non-empty and consists only of ASCII
// digits. strconv.ParseUint alone is not enough here because it accepts
// a leading "+", which we want to treat as a literal marker.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
